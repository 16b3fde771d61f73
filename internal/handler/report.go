package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/msoylu/seatplanner/internal/repository"
)

// ReportHandler serves the ADMIN dashboard aggregates.
type ReportHandler struct {
	Reports *repository.ReportRepo
}

func NewReportHandler(r *repository.ReportRepo) *ReportHandler {
	return &ReportHandler{Reports: r}
}

// TopCustomers lists the most frequently seated customers.
// GET /v1/reports/top-customers?limit=N (ADMIN)
func (h *ReportHandler) TopCustomers(c echo.Context) error {
	limit := 10
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be 1..100"})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	top, err := h.Reports.TopCustomers(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"top_customers": top})
}

// Summary returns the registry totals for the dashboard cards.
// GET /v1/reports/summary (ADMIN)
func (h *ReportHandler) Summary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stats, err := h.Reports.Stats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, stats)
}
