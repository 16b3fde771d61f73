package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/msoylu/seatplanner/internal/model"
	"github.com/msoylu/seatplanner/internal/repository"
)

// SeatHandler serves the fixed seat catalog.
type SeatHandler struct {
	Seats *repository.SeatRepo
}

func NewSeatHandler(s *repository.SeatRepo) *SeatHandler {
	return &SeatHandler{Seats: s}
}

type seatResp struct {
	ID     uint64 `json:"id"`
	Label  string `json:"label"`
	Row    string `json:"row"`
	Number uint32 `json:"number"`
	Type   string `json:"type"`
}

func toSeatResp(s model.Seat) seatResp {
	return seatResp{ID: s.ID, Label: s.Label(), Row: s.RowLabel, Number: s.SeatNumber, Type: s.SeatType}
}

// List returns every seat in grid order.
// GET /v1/seats
func (h *SeatHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	seats, err := h.Seats.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]seatResp, 0, len(seats))
	for _, s := range seats {
		out = append(out, toSeatResp(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": out})
}

// Layout returns the catalog grouped by row, the shape the grid view
// renders directly.
// GET /v1/seats/layout
func (h *SeatHandler) Layout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	seats, err := h.Seats.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	type rowResp struct {
		Row   string     `json:"row"`
		Seats []seatResp `json:"seats"`
	}
	rows := make([]rowResp, 0)
	for _, s := range seats {
		if len(rows) == 0 || rows[len(rows)-1].Row != s.RowLabel {
			rows = append(rows, rowResp{Row: s.RowLabel})
		}
		last := &rows[len(rows)-1]
		last.Seats = append(last.Seats, toSeatResp(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"rows": rows})
}
