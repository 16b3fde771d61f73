package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/msoylu/seatplanner/internal/middleware"
	"github.com/msoylu/seatplanner/internal/model"
	"github.com/msoylu/seatplanner/internal/queue"
	"github.com/msoylu/seatplanner/internal/repository"
	"github.com/msoylu/seatplanner/internal/service"
)

// Engine is the slice of the rule engine the assignment endpoints use.
// Declared here so handler tests can substitute a stub.
type Engine interface {
	Assign(ctx context.Context, req service.AssignRequest) (*model.Assignment, error)
	Empty(ctx context.Context, seatLabel, dateStr string) (*model.Assignment, error)
	Lookup(ctx context.Context, seatLabel, dateStr string) (*model.Assignment, error)
	ListByDate(ctx context.Context, dateStr, term string) ([]model.Assignment, error)
}

// AssignmentHandler exposes the seat grid mutations and reads.
type AssignmentHandler struct {
	Engine  Engine
	Publish func(ctx context.Context, ev queue.AssignmentEvent) error
}

func NewAssignmentHandler(e Engine) *AssignmentHandler {
	return &AssignmentHandler{Engine: e, Publish: service.PublishAssignmentEvent}
}

type assignReq struct {
	CustomerID uint64       `json:"customer_id"`
	Customer   *customerReq `json:"customer"`
}

type customerReq struct {
	Name      string `json:"name" validate:"required"`
	Title     string `json:"title"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Reference string `json:"reference"`
}

type assignmentResp struct {
	ID       uint64          `json:"id"`
	Seat     string          `json:"seat"`
	Date     string          `json:"date"`
	Customer *model.Customer `json:"customer"`
	Deleted  bool            `json:"customer_deleted"`
	Assigned time.Time       `json:"assigned_at"`
}

func toAssignmentResp(a *model.Assignment) assignmentResp {
	return assignmentResp{
		ID:       a.ID,
		Seat:     a.Seat.Label(),
		Date:     a.DateString(),
		Customer: &a.Customer,
		Deleted:  a.Customer.Deleted(),
		Assigned: a.CreatedAt,
	}
}

// errorJSON maps engine and repository errors onto status codes: bad
// input 400, unknown slots 404, rule violations 409.
func errorJSON(c echo.Context, err error) error {
	switch err {
	case service.ErrValidation:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat, date or customer"})
	case repository.ErrSeatNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
	case repository.ErrAssignmentNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "seat is not assigned for that date"})
	case repository.ErrCustomerNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	case service.ErrPastDate:
		return c.JSON(http.StatusConflict, echo.Map{"error": "past dates cannot be modified"})
	case service.ErrCustomerDeleted:
		return c.JSON(http.StatusConflict, echo.Map{"error": "customer is deleted"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// Assign occupies a (seat, date) slot, replacing any prior occupant.
// PUT /v1/seats/:label/assignments/:date
func (h *AssignmentHandler) Assign(c echo.Context) error {
	var req assignReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Customer != nil {
		if err := c.Validate(req.Customer); err != nil {
			return err
		}
	}

	sreq := service.AssignRequest{
		SeatLabel:  c.Param("label"),
		Date:       c.Param("date"),
		CustomerID: req.CustomerID,
		AssignedBy: middleware.UserIDFromContext(c),
	}
	if req.Customer != nil {
		sreq.NewCustomer = &service.NewCustomer{
			Name:      req.Customer.Name,
			Title:     req.Customer.Title,
			Phone:     req.Customer.Phone,
			Email:     req.Customer.Email,
			Reference: req.Customer.Reference,
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Engine.Assign(ctx, sreq)
	if err != nil {
		return errorJSON(c, err)
	}

	h.publishAsync(queue.AssignmentEvent{
		Action:       queue.ActionAssigned,
		AssignmentID: a.ID,
		SeatLabel:    a.Seat.Label(),
		Date:         a.DateString(),
		CustomerID:   a.CustomerID,
		CustomerName: a.Customer.Name,
		AssignedBy:   a.AssignedBy,
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, toAssignmentResp(a))
}

// Empty clears a (seat, date) slot.
// DELETE /v1/seats/:label/assignments/:date
func (h *AssignmentHandler) Empty(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Engine.Empty(ctx, c.Param("label"), c.Param("date"))
	if err != nil {
		return errorJSON(c, err)
	}

	h.publishAsync(queue.AssignmentEvent{
		Action:       queue.ActionEmptied,
		AssignmentID: a.ID,
		SeatLabel:    a.Seat.Label(),
		Date:         a.DateString(),
		CustomerID:   a.CustomerID,
		CustomerName: a.Customer.Name,
		AssignedBy:   middleware.UserIDFromContext(c),
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, toAssignmentResp(a))
}

// Lookup returns the occupant of a (seat, date) slot.
// GET /v1/seats/:label/assignments/:date
func (h *AssignmentHandler) Lookup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Engine.Lookup(ctx, c.Param("label"), c.Param("date"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, toAssignmentResp(a))
}

// ListByDate returns the assignments of one day for grid rendering,
// optionally narrowed by a customer search term.
// GET /v1/assignments?date=YYYY-MM-DD&q=term
func (h *AssignmentHandler) ListByDate(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Engine.ListByDate(ctx, date, c.QueryParam("q"))
	if err != nil {
		return errorJSON(c, err)
	}

	out := make([]assignmentResp, 0, len(list))
	for i := range list {
		out = append(out, toAssignmentResp(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "assignments": out})
}

// publishAsync fires the audit event without blocking the response.
// Broker outages must not fail seat mutations.
func (h *AssignmentHandler) publishAsync(ev queue.AssignmentEvent) {
	if h.Publish == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.Publish(ctx, ev)
	}()
}
