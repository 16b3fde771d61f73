package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/msoylu/seatplanner/internal/model"
	"github.com/msoylu/seatplanner/internal/repository"
)

// CustomerHandler exposes the customer registry.  Reads and creation
// are open to all staff; edits and deletion are ADMIN-only, enforced in
// the router.
type CustomerHandler struct {
	Customers   *repository.CustomerRepo
	Assignments *repository.AssignmentRepo
}

func NewCustomerHandler(c *repository.CustomerRepo, a *repository.AssignmentRepo) *CustomerHandler {
	return &CustomerHandler{Customers: c, Assignments: a}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func customerFromReq(req customerReq) *model.Customer {
	return &model.Customer{
		Name:      strings.TrimSpace(req.Name),
		Title:     optional(req.Title),
		Phone:     optional(req.Phone),
		Email:     optional(req.Email),
		Reference: optional(req.Reference),
	}
}

func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// Create adds a customer to the registry.
// POST /v1/customers
func (h *CustomerHandler) Create(c echo.Context) error {
	var req customerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cust := customerFromReq(req)
	if err := h.Customers.Create(ctx, cust); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, cust)
}

// Get returns one customer, deleted or not.
// GET /v1/customers/:id
func (h *CustomerHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cust, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrCustomerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, cust)
}

// Update rewrites the editable fields of an active customer.
// PUT /v1/customers/:id (ADMIN)
func (h *CustomerHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req customerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Customers.Update(ctx, id, customerFromReq(req)); err != nil {
		if err == repository.ErrCustomerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	cust, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, cust)
}

// Delete soft-deletes a customer.  Past assignments keep resolving but
// the customer can no longer be seated.
// DELETE /v1/customers/:id (ADMIN)
func (h *CustomerHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Customers.SoftDelete(ctx, id); err != nil {
		if err == repository.ErrCustomerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// List returns customers, searched by ?q= and including soft-deleted
// rows when ?include_deleted=true.
// GET /v1/customers
func (h *CustomerHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		customers []model.Customer
		err       error
	)
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		customers, err = h.Customers.Search(ctx, q)
	} else {
		includeDeleted := c.QueryParam("include_deleted") == "true"
		customers, err = h.Customers.List(ctx, !includeDeleted)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"customers": customers})
}

// Visits returns the full visit history of one customer, newest first.
// GET /v1/customers/:id/visits
func (h *CustomerHandler) Visits(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cust, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrCustomerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	visits, err := h.Assignments.VisitsByCustomer(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"customer": cust, "visits": visits})
}
