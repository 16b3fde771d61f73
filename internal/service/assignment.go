// Package service contains the assignment rule engine: the logic that
// decides whether a seat/date/customer mutation is allowed and which
// side effects it implies.  Handlers translate HTTP requests into
// engine calls and engine errors into status codes; the engine itself
// talks to storage through small interfaces so its rules can be tested
// without a database.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/msoylu/seatplanner/internal/model"
)

// ErrValidation is returned when a request is missing required fields
// or carries values that cannot be interpreted (bad seat label, bad
// date format, no customer).
var ErrValidation = errors.New("validation failed")

// ErrPastDate is returned when a mutation targets a date before today.
// Assignments for past days are frozen: no assigning, no emptying.
var ErrPastDate = errors.New("date is in the past")

// ErrCustomerDeleted is returned when a soft-deleted customer is used
// as the target of a new assignment.  Deleted customers stay visible
// in history but cannot be seated again.
var ErrCustomerDeleted = errors.New("customer is deleted")

// SeatResolver resolves a (row, number) pair against the fixed catalog.
type SeatResolver interface {
	Resolve(ctx context.Context, rowLabel string, seatNumber uint32) (*model.Seat, error)
}

// CustomerStore is the slice of the customer registry the engine
// depends on: creating walk-in customers and checking the deleted flag
// of existing ones.
type CustomerStore interface {
	Create(ctx context.Context, c *model.Customer) error
	GetByID(ctx context.Context, id uint64) (*model.Customer, error)
}

// AssignmentStore persists slot state.  Replace must be atomic with
// respect to the (seat, date) slot.
type AssignmentStore interface {
	Replace(ctx context.Context, a *model.Assignment) error
	DeleteBySeatAndDate(ctx context.Context, seatID uint64, date time.Time) error
	GetBySeatAndDate(ctx context.Context, seatID uint64, date time.Time) (*model.Assignment, error)
	ListByDate(ctx context.Context, date time.Time) ([]model.Assignment, error)
	SearchByDate(ctx context.Context, date time.Time, term string) ([]model.Assignment, error)
}

// Engine enforces the seat assignment rules.  Now is injectable so the
// temporal write-lock can be tested against a fixed clock; when nil,
// the engine uses time.Now.
type Engine struct {
	Seats       SeatResolver
	Customers   CustomerStore
	Assignments AssignmentStore
	Now         func() time.Time
}

// NewEngine constructs an Engine with the given stores.
func NewEngine(seats SeatResolver, customers CustomerStore, assignments AssignmentStore) *Engine {
	return &Engine{Seats: seats, Customers: customers, Assignments: assignments}
}

// NewCustomer carries the fields of a walk-in customer entered directly
// in the assignment form.  The engine persists it before assigning.
type NewCustomer struct {
	Name      string
	Title     string
	Phone     string
	Email     string
	Reference string
}

// AssignRequest describes one Assign operation.  Exactly one of
// CustomerID and NewCustomer must be set.
type AssignRequest struct {
	SeatLabel   string
	Date        string
	CustomerID  uint64
	NewCustomer *NewCustomer
	AssignedBy  uint64
}

func (e *Engine) today() time.Time {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return truncateToDay(now())
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate interprets a YYYY-MM-DD string as a UTC day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrValidation
	}
	return t.UTC(), nil
}

// resolveSlot validates the label and date of a request and resolves
// the seat.  Mutations additionally enforce the temporal write-lock.
func (e *Engine) resolveSlot(ctx context.Context, seatLabel, dateStr string, mutating bool) (*model.Seat, time.Time, error) {
	row, number, err := model.ParseSeatLabel(seatLabel)
	if err != nil {
		return nil, time.Time{}, ErrValidation
	}
	date, err := ParseDate(dateStr)
	if err != nil {
		return nil, time.Time{}, err
	}
	if mutating && date.Before(e.today()) {
		return nil, time.Time{}, ErrPastDate
	}
	seat, err := e.Seats.Resolve(ctx, row, number)
	if err != nil {
		return nil, time.Time{}, err
	}
	return seat, date, nil
}

// Assign places a customer in a seat for a date.  When the slot is
// already occupied the prior assignment is replaced, not merged.  A
// request carrying NewCustomer first creates the customer in the
// registry and uses the resulting id; the registry entry survives even
// if the slot mutation fails afterwards.  Preconditions, in order:
// seat label and date must parse, the date must not be before today,
// the seat must exist in the catalog, and the customer must not be
// soft-deleted.
func (e *Engine) Assign(ctx context.Context, req AssignRequest) (*model.Assignment, error) {
	if req.CustomerID == 0 && req.NewCustomer == nil {
		return nil, ErrValidation
	}
	seat, date, err := e.resolveSlot(ctx, req.SeatLabel, req.Date, true)
	if err != nil {
		return nil, err
	}

	customerID := req.CustomerID
	if req.NewCustomer != nil {
		c, err := e.createCustomer(ctx, req.NewCustomer)
		if err != nil {
			return nil, err
		}
		customerID = c.ID
	} else {
		c, err := e.Customers.GetByID(ctx, customerID)
		if err != nil {
			return nil, err
		}
		if c.Deleted() {
			return nil, ErrCustomerDeleted
		}
	}

	a := &model.Assignment{
		SeatID:     seat.ID,
		CustomerID: customerID,
		Date:       date,
		AssignedBy: req.AssignedBy,
	}
	if err := e.Assignments.Replace(ctx, a); err != nil {
		return nil, err
	}
	// Read the slot back so the caller gets embedded seat and customer.
	return e.Assignments.GetBySeatAndDate(ctx, seat.ID, date)
}

func (e *Engine) createCustomer(ctx context.Context, nc *NewCustomer) (*model.Customer, error) {
	if strings.TrimSpace(nc.Name) == "" {
		return nil, ErrValidation
	}
	c := &model.Customer{Name: strings.TrimSpace(nc.Name)}
	if v := strings.TrimSpace(nc.Title); v != "" {
		c.Title = &v
	}
	if v := strings.TrimSpace(nc.Phone); v != "" {
		c.Phone = &v
	}
	if v := strings.TrimSpace(nc.Email); v != "" {
		c.Email = &v
	}
	if v := strings.TrimSpace(nc.Reference); v != "" {
		c.Reference = &v
	}
	if err := e.Customers.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Empty removes the assignment occupying a (seat, date) slot.  The
// temporal write-lock applies; emptying an already empty slot surfaces
// the store's not-found error rather than succeeding silently.
func (e *Engine) Empty(ctx context.Context, seatLabel, dateStr string) (*model.Assignment, error) {
	seat, date, err := e.resolveSlot(ctx, seatLabel, dateStr, true)
	if err != nil {
		return nil, err
	}
	// Fetch first so callers can report what was removed.
	a, err := e.Assignments.GetBySeatAndDate(ctx, seat.ID, date)
	if err != nil {
		return nil, err
	}
	if err := e.Assignments.DeleteBySeatAndDate(ctx, seat.ID, date); err != nil {
		return nil, err
	}
	return a, nil
}

// Lookup returns the assignment for a (seat, date) slot with seat and
// customer embedded.  Soft-deleted customers are returned as-is with
// their deleted flag visible; filtering them would hide history.
func (e *Engine) Lookup(ctx context.Context, seatLabel, dateStr string) (*model.Assignment, error) {
	seat, date, err := e.resolveSlot(ctx, seatLabel, dateStr, false)
	if err != nil {
		return nil, err
	}
	return e.Assignments.GetBySeatAndDate(ctx, seat.ID, date)
}

// ListByDate returns all assignments for a date for grid rendering.
// When term is non-empty the list is narrowed to assignments whose
// customer matches it.
func (e *Engine) ListByDate(ctx context.Context, dateStr, term string) ([]model.Assignment, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(term) != "" {
		return e.Assignments.SearchByDate(ctx, date, term)
	}
	return e.Assignments.ListByDate(ctx, date)
}
