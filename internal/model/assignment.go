package model

import "time"

// DateLayout is the wire format for assignment dates.  Assignments have
// day granularity; no time component is stored.
const DateLayout = "2006-01-02"

// Assignment binds one customer to one seat for one calendar date.
// The database enforces at most one row per (seat_id, date).
type Assignment struct {
	ID         uint64    `json:"id"`
	SeatID     uint64    `json:"seat_id"`
	CustomerID uint64    `json:"customer_id"`
	Date       time.Time `json:"-"`
	AssignedBy uint64    `json:"assigned_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	// Embedded relations, populated by lookup and list queries.
	Seat     Seat     `json:"seat"`
	Customer Customer `json:"customer"`
}

// DateString returns the assignment date in YYYY-MM-DD form.
func (a *Assignment) DateString() string { return a.Date.Format(DateLayout) }
