// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// assignment engine and handlers to distinguish between different
// failure scenarios without inspecting SQL error strings.
package repository

import "errors"

// ErrSeatNotFound is returned when a seat lookup yields no rows.  The
// seat catalog is fixed at deployment time, so this usually means the
// client sent a label outside the configured layout.
var ErrSeatNotFound = errors.New("seat not found")

// ErrCustomerNotFound is returned when a customer lookup or update
// targets an id that does not exist.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrAssignmentNotFound is returned when no assignment exists for the
// requested (seat, date) slot.  Emptying an already empty slot
// surfaces this error; the operation is deliberately not idempotent.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrEmailExists is returned when registering a user with an email
// that is already taken.
var ErrEmailExists = errors.New("email already exists")
