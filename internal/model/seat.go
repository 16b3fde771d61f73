package model

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Seat describes one fixed slot in the venue.  Seats are uniquely
// identified by their row label and seat number and are seeded from the
// deployment layout at startup; the application never creates or
// deletes them afterwards.
//
// Fields:
//  ID         – primary key identifier.
//  RowLabel   – letter designating the row (A..E, P).
//  SeatNumber – number of the seat within the row (1-based).
//  SeatType   – STANDARD or VIP.
//  CreatedAt  – creation timestamp.
type Seat struct {
	ID         uint64    `json:"id"`
	RowLabel   string    `json:"row"`
	SeatNumber uint32    `json:"number"`
	SeatType   string    `json:"seat_type"`
	CreatedAt  time.Time `json:"created_at"`
}

// ErrBadSeatLabel is returned by ParseSeatLabel for labels that are not
// a row letter followed by a positive number.
var ErrBadSeatLabel = errors.New("invalid seat label")

// Label renders the seat in its display form, e.g. "A5" or "P3".
func (s Seat) Label() string {
	return s.RowLabel + strconv.FormatUint(uint64(s.SeatNumber), 10)
}

// ParseSeatLabel splits a label like "A5" into its row letter and seat
// number.  The row part is one or more leading letters (upper-cased),
// the remainder must parse as a positive integer.
func ParseSeatLabel(label string) (string, uint32, error) {
	label = strings.TrimSpace(strings.ToUpper(label))
	if label == "" {
		return "", 0, ErrBadSeatLabel
	}
	i := 0
	for i < len(label) && label[i] >= 'A' && label[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(label) {
		return "", 0, ErrBadSeatLabel
	}
	n, err := strconv.ParseUint(label[i:], 10, 32)
	if err != nil || n == 0 {
		return "", 0, ErrBadSeatLabel
	}
	return label[:i], uint32(n), nil
}
