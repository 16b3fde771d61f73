package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/msoylu/seatplanner/internal/model"
)

// SeatRepo provides read access to the fixed seat catalog and the
// startup seeding that materialises the configured layout.  Seats are
// never mutated through the API.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// Seed inserts the configured seats if they are not present yet.  It is
// called once at startup and is idempotent: existing (row, number)
// pairs are left untouched thanks to the unique key on the table.
func (r *SeatRepo) Seed(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT IGNORE INTO seats (row_label, seat_number, seat_type) VALUES `
	args := make([]interface{}, 0, len(seats)*3)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, s.RowLabel, s.SeatNumber, s.SeatType)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Resolve returns the seat for a row letter and number, or
// ErrSeatNotFound when the pair is outside the configured layout.
func (r *SeatRepo) Resolve(ctx context.Context, rowLabel string, seatNumber uint32) (*model.Seat, error) {
	const q = `SELECT id, row_label, seat_number, seat_type, created_at
	           FROM seats WHERE row_label = ? AND seat_number = ?`
	var s model.Seat
	err := r.db.QueryRowContext(ctx, q, rowLabel, seatNumber).
		Scan(&s.ID, &s.RowLabel, &s.SeatNumber, &s.SeatType, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List retrieves all seats ordered by row_label then seat_number, the
// order the grid is rendered in.
func (r *SeatRepo) List(ctx context.Context) ([]model.Seat, error) {
	const q = `SELECT id, row_label, seat_number, seat_type, created_at
	           FROM seats
	           ORDER BY row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.RowLabel, &s.SeatNumber, &s.SeatType, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
