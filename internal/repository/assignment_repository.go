package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/msoylu/seatplanner/internal/model"
)

// AssignmentRepo provides access to the seat_assignments table.  The
// table carries a unique key on (seat_id, date) so the at-most-one
// invariant holds at the storage layer regardless of request
// interleaving; Replace performs the delete-then-insert inside one
// transaction so two racing writers serialise on the slot.
type AssignmentRepo struct {
	db *sql.DB
}

// NewAssignmentRepo returns a new AssignmentRepo bound to the given database.
func NewAssignmentRepo(db *sql.DB) *AssignmentRepo { return &AssignmentRepo{db: db} }

// DB exposes the underlying handle for callers that need to open their
// own transactions spanning multiple repositories.
func (r *AssignmentRepo) DB() *sql.DB { return r.db }

const assignmentSelect = `
	SELECT a.id, a.seat_id, a.customer_id, a.date, a.assigned_by, a.created_at,
	       s.id, s.row_label, s.seat_number, s.seat_type, s.created_at,
	       c.id, c.name, c.title, c.phone, c.email, c.reference, c.deleted_at, c.created_at, c.updated_at
	FROM seat_assignments a
	JOIN seats s ON s.id = a.seat_id
	JOIN customers c ON c.id = a.customer_id`

func scanAssignment(row interface{ Scan(...interface{}) error }) (*model.Assignment, error) {
	var a model.Assignment
	var assignedBy sql.NullInt64
	var title, phone, email, reference sql.NullString
	var deletedAt sql.NullTime
	err := row.Scan(
		&a.ID, &a.SeatID, &a.CustomerID, &a.Date, &assignedBy, &a.CreatedAt,
		&a.Seat.ID, &a.Seat.RowLabel, &a.Seat.SeatNumber, &a.Seat.SeatType, &a.Seat.CreatedAt,
		&a.Customer.ID, &a.Customer.Name, &title, &phone, &email, &reference,
		&deletedAt, &a.Customer.CreatedAt, &a.Customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if assignedBy.Valid {
		a.AssignedBy = uint64(assignedBy.Int64)
	}
	if title.Valid {
		a.Customer.Title = &title.String
	}
	if phone.Valid {
		a.Customer.Phone = &phone.String
	}
	if email.Valid {
		a.Customer.Email = &email.String
	}
	if reference.Valid {
		a.Customer.Reference = &reference.String
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		a.Customer.DeletedAt = &t
	}
	return &a, nil
}

// GetBySeatAndDate returns the assignment occupying a (seat, date)
// slot with its seat and customer embedded, or ErrAssignmentNotFound
// when the slot is empty.  Soft-deleted customers are not filtered
// out: historical views need them.
func (r *AssignmentRepo) GetBySeatAndDate(ctx context.Context, seatID uint64, date time.Time) (*model.Assignment, error) {
	const cond = ` WHERE a.seat_id = ? AND a.date = ?`
	a, err := scanAssignment(r.db.QueryRowContext(ctx, assignmentSelect+cond, seatID, date.Format(model.DateLayout)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return a, nil
}

// ListByDate returns all assignments for a date ordered by row and
// seat number, including those whose customer is soft-deleted.
func (r *AssignmentRepo) ListByDate(ctx context.Context, date time.Time) ([]model.Assignment, error) {
	const cond = ` WHERE a.date = ? ORDER BY s.row_label, s.seat_number`
	rows, err := r.db.QueryContext(ctx, assignmentSelect+cond, date.Format(model.DateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

// SearchByDate is ListByDate narrowed to assignments whose customer
// name or title contains the term (case-insensitive).  It powers the
// per-day header search in the grid view.
func (r *AssignmentRepo) SearchByDate(ctx context.Context, date time.Time, term string) ([]model.Assignment, error) {
	const cond = ` WHERE a.date = ? AND (LOWER(c.name) LIKE ? OR LOWER(c.title) LIKE ?)
	               ORDER BY s.row_label, s.seat_number`
	pat := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	rows, err := r.db.QueryContext(ctx, assignmentSelect+cond, date.Format(model.DateLayout), pat, pat)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func collectAssignments(rows *sql.Rows) ([]model.Assignment, error) {
	result := make([]model.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Replace atomically installs a new assignment for the (seat, date)
// slot.  Any prior assignment for the slot is deleted and the new row
// inserted within a single transaction; combined with the unique key
// on (seat_id, date) this guarantees the slot never carries two
// assignments even under concurrent writers.  On success the record's
// ID and CreatedAt are populated.
func (r *AssignmentRepo) Replace(ctx context.Context, a *model.Assignment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	dateStr := a.Date.Format(model.DateLayout)
	const del = `DELETE FROM seat_assignments WHERE seat_id = ? AND date = ?`
	if _, err := tx.ExecContext(ctx, del, a.SeatID, dateStr); err != nil {
		return err
	}

	const ins = `INSERT INTO seat_assignments (seat_id, customer_id, date, assigned_by)
	             VALUES (?, ?, ?, ?)`
	var assignedBy sql.NullInt64
	if a.AssignedBy != 0 {
		assignedBy = sql.NullInt64{Int64: int64(a.AssignedBy), Valid: true}
	}
	res, err := tx.ExecContext(ctx, ins, a.SeatID, a.CustomerID, dateStr, assignedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)

	const sel = `SELECT created_at FROM seat_assignments WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, a.ID).Scan(&a.CreatedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// DeleteBySeatAndDate empties a (seat, date) slot.  It returns
// ErrAssignmentNotFound when the slot was already empty; a second
// Empty call on the same slot therefore fails, by design.
func (r *AssignmentRepo) DeleteBySeatAndDate(ctx context.Context, seatID uint64, date time.Time) error {
	const q = `DELETE FROM seat_assignments WHERE seat_id = ? AND date = ?`
	res, err := r.db.ExecContext(ctx, q, seatID, date.Format(model.DateLayout))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// Visit is a single entry of a customer's visit history.
type Visit struct {
	Date       string    `json:"date"`
	SeatLabel  string    `json:"seat"`
	AssignedAt time.Time `json:"assigned_at"`
}

// VisitsByCustomer returns every assignment ever made for a customer,
// newest date first.  Used by the per-customer history report.
func (r *AssignmentRepo) VisitsByCustomer(ctx context.Context, customerID uint64) ([]Visit, error) {
	const q = `SELECT a.date, s.row_label, s.seat_number, a.created_at
	           FROM seat_assignments a
	           JOIN seats s ON s.id = a.seat_id
	           WHERE a.customer_id = ?
	           ORDER BY a.date DESC, a.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	visits := make([]Visit, 0)
	for rows.Next() {
		var v Visit
		var date time.Time
		var rowLabel string
		var seatNumber uint32
		if err := rows.Scan(&date, &rowLabel, &seatNumber, &v.AssignedAt); err != nil {
			return nil, err
		}
		v.Date = date.Format(model.DateLayout)
		v.SeatLabel = model.Seat{RowLabel: rowLabel, SeatNumber: seatNumber}.Label()
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return visits, nil
}
