package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/msoylu/seatplanner/internal/model"
)

// ReportRepo aggregates visit statistics over customers and their
// assignments.  All queries include soft-deleted customers; the
// deleted flag travels with each record so reports can mark them.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo returns a new ReportRepo bound to the given database.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// CustomerVisits pairs a customer with how often they have been seated.
type CustomerVisits struct {
	Customer   model.Customer `json:"customer"`
	VisitCount uint32         `json:"visit_count"`
	FirstVisit string         `json:"first_visit"`
	LastVisit  string         `json:"last_visit"`
}

// CustomerStats summarises the registry for the dashboard cards.
type CustomerStats struct {
	Total        uint32 `json:"total"`
	Active       uint32 `json:"active"`
	Deleted      uint32 `json:"deleted"`
	NewThisMonth uint32 `json:"new_this_month"`
}

// TopCustomers returns the customers with the most assignments, most
// frequent first.  Customers with no visits are not included.
func (r *ReportRepo) TopCustomers(ctx context.Context, limit int) ([]CustomerVisits, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `SELECT c.id, c.name, c.title, c.phone, c.email, c.reference, c.deleted_at, c.created_at, c.updated_at,
	                  COUNT(a.id), MIN(a.date), MAX(a.date)
	           FROM customers c
	           JOIN seat_assignments a ON a.customer_id = c.id
	           GROUP BY c.id
	           ORDER BY COUNT(a.id) DESC, MAX(a.date) DESC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]CustomerVisits, 0, limit)
	for rows.Next() {
		var cv CustomerVisits
		var title, phone, email, reference sql.NullString
		var deletedAt sql.NullTime
		var first, last time.Time
		if err := rows.Scan(
			&cv.Customer.ID, &cv.Customer.Name, &title, &phone, &email, &reference,
			&deletedAt, &cv.Customer.CreatedAt, &cv.Customer.UpdatedAt,
			&cv.VisitCount, &first, &last,
		); err != nil {
			return nil, err
		}
		if title.Valid {
			cv.Customer.Title = &title.String
		}
		if phone.Valid {
			cv.Customer.Phone = &phone.String
		}
		if email.Valid {
			cv.Customer.Email = &email.String
		}
		if reference.Valid {
			cv.Customer.Reference = &reference.String
		}
		if deletedAt.Valid {
			t := deletedAt.Time
			cv.Customer.DeletedAt = &t
		}
		cv.FirstVisit = first.Format(model.DateLayout)
		cv.LastVisit = last.Format(model.DateLayout)
		result = append(result, cv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Stats computes the registry summary in a single round trip.
func (r *ReportRepo) Stats(ctx context.Context) (*CustomerStats, error) {
	const q = `SELECT COUNT(*),
	                  COALESCE(SUM(deleted_at IS NULL), 0),
	                  COALESCE(SUM(deleted_at IS NOT NULL), 0),
	                  COALESCE(SUM(created_at >= DATE_FORMAT(UTC_TIMESTAMP(), '%Y-%m-01')), 0)
	           FROM customers`
	var st CustomerStats
	if err := r.db.QueryRowContext(ctx, q).Scan(&st.Total, &st.Active, &st.Deleted, &st.NewThisMonth); err != nil {
		return nil, err
	}
	return &st, nil
}
