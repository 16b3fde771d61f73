package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/msoylu/seatplanner/internal/model"
)

// CustomerRepo provides CRUD operations for customers.  Deletion is a
// soft delete: the row stays in place with deleted_at set so that
// historical assignments keep resolving.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo constructs a CustomerRepo with the given DB handle.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

const customerCols = `id, name, title, phone, email, reference, deleted_at, created_at, updated_at`

func scanCustomer(row interface{ Scan(...interface{}) error }, c *model.Customer) error {
	var title, phone, email, reference sql.NullString
	var deletedAt sql.NullTime
	if err := row.Scan(&c.ID, &c.Name, &title, &phone, &email, &reference,
		&deletedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return err
	}
	if title.Valid {
		c.Title = &title.String
	}
	if phone.Valid {
		c.Phone = &phone.String
	}
	if email.Valid {
		c.Email = &email.String
	}
	if reference.Valid {
		c.Reference = &reference.String
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		c.DeletedAt = &t
	}
	return nil
}

// nullable converts an optional string field to its SQL representation.
// Empty or nil values become NULL.
func nullable(s *string) sql.NullString {
	if s == nil || strings.TrimSpace(*s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.TrimSpace(*s), Valid: true}
}

// Create inserts a customer and populates its ID and timestamps.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	const q = `INSERT INTO customers (name, title, phone, email, reference)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, strings.TrimSpace(c.Name),
		nullable(c.Title), nullable(c.Phone), nullable(c.Email), nullable(c.Reference))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	return scanCustomer(r.db.QueryRowContext(ctx,
		`SELECT `+customerCols+` FROM customers WHERE id = ?`, c.ID), c)
}

// GetByID fetches a customer by id.  Soft-deleted customers are
// returned as well; callers inspect DeletedAt.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (*model.Customer, error) {
	var c model.Customer
	err := scanCustomer(r.db.QueryRowContext(ctx,
		`SELECT `+customerCols+` FROM customers WHERE id = ?`, id), &c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Update rewrites the editable fields of a customer.  It refuses to
// touch soft-deleted rows and returns ErrCustomerNotFound when nothing
// matched.
func (r *CustomerRepo) Update(ctx context.Context, id uint64, c *model.Customer) error {
	const q = `UPDATE customers
	           SET name = ?, title = ?, phone = ?, email = ?, reference = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, strings.TrimSpace(c.Name),
		nullable(c.Title), nullable(c.Phone), nullable(c.Email), nullable(c.Reference), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// SoftDelete marks a customer as deleted by stamping deleted_at.  A
// second delete on the same customer reports ErrCustomerNotFound.
func (r *CustomerRepo) SoftDelete(ctx context.Context, id uint64) error {
	const q = `UPDATE customers SET deleted_at = UTC_TIMESTAMP()
	           WHERE id = ? AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// List returns customers ordered by name.  When activeOnly is true,
// soft-deleted customers are excluded.
func (r *CustomerRepo) List(ctx context.Context, activeOnly bool) ([]model.Customer, error) {
	q := `SELECT ` + customerCols + ` FROM customers`
	if activeOnly {
		q += ` WHERE deleted_at IS NULL`
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCustomers(rows)
}

// Search returns active customers whose name, title, phone or email
// contains the term (case-insensitive).
func (r *CustomerRepo) Search(ctx context.Context, term string) ([]model.Customer, error) {
	const q = `SELECT ` + customerCols + ` FROM customers
	           WHERE deleted_at IS NULL
	             AND (LOWER(name) LIKE ? OR LOWER(title) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?)
	           ORDER BY name`
	pat := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	rows, err := r.db.QueryContext(ctx, q, pat, pat, pat, pat)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCustomers(rows)
}

func collectCustomers(rows *sql.Rows) ([]model.Customer, error) {
	result := make([]model.Customer, 0)
	for rows.Next() {
		var c model.Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
