package model

import "time"

// Customer mirrors the 'customers' table.  Only Name is required; the
// remaining contact fields are optional and stored as nullable columns.
// A customer is never hard-deleted: DeletedAt marks the record inactive
// while historical seat assignments keep pointing at it.
type Customer struct {
	ID        uint64     `json:"id"`
	Name      string     `json:"name"`
	Title     *string    `json:"title,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Email     *string    `json:"email,omitempty"`
	Reference *string    `json:"reference,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Deleted reports whether the customer has been soft-deleted.
func (c *Customer) Deleted() bool { return c.DeletedAt != nil }
