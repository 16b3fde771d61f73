package model

import "time"

// Roles assignable to application users.  ADMIN unlocks customer
// management and reports; EMPLOYEE covers day-to-day seat work.
const (
	RoleAdmin    = "ADMIN"
	RoleEmployee = "EMPLOYEE"
)

// User mirrors the 'users' table.
type User struct {
	ID           uint64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
