package users

import "time"

// User represents a user account for management. Permissions is the explicit
// per-user override list; when non-empty it fully replaces the role's set
// for authorization.
type User struct {
	ID           int64
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	RoleID       int64
	Permissions  []string
	Role         *RoleRef
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleRef is the subset of the role record a user carries around.
type RoleRef struct {
	ID          int64
	Name        string
	Permissions []string
}

// ListFilters narrows and orders user listings.
type ListFilters struct {
	Search   string
	Username string
	Email    string
	Start    int
	Length   int
	OrderBy  string
	OrderDir string
}
