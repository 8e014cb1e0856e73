package roles

import (
	"time"

	"github.com/hrs-suite/hrs/internal/authz"
)

// Role is a named bundle of permissions assignable to users.
type Role struct {
	ID              int64
	Name            string
	Description     string
	Permissions     []string
	CreatedByUserID *int64
	CreatedBy       *Creator
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Creator is the user a role records as its author.
type Creator struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
}

// SuperAdministrator is the well-known seeded role holding the root
// permission. Seeders and tests rely on its fixed id.
var SuperAdministrator = Role{
	ID:          1,
	Name:        "Super Administrator",
	Permissions: []string{authz.DoEverything},
}

// ListFilters narrows and orders role listings.
type ListFilters struct {
	Search      string
	Name        string
	Description string
	Start       int
	Length      int
	OrderBy     string
	OrderDir    string
}
