package domain

import "time"

// UserRole enumerates the platform roles used by the dashboards.
type UserRole string

const (
	UserRoleDonor     UserRole = "donor"
	UserRoleVolunteer UserRole = "volunteer"
	UserRoleAdmin     UserRole = "admin"
)

// User represents an authenticated account within the platform.
type User struct {
	ID        string
	GoogleSub string
	Email     string
	Name      string
	Picture   string
	Locale    string
	Role      UserRole
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanModerate reports whether the user may manage donation requests.
func (u User) CanModerate() bool {
	return u.Role == UserRoleVolunteer || u.Role == UserRoleAdmin
}
