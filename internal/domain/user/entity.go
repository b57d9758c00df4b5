package user

import "time"

type Role string

const (
	RoleSuperAdmin Role = "superadmin" // Seeded system account
	RoleAdmin      Role = "admin"      // Manages schedules, settings and reports
	RoleHead       Role = "head"       // Unit head, reviews reports
	RoleGIA        Role = "gia"        // Hourly GIA staff, clocks in and out
	RoleStaff      Role = "staff"      // Regular staff, clocks in and out
)

var RoleValues = []string{
	string(RoleSuperAdmin),
	string(RoleAdmin),
	string(RoleHead),
	string(RoleGIA),
	string(RoleStaff),
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type User struct {
	ID         int64
	UserID     string
	FirstName  string
	MiddleName *string
	LastName   string
	Role       Role
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullName renders "Last, First M." the way attendance reports list people.
func (u *User) FullName() string {
	name := u.LastName + ", " + u.FirstName
	if u.MiddleName != nil && *u.MiddleName != "" {
		name += " " + (*u.MiddleName)[:1] + "."
	}
	return name
}

// IsAdmin checks if user can administer schedules and settings
func (u *User) IsAdmin() bool {
	return IsAdminRole(u.Role)
}

// IsActive checks if user may record attendance
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// IsReportable checks if user appears in attendance reports
func (u *User) IsReportable() bool {
	return !u.IsAdmin()
}

func IsAdminRole(role Role) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}
