package user

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/validator"
)

// ManageableRoles are the roles an admin may assign. Superadmins are seeded only.
var ManageableRoles = []string{
	string(RoleAdmin),
	string(RoleHead),
	string(RoleGIA),
	string(RoleStaff),
}

var StatusValues = []string{
	string(StatusActive),
	string(StatusInactive),
}

type UserFilter struct {
	Role   *string `json:"role"`
	Status *string `json:"status"`
}

func (f *UserFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Role != nil && !validator.IsInSlice(*f.Role, RoleValues) {
		errs.Add("role", "role must be one of: "+strings.Join(RoleValues, ", "))
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, StatusValues) {
		errs.Add("status", "status must be one of: "+strings.Join(StatusValues, ", "))
	}

	return errs.Err()
}

type CreateUserRequest struct {
	UserID     string  `json:"user_id"`
	FirstName  string  `json:"first_name"`
	MiddleName *string `json:"middle_name"`
	LastName   string  `json:"last_name"`
	Role       string  `json:"role"`

	ActorID string `json:"-"`
}

// Validate returns the active user the request describes.
func (r *CreateUserRequest) Validate() (User, error) {
	var errs validator.ValidationErrors

	u := User{
		UserID:     strings.TrimSpace(r.UserID),
		FirstName:  strings.TrimSpace(r.FirstName),
		MiddleName: trimmed(r.MiddleName),
		LastName:   strings.TrimSpace(r.LastName),
		Role:       Role(r.Role),
		Status:     StatusActive,
	}

	if u.UserID == "" {
		errs.Add("user_id", "user_id is required")
	} else if len(u.UserID) > 50 {
		errs.Add("user_id", "user_id must be at most 50 characters")
	}
	validateName(&errs, "first_name", u.FirstName)
	validateName(&errs, "last_name", u.LastName)
	if u.MiddleName != nil && len(*u.MiddleName) > 100 {
		errs.Add("middle_name", "middle_name must be at most 100 characters")
	}
	if !validator.IsInSlice(r.Role, ManageableRoles) {
		errs.Add("role", "role must be one of: "+strings.Join(ManageableRoles, ", "))
	}

	return u, errs.Err()
}

// UpdateUserRequest changes only the fields that are set.
type UpdateUserRequest struct {
	UserID     string  `json:"-"`
	FirstName  *string `json:"first_name"`
	MiddleName *string `json:"middle_name"`
	LastName   *string `json:"last_name"`
	Role       *string `json:"role"`
	Status     *string `json:"status"`

	ActorID string `json:"-"`
}

func (r *UpdateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs.Add("user_id", "user_id is required")
	}
	if r.FirstName != nil {
		validateName(&errs, "first_name", strings.TrimSpace(*r.FirstName))
	}
	if r.LastName != nil {
		validateName(&errs, "last_name", strings.TrimSpace(*r.LastName))
	}
	if r.MiddleName != nil && len(strings.TrimSpace(*r.MiddleName)) > 100 {
		errs.Add("middle_name", "middle_name must be at most 100 characters")
	}
	if r.Role != nil && !validator.IsInSlice(*r.Role, ManageableRoles) {
		errs.Add("role", "role must be one of: "+strings.Join(ManageableRoles, ", "))
	}
	if r.Status != nil && !validator.IsInSlice(*r.Status, StatusValues) {
		errs.Add("status", "status must be one of: "+strings.Join(StatusValues, ", "))
	}

	return errs.Err()
}

// Apply returns u with the request's fields set. An empty middle_name clears it.
func (r *UpdateUserRequest) Apply(u User) User {
	if r.FirstName != nil {
		u.FirstName = strings.TrimSpace(*r.FirstName)
	}
	if r.MiddleName != nil {
		u.MiddleName = trimmed(r.MiddleName)
	}
	if r.LastName != nil {
		u.LastName = strings.TrimSpace(*r.LastName)
	}
	if r.Role != nil {
		u.Role = Role(*r.Role)
	}
	if r.Status != nil {
		u.Status = Status(*r.Status)
	}
	return u
}

type DeleteUserRequest struct {
	UserID  string
	ActorID string
}

func validateName(errs *validator.ValidationErrors, field, value string) {
	switch {
	case value == "":
		errs.Add(field, field+" is required")
	case len(value) > 100:
		errs.Add(field, field+" must be at most 100 characters")
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

type UserResponse struct {
	UserID     string  `json:"user_id"`
	FirstName  string  `json:"first_name"`
	MiddleName *string `json:"middle_name,omitempty"`
	LastName   string  `json:"last_name"`
	FullName   string  `json:"full_name"`
	Role       Role    `json:"role"`
	Status     Status  `json:"status"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func NewUserResponse(u User) UserResponse {
	return UserResponse{
		UserID:     u.UserID,
		FirstName:  u.FirstName,
		MiddleName: u.MiddleName,
		LastName:   u.LastName,
		FullName:   u.FullName(),
		Role:       u.Role,
		Status:     u.Status,
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  u.UpdatedAt.Format(time.RFC3339),
	}
}
