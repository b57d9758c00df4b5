package user

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/validator"
)

func strPtr(s string) *string { return &s }

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected validation errors, got %v", err)
	return verrs.ToMap()
}

func TestCreateUserRequest_Validate(t *testing.T) {
	t.Run("valid request trims and activates", func(t *testing.T) {
		req := CreateUserRequest{UserID: " 2021-0001 ", FirstName: "Ana", LastName: "Cruz", MiddleName: strPtr("  "), Role: "gia"}

		u, err := req.Validate()
		require.NoError(t, err)
		assert.Equal(t, "2021-0001", u.UserID)
		assert.Equal(t, StatusActive, u.Status)
		assert.Nil(t, u.MiddleName)
	})

	t.Run("missing fields", func(t *testing.T) {
		req := CreateUserRequest{Role: "gia"}

		_, err := req.Validate()
		got := fields(t, err)
		assert.Contains(t, got, "user_id")
		assert.Contains(t, got, "first_name")
		assert.Contains(t, got, "last_name")
	})

	t.Run("superadmin cannot be assigned", func(t *testing.T) {
		req := CreateUserRequest{UserID: "x", FirstName: "A", LastName: "B", Role: "superadmin"}

		_, err := req.Validate()
		assert.Contains(t, fields(t, err), "role")
	})
}

func TestUpdateUserRequest(t *testing.T) {
	t.Run("invalid status", func(t *testing.T) {
		req := UpdateUserRequest{UserID: "g1", Status: strPtr("suspended")}
		assert.Contains(t, fields(t, req.Validate()), "status")
	})

	t.Run("apply changes only set fields", func(t *testing.T) {
		middle := "Santos"
		u := User{UserID: "g1", FirstName: "Ana", LastName: "Cruz", MiddleName: &middle, Role: RoleGIA, Status: StatusActive}
		req := UpdateUserRequest{UserID: "g1", LastName: strPtr(" Reyes "), MiddleName: strPtr(""), Status: strPtr("inactive")}
		require.NoError(t, req.Validate())

		got := req.Apply(u)
		assert.Equal(t, "Ana", got.FirstName)
		assert.Equal(t, "Reyes", got.LastName)
		assert.Nil(t, got.MiddleName)
		assert.Equal(t, RoleGIA, got.Role)
		assert.False(t, got.IsActive())
	})
}

func TestUserFilter_Validate(t *testing.T) {
	assert.NoError(t, (&UserFilter{Role: strPtr("head")}).Validate())
	assert.Contains(t, fields(t, (&UserFilter{Role: strPtr("janitor")}).Validate()), "role")
}
