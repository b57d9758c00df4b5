package user

import "context"

// UserService manages the people who clock in. Admin only.
type UserService interface {
	ListUsers(ctx context.Context, filter UserFilter) ([]UserResponse, error)
	GetUser(ctx context.Context, userID string) (UserResponse, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (UserResponse, error)

	// UpdateUser changes names, role or status. Setting status to inactive
	// blocks further clock actions.
	UpdateUser(ctx context.Context, req UpdateUserRequest) (UserResponse, error)

	DeleteUser(ctx context.Context, req DeleteUserRequest) error
}
