package user

import (
	"context"
)

type UserRepository interface {
	GetByUserID(ctx context.Context, userID string) (User, error)
	// ListReportable returns active and inactive non-admin users ordered by last name.
	ListReportable(ctx context.Context) ([]User, error)
	CountReportable(ctx context.Context) (int64, error)

	// List returns every user except superadmins, filtered and ordered by last name.
	List(ctx context.Context, filter UserFilter) ([]User, error)
	// Create returns ErrUserAlreadyExists when user_id is taken.
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) (User, error)
	// Delete removes the user together with their schedules, attendance and flags.
	Delete(ctx context.Context, userID string) error
}
