package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/user"
)

type userRepository struct{ s *Store }

func (r userRepository) GetByUserID(_ context.Context, userID string) (user.User, error) {
	var (
		u  user.User
		ok bool
	)
	r.s.read(func(t *tables) { u, ok = t.users[userID] })
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r userRepository) ListReportable(_ context.Context) ([]user.User, error) {
	var users []user.User
	r.s.read(func(t *tables) {
		for _, u := range t.users {
			if u.IsReportable() {
				users = append(users, u)
			}
		}
	})
	slices.SortFunc(users, func(a, b user.User) int {
		return cmp.Or(cmp.Compare(a.LastName, b.LastName), cmp.Compare(a.FirstName, b.FirstName))
	})
	return users, nil
}

func (r userRepository) CountReportable(ctx context.Context) (int64, error) {
	users, err := r.ListReportable(ctx)
	return int64(len(users)), err
}

func (r userRepository) List(_ context.Context, filter user.UserFilter) ([]user.User, error) {
	var users []user.User
	r.s.read(func(t *tables) {
		for _, u := range t.users {
			if u.Role == user.RoleSuperAdmin {
				continue
			}
			if filter.Role != nil && string(u.Role) != *filter.Role {
				continue
			}
			if filter.Status != nil && string(u.Status) != *filter.Status {
				continue
			}
			users = append(users, u)
		}
	})
	slices.SortFunc(users, func(a, b user.User) int {
		return cmp.Or(cmp.Compare(a.LastName, b.LastName), cmp.Compare(a.FirstName, b.FirstName))
	})
	return users, nil
}

func (r userRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.s.write(ctx, func(t *tables) error {
		if _, ok := t.users[u.UserID]; ok {
			return user.ErrUserAlreadyExists
		}
		now := r.s.now()
		u.ID = r.s.nextUserID(t)
		u.CreatedAt, u.UpdatedAt = now, now
		t.users[u.UserID] = u
		return nil
	})
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (r userRepository) Update(ctx context.Context, u user.User) (user.User, error) {
	err := r.s.write(ctx, func(t *tables) error {
		existing, ok := t.users[u.UserID]
		if !ok {
			return user.ErrUserNotFound
		}
		u.ID = existing.ID
		u.CreatedAt = existing.CreatedAt
		u.UpdatedAt = r.s.now()
		t.users[u.UserID] = u
		return nil
	})
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

// Delete removes the user with their schedules, attendance and flags.
func (r userRepository) Delete(ctx context.Context, userID string) error {
	return r.s.write(ctx, func(t *tables) error {
		if _, ok := t.users[userID]; !ok {
			return user.ErrUserNotFound
		}
		delete(t.users, userID)
		for k := range t.schedules {
			if k.userID == userID {
				delete(t.schedules, k)
			}
		}
		t.attendance = slices.DeleteFunc(t.attendance, func(a attendance.Attendance) bool {
			return a.UserID == userID
		})
		t.inconsistencies = slices.DeleteFunc(t.inconsistencies, func(i attendance.Inconsistency) bool {
			return i.UserID == userID
		})
		return nil
	})
}
