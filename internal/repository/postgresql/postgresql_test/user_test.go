package postgresql_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/repository/postgresql"
)

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewUserRepository(db)
	ctx := context.Background()

	insertUser(t, db, "g1", "gia", "active")
	insertUser(t, db, "s1", "staff", "inactive")
	insertUser(t, db, "a1", "admin", "active")

	t.Run("get by user id", func(t *testing.T) {
		u, err := repo.GetByUserID(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, user.RoleGIA, u.Role)
		assert.True(t, u.IsActive())
		assert.Nil(t, u.MiddleName)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := repo.GetByUserID(ctx, "nobody")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("reportable excludes admins", func(t *testing.T) {
		users, err := repo.ListReportable(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		for _, u := range users {
			assert.False(t, u.IsAdmin())
		}

		count, err := repo.CountReportable(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)
	})
}

func TestUserRepository_Writes(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewUserRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db, manila)
	ctx := context.Background()

	insertUser(t, db, "root", "superadmin", "active")

	middle := "Santos"
	created, err := repo.Create(ctx, user.User{
		UserID: "g1", FirstName: "Ana", MiddleName: &middle, LastName: "Cruz", Role: user.RoleGIA, Status: user.StatusActive,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, "Cruz, Ana S.", created.FullName())

	_, err = repo.Create(ctx, user.User{UserID: "g1", FirstName: "B", LastName: "C", Role: user.RoleStaff, Status: user.StatusActive})
	assert.ErrorIs(t, err, user.ErrUserAlreadyExists)

	_, err = repo.Create(ctx, user.User{UserID: "s1", FirstName: "Ben", LastName: "Abad", Role: user.RoleStaff, Status: user.StatusActive})
	require.NoError(t, err)

	t.Run("list excludes superadmin and filters", func(t *testing.T) {
		all, err := repo.List(ctx, user.UserFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "s1", all[0].UserID)

		role := "gia"
		gia, err := repo.List(ctx, user.UserFilter{Role: &role})
		require.NoError(t, err)
		require.Len(t, gia, 1)
		assert.Equal(t, "g1", gia[0].UserID)
	})

	t.Run("update", func(t *testing.T) {
		created.Status = user.StatusInactive
		created.MiddleName = nil
		updated, err := repo.Update(ctx, created)
		require.NoError(t, err)
		assert.False(t, updated.IsActive())
		assert.Nil(t, updated.MiddleName)
		assert.Equal(t, created.ID, updated.ID)

		_, err = repo.Update(ctx, user.User{UserID: "nobody", FirstName: "A", LastName: "B", Role: user.RoleGIA, Status: user.StatusActive})
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("delete cascades to attendance", func(t *testing.T) {
		_, err := attendanceRepo.Create(ctx, attendance.Attendance{UserID: "s1", Date: date(4), ClockIn: at(4, 8, 0)})
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, "s1"))
		assert.ErrorIs(t, repo.Delete(ctx, "s1"), user.ErrUserNotFound)

		rows, err := attendanceRepo.ListByDate(ctx, date(4))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}
