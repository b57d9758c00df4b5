package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/auditlog"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/user"
)

type UserServiceImpl struct {
	userRepo     user.UserRepository
	auditService auditlog.AuditLogService
}

func NewUserService(userRepo user.UserRepository, auditService auditlog.AuditLogService) user.UserService {
	return &UserServiceImpl{
		userRepo:     userRepo,
		auditService: auditService,
	}
}

// ListUsers implements user.UserService.
func (s *UserServiceImpl) ListUsers(ctx context.Context, filter user.UserFilter) ([]user.UserResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	users, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	result := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		result = append(result, user.NewUserResponse(u))
	}
	return result, nil
}

// GetUser implements user.UserService.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID string) (user.UserResponse, error) {
	u, err := s.userRepo.GetByUserID(ctx, userID)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.NewUserResponse(u), nil
}

// CreateUser implements user.UserService.
func (s *UserServiceImpl) CreateUser(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	newUser, err := req.Validate()
	if err != nil {
		return user.UserResponse{}, err
	}

	created, err := s.userRepo.Create(ctx, newUser)
	if err != nil {
		return user.UserResponse{}, err
	}

	slog.Info("user created", "user_id", created.UserID, "role", created.Role, "actor", req.ActorID)
	s.auditService.Record(ctx, actor(req.ActorID), auditlog.ActionUserCreated,
		fmt.Sprintf("Created %s %s (%s)", created.Role, created.UserID, created.FullName()))

	return user.NewUserResponse(created), nil
}

// UpdateUser implements user.UserService.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, req user.UpdateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	existing, err := s.userRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		return user.UserResponse{}, err
	}
	if existing.Role == user.RoleSuperAdmin {
		return user.UserResponse{}, user.ErrSuperAdminProtected
	}

	updated, err := s.userRepo.Update(ctx, req.Apply(existing))
	if err != nil {
		return user.UserResponse{}, err
	}

	s.auditService.Record(ctx, actor(req.ActorID), auditlog.ActionUserUpdated,
		fmt.Sprintf("Updated %s: %s", updated.UserID, changes(existing, updated)))

	return user.NewUserResponse(updated), nil
}

// DeleteUser implements user.UserService.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, req user.DeleteUserRequest) error {
	if req.UserID == req.ActorID {
		return user.ErrCannotDeleteSelf
	}

	existing, err := s.userRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		return err
	}
	if existing.Role == user.RoleSuperAdmin {
		return user.ErrSuperAdminProtected
	}

	if err := s.userRepo.Delete(ctx, req.UserID); err != nil {
		return err
	}

	slog.Info("user deleted", "user_id", req.UserID, "actor", req.ActorID)
	s.auditService.Record(ctx, actor(req.ActorID), auditlog.ActionUserDeleted,
		fmt.Sprintf("Deleted %s (%s) with their schedules and attendance", existing.UserID, existing.FullName()))
	return nil
}

func actor(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func changes(before, after user.User) string {
	var parts []string
	if before.FullName() != after.FullName() {
		parts = append(parts, fmt.Sprintf("name %q -> %q", before.FullName(), after.FullName()))
	}
	if before.Role != after.Role {
		parts = append(parts, fmt.Sprintf("role %s -> %s", before.Role, after.Role))
	}
	if before.Status != after.Status {
		parts = append(parts, fmt.Sprintf("status %s -> %s", before.Status, after.Status))
	}
	if len(parts) == 0 {
		return "no changes"
	}
	return strings.Join(parts, ", ")
}
