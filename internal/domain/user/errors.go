package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserInactive            = errors.New("user is inactive")
	ErrUserAlreadyExists       = errors.New("user ID already exists")
	ErrSuperAdminProtected     = errors.New("superadmin accounts cannot be changed here")
	ErrCannotDeleteSelf        = errors.New("you cannot delete your own account")
	ErrAdminPrivilegeRequired  = errors.New("admin privilege required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrInvalidRequestData      = errors.New("invalid request data")
)
