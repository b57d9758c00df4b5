package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var rejection *attendance.RejectionError
	if errors.As(err, &rejection) {
		Rejected(w, string(rejection.Reason), rejection.Message)
		return
	}

	switch {
	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserInactive):
		Forbidden(w, "User account is inactive")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrUserAlreadyExists):
		Conflict(w, err.Error())
	case errors.Is(err, user.ErrSuperAdminProtected), errors.Is(err, user.ErrCannotDeleteSelf):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrInvalidRequestData):
		BadRequest(w, err.Error(), nil)

	// Token errors
	case errors.Is(err, jwt.ErrMissingClaims), errors.Is(err, jwt.ErrWrongType):
		Unauthorized(w, err.Error())

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrInvalidRequestData):
		BadRequest(w, err.Error(), nil)

	// Schedule domain errors
	case errors.Is(err, schedule.ErrScheduleNotFound):
		NotFound(w, "Schedule not found")
	case errors.Is(err, schedule.ErrInvalidRequestData):
		BadRequest(w, err.Error(), nil)

	// Settings domain errors
	case errors.Is(err, settings.ErrSettingsNotFound):
		NotFound(w, "Settings not found")

	// Report domain errors
	case errors.Is(err, report.ErrInvalidMonth), errors.Is(err, report.ErrInvalidYear):
		BadRequest(w, err.Error(), nil)

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
