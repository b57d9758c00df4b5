package attendance

import (
	"errors"
	"fmt"
)

type RejectReason string

const (
	ReasonNoSchedule          RejectReason = "NoSchedule"
	ReasonOutsideWindow       RejectReason = "OutsideWindow"
	ReasonDailyLimitExceeded  RejectReason = "DailyLimitExceeded"
	ReasonNoOpenShift         RejectReason = "NoOpenShift"
	ReasonGracePeriodExceeded RejectReason = "GracePeriodExceeded"
)

// RejectionError is an expected refusal of a clock action. Two rejections
// match under errors.Is when their reasons are equal.
type RejectionError struct {
	Reason  RejectReason
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

func (e *RejectionError) Is(target error) bool {
	var t *RejectionError
	if !errors.As(target, &t) {
		return false
	}
	return t.Reason == e.Reason
}

// Rejectf returns a copy of base with a more specific message.
func Rejectf(base *RejectionError, format string, args ...any) error {
	return &RejectionError{Reason: base.Reason, Message: fmt.Sprintf(format, args...)}
}

// Attendance domain errors
var (
	// Clock action rejections.
	// ErrNoSchedule is part of the rejection vocabulary but the validators
	// treat a day without windows as unconstrained, so it is not returned today.
	ErrNoSchedule          = &RejectionError{Reason: ReasonNoSchedule, Message: "no schedule found for today"}
	ErrOutsideWindow       = &RejectionError{Reason: ReasonOutsideWindow, Message: "clock-in is outside your scheduled shift"}
	ErrDailyLimitExceeded  = &RejectionError{Reason: ReasonDailyLimitExceeded, Message: "you have already clocked in twice today"}
	ErrNoOpenShift         = &RejectionError{Reason: ReasonNoOpenShift, Message: "you have no open shift today"}
	ErrGracePeriodExceeded = &RejectionError{Reason: ReasonGracePeriodExceeded, Message: "clock-out grace period has passed, contact an administrator"}

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidDateRange   = errors.New("start date must not be after end date")
	ErrInvalidRequestData = errors.New("invalid request data")
)
