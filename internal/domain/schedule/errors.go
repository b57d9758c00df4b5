package schedule

import "errors"

var (
	ErrScheduleNotFound   = errors.New("schedule not found")
	ErrInvalidRequestData = errors.New("invalid request data")
)
