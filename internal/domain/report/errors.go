package report

import "errors"

var (
	ErrInvalidMonth           = errors.New("month must be a number between 1 and 12")
	ErrInvalidYear            = errors.New("year must be a four digit number")
	ErrReportGenerationFailed = errors.New("failed to generate report")
)
