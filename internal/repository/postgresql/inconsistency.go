package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/validator"
)

type inconsistencyRepository struct {
	db  *database.DB
	loc *time.Location
}

func NewInconsistencyRepository(db *database.DB, loc *time.Location) attendance.InconsistencyRepository {
	return &inconsistencyRepository{db: db, loc: loc}
}

// CreateIfAbsent implements attendance.InconsistencyRepository.
func (r *inconsistencyRepository) CreateIfAbsent(ctx context.Context, inc attendance.Inconsistency) (bool, error) {
	q := GetQuerier(ctx, r.db)

	if inc.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return false, fmt.Errorf("generate inconsistency id: %w", err)
		}
		inc.ID = id.String()
	}

	var attendanceID *string
	if inc.AttendanceID != "" {
		attendanceID = &inc.AttendanceID
	}

	tag, err := q.Exec(ctx, `
		INSERT INTO attendance_inconsistencies (id, user_id, attendance_id, date, issue_type, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, date, issue_type) DO NOTHING
	`, inc.ID, inc.UserID, attendanceID, dateParam(inc.Date), string(inc.IssueType), inc.Details)
	if err != nil {
		return false, fmt.Errorf("failed to record %s inconsistency: %w", inc.IssueType, err)
	}
	return tag.RowsAffected() == 1, nil
}

// List implements attendance.InconsistencyRepository.
func (r *inconsistencyRepository) List(ctx context.Context, filter attendance.InconsistencyFilter) ([]attendance.Inconsistency, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "WHERE 1=1"
	args := []any{}
	argIdx := 1

	if filter.UserID != nil {
		baseWhere += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}
	if filter.StartDate != nil {
		if d, ok := validator.IsValidDate(*filter.StartDate); ok {
			baseWhere += fmt.Sprintf(" AND date >= $%d", argIdx)
			args = append(args, dateParam(d))
			argIdx++
		}
	}
	if filter.EndDate != nil {
		if d, ok := validator.IsValidDate(*filter.EndDate); ok {
			baseWhere += fmt.Sprintf(" AND date <= $%d", argIdx)
			args = append(args, dateParam(d))
			argIdx++
		}
	}
	if filter.IssueType != nil {
		baseWhere += fmt.Sprintf(" AND issue_type = $%d", argIdx)
		args = append(args, *filter.IssueType)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, COALESCE(attendance_id::text, ''), date, issue_type, details, created_at
		FROM attendance_inconsistencies
		%s
		ORDER BY date DESC, created_at DESC
	`, baseWhere)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inconsistencies: %w", err)
	}
	defer rows.Close()

	var result []attendance.Inconsistency
	for rows.Next() {
		var (
			inc  attendance.Inconsistency
			date pgtype.Date
		)
		if err := rows.Scan(&inc.ID, &inc.UserID, &inc.AttendanceID, &date, &inc.IssueType, &inc.Details, &inc.CreatedAt); err != nil {
			return nil, err
		}
		inc.Date = dateIn(date, r.loc)
		result = append(result, inc)
	}
	return result, rows.Err()
}
