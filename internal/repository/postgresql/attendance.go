package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// ListByEmployee implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Day, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, employee_id, date, clock_in, clock_out, total_hours, status
		FROM attendances
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date, id COLLATE "C"
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	return scanDays(rows)
}

// ListByEmployees implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployees(ctx context.Context, employeeIDs []string, from, to time.Time) ([]attendance.Day, error) {
	if len(employeeIDs) == 0 {
		return []attendance.Day{}, nil
	}

	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, employee_id, date, clock_in, clock_out, total_hours, status
		FROM attendances
		WHERE employee_id = ANY($1) AND date BETWEEN $2 AND $3
		ORDER BY employee_id COLLATE "C", date, id COLLATE "C"
	`

	rows, err := q.Query(ctx, query, employeeIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	return scanDays(rows)
}

func scanDays(rows pgx.Rows) ([]attendance.Day, error) {
	defer rows.Close()

	days := make([]attendance.Day, 0)
	for rows.Next() {
		var day attendance.Day
		if err := rows.Scan(
			&day.ID, &day.EmployeeID, &day.Date,
			&day.CheckIn, &day.CheckOut, &day.TotalHours, &day.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendances: %w", err)
	}

	return days, nil
}
