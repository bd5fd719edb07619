package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/calendar"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
)

type rollupRepositoryImpl struct {
	db *database.DB
}

func NewRollupRepository(db *database.DB) attendance.RollupRepository {
	return &rollupRepositoryImpl{db: db}
}

// GetDepartmentTotals implements attendance.RollupRepository.
//
// The rules match the in-process aggregator: first record per employee and date by byte order
// of id, present-equivalent needs a clock_in, excused days only on weekdays, expected days
// counted Monday to Friday inside each employee's employment window. Active departments
// without employees get a zero row.
func (r *rollupRepositoryImpl) GetDepartmentTotals(ctx context.Context, companyID string, year, month int) ([]attendance.DepartmentTotals, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH windows AS (
			SELECT
				d.id AS department_id,
				d.name AS department_name,
				e.id AS employee_id,
				GREATEST($2::date, e.hire_date) AS window_start,
				LEAST($3::date, COALESCE(e.resignation_date, $3::date)) AS window_end
			FROM departments d
			LEFT JOIN employees e
				ON e.department_id = d.id
				AND e.company_id = d.company_id
				AND e.deleted_at IS NULL
				AND e.hire_date <= $3::date
				AND (e.resignation_date IS NULL OR e.resignation_date >= $2::date)
			WHERE d.company_id = $1 AND d.is_active
		),
		records AS (
			SELECT DISTINCT ON (a.employee_id, a.date)
				a.employee_id, a.date, a.status, a.clock_in
			FROM attendances a
			JOIN windows w ON w.employee_id = a.employee_id
			WHERE a.date BETWEEN w.window_start AND w.window_end
			ORDER BY a.employee_id, a.date, a.id COLLATE "C"
		),
		per_employee AS (
			SELECT
				w.department_id,
				w.department_name,
				w.employee_id,
				CASE WHEN w.employee_id IS NULL THEN 0 ELSE (
					SELECT COUNT(*)
					FROM generate_series(w.window_start, w.window_end, INTERVAL '1 day') AS g(day)
					WHERE EXTRACT(ISODOW FROM g.day) < 6
				) END AS expected_days,
				(
					SELECT COUNT(*) FROM records r
					WHERE r.employee_id = w.employee_id
						AND r.status IN ('present', 'late', 'half_day')
						AND r.clock_in IS NOT NULL
				) AS present_equivalent,
				(
					SELECT COUNT(*) FROM records r
					WHERE r.employee_id = w.employee_id
						AND r.status IN ('holiday', 'weekoff')
						AND EXTRACT(ISODOW FROM r.date) < 6
				) AS excused_days
			FROM windows w
		)
		SELECT
			department_id,
			department_name,
			COUNT(employee_id)::int AS total_employees,
			COALESCE(SUM(present_equivalent), 0)::int AS present_equivalent,
			COALESCE(SUM(expected_days), 0)::int AS expected_working_days,
			COALESCE(SUM(excused_days), 0)::int AS excused_days
		FROM per_employee
		GROUP BY department_id, department_name
		ORDER BY department_name, department_id
	`

	start, end := calendar.MonthRange(year, month)
	rows, err := q.Query(ctx, query, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get department attendance totals: %w", err)
	}
	defer rows.Close()

	totals := make([]attendance.DepartmentTotals, 0)
	for rows.Next() {
		var t attendance.DepartmentTotals
		if err := rows.Scan(
			&t.DepartmentID, &t.DepartmentName,
			&t.Employees, &t.PresentEquivalent, &t.ExpectedWorkingDays, &t.ExcusedDays,
		); err != nil {
			return nil, fmt.Errorf("failed to scan department attendance totals: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate department attendance totals: %w", err)
	}

	return totals, nil
}
