package attendance

import (
	"context"
	"time"
)

// AttendanceRepository reads raw attendance records.
type AttendanceRepository interface {
	// ListByEmployee returns the employee's records with date in [from, to], ordered by date, id
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]Day, error)

	// ListByEmployees returns records of all given employees with date in [from, to],
	// ordered by employee, date, id
	ListByEmployees(ctx context.Context, employeeIDs []string, from, to time.Time) ([]Day, error)
}

// RollupRepository is the fast path for department roll-ups: pooled counters computed by the
// record store in a single query over the current rows.
type RollupRepository interface {
	// GetDepartmentTotals returns pooled counters per active department for the month,
	// including departments without employees
	GetDepartmentTotals(ctx context.Context, companyID string, year, month int) ([]DepartmentTotals, error)
}
