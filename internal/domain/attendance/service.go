package attendance

import "context"

// AttendanceService exposes attendance metrics. Callers resolve identity and scoping before
// invoking it.
type AttendanceService interface {
	// GetEmployeeSummary aggregates one employee's records over a period
	GetEmployeeSummary(ctx context.Context, req EmployeeSummaryRequest) (Summary, error)

	// GetDepartmentAttendance returns the department roll-up for a month
	GetDepartmentAttendance(ctx context.Context, req PeriodRequest) (DepartmentReport, error)

	// GetCompanyAttendance pools all departments of the company for a month
	GetCompanyAttendance(ctx context.Context, req PeriodRequest) (CompanySummary, error)

	// CountWorkingDays counts Monday-Friday dates in an inclusive range
	CountWorkingDays(ctx context.Context, req WorkingDaysRequest) (WorkingDaysResponse, error)
}
