package attendance

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/calendar"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	employee.EmployeeRepository
	employee.DepartmentRepository
	rollup *Rollup
	logger *slog.Logger
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	departmentRepo employee.DepartmentRepository,
	rollup *Rollup,
	logger *slog.Logger,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		DepartmentRepository: departmentRepo,
		rollup:               rollup,
		logger:               logger,
	}
}

// GetEmployeeSummary implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetEmployeeSummary(ctx context.Context, req attendance.EmployeeSummaryRequest) (attendance.Summary, error) {
	if err := req.Validate(); err != nil {
		return attendance.Summary{}, err
	}
	start, _ := calendar.ParseDate(req.StartDate)
	end, _ := calendar.ParseDate(req.EndDate)

	emp, err := a.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.Summary{}, err
		}
		return attendance.Summary{}, &attendance.UpstreamError{Op: "get employee", Err: err}
	}
	if err := req.Scope.Check(emp); err != nil {
		return attendance.Summary{}, err
	}

	days, err := a.AttendanceRepository.ListByEmployee(ctx, emp.ID, start, end)
	if err != nil {
		return attendance.Summary{}, &attendance.UpstreamError{Op: "list attendances", Err: err}
	}

	summary := AggregateEmployee(emp, days, start, end)
	a.logWarnings(ctx, summary.Warnings)
	return summary, nil
}

// GetDepartmentAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetDepartmentAttendance(ctx context.Context, req attendance.PeriodRequest) (attendance.DepartmentReport, error) {
	if err := req.Validate(); err != nil {
		return attendance.DepartmentReport{}, err
	}

	if req.DepartmentID != "" {
		dept, err := a.DepartmentRepository.GetByID(ctx, req.DepartmentID)
		if err != nil {
			if errors.Is(err, employee.ErrDepartmentNotFound) {
				return attendance.DepartmentReport{}, err
			}
			return attendance.DepartmentReport{}, &attendance.UpstreamError{Op: "get department", Err: err}
		}
		if dept.CompanyID != req.CompanyID {
			return attendance.DepartmentReport{}, employee.ErrDepartmentNotFound
		}
	}

	report, err := a.rollup.DepartmentAttendance(ctx, req.CompanyID, req.Year, req.Month)
	if err != nil {
		return attendance.DepartmentReport{}, err
	}
	a.logWarnings(ctx, report.Warnings)

	if req.DepartmentID == "" {
		return report, nil
	}

	// Scoped to a single department
	for _, d := range report.Departments {
		if d.DepartmentID == req.DepartmentID {
			report.Departments = []attendance.DepartmentSummary{d}
			report.Warnings = nil
			return report, nil
		}
	}
	return attendance.DepartmentReport{}, employee.ErrDepartmentNotFound
}

// GetCompanyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetCompanyAttendance(ctx context.Context, req attendance.PeriodRequest) (attendance.CompanySummary, error) {
	if err := req.Validate(); err != nil {
		return attendance.CompanySummary{}, err
	}
	return a.rollup.CompanyAttendance(ctx, req.CompanyID, req.Year, req.Month)
}

// CountWorkingDays implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CountWorkingDays(ctx context.Context, req attendance.WorkingDaysRequest) (attendance.WorkingDaysResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.WorkingDaysResponse{}, err
	}
	start, _ := calendar.ParseDate(req.StartDate)
	end, _ := calendar.ParseDate(req.EndDate)

	return attendance.WorkingDaysResponse{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		WorkingDays: calendar.WorkingDays(start, end),
	}, nil
}

func (a *AttendanceServiceImpl) logWarnings(ctx context.Context, warnings []attendance.IntegrityWarning) {
	for _, w := range warnings {
		a.logger.WarnContext(ctx, "attendance data integrity",
			slog.String("employee_id", w.EmployeeID),
			slog.String("date", w.Date.Format(calendar.DateLayout)),
			slog.String("status", string(w.Status)),
			slog.String("reason", w.Reason),
		)
	}
}
