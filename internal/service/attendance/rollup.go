package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/calendar"
	"golang.org/x/sync/errgroup"
)

const defaultFallbackConcurrency = 4

// Rollup builds department and company roll-ups. It reads totals aggregated by the record
// store first and recomputes from raw records when they fail, are empty, or do not cover every
// active department. Both paths apply the same classification and pooling rules.
type Rollup struct {
	departments employee.DepartmentRepository
	employees   employee.EmployeeRepository
	attendances attendance.AttendanceRepository
	aggregates  attendance.RollupRepository
	concurrency int
	logger      *slog.Logger
}

func NewRollup(
	departmentRepo employee.DepartmentRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	rollupRepo attendance.RollupRepository,
	concurrency int,
	logger *slog.Logger,
) *Rollup {
	if concurrency <= 0 {
		concurrency = defaultFallbackConcurrency
	}
	return &Rollup{
		departments: departmentRepo,
		employees:   employeeRepo,
		attendances: attendanceRepo,
		aggregates:  rollupRepo,
		concurrency: concurrency,
		logger:      logger,
	}
}

// DepartmentAttendance returns one summary per active department of the company for the month,
// ordered by department name then id. Departments without employees are included with zeros.
func (r *Rollup) DepartmentAttendance(ctx context.Context, companyID string, year, month int) (attendance.DepartmentReport, error) {
	report := attendance.DepartmentReport{Year: year, Month: month}

	departments, err := r.departments.ListActive(ctx, companyID)
	if err != nil {
		return report, &attendance.UpstreamError{Op: "list active departments", Err: err}
	}
	if len(departments) == 0 {
		report.Source = attendance.SourceAggregate
		report.Departments = []attendance.DepartmentSummary{}
		return report, nil
	}

	totals, err := r.aggregates.GetDepartmentTotals(ctx, companyID, year, month)
	switch {
	case err != nil:
		r.logger.WarnContext(ctx, "aggregated attendance failed, recomputing",
			slog.String("company_id", companyID),
			slog.Int("year", year),
			slog.Int("month", month),
			slog.String("error", err.Error()),
		)
	case len(totals) == 0:
		err = attendance.ErrNoAggregatedData
		r.logger.WarnContext(ctx, "aggregated attendance empty, recomputing",
			slog.String("company_id", companyID),
			slog.Int("year", year),
			slog.Int("month", month),
		)
	case !covers(totals, departments):
		err = errIncompleteAggregate
		r.logger.WarnContext(ctx, "aggregated attendance misses departments, recomputing",
			slog.String("company_id", companyID),
			slog.Int("year", year),
			slog.Int("month", month),
			slog.Int("aggregated", len(totals)),
			slog.Int("active", len(departments)),
		)
	}

	report.Source = attendance.SourceAggregate
	if err != nil {
		var warnings []attendance.IntegrityWarning
		totals, warnings, err = r.recompute(ctx, companyID, departments, year, month)
		if err != nil {
			r.logger.ErrorContext(ctx, "attendance recomputation failed",
				slog.String("company_id", companyID),
				slog.Int("year", year),
				slog.Int("month", month),
				slog.String("error", err.Error()),
			)
			return attendance.DepartmentReport{Year: year, Month: month}, err
		}
		report.Source = attendance.SourceRecomputed
		report.Warnings = warnings
	} else {
		totals = onlyActive(totals, departments)
	}

	report.Departments = summarize(totals)
	return report, nil
}

// CompanyAttendance pools every department of the month into one company summary.
func (r *Rollup) CompanyAttendance(ctx context.Context, companyID string, year, month int) (attendance.CompanySummary, error) {
	report, err := r.DepartmentAttendance(ctx, companyID, year, month)
	if err != nil {
		return attendance.CompanySummary{}, err
	}

	var totals attendance.Totals
	for _, d := range report.Departments {
		totals = totals.Add(attendance.Totals{
			Employees:           d.TotalEmployees,
			PresentEquivalent:   d.PresentCount,
			ExpectedWorkingDays: d.ExpectedWorkingDays,
			ExcusedDays:         d.ExcusedDays,
		})
	}

	return attendance.CompanySummary{
		CompanyID:            companyID,
		Year:                 year,
		Month:                month,
		Source:               report.Source,
		TotalDepartments:     len(report.Departments),
		TotalEmployees:       totals.Employees,
		PresentCount:         totals.PresentEquivalent,
		ExpectedWorkingDays:  totals.ExpectedWorkingDays,
		ExcusedDays:          totals.ExcusedDays,
		AttendancePercentage: Percentage(totals),
	}, nil
}

// Reconcile runs both paths for the month and reports the departments whose aggregated
// summary differs from the recomputed one, together with the integrity warnings found while
// recomputing. Failures of either path are returned, not reconciled.
func (r *Rollup) Reconcile(ctx context.Context, companyID string, year, month int) (attendance.Reconciliation, error) {
	result := attendance.Reconciliation{
		CompanyID: companyID,
		Year:      year,
		Month:     month,
		Drifted:   []attendance.DepartmentDrift{},
		Warnings:  []attendance.IntegrityWarning{},
	}

	departments, err := r.departments.ListActive(ctx, companyID)
	if err != nil {
		return result, &attendance.UpstreamError{Op: "list active departments", Err: err}
	}
	result.Departments = len(departments)
	if len(departments) == 0 {
		return result, nil
	}

	aggregated, err := r.aggregates.GetDepartmentTotals(ctx, companyID, year, month)
	if err != nil {
		return result, &attendance.UpstreamError{Op: "aggregate department attendance", Err: err}
	}
	recomputed, warnings, err := r.recompute(ctx, companyID, departments, year, month)
	if err != nil {
		return result, err
	}
	result.Warnings = append(result.Warnings, warnings...)

	byDepartment := make(map[string]attendance.DepartmentSummary, len(aggregated))
	for _, s := range summarize(onlyActive(aggregated, departments)) {
		byDepartment[s.DepartmentID] = s
	}
	for _, want := range summarize(recomputed) {
		got, ok := byDepartment[want.DepartmentID]
		switch {
		case !ok:
			result.Drifted = append(result.Drifted, attendance.DepartmentDrift{DepartmentID: want.DepartmentID, Recomputed: want})
		case got != want:
			result.Drifted = append(result.Drifted, attendance.DepartmentDrift{DepartmentID: want.DepartmentID, Aggregate: &got, Recomputed: want})
		}
	}

	return result, nil
}

var errIncompleteAggregate = errors.New("aggregated attendance does not cover every active department")

// recompute rebuilds department totals from raw records, one department per goroutine. The
// first failure cancels the remaining departments and is returned; no partial report is built.
func (r *Rollup) recompute(ctx context.Context, companyID string, departments []employee.Department, year, month int) ([]attendance.DepartmentTotals, []attendance.IntegrityWarning, error) {
	start, end := calendar.MonthRange(year, month)

	totals := make([]attendance.DepartmentTotals, len(departments))
	warnings := make([][]attendance.IntegrityWarning, len(departments))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, dept := range departments {
		i, dept := i, dept
		g.Go(func() error {
			summaries, err := r.recomputeDepartment(gCtx, companyID, dept, start, end)
			if err != nil {
				return &attendance.UpstreamError{Op: fmt.Sprintf("recompute department %s", dept.ID), Err: err}
			}

			totals[i] = attendance.DepartmentTotals{
				DepartmentID:   dept.ID,
				DepartmentName: dept.Name,
				Totals:         Pool(summaries),
			}
			for _, s := range summaries {
				warnings[i] = append(warnings[i], s.Warnings...)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var flat []attendance.IntegrityWarning
	for _, w := range warnings {
		flat = append(flat, w...)
	}
	return totals, flat, nil
}

func (r *Rollup) recomputeDepartment(ctx context.Context, companyID string, dept employee.Department, start, end time.Time) ([]attendance.Summary, error) {
	employees, err := r.employees.ListActiveByDepartment(ctx, companyID, dept.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	if len(employees) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(employees))
	for _, e := range employees {
		ids = append(ids, e.ID)
	}

	days, err := r.attendances.ListByEmployees(ctx, ids, start, end)
	if err != nil {
		return nil, fmt.Errorf("list attendances: %w", err)
	}

	byEmployee := make(map[string][]attendance.Day, len(employees))
	for _, d := range days {
		byEmployee[d.EmployeeID] = append(byEmployee[d.EmployeeID], d)
	}

	summaries := make([]attendance.Summary, 0, len(employees))
	for _, e := range employees {
		if !e.EmployedBetween(start, end) {
			continue
		}
		summaries = append(summaries, AggregateEmployee(e, byEmployee[e.ID], start, end))
	}
	return summaries, nil
}

func covers(totals []attendance.DepartmentTotals, departments []employee.Department) bool {
	have := make(map[string]struct{}, len(totals))
	for _, t := range totals {
		have[t.DepartmentID] = struct{}{}
	}
	for _, d := range departments {
		if _, ok := have[d.ID]; !ok {
			return false
		}
	}
	return true
}

// onlyActive drops aggregated rows of departments that are no longer active and takes the
// current department name.
func onlyActive(totals []attendance.DepartmentTotals, departments []employee.Department) []attendance.DepartmentTotals {
	names := make(map[string]string, len(departments))
	for _, d := range departments {
		names[d.ID] = d.Name
	}

	active := make([]attendance.DepartmentTotals, 0, len(departments))
	for _, t := range totals {
		name, ok := names[t.DepartmentID]
		if !ok {
			continue
		}
		t.DepartmentName = name
		active = append(active, t)
	}
	return active
}

func summarize(totals []attendance.DepartmentTotals) []attendance.DepartmentSummary {
	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].DepartmentName != totals[j].DepartmentName {
			return totals[i].DepartmentName < totals[j].DepartmentName
		}
		return totals[i].DepartmentID < totals[j].DepartmentID
	})

	summaries := make([]attendance.DepartmentSummary, 0, len(totals))
	for _, t := range totals {
		summaries = append(summaries, attendance.DepartmentSummary{
			DepartmentID:         t.DepartmentID,
			Department:           t.DepartmentName,
			TotalEmployees:       t.Employees,
			PresentCount:         t.PresentEquivalent,
			ExpectedWorkingDays:  t.ExpectedWorkingDays,
			ExcusedDays:          t.ExcusedDays,
			AttendancePercentage: Percentage(t.Totals),
		})
	}
	return summaries
}
