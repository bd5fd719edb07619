package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
)

const reconcileDepartmentAttendanceJob = "reconcile_department_attendance"

// Reconciler compares the aggregated and recomputed department roll-ups.
type Reconciler interface {
	Reconcile(ctx context.Context, companyID string, year, month int) (attendance.Reconciliation, error)
}

type AttendanceJobs struct {
	departmentRepo employee.DepartmentRepository
	reconciler     Reconciler
	schedule       string
	now            func() time.Time
	logger         *slog.Logger
}

func NewAttendanceJobs(
	departmentRepo employee.DepartmentRepository,
	reconciler Reconciler,
	schedule string,
	now func() time.Time,
	logger *slog.Logger,
) *AttendanceJobs {
	return &AttendanceJobs{
		departmentRepo: departmentRepo,
		reconciler:     reconciler,
		schedule:       schedule,
		now:            now,
		logger:         logger,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) error {
	return scheduler.AddJob(reconcileDepartmentAttendanceJob, j.schedule, j.ReconcileDepartmentAttendance)
}

// ReconcileDepartmentAttendance checks the current month of every company. Drift and
// integrity warnings are logged; a company that cannot be reconciled does not stop the others.
func (j *AttendanceJobs) ReconcileDepartmentAttendance(ctx context.Context) error {
	companies, err := j.departmentRepo.ListCompanyIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	now := j.now()
	var errs []error
	for _, companyID := range companies {
		result, err := j.reconciler.Reconcile(ctx, companyID, now.Year(), int(now.Month()))
		if err != nil {
			errs = append(errs, fmt.Errorf("company %s: %w", companyID, err))
			continue
		}

		for _, drift := range result.Drifted {
			j.logger.ErrorContext(ctx, "department attendance drift",
				slog.String("company_id", companyID),
				slog.String("department_id", drift.DepartmentID),
				slog.Int("year", result.Year),
				slog.Int("month", result.Month),
				slog.Any("aggregate", drift.Aggregate),
				slog.Any("recomputed", drift.Recomputed),
			)
		}
		j.logger.InfoContext(ctx, "department attendance reconciled",
			slog.String("company_id", companyID),
			slog.Int("departments", result.Departments),
			slog.Int("drifted", len(result.Drifted)),
			slog.Int("integrity_warnings", len(result.Warnings)),
		)
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to reconcile %d of %d companies: %w", len(errs), len(companies), errors.Join(errs...))
	}
	return nil
}
