package cron

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDepartmentRepository struct {
	companies []string
	err       error
}

func (f *fakeDepartmentRepository) ListActive(ctx context.Context, companyID string) ([]employee.Department, error) {
	return nil, nil
}

func (f *fakeDepartmentRepository) GetByID(ctx context.Context, id string) (employee.Department, error) {
	return employee.Department{}, employee.ErrDepartmentNotFound
}

func (f *fakeDepartmentRepository) ListCompanyIDs(ctx context.Context) ([]string, error) {
	return f.companies, f.err
}

type call struct {
	company     string
	year, month int
}

type fakeReconciler struct {
	calls   []call
	results map[string]attendance.Reconciliation
	errs    map[string]error
}

func (f *fakeReconciler) Reconcile(ctx context.Context, companyID string, year, month int) (attendance.Reconciliation, error) {
	f.calls = append(f.calls, call{companyID, year, month})
	if err := f.errs[companyID]; err != nil {
		return attendance.Reconciliation{}, err
	}
	return f.results[companyID], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedNow() time.Time {
	return time.Date(2025, time.March, 20, 0, 15, 0, 0, time.UTC)
}

func newTestScheduler() *Scheduler {
	return NewScheduler(discardLogger(), time.UTC, time.Minute)
}

func TestScheduler_AddJob_InvalidSchedule(t *testing.T) {
	s := newTestScheduler()

	err := s.AddJob("broken", "every now and then", func(ctx context.Context) error { return nil })

	assert.Error(t, err)
	assert.Empty(t, s.jobs)
}

func TestScheduler_RunOnce(t *testing.T) {
	s := newTestScheduler()
	var order []string
	require.NoError(t, s.AddJob("first", "@daily", func(ctx context.Context) error {
		order = append(order, "first")
		return errors.New("boom")
	}))
	require.NoError(t, s.AddJob("second", "@hourly", func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		order = append(order, "second")
		return nil
	}))

	s.RunOnce(context.Background())

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestScheduler_StartStop(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob("noop", "15 0 * * *", func(ctx context.Context) error { return nil }))

	s.Start()
	s.Stop()

	assert.Error(t, s.ctx.Err())
}

// ===== ATTENDANCE JOB TESTS =====

func TestAttendanceJobs_ReconcileDepartmentAttendance(t *testing.T) {
	departments := &fakeDepartmentRepository{companies: []string{"c1", "c2"}}
	reconciler := &fakeReconciler{results: map[string]attendance.Reconciliation{
		"c1": {CompanyID: "c1", Year: 2025, Month: 3, Departments: 2},
	}}
	jobs := NewAttendanceJobs(departments, reconciler, "15 0 * * *", fixedNow, discardLogger())
	s := newTestScheduler()
	require.NoError(t, jobs.RegisterJobs(s))

	s.RunOnce(context.Background())

	require.Len(t, s.jobs, 1)
	assert.Equal(t, reconcileDepartmentAttendanceJob, s.jobs[0].Name)
	assert.Equal(t, []call{{"c1", 2025, 3}, {"c2", 2025, 3}}, reconciler.calls)
}

func TestAttendanceJobs_LogsDrift(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	aggregate := attendance.DepartmentSummary{DepartmentID: "d-eng", PresentCount: 40}
	reconciler := &fakeReconciler{results: map[string]attendance.Reconciliation{
		"c1": {
			CompanyID:   "c1",
			Year:        2025,
			Month:       3,
			Departments: 1,
			Drifted: []attendance.DepartmentDrift{{
				DepartmentID: "d-eng",
				Aggregate:    &aggregate,
				Recomputed:   attendance.DepartmentSummary{DepartmentID: "d-eng", PresentCount: 41},
			}},
		},
	}}
	jobs := NewAttendanceJobs(&fakeDepartmentRepository{companies: []string{"c1"}}, reconciler, "15 0 * * *", fixedNow, logger)

	err := jobs.ReconcileDepartmentAttendance(context.Background())

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "department attendance drift")
	assert.Contains(t, buf.String(), `"department_id":"d-eng"`)
}

func TestAttendanceJobs_FailedCompanyDoesNotStopOthers(t *testing.T) {
	departments := &fakeDepartmentRepository{companies: []string{"c1", "c2"}}
	reconciler := &fakeReconciler{errs: map[string]error{"c1": errors.New("connection refused")}}
	jobs := NewAttendanceJobs(departments, reconciler, "15 0 * * *", fixedNow, discardLogger())

	err := jobs.ReconcileDepartmentAttendance(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 companies")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Len(t, reconciler.calls, 2)
}

func TestAttendanceJobs_ListCompaniesFailure(t *testing.T) {
	departments := &fakeDepartmentRepository{err: errors.New("relation does not exist")}
	reconciler := &fakeReconciler{}
	jobs := NewAttendanceJobs(departments, reconciler, "15 0 * * *", fixedNow, discardLogger())

	err := jobs.ReconcileDepartmentAttendance(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")
	assert.Empty(t, reconciler.calls)
}
