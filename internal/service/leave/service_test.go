package leave

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== FAKES =====

type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeStore struct {
	leaveTypes   map[string]leave.LeaveType
	balances     map[string]leave.LeaveBalance
	applications []leave.LedgerApplication
	requests     map[string]leave.LeaveRequest
	employees    map[string]employee.Employee
	listErr      error

	// concurrentBalance is inserted by another approval just before ours
	concurrentBalance *leave.LeaveBalance
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leaveTypes: map[string]leave.LeaveType{"annual": {ID: "annual", CompanyID: "c1", Name: "Annual", MaxDays: 12, IsPaid: true}},
		balances:   map[string]leave.LeaveBalance{},
		requests:   map[string]leave.LeaveRequest{},
		employees:  map[string]employee.Employee{"emp-1": {ID: "emp-1", CompanyID: "c1", DepartmentID: "d1", EmploymentStatus: employee.EmploymentStatusActive}},
	}
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	lt, ok := f.leaveTypes[id]
	if !ok {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
	}
	return lt, nil
}

func (f *fakeStore) ListByCompany(ctx context.Context, companyID string) ([]leave.LeaveType, error) {
	var types []leave.LeaveType
	for _, lt := range f.leaveTypes {
		if lt.CompanyID == companyID {
			types = append(types, lt)
		}
	}
	return types, nil
}

type fakeBalances struct{ *fakeStore }

func (f fakeBalances) GetByEmployeeTypeYear(ctx context.Context, employeeID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	for _, b := range f.balances {
		if b.EmployeeID == employeeID && b.LeaveTypeID == leaveTypeID && b.Year == year {
			return b, nil
		}
	}
	return leave.LeaveBalance{}, leave.ErrBalanceNotFound
}

func (f fakeBalances) ListByEmployeeYear(ctx context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []leave.LeaveBalance
	for _, b := range f.balances {
		if b.EmployeeID == employeeID && b.Year == year {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f fakeBalances) CreateIfMissing(ctx context.Context, balance leave.LeaveBalance) error {
	if f.concurrentBalance != nil {
		f.balances[f.concurrentBalance.ID] = *f.concurrentBalance
		f.fakeStore.concurrentBalance = nil
	}
	if _, err := f.GetByEmployeeTypeYear(ctx, balance.EmployeeID, balance.LeaveTypeID, balance.Year); err == nil {
		return nil
	}
	f.balances[balance.ID] = balance
	return nil
}

func (f fakeBalances) UpdateUsedDays(ctx context.Context, id string, usedDays int) error {
	b, ok := f.balances[id]
	if !ok {
		return leave.ErrBalanceNotFound
	}
	b.UsedDays = usedDays
	f.balances[id] = b
	return nil
}

func (f fakeBalances) ListAppliedRequestIDs(ctx context.Context, balanceID string) ([]string, error) {
	var ids []string
	for _, a := range f.applications {
		if a.BalanceID == balanceID {
			ids = append(ids, a.RequestID)
		}
	}
	return ids, nil
}

func (f fakeBalances) RecordApplication(ctx context.Context, application leave.LedgerApplication) error {
	f.fakeStore.applications = append(f.fakeStore.applications, application)
	return nil
}

type fakeRequests struct{ *fakeStore }

func (f fakeRequests) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	f.requests[request.ID] = request
	return request, nil
}

func (f fakeRequests) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return r, nil
}

func (f fakeRequests) UpdateStatus(ctx context.Context, request leave.LeaveRequest) error {
	f.requests[request.ID] = request
	return nil
}

func (f fakeRequests) ListApprovedByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, r := range f.requests {
		if r.EmployeeID == employeeID && r.Status == leave.LeaveRequestStatusApproved {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeEmployees struct{ *fakeStore }

func (f fakeEmployees) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f fakeEmployees) ListActiveByDepartment(ctx context.Context, companyID, departmentID string, from, to time.Time) ([]employee.Employee, error) {
	return nil, nil
}

func newTestService(store *fakeStore, tx *fakeTx) *LeaveServiceImpl {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := func() time.Time { return submittedAt }
	return NewLeaveService(tx, store, fakeBalances{store}, fakeRequests{store}, fakeEmployees{store}, logger, clock).(*LeaveServiceImpl)
}

func seedPending(store *fakeStore, id, start, end string, totalDays int) {
	r := request(id, "emp-1", start, end, leave.LeaveRequestStatusPending)
	r.LeaveTypeID = "annual"
	r.TotalDays = totalDays
	store.requests[id] = r
}

// ===== SUBMIT TESTS =====

func TestLeaveService_SubmitRequest_Success(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeTx{})

	resp, err := svc.SubmitRequest(context.Background(), createRequest("2025-03-10", "2025-03-12", intPtr(3)))

	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, 3, resp.TotalDays)
	assert.Equal(t, "pending", resp.Status)
	assert.Contains(t, store.requests, resp.ID)
}

func TestLeaveService_SubmitRequest_MismatchedTotalDays(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeTx{})

	_, err := svc.SubmitRequest(context.Background(), createRequest("2025-03-10", "2025-03-12", intPtr(5)))

	assert.True(t, validator.IsValidationError(err))
	assert.Empty(t, store.requests)
}

func TestLeaveService_SubmitRequest_UnknownLeaveType(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeTx{})

	req := createRequest("2025-03-10", "2025-03-12", nil)
	req.LeaveTypeID = "sabbatical"
	_, err := svc.SubmitRequest(context.Background(), req)

	assert.ErrorIs(t, err, leave.ErrLeaveTypeNotFound)
}

func TestLeaveService_SubmitRequest_ResignedEmployee(t *testing.T) {
	store := newFakeStore()
	emp := store.employees["emp-1"]
	emp.EmploymentStatus = "resigned"
	store.employees["emp-1"] = emp
	svc := newTestService(store, &fakeTx{})

	_, err := svc.SubmitRequest(context.Background(), createRequest("2025-03-10", "2025-03-12", nil))

	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)
	assert.Empty(t, store.requests)
}

// ===== APPROVAL TESTS =====

func TestLeaveService_ApproveRequest_CreatesBalanceOnFirstUse(t *testing.T) {
	store := newFakeStore()
	tx := &fakeTx{}
	svc := newTestService(store, tx)
	seedPending(store, "r1", "2025-03-10", "2025-03-12", 3)

	resp, err := svc.ApproveRequest(context.Background(), leave.ResolveLeaveRequestRequest{RequestID: "r1", ResolverID: "mgr-1"})

	require.NoError(t, err)
	assert.Equal(t, 1, tx.calls)
	assert.Equal(t, "approved", resp.Request.Status)
	assert.Equal(t, 12, resp.Balance.AllocatedDays)
	assert.Equal(t, 3, resp.Balance.UsedDays)
	assert.Equal(t, 9, resp.Balance.Remaining)
	assert.Equal(t, string(leave.BalanceStatusWithinLimit), resp.Balance.Status)
	require.Len(t, store.applications, 1)
	assert.Equal(t, "r1", store.applications[0].RequestID)
	assert.Equal(t, leave.LeaveRequestStatusApproved, store.requests["r1"].Status)
}

func TestLeaveService_ApproveRequest_BalanceCreatedConcurrently(t *testing.T) {
	store := newFakeStore()
	store.concurrentBalance = &leave.LeaveBalance{ID: "b-other", EmployeeID: "emp-1", LeaveTypeID: "annual", Year: 2025, AllocatedDays: 12, UsedDays: 2}
	svc := newTestService(store, &fakeTx{})
	seedPending(store, "r1", "2025-03-10", "2025-03-12", 3)

	resp, err := svc.ApproveRequest(context.Background(), leave.ResolveLeaveRequestRequest{RequestID: "r1", ResolverID: "mgr-1"})

	require.NoError(t, err)
	assert.Equal(t, 5, resp.Balance.UsedDays)
	require.Len(t, store.balances, 1)
	assert.Equal(t, 5, store.balances["b-other"].UsedDays)
	require.Len(t, store.applications, 1)
	assert.Equal(t, "b-other", store.applications[0].BalanceID)
}

func TestLeaveService_ApproveRequest_ExceedsBalance(t *testing.T) {
	store := newFakeStore()
	store.balances["b1"] = leave.LeaveBalance{ID: "b1", EmployeeID: "emp-1", LeaveTypeID: "annual", Year: 2025, AllocatedDays: 20, CarriedForward: 2, UsedDays: 22}
	svc := newTestService(store, &fakeTx{})
	seedPending(store, "r1", "2025-03-10", "2025-03-12", 3)

	resp, err := svc.ApproveRequest(context.Background(), leave.ResolveLeaveRequestRequest{RequestID: "r1", ResolverID: "mgr-1"})

	require.NoError(t, err)
	assert.Equal(t, -3, resp.Balance.Remaining)
	assert.Equal(t, string(leave.BalanceStatusExceed), resp.Balance.Status)
}

func TestLeaveService_ApproveRequest_Twice(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeTx{})
	seedPending(store, "r1", "2025-03-10", "2025-03-12", 3)
	req := leave.ResolveLeaveRequestRequest{RequestID: "r1", ResolverID: "mgr-1"}

	_, err := svc.ApproveRequest(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.ApproveRequest(context.Background(), req)

	assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)
	for _, b := range store.balances {
		assert.Equal(t, 3, b.UsedDays)
	}
}

func TestLeaveService_ApproveRequest_AlreadyAppliedLedgerEntry(t *testing.T) {
	store := newFakeStore()
	store.balances["b1"] = leave.LeaveBalance{ID: "b1", EmployeeID: "emp-1", LeaveTypeID: "annual", Year: 2025, AllocatedDays: 12}
	store.applications = []leave.LedgerApplication{{ID: "a1", BalanceID: "b1", RequestID: "r1", Days: 3}}
	svc := newTestService(store, &fakeTx{})
	seedPending(store, "r1", "2025-03-10", "2025-03-12", 3)

	_, err := svc.ApproveRequest(context.Background(), leave.ResolveLeaveRequestRequest{RequestID: "r1", ResolverID: "mgr-1"})

	assert.True(t, validator.IsValidationError(err))
	assert.Zero(t, store.balances["b1"].UsedDays)
}

func TestLeaveService_ApproveRequest_NotFound(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeTx{})

	_, err := svc.ApproveRequest(context.Background(), leave.ResolveLeaveRequestRequest{RequestID: "missing", ResolverID: "mgr-1"})

	assert.True(t, errors.Is(err, leave.ErrLeaveRequestNotFound))
}

func TestLeaveService_ApproveRequest_ReportsOverlaps(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeTx{})
	seedPending(store, "r1", "2025-03-10", "2025-03-12", 3)
	seedPending(store, "r2", "2025-03-12", "2025-03-13", 2)
	resolve := func(id string) leave.ResolveLeaveRequestRequest {
		return leave.ResolveLeaveRequestRequest{RequestID: id, ResolverID: "mgr-1"}
	}

	first, err := svc.ApproveRequest(context.Background(), resolve("r1"))
	require.NoError(t, err)
	assert.Empty(t, first.Overlaps)

	second, err := svc.ApproveRequest(context.Background(), resolve("r2"))
	require.NoError(t, err)
	require.Len(t, second.Overlaps, 1)
	assert.Equal(t, "r1", second.Overlaps[0].FirstRequestID)
	assert.Equal(t, 5, second.Balance.UsedDays)
}

// ===== REJECTION TESTS =====

func TestLeaveService_RejectRequest_NeverTouchesLedger(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeTx{})
	seedPending(store, "r1", "2025-03-10", "2025-03-12", 3)

	resp, err := svc.RejectRequest(context.Background(), leave.ResolveLeaveRequestRequest{RequestID: "r1", ResolverID: "mgr-1", Reason: strPtr("coverage")})

	require.NoError(t, err)
	assert.Equal(t, "rejected", resp.Status)
	assert.Equal(t, "coverage", *resp.RejectionReason)
	assert.Empty(t, store.balances)
	assert.Empty(t, store.applications)
}

func TestLeaveService_RejectRequest_RequiresReason(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeTx{})
	seedPending(store, "r1", "2025-03-10", "2025-03-12", 3)

	_, err := svc.RejectRequest(context.Background(), leave.ResolveLeaveRequestRequest{RequestID: "r1", ResolverID: "mgr-1"})

	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs.ToMap(), "reason")
	assert.Equal(t, leave.LeaveRequestStatusPending, store.requests["r1"].Status)
}

// ===== BALANCE TESTS =====

func TestLeaveService_GetBalances(t *testing.T) {
	store := newFakeStore()
	store.balances["b1"] = leave.LeaveBalance{ID: "b1", EmployeeID: "emp-1", LeaveTypeID: "annual", Year: 2025, AllocatedDays: 20, CarriedForward: 2, UsedDays: 25}
	store.balances["b2"] = leave.LeaveBalance{ID: "b2", EmployeeID: "emp-1", LeaveTypeID: "annual", Year: 2024, AllocatedDays: 12}
	svc := newTestService(store, &fakeTx{})

	balances, err := svc.GetBalances(context.Background(), leave.BalanceQuery{EmployeeID: "emp-1", Year: 2025})

	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, -3, balances[0].Remaining)
	assert.Equal(t, "Exceed", balances[0].Status)
}

func TestLeaveService_GetBalances_StoreFailure(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("connection reset")
	svc := newTestService(store, &fakeTx{})

	_, err := svc.GetBalances(context.Background(), leave.BalanceQuery{EmployeeID: "emp-1", Year: 2025})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

// ===== SCOPE TESTS =====

func TestLeaveService_ApproveRequest_OutsideManagerDepartment(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeTx{})
	seedPending(store, "r1", "2025-03-10", "2025-03-12", 3)

	_, err := svc.ApproveRequest(context.Background(), leave.ResolveLeaveRequestRequest{
		RequestID:  "r1",
		ResolverID: "mgr-2",
		Scope:      employee.Scope{CompanyID: "c1", DepartmentID: "d2"},
	})

	assert.ErrorIs(t, err, employee.ErrUnauthorized)
	assert.Equal(t, leave.LeaveRequestStatusPending, store.requests["r1"].Status)
	assert.Empty(t, store.balances)
}

func TestLeaveService_GetBalances_OtherCompany(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeTx{})

	_, err := svc.GetBalances(context.Background(), leave.BalanceQuery{
		EmployeeID: "emp-1",
		Year:       2025,
		Scope:      employee.Scope{CompanyID: "c2"},
	})

	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestLeaveService_SubmitRequest_LeaveTypeOfOtherCompany(t *testing.T) {
	store := newFakeStore()
	store.leaveTypes["foreign"] = leave.LeaveType{ID: "foreign", CompanyID: "c2", Name: "Annual", MaxDays: 12}
	svc := newTestService(store, &fakeTx{})

	req := createRequest("2025-03-10", "2025-03-12", nil)
	req.LeaveTypeID = "foreign"
	_, err := svc.SubmitRequest(context.Background(), req)

	assert.ErrorIs(t, err, leave.ErrLeaveTypeNotFound)
	assert.Empty(t, store.requests)
}

// ===== OVERLAP TESTS =====

func TestLeaveService_ListOverlaps(t *testing.T) {
	store := newFakeStore()
	for _, r := range []leave.LeaveRequest{
		request("r1", "emp-1", "2025-03-10", "2025-03-12", leave.LeaveRequestStatusApproved),
		request("r2", "emp-1", "2025-03-11", "2025-03-11", leave.LeaveRequestStatusApproved),
		request("r3", "emp-1", "2025-03-11", "2025-03-14", leave.LeaveRequestStatusRejected),
	} {
		store.requests[r.ID] = r
	}
	svc := newTestService(store, &fakeTx{})

	conflicts, err := svc.ListOverlaps(context.Background(), leave.OverlapQuery{EmployeeID: "emp-1"})

	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "r1", conflicts[0].FirstRequestID)
	assert.Equal(t, "r2", conflicts[0].SecondRequestID)
}

func TestLeaveService_ListOverlaps_OtherEmployee(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeTx{})

	_, err := svc.ListOverlaps(context.Background(), leave.OverlapQuery{
		EmployeeID: "emp-1",
		Scope:      employee.Scope{CompanyID: "c1", EmployeeID: "emp-9"},
	})

	assert.ErrorIs(t, err, employee.ErrUnauthorized)
}
