package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/google/uuid"
)

type LeaveServiceImpl struct {
	tx database.Transactor
	leave.LeaveTypeRepository
	leave.LeaveBalanceRepository
	leave.LeaveRequestRepository
	employee.EmployeeRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewLeaveService(
	tx database.Transactor,
	leaveTypeRepo leave.LeaveTypeRepository,
	leaveBalanceRepo leave.LeaveBalanceRepository,
	leaveRequestRepo leave.LeaveRequestRepository,
	employeeRepo employee.EmployeeRepository,
	logger *slog.Logger,
	now func() time.Time,
) leave.LeaveService {
	if now == nil {
		now = time.Now
	}
	return &LeaveServiceImpl{
		tx:                     tx,
		LeaveTypeRepository:    leaveTypeRepo,
		LeaveBalanceRepository: leaveBalanceRepo,
		LeaveRequestRepository: leaveRequestRepo,
		EmployeeRepository:     employeeRepo,
		logger:                 logger,
		now:                    now,
	}
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// SubmitRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) SubmitRequest(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	request, err := NewRequest(newID(), req, l.now())
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	emp, err := l.employeeInScope(ctx, request.EmployeeID, req.Scope)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !emp.IsActive() {
		return leave.LeaveRequestResponse{}, employee.ErrEmployeeInactive
	}
	leaveType, err := l.LeaveTypeRepository.GetByID(ctx, request.LeaveTypeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get leave type by ID: %w", err)
	}
	if leaveType.CompanyID != emp.CompanyID {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveTypeNotFound
	}

	created, err := l.LeaveRequestRepository.Create(ctx, request)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return leave.NewLeaveRequestResponse(created), nil
}

// ApproveRequest implements leave.LeaveService.
// The request row is locked for the whole unit of work, so two concurrent approvals of the
// same request serialize and the second one sees it as already processed.
func (l *LeaveServiceImpl) ApproveRequest(ctx context.Context, req leave.ResolveLeaveRequestRequest) (leave.ApprovalResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApprovalResponse{}, err
	}

	var (
		approved leave.LeaveRequest
		balance  leave.LeaveBalance
	)
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		request, err := l.LeaveRequestRepository.GetByID(ctx, req.RequestID)
		if err != nil {
			return fmt.Errorf("failed to get leave request by ID: %w", err)
		}

		if _, err := l.employeeInScope(ctx, request.EmployeeID, req.Scope); err != nil {
			return err
		}

		approved, err = Transition(request, leave.LeaveRequestStatusApproved, req.ResolverID, l.now(), nil)
		if err != nil {
			return err
		}

		balance, err = l.getOrCreateBalance(ctx, approved)
		if err != nil {
			return err
		}

		appliedIDs, err := l.LeaveBalanceRepository.ListAppliedRequestIDs(ctx, balance.ID)
		if err != nil {
			return fmt.Errorf("failed to list applied requests: %w", err)
		}

		balance, err = ApplyApproval(balance, approved, leave.NewAppliedRequests(appliedIDs...))
		if err != nil {
			return err
		}

		if err := l.LeaveBalanceRepository.UpdateUsedDays(ctx, balance.ID, balance.UsedDays); err != nil {
			return fmt.Errorf("failed to update used days: %w", err)
		}

		application := leave.LedgerApplication{
			ID:        newID(),
			BalanceID: balance.ID,
			RequestID: approved.ID,
			Days:      approved.TotalDays,
			AppliedAt: *approved.ResolvedAt,
		}
		if err := l.LeaveBalanceRepository.RecordApplication(ctx, application); err != nil {
			return fmt.Errorf("failed to record ledger application: %w", err)
		}

		if err := l.LeaveRequestRepository.UpdateStatus(ctx, approved); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.ApprovalResponse{}, err
	}

	view, err := ComputeBalance(balance)
	if err != nil {
		return leave.ApprovalResponse{}, err
	}
	if view.Status == leave.BalanceStatusExceed {
		l.logger.WarnContext(ctx, "leave balance exceeded",
			slog.String("employee_id", balance.EmployeeID),
			slog.String("leave_type_id", balance.LeaveTypeID),
			slog.Int("year", balance.Year),
			slog.Int("remaining", view.Remaining),
		)
	}

	overlaps, err := l.overlapsOf(ctx, approved)
	if err != nil {
		return leave.ApprovalResponse{}, err
	}

	return leave.ApprovalResponse{
		Request:  leave.NewLeaveRequestResponse(approved),
		Balance:  leave.NewLeaveBalanceResponse(view),
		Overlaps: overlaps,
	}, nil
}

// getOrCreateBalance loads and locks the ledger row the request is charged to, creating it on
// first use with the leave type's annual cap as allocation.
func (l *LeaveServiceImpl) getOrCreateBalance(ctx context.Context, request leave.LeaveRequest) (leave.LeaveBalance, error) {
	balance, err := l.LeaveBalanceRepository.GetByEmployeeTypeYear(ctx, request.EmployeeID, request.LeaveTypeID, request.Year())
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, leave.ErrBalanceNotFound) {
		return leave.LeaveBalance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}

	leaveType, err := l.LeaveTypeRepository.GetByID(ctx, request.LeaveTypeID)
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to get leave type by ID: %w", err)
	}

	err = l.LeaveBalanceRepository.CreateIfMissing(ctx, leave.LeaveBalance{
		ID:            newID(),
		EmployeeID:    request.EmployeeID,
		LeaveTypeID:   request.LeaveTypeID,
		Year:          request.Year(),
		AllocatedDays: leaveType.MaxDays,
	})
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to create leave balance: %w", err)
	}

	// Another approval may have created the row first; charge whichever row exists now
	balance, err = l.LeaveBalanceRepository.GetByEmployeeTypeYear(ctx, request.EmployeeID, request.LeaveTypeID, request.Year())
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}
	return balance, nil
}

// overlapsOf returns the overlap conflicts that involve the given request.
func (l *LeaveServiceImpl) overlapsOf(ctx context.Context, request leave.LeaveRequest) ([]leave.OverlapConflict, error) {
	conflicts, err := l.detectOverlaps(ctx, request.EmployeeID)
	if err != nil {
		return nil, err
	}

	var involved []leave.OverlapConflict
	for _, c := range conflicts {
		if c.FirstRequestID == request.ID || c.SecondRequestID == request.ID {
			involved = append(involved, c)
		}
	}
	return involved, nil
}

// RejectRequest implements leave.LeaveService. The ledger is never touched.
func (l *LeaveServiceImpl) RejectRequest(ctx context.Context, req leave.ResolveLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.ValidateRejection(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	var rejected leave.LeaveRequest
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		request, err := l.LeaveRequestRepository.GetByID(ctx, req.RequestID)
		if err != nil {
			return fmt.Errorf("failed to get leave request by ID: %w", err)
		}

		if _, err := l.employeeInScope(ctx, request.EmployeeID, req.Scope); err != nil {
			return err
		}

		rejected, err = Transition(request, leave.LeaveRequestStatusRejected, req.ResolverID, l.now(), req.Reason)
		if err != nil {
			return err
		}

		if err := l.LeaveRequestRepository.UpdateStatus(ctx, rejected); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	return leave.NewLeaveRequestResponse(rejected), nil
}

// ListOverlaps implements leave.LeaveService.
func (l *LeaveServiceImpl) ListOverlaps(ctx context.Context, req leave.OverlapQuery) ([]leave.OverlapConflict, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := l.employeeInScope(ctx, req.EmployeeID, req.Scope); err != nil {
		return nil, err
	}
	return l.detectOverlaps(ctx, req.EmployeeID)
}

func (l *LeaveServiceImpl) detectOverlaps(ctx context.Context, employeeID string) ([]leave.OverlapConflict, error) {
	requests, err := l.LeaveRequestRepository.ListApprovedByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave requests: %w", err)
	}

	conflicts := DetectOverlaps(requests)
	for _, c := range conflicts {
		l.logger.WarnContext(ctx, "overlapping approved leave",
			slog.String("employee_id", c.EmployeeID),
			slog.String("first_request_id", c.FirstRequestID),
			slog.String("second_request_id", c.SecondRequestID),
		)
	}
	return conflicts, nil
}

// GetBalances implements leave.LeaveService.
func (l *LeaveServiceImpl) GetBalances(ctx context.Context, req leave.BalanceQuery) ([]leave.LeaveBalanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := l.employeeInScope(ctx, req.EmployeeID, req.Scope); err != nil {
		return nil, err
	}

	balances, err := l.LeaveBalanceRepository.ListByEmployeeYear(ctx, req.EmployeeID, req.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}

	responses := make([]leave.LeaveBalanceResponse, 0, len(balances))
	for _, b := range balances {
		view, err := ComputeBalance(b)
		if err != nil {
			return nil, fmt.Errorf("balance %s: %w", b.ID, err)
		}
		responses = append(responses, leave.NewLeaveBalanceResponse(view))
	}
	return responses, nil
}

func (l *LeaveServiceImpl) employeeInScope(ctx context.Context, employeeID string, scope employee.Scope) (employee.Employee, error) {
	emp, err := l.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to get employee by ID: %w", err)
	}
	if err := scope.Check(emp); err != nil {
		return employee.Employee{}, err
	}
	return emp, nil
}
