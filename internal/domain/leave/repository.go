package leave

import (
	"context"
)

// LeaveTypeRepository - interface for leave_types table
type LeaveTypeRepository interface {
	GetByID(ctx context.Context, id string) (LeaveType, error)
	ListByCompany(ctx context.Context, companyID string) ([]LeaveType, error)
}

// LeaveBalanceRepository - interface for leave_balances and leave_balance_applications
type LeaveBalanceRepository interface {
	// GetByEmployeeTypeYear returns ErrBalanceNotFound when the row does not exist yet
	GetByEmployeeTypeYear(ctx context.Context, employeeID, leaveTypeID string, year int) (LeaveBalance, error)
	ListByEmployeeYear(ctx context.Context, employeeID string, year int) ([]LeaveBalance, error)
	// CreateIfMissing inserts the row unless one exists for the same employee, type and year
	CreateIfMissing(ctx context.Context, balance LeaveBalance) error
	UpdateUsedDays(ctx context.Context, id string, usedDays int) error

	ListAppliedRequestIDs(ctx context.Context, balanceID string) ([]string, error)
	RecordApplication(ctx context.Context, application LedgerApplication) error
}

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	// GetByID locks the row when called inside a transaction
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	UpdateStatus(ctx context.Context, request LeaveRequest) error
	ListApprovedByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
}
