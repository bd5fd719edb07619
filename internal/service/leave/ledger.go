package leave

import (
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

// ComputeBalance derives the remaining days and limit status of a ledger row.
// Remaining may be negative, which marks the row as exceeded.
func ComputeBalance(balance leave.LeaveBalance) (leave.BalanceView, error) {
	var errs validator.ValidationErrors
	if balance.AllocatedDays < 0 {
		errs = append(errs, validator.ValidationError{Field: "allocated_days", Message: "allocated_days must not be negative"})
	}
	if balance.CarriedForward < 0 {
		errs = append(errs, validator.ValidationError{Field: "carried_forward", Message: "carried_forward must not be negative"})
	}
	if balance.UsedDays < 0 {
		errs = append(errs, validator.ValidationError{Field: "used_days", Message: "used_days must not be negative"})
	}
	if len(errs) > 0 {
		return leave.BalanceView{}, errs
	}

	remaining := balance.AllocatedDays + balance.CarriedForward - balance.UsedDays
	status := leave.BalanceStatusWithinLimit
	if remaining < 0 {
		status = leave.BalanceStatusExceed
	}

	return leave.BalanceView{
		Balance:   balance,
		Remaining: remaining,
		Status:    status,
	}, nil
}

// ApplyApproval charges an approved request to its ledger row and returns the updated row.
// applied holds the request ids already charged to this row; the caller loads and persists it.
func ApplyApproval(balance leave.LeaveBalance, request leave.LeaveRequest, applied leave.AppliedRequests) (leave.LeaveBalance, error) {
	var errs validator.ValidationErrors

	if request.Status != leave.LeaveRequestStatusApproved {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("request must be approved before it is charged, got %s", request.Status),
		})
	}
	if request.EmployeeID != balance.EmployeeID {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "request employee does not match balance"})
	}
	if request.LeaveTypeID != balance.LeaveTypeID {
		errs = append(errs, validator.ValidationError{Field: "leave_type_id", Message: "request leave type does not match balance"})
	}
	if request.Year() != balance.Year {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("request year %d does not match balance year %d", request.Year(), balance.Year),
		})
	}
	if request.TotalDays < 1 {
		errs = append(errs, validator.ValidationError{Field: "total_days", Message: "total_days must be at least 1"})
	}
	if applied.Has(request.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "request_id",
			Message: fmt.Sprintf("request %s is already applied to this balance", request.ID),
		})
	}
	if len(errs) > 0 {
		return leave.LeaveBalance{}, errs
	}

	balance.UsedDays += request.TotalDays
	return balance, nil
}
