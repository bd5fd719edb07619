package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

type CreateLeaveRequestRequest struct {
	EmployeeID  string `json:"employee_id" validate:"required"`
	LeaveTypeID string `json:"leave_type_id" validate:"required"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"required,datetime=2006-01-02"`
	TotalDays   *int   `json:"total_days,omitempty"`
	Reason      string `json:"reason" validate:"max=1000"`

	Scope employee.Scope `json:"-"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	return validator.Struct(r)
}

type ResolveLeaveRequestRequest struct {
	RequestID  string  `json:"request_id" validate:"required"`
	ResolverID string  `json:"resolver_id" validate:"required"`
	Reason     *string `json:"reason,omitempty"`

	// Scope limits which employees' requests the resolver may decide on
	Scope employee.Scope `json:"-"`
}

func (r *ResolveLeaveRequestRequest) Validate() error {
	return validator.Struct(r)
}

// ValidateRejection additionally requires a rejection reason.
func (r *ResolveLeaveRequestRequest) ValidateRejection() error {
	var errs validator.ValidationErrors
	if err := r.Validate(); err != nil {
		if !validator.IsValidationError(err) {
			return err
		}
		errs = append(errs, err.(validator.ValidationErrors)...)
	}

	if r.Reason == nil || validator.IsEmpty(*r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required when rejecting",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BalanceQuery struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Year       int    `json:"year" validate:"min=2000,max=9999"`

	Scope employee.Scope `json:"-"`
}

func (r *BalanceQuery) Validate() error {
	return validator.Struct(r)
}

type OverlapQuery struct {
	EmployeeID string `json:"employee_id" validate:"required"`

	Scope employee.Scope `json:"-"`
}

func (r *OverlapQuery) Validate() error {
	return validator.Struct(r)
}

type LeaveRequestResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	LeaveTypeID     string  `json:"leave_type_id"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	TotalDays       int     `json:"total_days"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	RequestedAt     string  `json:"requested_at"`
	ResolvedAt      *string `json:"resolved_at,omitempty"`
	ResolvedBy      *string `json:"resolved_by,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

func NewLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		LeaveTypeID:     r.LeaveTypeID,
		StartDate:       r.StartDate.Format("2006-01-02"),
		EndDate:         r.EndDate.Format("2006-01-02"),
		TotalDays:       r.TotalDays,
		Reason:          r.Reason,
		Status:          string(r.Status),
		RequestedAt:     r.RequestedAt.Format(time.RFC3339),
		ResolvedBy:      r.ResolvedBy,
		RejectionReason: r.RejectionReason,
	}
	if r.ResolvedAt != nil {
		resolvedAt := r.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &resolvedAt
	}
	return resp
}

type LeaveBalanceResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	LeaveTypeID    string  `json:"leave_type_id"`
	LeaveTypeName  *string `json:"leave_type_name,omitempty"`
	Year           int     `json:"year"`
	AllocatedDays  int     `json:"allocated_days"`
	CarriedForward int     `json:"carried_forward"`
	UsedDays       int     `json:"used_days"`
	Remaining      int     `json:"remaining"`
	Status         string  `json:"status"`
}

func NewLeaveBalanceResponse(v BalanceView) LeaveBalanceResponse {
	return LeaveBalanceResponse{
		ID:             v.Balance.ID,
		EmployeeID:     v.Balance.EmployeeID,
		LeaveTypeID:    v.Balance.LeaveTypeID,
		LeaveTypeName:  v.Balance.LeaveTypeName,
		Year:           v.Balance.Year,
		AllocatedDays:  v.Balance.AllocatedDays,
		CarriedForward: v.Balance.CarriedForward,
		UsedDays:       v.Balance.UsedDays,
		Remaining:      v.Remaining,
		Status:         string(v.Status),
	}
}

type ApprovalResponse struct {
	Request  LeaveRequestResponse `json:"request"`
	Balance  LeaveBalanceResponse `json:"balance"`
	Overlaps []OverlapConflict    `json:"overlaps,omitempty"`
}
