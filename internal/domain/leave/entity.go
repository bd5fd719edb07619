package leave

import (
	"time"
)

// LeaveType entity
type LeaveType struct {
	ID        string
	CompanyID string
	Name      string
	MaxDays   int // annual cap, used as the allocation when a balance row is first created
	IsPaid    bool
}

// LeaveBalance is one ledger row per (employee, leave type, year).
type LeaveBalance struct {
	ID             string
	EmployeeID     string
	LeaveTypeID    string
	Year           int
	AllocatedDays  int
	CarriedForward int
	UsedDays       int

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	LeaveTypeName *string
}

type BalanceStatus string

const (
	BalanceStatusWithinLimit BalanceStatus = "With In Limit"
	BalanceStatusExceed      BalanceStatus = "Exceed"
)

// BalanceView is a ledger row with its derived fields.
type BalanceView struct {
	Balance   LeaveBalance
	Remaining int
	Status    BalanceStatus
}

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending  LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected LeaveRequestStatus = "rejected"
)

func (s LeaveRequestStatus) IsValid() bool {
	switch s {
	case LeaveRequestStatusPending, LeaveRequestStatusApproved, LeaveRequestStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s LeaveRequestStatus) IsTerminal() bool {
	return s == LeaveRequestStatusApproved || s == LeaveRequestStatusRejected
}

// CanTransitionTo allows pending -> approved and pending -> rejected only.
func (s LeaveRequestStatus) CanTransitionTo(to LeaveRequestStatus) bool {
	return s == LeaveRequestStatusPending && to.IsTerminal()
}

// LeaveRequest entity
type LeaveRequest struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string

	StartDate time.Time
	EndDate   time.Time
	TotalDays int // inclusive span

	Reason string

	Status          LeaveRequestStatus
	RequestedAt     time.Time
	ResolvedAt      *time.Time
	ResolvedBy      *string
	RejectionReason *string
}

// Year is the ledger year a request is charged to.
func (r LeaveRequest) Year() int {
	return r.StartDate.Year()
}

// AppliedRequests is the set of request ids already charged to a balance row. The ledger is
// pure; callers load this set from the store to keep approvals idempotent.
type AppliedRequests map[string]struct{}

func NewAppliedRequests(ids ...string) AppliedRequests {
	set := make(AppliedRequests, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (a AppliedRequests) Has(id string) bool {
	_, ok := a[id]
	return ok
}

// LedgerApplication records that a request was charged to a balance row.
type LedgerApplication struct {
	ID        string
	BalanceID string
	RequestID string
	Days      int
	AppliedAt time.Time
}

// OverlapConflict flags two approved requests of one employee that share dates.
type OverlapConflict struct {
	EmployeeID      string    `json:"employee_id"`
	FirstRequestID  string    `json:"first_request_id"`
	SecondRequestID string    `json:"second_request_id"`
	OverlapStart    time.Time `json:"overlap_start"`
	OverlapEnd      time.Time `json:"overlap_end"`
}
