package leave

import (
	"context"
)

type LeaveService interface {
	// Request
	SubmitRequest(ctx context.Context, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	ApproveRequest(ctx context.Context, req ResolveLeaveRequestRequest) (ApprovalResponse, error)
	RejectRequest(ctx context.Context, req ResolveLeaveRequestRequest) (LeaveRequestResponse, error)
	ListOverlaps(ctx context.Context, req OverlapQuery) ([]OverlapConflict, error)
	// Balance
	GetBalances(ctx context.Context, req BalanceQuery) ([]LeaveBalanceResponse, error)
}
