package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	Balances(w http.ResponseWriter, r *http.Request)
	Overlaps(w http.ResponseWriter, r *http.Request)

	CreateRequest(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{
		leaveService: leaveService,
	}
}

// Balances implements LeaveHandler.
func (l *LeaveHandlerImpl) Balances(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidPrincipal)
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		response.HandleError(w, validator.New("year", "year must be a number"))
		return
	}

	balances, err := l.leaveService.GetBalances(r.Context(), leave.BalanceQuery{
		EmployeeID: employeeID,
		Year:       year,
		Scope:      principal.Scope(),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, balances)
}

// Overlaps implements LeaveHandler.
func (l *LeaveHandlerImpl) Overlaps(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidPrincipal)
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	conflicts, err := l.leaveService.ListOverlaps(r.Context(), leave.OverlapQuery{
		EmployeeID: employeeID,
		Scope:      principal.Scope(),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if conflicts == nil {
		conflicts = []leave.OverlapConflict{}
	}

	response.Success(w, conflicts)
}

// CreateRequest implements LeaveHandler.
// Employees submit for themselves; managers and owners may submit on behalf of anyone in
// their scope by passing employee_id.
func (l *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidPrincipal)
		return
	}

	var req leave.CreateLeaveRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateRequest decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if req.EmployeeID == "" {
		req.EmployeeID = principal.EmployeeID
	}
	req.Scope = principal.Scope()

	created, err := l.leaveService.SubmitRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted successfully", created)
}

type resolveBody struct {
	Reason *string `json:"reason,omitempty"`
}

// ApproveRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := l.resolveRequest(w, r)
	if !ok {
		return
	}

	result, err := l.leaveService.ApproveRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request approved successfully", result)
}

// RejectRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := l.resolveRequest(w, r)
	if !ok {
		return
	}

	result, err := l.leaveService.RejectRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request rejected successfully", result)
}

// resolveRequest builds the approve/reject input from the URL, the optional body and the
// caller. It writes the error response itself when it returns false.
func (l *LeaveHandlerImpl) resolveRequest(w http.ResponseWriter, r *http.Request) (leave.ResolveLeaveRequestRequest, bool) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidPrincipal)
		return leave.ResolveLeaveRequestRequest{}, false
	}

	var body resolveBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("resolve leave request decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return leave.ResolveLeaveRequestRequest{}, false
	}

	resolverID := principal.EmployeeID
	if resolverID == "" {
		resolverID = principal.UserID
	}

	return leave.ResolveLeaveRequestRequest{
		RequestID:  chi.URLParam(r, "requestID"),
		ResolverID: resolverID,
		Reason:     body.Reason,
		Scope:      principal.Scope(),
	}, true
}
