package leave

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/calendar"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

// NewRequest validates a submission at time now and builds a pending request. total_days is
// always recomputed from the dates; a supplied value that disagrees is rejected.
func NewRequest(id string, req leave.CreateLeaveRequestRequest, now time.Time) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}

	startDate, _ := calendar.ParseDate(req.StartDate)
	endDate, _ := calendar.ParseDate(req.EndDate)

	var errs validator.ValidationErrors
	if endDate.Before(startDate) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
	}
	if startDate.Before(calendar.DateOf(now)) {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must not be in the past"})
	}

	totalDays := calendar.DaysInclusive(startDate, endDate)
	if req.TotalDays != nil && len(errs) == 0 && *req.TotalDays != totalDays {
		errs = append(errs, validator.ValidationError{
			Field:   "total_days",
			Message: fmt.Sprintf("total_days must be %d for %s to %s", totalDays, req.StartDate, req.EndDate),
		})
	}
	if len(errs) > 0 {
		return leave.LeaveRequest{}, errs
	}

	return leave.LeaveRequest{
		ID:          id,
		EmployeeID:  req.EmployeeID,
		LeaveTypeID: req.LeaveTypeID,
		StartDate:   startDate,
		EndDate:     endDate,
		TotalDays:   totalDays,
		Reason:      strings.TrimSpace(req.Reason),
		Status:      leave.LeaveRequestStatusPending,
		RequestedAt: now,
	}, nil
}

// Transition resolves a pending request. Approved and rejected are terminal.
func Transition(request leave.LeaveRequest, to leave.LeaveRequestStatus, resolvedBy string, at time.Time, reason *string) (leave.LeaveRequest, error) {
	if !to.IsTerminal() {
		return leave.LeaveRequest{}, validator.New("status", fmt.Sprintf("cannot transition to %s", to))
	}
	if !request.Status.CanTransitionTo(to) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestAlreadyProcessed
	}

	request.Status = to
	request.ResolvedAt = &at
	request.ResolvedBy = &resolvedBy
	if to == leave.LeaveRequestStatusRejected {
		request.RejectionReason = reason
	}
	return request, nil
}

// DetectOverlaps reports every pair of approved requests of the same employee that share at
// least one date. Nothing is prevented; the pairs are flagged for review.
func DetectOverlaps(requests []leave.LeaveRequest) []leave.OverlapConflict {
	approved := make([]leave.LeaveRequest, 0, len(requests))
	for _, r := range requests {
		if r.Status == leave.LeaveRequestStatusApproved {
			approved = append(approved, r)
		}
	}

	sort.SliceStable(approved, func(i, j int) bool {
		a, b := approved[i], approved[j]
		if a.EmployeeID != b.EmployeeID {
			return a.EmployeeID < b.EmployeeID
		}
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		return a.ID < b.ID
	})

	var conflicts []leave.OverlapConflict
	for i := 0; i < len(approved); i++ {
		for j := i + 1; j < len(approved); j++ {
			a, b := approved[i], approved[j]
			if a.EmployeeID != b.EmployeeID {
				break
			}
			// Sorted by start date: once b starts after a ends nothing later overlaps a
			if calendar.DateOf(b.StartDate).After(calendar.DateOf(a.EndDate)) {
				break
			}
			if !calendar.Overlaps(a.StartDate, a.EndDate, b.StartDate, b.EndDate) {
				continue
			}

			start, end := calendar.Clip(a.StartDate, a.EndDate, &b.StartDate, &b.EndDate)
			conflicts = append(conflicts, leave.OverlapConflict{
				EmployeeID:      a.EmployeeID,
				FirstRequestID:  a.ID,
				SecondRequestID: b.ID,
				OverlapStart:    start,
				OverlapEnd:      end,
			})
		}
	}
	return conflicts
}
