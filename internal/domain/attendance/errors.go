package attendance

import (
	"errors"
	"fmt"
	"time"
)

// Attendance domain errors
var (
	ErrUpstream         = errors.New("record store unavailable")
	ErrNoAggregatedData = errors.New("aggregated attendance returned no rows")
)

// IntegrityWarning is a non-fatal inconsistency found while classifying a record. The
// offending day is excluded from the present-equivalent count.
type IntegrityWarning struct {
	EmployeeID string    `json:"employee_id"`
	Date       time.Time `json:"date"`
	Status     Status    `json:"status"`
	Reason     string    `json:"reason"`
}

func (w IntegrityWarning) Error() string {
	return fmt.Sprintf("attendance %s on %s (%s): %s", w.EmployeeID, w.Date.Format("2006-01-02"), w.Status, w.Reason)
}

// UpstreamError reports a failed record store read with its cause attached.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}
