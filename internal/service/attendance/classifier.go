package attendance

import (
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/calendar"
)

// Classify returns the status of one expected day. A missing record is not_set; otherwise the
// stored status is authoritative and is only checked for consistency. A non-nil warning means
// the day must not count as present-equivalent.
func Classify(day *attendance.Day) (attendance.Status, *attendance.IntegrityWarning) {
	if day == nil {
		return attendance.StatusNotSet, nil
	}

	if !day.Status.IsPersistable() {
		return day.Status, &attendance.IntegrityWarning{
			EmployeeID: day.EmployeeID,
			Date:       calendar.DateOf(day.Date),
			Status:     day.Status,
			Reason:     fmt.Sprintf("stored status %q is not a recordable status", day.Status),
		}
	}

	if day.Status.IsPresentEquivalent() && day.CheckIn == nil {
		return day.Status, &attendance.IntegrityWarning{
			EmployeeID: day.EmployeeID,
			Date:       calendar.DateOf(day.Date),
			Status:     day.Status,
			Reason:     "present-equivalent status without check-in",
		}
	}

	return day.Status, nil
}
