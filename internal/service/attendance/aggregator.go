package attendance

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/calendar"
	"github.com/shopspring/decimal"
)

// Aggregate summarizes one employee's records over the inclusive period [periodStart,
// periodEnd]. Records outside the period are ignored and only the first record per date
// (ordered by id) is used; later ones produce a warning.
func Aggregate(days []attendance.Day, periodStart, periodEnd time.Time) attendance.Summary {
	start, end := calendar.DateOf(periodStart), calendar.DateOf(periodEnd)

	summary := attendance.Summary{
		PeriodStart:         start,
		PeriodEnd:           end,
		ExpectedWorkingDays: calendar.WorkingDays(start, end),
		StatusCounts:        make(map[attendance.Status]int, len(attendance.Statuses)),
		TotalHours:          decimal.Zero,
	}

	ordered := make([]attendance.Day, len(days))
	copy(ordered, days)
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := calendar.DateOf(ordered[i].Date), calendar.DateOf(ordered[j].Date)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return ordered[i].ID < ordered[j].ID
	})

	seen := make(map[time.Time]struct{}, len(ordered))
	for i := range ordered {
		day := &ordered[i]
		if summary.EmployeeID == "" {
			summary.EmployeeID = day.EmployeeID
		}

		date := calendar.DateOf(day.Date)
		if date.Before(start) || date.After(end) {
			continue
		}
		if _, dup := seen[date]; dup {
			summary.Warnings = append(summary.Warnings, attendance.IntegrityWarning{
				EmployeeID: day.EmployeeID,
				Date:       date,
				Status:     day.Status,
				Reason:     "duplicate record for date, first record kept",
			})
			continue
		}
		seen[date] = struct{}{}

		status, warning := Classify(day)
		if warning != nil {
			summary.Warnings = append(summary.Warnings, *warning)
		}
		if !status.IsPersistable() {
			continue
		}

		summary.StatusCounts[status]++
		if status.IsPresentEquivalent() && warning == nil {
			summary.PresentEquivalent++
		}
		if status.IsExcused() && calendar.IsWorkingDay(date) {
			summary.ExcusedDays++
		}
		if hours := day.WorkedHours(); hours != nil {
			summary.TotalHours = summary.TotalHours.Add(*hours)
		}
	}

	for _, date := range calendar.WorkingDates(start, end) {
		if _, ok := seen[date]; !ok {
			summary.StatusCounts[attendance.StatusNotSet]++
		}
	}

	summary.AttendancePercentage = Percentage(summary.Totals())
	return summary
}

// AggregateEmployee aggregates after clipping the period to the employee's employment
// window, so mid-period joiners and leavers expect fewer working days.
func AggregateEmployee(emp employee.Employee, days []attendance.Day, periodStart, periodEnd time.Time) attendance.Summary {
	start, end := calendar.Clip(periodStart, periodEnd, &emp.HireDate, emp.ResignationDate)

	summary := Aggregate(days, start, end)
	summary.EmployeeID = emp.ID
	return summary
}

// Pool sums member summaries into group totals. Group percentages are computed over these
// pooled counters, never as an average of member percentages.
func Pool(summaries []attendance.Summary) attendance.Totals {
	var totals attendance.Totals
	for _, s := range summaries {
		totals = totals.Add(s.Totals())
	}
	return totals
}

// Percentage returns present-equivalent days over expected non-excused working days, rounded
// half up to an integer and clamped to [0, 100]. An empty denominator yields 0.
func Percentage(t attendance.Totals) int {
	numerator := t.PresentEquivalent
	denominator := t.ExpectedWorkingDays - t.ExcusedDays
	if denominator <= 0 || numerator <= 0 {
		return 0
	}

	pct := (200*numerator + denominator) / (2 * denominator)
	if pct > 100 {
		return 100
	}
	return pct
}
