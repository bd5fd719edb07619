package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the classification of one employee-day.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half_day"
	StatusLeave   Status = "leave"
	StatusHoliday Status = "holiday"
	StatusWeekoff Status = "weekoff"

	// StatusNotSet is synthesized for an expected working day without a record. It is never
	// persisted and never reinterpreted as absent by the engine.
	StatusNotSet Status = "not_set"
)

// Statuses lists every status in reporting order.
var Statuses = []Status{
	StatusPresent,
	StatusAbsent,
	StatusLate,
	StatusHalfDay,
	StatusLeave,
	StatusHoliday,
	StatusWeekoff,
	StatusNotSet,
}

func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsPersistable reports whether s may appear on a stored record.
func (s Status) IsPersistable() bool {
	return s.IsValid() && s != StatusNotSet
}

// IsPresentEquivalent reports whether s counts toward the attendance numerator.
// half_day counts as a full day.
func (s Status) IsPresentEquivalent() bool {
	return s == StatusPresent || s == StatusLate || s == StatusHalfDay
}

// IsExcused reports whether s removes the day from the attendance denominator.
func (s Status) IsExcused() bool {
	return s == StatusHoliday || s == StatusWeekoff
}

// Day is one employee's attendance record for one calendar date.
type Day struct {
	ID         string
	EmployeeID string
	Date       time.Time
	CheckIn    *time.Time
	CheckOut   *time.Time
	TotalHours *decimal.Decimal
	Status     Status
}

var secondsPerHour = decimal.NewFromInt(3600)

// WorkedHours returns the check-in to check-out span in hours when both are set, clamped at
// zero, otherwise the stored total. Nil means unknown.
func (d Day) WorkedHours() *decimal.Decimal {
	if d.CheckIn != nil && d.CheckOut != nil {
		span := d.CheckOut.Sub(*d.CheckIn)
		if span < 0 {
			span = 0
		}
		hours := decimal.NewFromInt(int64(span / time.Second)).Div(secondsPerHour)
		return &hours
	}
	if d.TotalHours != nil && d.TotalHours.IsNegative() {
		zero := decimal.Zero
		return &zero
	}
	return d.TotalHours
}

// Summary is the attendance of one employee over a period.
type Summary struct {
	EmployeeID           string             `json:"employee_id,omitempty"`
	PeriodStart          time.Time          `json:"period_start"`
	PeriodEnd            time.Time          `json:"period_end"`
	ExpectedWorkingDays  int                `json:"expected_working_days"`
	ExcusedDays          int                `json:"excused_days"`
	PresentEquivalent    int                `json:"present_equivalent"`
	AttendancePercentage int                `json:"attendance_percentage"`
	StatusCounts         map[Status]int     `json:"status_counts"`
	TotalHours           decimal.Decimal    `json:"total_hours"`
	Warnings             []IntegrityWarning `json:"warnings,omitempty"`
}

// Totals returns the summary as a single-member group.
func (s Summary) Totals() Totals {
	return Totals{
		Employees:           1,
		PresentEquivalent:   s.PresentEquivalent,
		ExpectedWorkingDays: s.ExpectedWorkingDays,
		ExcusedDays:         s.ExcusedDays,
	}
}

// Totals are the pooled counters a group percentage is computed from.
type Totals struct {
	Employees           int `json:"total_employees"`
	PresentEquivalent   int `json:"present_count"`
	ExpectedWorkingDays int `json:"expected_working_days"`
	ExcusedDays         int `json:"excused_days"`
}

func (t Totals) Add(o Totals) Totals {
	return Totals{
		Employees:           t.Employees + o.Employees,
		PresentEquivalent:   t.PresentEquivalent + o.PresentEquivalent,
		ExpectedWorkingDays: t.ExpectedWorkingDays + o.ExpectedWorkingDays,
		ExcusedDays:         t.ExcusedDays + o.ExcusedDays,
	}
}

// DepartmentTotals are the pooled counters of one department, as read from the
// store aggregate path or recomputed from raw rows.
type DepartmentTotals struct {
	DepartmentID   string
	DepartmentName string
	Totals
}

// DepartmentSummary is the derived attendance roll-up of one department for a month.
type DepartmentSummary struct {
	DepartmentID         string `json:"department_id"`
	Department           string `json:"department"`
	TotalEmployees       int    `json:"total_employees"`
	PresentCount         int    `json:"present_count"`
	ExpectedWorkingDays  int    `json:"expected_working_days"`
	ExcusedDays          int    `json:"excused_days"`
	AttendancePercentage int    `json:"attendance_percentage"`
}

// Source tells which path produced a roll-up.
type Source string

const (
	SourceAggregate  Source = "aggregate"
	SourceRecomputed Source = "recomputed"
)

// DepartmentReport is the department roll-up for one month.
type DepartmentReport struct {
	Year        int                 `json:"year"`
	Month       int                 `json:"month"`
	Source      Source              `json:"source"`
	Departments []DepartmentSummary `json:"departments"`
	Warnings    []IntegrityWarning  `json:"warnings,omitempty"`
}

// DepartmentDrift is a department whose store aggregate disagrees with the recomputation.
// Aggregate is nil when the store returned no row for the department.
type DepartmentDrift struct {
	DepartmentID string             `json:"department_id"`
	Aggregate    *DepartmentSummary `json:"aggregate"`
	Recomputed   DepartmentSummary  `json:"recomputed"`
}

// Reconciliation compares both roll-up paths for one company and month.
type Reconciliation struct {
	CompanyID   string             `json:"company_id"`
	Year        int                `json:"year"`
	Month       int                `json:"month"`
	Departments int                `json:"departments"`
	Drifted     []DepartmentDrift  `json:"drifted"`
	Warnings    []IntegrityWarning `json:"warnings"`
}

// CompanySummary pools every department of a company for one month.
type CompanySummary struct {
	CompanyID            string `json:"company_id"`
	Year                 int    `json:"year"`
	Month                int    `json:"month"`
	Source               Source `json:"source"`
	TotalDepartments     int    `json:"total_departments"`
	TotalEmployees       int    `json:"total_employees"`
	PresentCount         int    `json:"present_count"`
	ExpectedWorkingDays  int    `json:"expected_working_days"`
	ExcusedDays          int    `json:"excused_days"`
	AttendancePercentage int    `json:"attendance_percentage"`
}
