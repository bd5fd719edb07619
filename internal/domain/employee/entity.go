package employee

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/calendar"
)

type Employee struct {
	ID               string
	CompanyID        string
	DepartmentID     string
	FullName         string
	HireDate         time.Time
	ResignationDate  *time.Time
	EmploymentStatus EmploymentStatus
	DeletedAt        *time.Time
}

type EmploymentStatus string

const EmploymentStatusActive EmploymentStatus = "active"

// IsActive reports whether the employee is still employed and may file requests.
func (e Employee) IsActive() bool {
	return e.DeletedAt == nil && e.EmploymentStatus == EmploymentStatusActive
}

// EmployedBetween reports whether the employment window overlaps [from, to].
func (e Employee) EmployedBetween(from, to time.Time) bool {
	if e.DeletedAt != nil {
		return false
	}
	if calendar.DateOf(e.HireDate).After(calendar.DateOf(to)) {
		return false
	}
	if e.ResignationDate != nil && calendar.DateOf(*e.ResignationDate).Before(calendar.DateOf(from)) {
		return false
	}
	return true
}

// Department groups employees for roll-ups.
type Department struct {
	ID        string
	CompanyID string
	Name      string
	IsActive  bool
}

// Scope restricts which employees a caller may act on. Empty fields do not restrict.
type Scope struct {
	CompanyID    string
	DepartmentID string
	EmployeeID   string
}

// Check returns ErrEmployeeNotFound for an employee of another company and ErrUnauthorized
// for one outside the caller's department or identity.
func (s Scope) Check(e Employee) error {
	if s.CompanyID != "" && e.CompanyID != s.CompanyID {
		return ErrEmployeeNotFound
	}
	if s.DepartmentID != "" && e.DepartmentID != s.DepartmentID {
		return ErrUnauthorized
	}
	if s.EmployeeID != "" && e.ID != s.EmployeeID {
		return ErrUnauthorized
	}
	return nil
}
