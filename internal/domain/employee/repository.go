package employee

import (
	"context"
	"time"
)

// EmployeeRepository reads employee records from the record store.
type EmployeeRepository interface {
	// GetByID retrieves a non-deleted employee
	GetByID(ctx context.Context, id string) (Employee, error)

	// ListActiveByDepartment returns employees of the department whose employment window
	// overlaps [from, to], ordered by id
	ListActiveByDepartment(ctx context.Context, companyID, departmentID string, from, to time.Time) ([]Employee, error)
}

// DepartmentRepository reads departments from the record store.
type DepartmentRepository interface {
	// ListActive returns the company's active departments ordered by name, then id
	ListActive(ctx context.Context, companyID string) ([]Department, error)
	GetByID(ctx context.Context, id string) (Department, error)

	// ListCompanyIDs returns every company that has an active department, ordered by id
	ListCompanyIDs(ctx context.Context) ([]string, error)
}
