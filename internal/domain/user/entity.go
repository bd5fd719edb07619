package user

import "github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Can approve leave and view their department
	RoleEmployee Role = "employee" // Regular employee
)

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Principal is the authenticated caller as described by the access token claims.
// Identity is issued elsewhere; this service only reads it.
type Principal struct {
	UserID       string
	CompanyID    string
	EmployeeID   string
	DepartmentID string
	Role         Role
}

// Validate checks the claims each role depends on for scoping.
func (p Principal) Validate() error {
	if !p.Role.IsValid() || p.CompanyID == "" {
		return ErrInvalidPrincipal
	}
	switch p.Role {
	case RoleManager:
		if p.DepartmentID == "" {
			return ErrInvalidPrincipal
		}
	case RoleEmployee:
		if p.EmployeeID == "" {
			return ErrInvalidPrincipal
		}
	}
	return nil
}

// IsOwner checks if user is company owner
func (p Principal) IsOwner() bool {
	return p.Role == RoleOwner
}

// IsManager checks if user is manager or owner
func (p Principal) IsManager() bool {
	return p.Role == RoleManager || p.Role == RoleOwner
}

// Scope returns the employees the caller may act on: the whole company for owners, their
// department for managers, themselves otherwise.
func (p Principal) Scope() employee.Scope {
	switch p.Role {
	case RoleOwner:
		return employee.Scope{CompanyID: p.CompanyID}
	case RoleManager:
		return employee.Scope{CompanyID: p.CompanyID, DepartmentID: p.DepartmentID}
	default:
		return employee.Scope{CompanyID: p.CompanyID, EmployeeID: p.EmployeeID}
	}
}
