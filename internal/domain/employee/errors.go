package employee

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrUnauthorized       = errors.New("unauthorized to access this employee")
	ErrEmployeeInactive   = errors.New("employee is not active")
)
