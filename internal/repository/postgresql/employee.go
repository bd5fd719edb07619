package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, company_id, department_id, full_name, hire_date, resignation_date,
			employment_status, deleted_at
		FROM employees
		WHERE id = $1 AND deleted_at IS NULL
	`

	var found employee.Employee
	err := q.QueryRow(ctx, query, id).Scan(
		&found.ID, &found.CompanyID, &found.DepartmentID, &found.FullName, &found.HireDate,
		&found.ResignationDate, &found.EmploymentStatus, &found.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return found, nil
}

// ListActiveByDepartment implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActiveByDepartment(ctx context.Context, companyID, departmentID string, from, to time.Time) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, company_id, department_id, full_name, hire_date, resignation_date,
			employment_status, deleted_at
		FROM employees
		WHERE company_id = $1
			AND department_id = $2
			AND deleted_at IS NULL
			AND hire_date <= $4
			AND (resignation_date IS NULL OR resignation_date >= $3)
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, companyID, departmentID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]employee.Employee, 0)
	for rows.Next() {
		var emp employee.Employee
		if err := rows.Scan(
			&emp.ID, &emp.CompanyID, &emp.DepartmentID, &emp.FullName, &emp.HireDate,
			&emp.ResignationDate, &emp.EmploymentStatus, &emp.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, nil
}
