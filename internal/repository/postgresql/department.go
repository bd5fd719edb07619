package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type departmentRepositoryImpl struct {
	db *database.DB
}

func NewDepartmentRepository(db *database.DB) employee.DepartmentRepository {
	return &departmentRepositoryImpl{db: db}
}

// ListActive implements employee.DepartmentRepository.
func (d *departmentRepositoryImpl) ListActive(ctx context.Context, companyID string) ([]employee.Department, error) {
	q := GetQuerier(ctx, d.db)

	query := `
		SELECT id, company_id, name, is_active
		FROM departments
		WHERE company_id = $1 AND is_active
		ORDER BY name, id
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	departments := make([]employee.Department, 0)
	for rows.Next() {
		var dept employee.Department
		if err := rows.Scan(&dept.ID, &dept.CompanyID, &dept.Name, &dept.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, dept)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate departments: %w", err)
	}

	return departments, nil
}

// GetByID implements employee.DepartmentRepository.
func (d *departmentRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Department, error) {
	q := GetQuerier(ctx, d.db)

	query := `SELECT id, company_id, name, is_active FROM departments WHERE id = $1`

	var dept employee.Department
	err := q.QueryRow(ctx, query, id).Scan(&dept.ID, &dept.CompanyID, &dept.Name, &dept.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Department{}, employee.ErrDepartmentNotFound
		}
		return employee.Department{}, fmt.Errorf("failed to get department: %w", err)
	}

	return dept, nil
}

// ListCompanyIDs implements employee.DepartmentRepository.
func (d *departmentRepositoryImpl) ListCompanyIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, d.db)

	query := `SELECT DISTINCT company_id FROM departments WHERE is_active ORDER BY company_id`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan company id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate companies: %w", err)
	}

	return ids, nil
}
