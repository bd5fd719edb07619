package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.LeaveBalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

// GetByEmployeeTypeYear implements leave.LeaveBalanceRepository.
// Inside a transaction the row is locked until commit.
func (r *leaveBalanceRepositoryImpl) GetByEmployeeTypeYear(ctx context.Context, employeeID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lb.id, lb.employee_id, lb.leave_type_id, lb.year,
			   lb.allocated_days, lb.carried_forward, lb.used_days,
			   lb.created_at, lb.updated_at
		FROM leave_balances lb
		WHERE lb.employee_id = $1 AND lb.leave_type_id = $2 AND lb.year = $3
	`
	if _, inTx := database.TxFromContext(ctx); inTx {
		query += " FOR UPDATE"
	}

	var b leave.LeaveBalance
	err := q.QueryRow(ctx, query, employeeID, leaveTypeID, year).Scan(
		&b.ID, &b.EmployeeID, &b.LeaveTypeID, &b.Year,
		&b.AllocatedDays, &b.CarriedForward, &b.UsedDays,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveBalance{}, leave.ErrBalanceNotFound
		}
		return leave.LeaveBalance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}

	return b, nil
}

// ListByEmployeeYear implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) ListByEmployeeYear(ctx context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lb.id, lb.employee_id, lb.leave_type_id, lb.year,
			   lb.allocated_days, lb.carried_forward, lb.used_days,
			   lb.created_at, lb.updated_at,
			   lt.name AS leave_type_name
		FROM leave_balances lb
		JOIN leave_types lt ON lb.leave_type_id = lt.id
		WHERE lb.employee_id = $1 AND lb.year = $2
		ORDER BY lt.name, lb.id
	`

	rows, err := q.Query(ctx, query, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}
	defer rows.Close()

	balances := make([]leave.LeaveBalance, 0)
	for rows.Next() {
		var b leave.LeaveBalance
		if err := rows.Scan(
			&b.ID, &b.EmployeeID, &b.LeaveTypeID, &b.Year,
			&b.AllocatedDays, &b.CarriedForward, &b.UsedDays,
			&b.CreatedAt, &b.UpdatedAt,
			&b.LeaveTypeName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave balances: %w", err)
	}

	return balances, nil
}

// CreateIfMissing implements leave.LeaveBalanceRepository.
// A concurrent insert of the same (employee, type, year) waits for the other transaction and
// then does nothing.
func (r *leaveBalanceRepositoryImpl) CreateIfMissing(ctx context.Context, balance leave.LeaveBalance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (
			id, employee_id, leave_type_id, year, allocated_days, carried_forward, used_days,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (employee_id, leave_type_id, year) DO NOTHING
	`

	if _, err := q.Exec(ctx, query,
		balance.ID, balance.EmployeeID, balance.LeaveTypeID, balance.Year,
		balance.AllocatedDays, balance.CarriedForward, balance.UsedDays,
	); err != nil {
		return fmt.Errorf("failed to create leave balance: %w", err)
	}

	return nil
}

// UpdateUsedDays implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) UpdateUsedDays(ctx context.Context, id string, usedDays int) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE leave_balances SET used_days = $2, updated_at = NOW() WHERE id = $1`

	commandTag, err := q.Exec(ctx, query, id, usedDays)
	if err != nil {
		return fmt.Errorf("failed to update used days: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return leave.ErrBalanceNotFound
	}

	return nil
}

// ListAppliedRequestIDs implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) ListAppliedRequestIDs(ctx context.Context, balanceID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT request_id FROM leave_balance_applications WHERE balance_id = $1 ORDER BY applied_at`

	rows, err := q.Query(ctx, query, balanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applied requests: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan applied requests: %w", err)
	}
	return ids, nil
}

// RecordApplication implements leave.LeaveBalanceRepository.
// request_id is unique, so a second application of one request fails at the store as well.
func (r *leaveBalanceRepositoryImpl) RecordApplication(ctx context.Context, application leave.LedgerApplication) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balance_applications (id, balance_id, request_id, days, applied_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := q.Exec(ctx, query,
		application.ID, application.BalanceID, application.RequestID, application.Days, application.AppliedAt,
	); err != nil {
		return fmt.Errorf("failed to record ledger application: %w", err)
	}

	return nil
}
