package postgresql_test

import (
	"context"
	"fmt"
	"os"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
)

// TestDatabaseSetup holds the connection of the integration tests
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL. ok is false when the variable is unset.
func NewTestDatabase() (setup *TestDatabaseSetup, ok bool, err error) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		return nil, false, nil
	}

	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		return nil, true, fmt.Errorf("failed to connect to test database: %w", err)
	}

	return &TestDatabaseSetup{DB: db}, true, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS departments (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		name TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		department_id TEXT REFERENCES departments(id),
		full_name TEXT NOT NULL,
		hire_date DATE NOT NULL,
		resignation_date DATE,
		employment_status TEXT NOT NULL DEFAULT 'active',
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS attendances (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		date DATE NOT NULL,
		clock_in TIMESTAMPTZ,
		clock_out TIMESTAMPTZ,
		total_hours NUMERIC(6, 2),
		status TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS leave_types (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		name TEXT NOT NULL,
		max_days INT NOT NULL DEFAULT 0,
		is_paid BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS leave_balances (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		leave_type_id TEXT NOT NULL REFERENCES leave_types(id),
		year INT NOT NULL,
		allocated_days INT NOT NULL DEFAULT 0,
		carried_forward INT NOT NULL DEFAULT 0,
		used_days INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (employee_id, leave_type_id, year)
	)`,
	`CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		leave_type_id TEXT NOT NULL REFERENCES leave_types(id),
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		total_days INT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		requested_at TIMESTAMPTZ NOT NULL,
		resolved_at TIMESTAMPTZ,
		resolved_by TEXT,
		rejection_reason TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS leave_balance_applications (
		id TEXT PRIMARY KEY,
		balance_id TEXT NOT NULL REFERENCES leave_balances(id),
		request_id TEXT NOT NULL UNIQUE REFERENCES leave_requests(id),
		days INT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate creates the tables the repositories read when they do not exist yet
func (t *TestDatabaseSetup) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := t.DB.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// TruncateAllTables removes all rows of the engine tables
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"leave_balance_applications",
		"leave_requests",
		"leave_balances",
		"leave_types",
		"attendances",
		"employees",
		"departments",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// Close closes the database connection
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
