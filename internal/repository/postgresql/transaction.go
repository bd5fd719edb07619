package postgresql

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
)

// WithTransaction executes fn inside a database transaction
func WithTransaction(ctx context.Context, db *database.DB, fn func(ctx context.Context) error) error {
	return db.WithinTx(ctx, fn)
}

// GetQuerier returns either transaction or pool
// Used in repositories to support both transactional and non-transactional operations
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	return db.Querier(ctx)
}
