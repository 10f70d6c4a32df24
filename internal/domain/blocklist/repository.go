package blocklist

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Repository defines device block data access
type Repository interface {
	// Create inserts a block unless one already exists for hwic. Reports whether a row was added.
	Create(ctx context.Context, hwic, reason string) (bool, error)
	// DeleteAll removes every entry for hwic and returns how many were removed.
	DeleteAll(ctx context.Context, hwic string) (int64, error)
	Exists(ctx context.Context, hwic string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]*BlockedHWIC, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new blocklist repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, hwic, reason string) (bool, error) {
	query := `
		INSERT INTO blocked_hwics (hwic, reason)
		SELECT $1, $2
		WHERE NOT EXISTS (SELECT 1 FROM blocked_hwics WHERE hwic = $1)
	`
	result, err := r.db.ExecContext(ctx, query, hwic, sql.NullString{String: reason, Valid: reason != ""})
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *repository) DeleteAll(ctx context.Context, hwic string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blocked_hwics WHERE hwic = $1`, hwic)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *repository) Exists(ctx context.Context, hwic string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM blocked_hwics WHERE hwic = $1)`, hwic)
	return exists, err
}

func (r *repository) List(ctx context.Context, offset, limit int) ([]*BlockedHWIC, error) {
	query := `
		SELECT id, hwic, reason, blocked_at FROM blocked_hwics
		ORDER BY blocked_at DESC
		LIMIT $1 OFFSET $2
	`
	var blocks []*BlockedHWIC
	err := r.db.SelectContext(ctx, &blocks, query, limit, offset)
	return blocks, err
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM blocked_hwics`)
	return count, err
}
