package banlist

import (
	"context"

	"github.com/jmoiron/sqlx"
)

const approvedColumns = `id, target_type, target_id, reason, evidence, create_at, update_at`

// Repository reads approved ban records
type Repository interface {
	// FindApproved returns every approved record for the target, oldest first.
	FindApproved(ctx context.Context, targetType, targetID string) ([]*ApprovedRecord, error)
	CountApproved(ctx context.Context) (int, error)
	// ListApproved pages approved records newest update first. limit <= 0 returns all.
	ListApproved(ctx context.Context, offset, limit int) ([]*ApprovedRecord, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new banlist repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindApproved(ctx context.Context, targetType, targetID string) ([]*ApprovedRecord, error) {
	query := `
		SELECT ` + approvedColumns + ` FROM ban_records
		WHERE target_type = $1 AND target_id = $2 AND status = 'approved'
		ORDER BY id ASC
	`
	var records []*ApprovedRecord
	err := r.db.SelectContext(ctx, &records, query, targetType, targetID)
	return records, err
}

func (r *repository) CountApproved(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM ban_records WHERE status = 'approved'`)
	return count, err
}

func (r *repository) ListApproved(ctx context.Context, offset, limit int) ([]*ApprovedRecord, error) {
	query := `
		SELECT ` + approvedColumns + ` FROM ban_records
		WHERE status = 'approved'
		ORDER BY update_at DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	var records []*ApprovedRecord
	err := r.db.SelectContext(ctx, &records, query, args...)
	return records, err
}
