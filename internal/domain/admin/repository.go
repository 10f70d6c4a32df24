package admin

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository reads the admin audit log. Entries are written by the moderation domain.
type Repository interface {
	ListActions(ctx context.Context, filter ActionFilter) ([]*ActionLog, int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates admin repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListActions(ctx context.Context, filter ActionFilter) ([]*ActionLog, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.Action != "" {
		where += fmt.Sprintf(` AND action = $%d`, argPos)
		args = append(args, filter.Action)
		argPos++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM admin_actions`+where, args...); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, "user", action, target_id, detail, timestamp FROM admin_actions` + where +
		fmt.Sprintf(` ORDER BY timestamp DESC, id DESC LIMIT $%d OFFSET $%d`, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	var logs []*ActionLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
