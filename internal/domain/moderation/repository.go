package moderation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const recordColumns = `id, target_type, target_id, reason, evidence, hwic, ip, status, note, create_at, update_at`

// Repository defines ban record data access
type Repository interface {
	Create(ctx context.Context, record *BanRecord) error
	GetByID(ctx context.Context, id int64) (*BanRecord, error)

	// Decide moves a pending record to status and appends the audit entry in one transaction.
	Decide(ctx context.Context, id int64, status Status, note string, action *AdminAction) (*BanRecord, error)
	// Modify applies patch and appends the audit entry in one transaction.
	Modify(ctx context.Context, id int64, patch RecordPatch, action *AdminAction) (*BanRecord, error)

	List(ctx context.Context, filter RecordFilter) ([]*BanRecord, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
	CountByDay(ctx context.Context, since time.Time) (map[string]int, error)
	TopValues(ctx context.Context, column string, limit int) ([]ValueCount, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new moderation repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, record *BanRecord) error {
	query := `
		INSERT INTO ban_records (target_type, target_id, reason, evidence, hwic, ip, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, create_at, update_at
	`
	evidence := record.Evidence
	if evidence == nil {
		evidence = pq.StringArray{}
	}
	return r.db.QueryRowxContext(ctx, query,
		record.TargetType,
		record.TargetID,
		record.Reason,
		evidence,
		record.HWIC,
		record.IP,
		record.Status,
	).Scan(&record.ID, &record.CreateAt, &record.UpdateAt)
}

func (r *repository) GetByID(ctx context.Context, id int64) (*BanRecord, error) {
	var record BanRecord
	err := r.db.GetContext(ctx, &record, `SELECT `+recordColumns+` FROM ban_records WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repository) Decide(ctx context.Context, id int64, status Status, note string, action *AdminAction) (*BanRecord, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Conditional update: only one concurrent decision can match status = 'pending'.
	query := `
		UPDATE ban_records
		SET status = $2, note = $3, update_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + recordColumns
	var record BanRecord
	err = tx.GetContext(ctx, &record, query, id, status, sql.NullString{String: note, Valid: note != ""})
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM ban_records WHERE id = $1)`, id); err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrAlreadyProcessed
		}
		return nil, ErrRecordNotFound
	}

	if err := insertAction(ctx, tx, action); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) Modify(ctx context.Context, id int64, patch RecordPatch, action *AdminAction) (*BanRecord, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	sets := []string{}
	args := []interface{}{}
	argPos := 1

	if patch.Reason != nil {
		sets = append(sets, fmt.Sprintf("reason = $%d", argPos))
		args = append(args, *patch.Reason)
		argPos++
	}
	if patch.Evidence != nil {
		sets = append(sets, fmt.Sprintf("evidence = $%d", argPos))
		args = append(args, pq.StringArray(patch.Evidence))
		argPos++
	}
	if patch.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *patch.Status)
		argPos++
	}
	if patch.Note != nil {
		sets = append(sets, fmt.Sprintf("note = $%d", argPos))
		args = append(args, *patch.Note)
		argPos++
	}
	sets = append(sets, "update_at = NOW()")

	query := fmt.Sprintf(`UPDATE ban_records SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argPos, recordColumns)
	args = append(args, id)

	var record BanRecord
	if err := tx.GetContext(ctx, &record, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	if err := insertAction(ctx, tx, action); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &record, nil
}

func insertAction(ctx context.Context, tx *sqlx.Tx, action *AdminAction) error {
	query := `
		INSERT INTO admin_actions ("user", action, target_id, detail)
		VALUES ($1, $2, $3, $4)
		RETURNING id, timestamp
	`
	return tx.QueryRowxContext(ctx, query, action.User, action.Action, action.TargetID, action.Detail).
		Scan(&action.ID, &action.Timestamp)
}

func (r *repository) List(ctx context.Context, filter RecordFilter) ([]*BanRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM ban_records WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.TargetType != "" {
		query += fmt.Sprintf(` AND target_type = $%d`, argPos)
		args = append(args, filter.TargetType)
		argPos++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argPos)
		args = append(args, filter.Status)
		argPos++
	}

	query += ` ORDER BY update_at DESC, id DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argPos)
		args = append(args, filter.Limit)
		argPos++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argPos)
		args = append(args, filter.Offset)
	}

	var records []*BanRecord
	err := r.db.SelectContext(ctx, &records, query, args...)
	return records, err
}

func (r *repository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	var rows []ValueCount
	err := r.db.SelectContext(ctx, &rows, `SELECT status AS value, COUNT(*) AS count FROM ban_records GROUP BY status`)
	if err != nil {
		return nil, err
	}
	counts := make(map[Status]int, len(rows))
	for _, row := range rows {
		counts[Status(row.Value)] = row.Count
	}
	return counts, nil
}

// CountByDay groups records updated since the given instant by UTC calendar day (YYYY-MM-DD).
func (r *repository) CountByDay(ctx context.Context, since time.Time) (map[string]int, error) {
	query := `
		SELECT to_char(update_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS value, COUNT(*) AS count
		FROM ban_records
		WHERE update_at >= $1
		GROUP BY value
	`
	var rows []ValueCount
	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Value] = row.Count
	}
	return counts, nil
}

var groupableColumns = map[string]bool{"hwic": true, "ip": true, "target_type": true}

// TopValues counts records grouped by column, most frequent first. limit <= 0 returns every group.
func (r *repository) TopValues(ctx context.Context, column string, limit int) ([]ValueCount, error) {
	if !groupableColumns[column] {
		return nil, fmt.Errorf("column %q cannot be grouped", column)
	}

	query := fmt.Sprintf(`
		SELECT COALESCE(%[1]s, '') AS value, COUNT(*) AS count
		FROM ban_records
		GROUP BY %[1]s
		ORDER BY count DESC, value ASC`, column)
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	var rows []ValueCount
	err := r.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}
