package banlist

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// ApprovedRecord is the public column set of an approved ban record.
// hwic, ip, status and note are never selected.
type ApprovedRecord struct {
	ID         int64          `db:"id"`
	TargetType string         `db:"target_type"`
	TargetID   string         `db:"target_id"`
	Reason     sql.NullString `db:"reason"`
	Evidence   pq.StringArray `db:"evidence"`
	CreateAt   time.Time      `db:"create_at"`
	UpdateAt   time.Time      `db:"update_at"`
}
