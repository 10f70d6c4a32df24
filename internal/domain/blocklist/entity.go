package blocklist

import (
	"database/sql"
	"time"
)

// BlockedHWIC is a device identifier barred from submitting reports
type BlockedHWIC struct {
	ID        int64          `db:"id" json:"id"`
	HWIC      string         `db:"hwic" json:"hwic"`
	Reason    sql.NullString `db:"reason" json:"-"`
	BlockedAt time.Time      `db:"blocked_at" json:"blocked_at"`
}

// ReasonText returns the block reason or "" when none was given.
func (b *BlockedHWIC) ReasonText() string {
	if b.Reason.Valid {
		return b.Reason.String
	}
	return ""
}
