package moderation

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// TargetType is the kind of account a report is about
type TargetType string

const (
	TargetQQ    TargetType = "qq"
	TargetGroup TargetType = "group"
)

// Status of a ban record
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsValid reports whether t is a known target type
func (t TargetType) IsValid() bool {
	return t == TargetQQ || t == TargetGroup
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Audit action names
const (
	ActionApprove = "approve_ban"
	ActionReject  = "reject_ban"
	ActionModify  = "modify_ban_record"
)

// BanRecord is a moderation case
type BanRecord struct {
	ID         int64          `db:"id"`
	TargetType TargetType     `db:"target_type"`
	TargetID   string         `db:"target_id"`
	Reason     sql.NullString `db:"reason"`
	Evidence   pq.StringArray `db:"evidence"`
	HWIC       string         `db:"hwic"`
	IP         sql.NullString `db:"ip"`
	Status     Status         `db:"status"`
	Note       sql.NullString `db:"note"`
	CreateAt   time.Time      `db:"create_at"`
	UpdateAt   time.Time      `db:"update_at"`
}

// AdminAction is an append-only audit entry
type AdminAction struct {
	ID        int64     `db:"id"`
	User      string    `db:"user"`
	Action    string    `db:"action"`
	TargetID  int64     `db:"target_id"`
	Detail    string    `db:"detail"`
	Timestamp time.Time `db:"timestamp"`
}

// RecordPatch lists the fields modify may change. nil means untouched.
type RecordPatch struct {
	Reason   *string
	Evidence []string
	Status   *Status
	Note     *string
}

// Fields returns the names of the fields set on the patch in a stable order.
func (p RecordPatch) Fields() []string {
	fields := make([]string, 0, 4)
	if p.Reason != nil {
		fields = append(fields, "reason")
	}
	if p.Evidence != nil {
		fields = append(fields, "evidence")
	}
	if p.Status != nil {
		fields = append(fields, "status")
	}
	if p.Note != nil {
		fields = append(fields, "note")
	}
	return fields
}
