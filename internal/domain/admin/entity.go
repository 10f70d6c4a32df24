package admin

import "time"

// ActionLog is one admin_actions row
type ActionLog struct {
	ID        int64     `db:"id"`
	User      string    `db:"user"`
	Action    string    `db:"action"`
	TargetID  int64     `db:"target_id"`
	Detail    string    `db:"detail"`
	Timestamp time.Time `db:"timestamp"`
}
