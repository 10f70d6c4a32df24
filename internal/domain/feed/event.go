package feed

import (
	"context"
	"time"
)

// EventType for feed messages
type EventType string

const (
	EventReportSubmitted EventType = "report_submitted"
	EventBanApproved     EventType = "ban_approved"
	EventBanRejected     EventType = "ban_rejected"
	EventBanModified     EventType = "ban_modified"
	EventHWICBlocked     EventType = "hwic_blocked"
	EventHWICUnblocked   EventType = "hwic_unblocked"
)

// Event is a moderation event pushed to connected admins.
type Event struct {
	Type      EventType   `json:"type"`
	RecordID  int64       `json:"record_id,omitempty"`
	HWIC      string      `json:"hwic,omitempty"`
	Actor     string      `json:"actor,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Publisher delivers events to the feed. Implementations must not block the caller
// on slow subscribers.
type Publisher interface {
	Publish(ctx context.Context, event *Event)
}

type discard struct{}

func (discard) Publish(context.Context, *Event) {}

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}
