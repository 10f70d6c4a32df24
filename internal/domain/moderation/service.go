package moderation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/cloudban/cloudban-api/internal/domain/feed"
	"github.com/cloudban/cloudban-api/internal/pkg/logger"
	"github.com/cloudban/cloudban-api/internal/pkg/metrics"
)

const (
	pendingLimit      = 100
	defaultQueryLimit = 50
	maxQueryLimit     = 1000
	trendDays         = 7
	topSourcesLimit   = 5
)

// BlockChecker reports whether a device is barred from reporting
type BlockChecker interface {
	IsBlocked(ctx context.Context, hwic string) (bool, error)
}

// Service handles the moderation workflow
type Service struct {
	repo   Repository
	blocks BlockChecker
	feed   feed.Publisher
	now    func() time.Time
}

// NewService creates moderation service
func NewService(repo Repository, blocks BlockChecker, publisher feed.Publisher) *Service {
	if publisher == nil {
		publisher = feed.Discard
	}
	return &Service{
		repo:   repo,
		blocks: blocks,
		feed:   publisher,
		now:    time.Now,
	}
}

// SubmitReport creates a pending record unless the reporting device is blocked
func (s *Service) SubmitReport(ctx context.Context, req *SubmitReportRequest, ip string) (*BanRecord, error) {
	blocked, err := s.blocks.IsBlocked(ctx, req.HWIC)
	if err != nil {
		return nil, err
	}
	if blocked {
		metrics.RecordReport(false)
		logger.LogWarn(ctx, "Report from blocked HWIC rejected", "hwic", req.HWIC, "ip", ip)
		return nil, ErrHWICBlocked
	}

	record := &BanRecord{
		TargetType: TargetType(req.TargetType),
		TargetID:   req.TargetID,
		Reason:     sql.NullString{String: req.Reason, Valid: true},
		Evidence:   pq.StringArray(req.Evidence),
		HWIC:       req.HWIC,
		IP:         sql.NullString{String: ip, Valid: ip != ""},
		Status:     StatusPending,
	}
	if record.Evidence == nil {
		record.Evidence = pq.StringArray{}
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	metrics.RecordReport(true)
	logger.LogInfo(ctx, "Report submitted", "record_id", record.ID, "target_type", record.TargetType, "target_id", record.TargetID)
	s.feed.Publish(ctx, &feed.Event{
		Type:     feed.EventReportSubmitted,
		RecordID: record.ID,
		Data: map[string]string{
			"target_type": string(record.TargetType),
			"target_id":   record.TargetID,
		},
	})

	return record, nil
}

// Approve moves a pending record to approved
func (s *Service) Approve(ctx context.Context, actor string, req *OperateRecordRequest) (*BanRecord, error) {
	return s.decide(ctx, actor, req, StatusApproved, ActionApprove, feed.EventBanApproved)
}

// Reject moves a pending record to rejected
func (s *Service) Reject(ctx context.Context, actor string, req *OperateRecordRequest) (*BanRecord, error) {
	return s.decide(ctx, actor, req, StatusRejected, ActionReject, feed.EventBanRejected)
}

func (s *Service) decide(ctx context.Context, actor string, req *OperateRecordRequest, status Status, action string, event feed.EventType) (*BanRecord, error) {
	detail := "Set status to " + string(status)
	if req.Note != "" {
		detail += "; note: " + req.Note
	}

	record, err := s.repo.Decide(ctx, req.RecordID, status, req.Note, &AdminAction{
		User:     actor,
		Action:   action,
		TargetID: req.RecordID,
		Detail:   detail,
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordDecision(action)
	logger.LogInfo(ctx, "Ban record decided", "record_id", record.ID, "status", status, "actor", actor)
	s.feed.Publish(ctx, &feed.Event{Type: event, RecordID: record.ID, Actor: actor})

	return record, nil
}

// Modify applies a partial update. A status change here bypasses the pending-only guard.
func (s *Service) Modify(ctx context.Context, actor string, req *ModifyRecordRequest) (*BanRecord, []string, error) {
	patch := req.Patch()
	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, nil, ErrInvalidStatus
	}

	updated := patch.Fields()
	record, err := s.repo.Modify(ctx, req.RecordID, patch, &AdminAction{
		User:     actor,
		Action:   ActionModify,
		TargetID: req.RecordID,
		Detail:   "Updated fields: " + strings.Join(updated, ", "),
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.RecordDecision(ActionModify)
	logger.LogInfo(ctx, "Ban record modified", "record_id", record.ID, "fields", updated, "actor", actor)
	s.feed.Publish(ctx, &feed.Event{
		Type:     feed.EventBanModified,
		RecordID: record.ID,
		Actor:    actor,
		Data:     map[string][]string{"updated": updated},
	})

	return record, updated, nil
}

// ListPending returns up to 100 pending records, most recently updated first
func (s *Service) ListPending(ctx context.Context) ([]*BanRecord, error) {
	return s.repo.List(ctx, RecordFilter{Status: StatusPending, Limit: pendingLimit})
}

// QueryRecords lists records. Unknown filter values are ignored rather than rejected.
func (s *Service) QueryRecords(ctx context.Context, filter RecordFilter) ([]*BanRecord, error) {
	if !filter.TargetType.IsValid() {
		filter.TargetType = ""
	}
	if !filter.Status.IsValid() {
		filter.Status = ""
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultQueryLimit
	}
	if filter.Limit > maxQueryLimit {
		filter.Limit = maxQueryLimit
	}
	return s.repo.List(ctx, filter)
}

// Stats returns record counts by status
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Approved: counts[StatusApproved],
		Rejected: counts[StatusRejected],
		Pending:  counts[StatusPending],
	}
	for _, c := range counts {
		stats.Total += c
	}
	return stats, nil
}

// StatsDetail returns the trailing 7-day trend (oldest first), top reporter devices
// and addresses, and per-type totals.
func (s *Service) StatsDetail(ctx context.Context) (*StatsDetail, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since := today.AddDate(0, 0, -(trendDays - 1))

	byDay, err := s.repo.CountByDay(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("count by day: %w", err)
	}

	detail := &StatsDetail{
		Trend: make([]DayCount, 0, trendDays),
		HWIC:  []HWICCount{},
		IP:    []IPCount{},
		Type:  []TypeCount{},
	}
	for i := 0; i < trendDays; i++ {
		day := since.AddDate(0, 0, i)
		detail.Trend = append(detail.Trend, DayCount{Date: day, Count: byDay[day.Format("2006-01-02")]})
	}

	hwics, err := s.repo.TopValues(ctx, "hwic", topSourcesLimit)
	if err != nil {
		return nil, fmt.Errorf("top hwic: %w", err)
	}
	for _, v := range hwics {
		detail.HWIC = append(detail.HWIC, HWICCount{HWIC: v.Value, Count: v.Count})
	}

	ips, err := s.repo.TopValues(ctx, "ip", topSourcesLimit)
	if err != nil {
		return nil, fmt.Errorf("top ip: %w", err)
	}
	for _, v := range ips {
		detail.IP = append(detail.IP, IPCount{IP: v.Value, Count: v.Count})
	}

	types, err := s.repo.TopValues(ctx, "target_type", 0)
	if err != nil {
		return nil, fmt.Errorf("type counts: %w", err)
	}
	for _, v := range types {
		detail.Type = append(detail.Type, TypeCount{Type: v.Value, Count: v.Count})
	}

	return detail, nil
}
