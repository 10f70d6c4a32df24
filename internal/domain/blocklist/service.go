package blocklist

import (
	"context"
	"strings"

	"github.com/cloudban/cloudban-api/internal/domain/feed"
	"github.com/cloudban/cloudban-api/internal/pkg/logger"
	"github.com/cloudban/cloudban-api/internal/pkg/metrics"
)

// Service manages the device block registry
type Service struct {
	repo Repository
	feed feed.Publisher
}

// NewService creates blocklist service
func NewService(repo Repository, publisher feed.Publisher) *Service {
	if publisher == nil {
		publisher = feed.Discard
	}
	return &Service{repo: repo, feed: publisher}
}

// Block adds hwic to the registry. Blocking an already blocked device is a no-op.
func (s *Service) Block(ctx context.Context, actor, hwic, reason string) (*BlockResult, error) {
	// Stored exactly as given so IsBlocked matches what reporters send.
	if strings.TrimSpace(hwic) == "" {
		return nil, ErrHWICRequired
	}

	created, err := s.repo.Create(ctx, hwic, reason)
	if err != nil {
		return nil, err
	}

	if created {
		metrics.RecordHWICChange("block")
		logger.LogInfo(ctx, "HWIC blocked", "hwic", hwic, "actor", actor)
		s.feed.Publish(ctx, &feed.Event{
			Type:  feed.EventHWICBlocked,
			HWIC:  hwic,
			Actor: actor,
			Data:  map[string]string{"reason": reason},
		})
	}

	return &BlockResult{Message: "HWIC blocked", Created: created}, nil
}

// Unblock removes every entry for hwic.
func (s *Service) Unblock(ctx context.Context, actor, hwic string) (*UnblockResult, error) {
	if strings.TrimSpace(hwic) == "" {
		return nil, ErrHWICRequired
	}

	deleted, err := s.repo.DeleteAll(ctx, hwic)
	if err != nil {
		return nil, err
	}

	if deleted > 0 {
		metrics.RecordHWICChange("unblock")
		logger.LogInfo(ctx, "HWIC unblocked", "hwic", hwic, "actor", actor, "deleted", deleted)
		s.feed.Publish(ctx, &feed.Event{Type: feed.EventHWICUnblocked, HWIC: hwic, Actor: actor})
	}

	return &UnblockResult{Message: "HWIC unblocked", Deleted: deleted}, nil
}

// IsBlocked reports whether hwic is in the registry
func (s *Service) IsBlocked(ctx context.Context, hwic string) (bool, error) {
	return s.repo.Exists(ctx, hwic)
}

// List returns blocked devices newest first
func (s *Service) List(ctx context.Context, offset, limit int) ([]*BlockedHWIC, int, error) {
	blocks, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return blocks, total, nil
}
