package banlist

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudban/cloudban-api/internal/pkg/cache"
	"github.com/cloudban/cloudban-api/internal/pkg/logger"
	"github.com/cloudban/cloudban-api/internal/pkg/metrics"
)

// Service serves public read paths. Results are cached for ttl and are not
// invalidated when records change, so reads may lag writes by up to ttl.
type Service struct {
	repo  Repository
	cache cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewService creates banlist service
func NewService(repo Repository, c cache.Cache, ttl time.Duration) *Service {
	if c == nil {
		c = cache.New(nil)
	}
	if ttl <= 0 {
		ttl = cache.TTLDefault
	}
	return &Service{repo: repo, cache: c, ttl: ttl, now: time.Now}
}

// Lookup reports whether the target has an approved ban
func (s *Service) Lookup(ctx context.Context, targetType, targetID string) (*LookupResult, error) {
	key := cache.Key(cache.PrefixLookup, targetType, targetID, "approved")

	var cached LookupResult
	if s.fromCache(ctx, "lookup", key, &cached) {
		return &cached, nil
	}

	records, err := s.repo.FindApproved(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}

	result := &LookupResult{Banned: false}
	if len(records) > 0 {
		first := records[0]
		evidence := []string(first.Evidence)
		if evidence == nil {
			evidence = []string{}
		}
		result = &LookupResult{
			Banned: true,
			BanDetails: &BanDetails{
				Count:    len(records),
				Reason:   first.Reason.String,
				Evidence: evidence,
				CreateAt: first.CreateAt,
				UpdateAt: first.UpdateAt,
			},
		}
	}

	s.toCache(ctx, key, result)
	return result, nil
}

// PublicPage returns one page of approved records with admin-only fields stripped
func (s *Service) PublicPage(ctx context.Context, page, pageSize int) (*Page, error) {
	if page < 1 || pageSize < 1 || pageSize > MaxPageSize {
		return nil, ErrInvalidPagination
	}

	key := cache.Key(cache.PrefixPublic, strconv.Itoa(page), strconv.Itoa(pageSize))

	var cached Page
	if s.fromCache(ctx, "public_banlist", key, &cached) {
		return &cached, nil
	}

	total, err := s.repo.CountApproved(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.ListApproved(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	result := &Page{Total: total, Records: make([]PublicRecord, len(records))}
	for i, r := range records {
		result.Records[i] = PublicRecordFromEntity(r)
	}

	s.toCache(ctx, key, result)
	return result, nil
}

// Snapshot returns the whole public banlist, bypassing the cache
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	records, err := s.repo.ListApproved(ctx, 0, 0)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		GeneratedAt: s.now().UTC(),
		Total:       len(records),
		Records:     make([]PublicRecord, len(records)),
	}
	for i, r := range records {
		snap.Records[i] = PublicRecordFromEntity(r)
	}
	return snap, nil
}

// Cache errors degrade to a miss; the store stays the source of truth.
func (s *Service) fromCache(ctx context.Context, name, key string, dest interface{}) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		metrics.RecordCacheLookup(name, "error")
		logger.LogWarn(ctx, "Cache read failed", "key", key, "error", err.Error())
		return false
	}
	if found {
		metrics.RecordCacheLookup(name, "hit")
		return true
	}
	metrics.RecordCacheLookup(name, "miss")
	return false
}

func (s *Service) toCache(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		logger.LogWarn(ctx, "Cache write failed", "key", key, "error", err.Error())
	}
}
