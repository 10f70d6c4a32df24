package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path"
	"time"

	"github.com/cloudban/cloudban-api/internal/config"
	"github.com/cloudban/cloudban-api/internal/domain/banlist"
	"github.com/cloudban/cloudban-api/internal/pkg/logger"
	"github.com/cloudban/cloudban-api/internal/pkg/metrics"
	"github.com/cloudban/cloudban-api/internal/pkg/storage"
)

// LatestName is the object overwritten with every export
const LatestName = "latest.json"

var ErrNotConfigured = errors.New("export destination not configured")

// Snapshotter produces the public banlist
type Snapshotter interface {
	Snapshot(ctx context.Context) (*banlist.Snapshot, error)
}

// Result describes one written snapshot
type Result struct {
	Key         string    `json:"key"`
	LatestKey   string    `json:"latest_key"`
	URL         string    `json:"url"`
	Total       int       `json:"total"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Service writes banlist snapshots to object storage
type Service struct {
	source Snapshotter
	store  storage.Storage
	prefix string
}

// NewService creates export service. A nil store disables exports.
func NewService(source Snapshotter, store storage.Storage, prefix string) *Service {
	return &Service{source: source, store: store, prefix: prefix}
}

// Enabled reports whether a destination is configured
func (s *Service) Enabled() bool {
	return s.store != nil
}

// Export writes a timestamped snapshot and then replaces latest.json with the same bytes
func (s *Service) Export(ctx context.Context) (*Result, error) {
	if s.store == nil {
		return nil, ErrNotConfigured
	}

	res, err := s.export(ctx)
	metrics.RecordExport(err == nil)
	if err != nil {
		logger.LogError(ctx, err, "Banlist export failed")
		return nil, err
	}

	logger.LogInfo(ctx, "Banlist exported", "key", res.Key, "total", res.Total)
	return res, nil
}

func (s *Service) export(ctx context.Context) (*Result, error) {
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, err
	}

	key := s.key("banlist-" + snap.GeneratedAt.Format("20060102T150405Z") + ".json")
	if err := s.store.Put(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return nil, err
	}

	latest := s.key(LatestName)
	if err := s.store.Put(ctx, latest, bytes.NewReader(data), "application/json"); err != nil {
		return nil, err
	}

	return &Result{
		Key:         key,
		LatestKey:   latest,
		URL:         s.store.GetURL(key),
		Total:       snap.Total,
		GeneratedAt: snap.GeneratedAt,
	}, nil
}

func (s *Service) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// OpenStorage builds the configured destination: S3 when a bucket is set,
// otherwise a local directory. Returns nil when neither is configured.
func OpenStorage(ctx context.Context, cfg config.ExportConfig) (storage.Storage, error) {
	switch {
	case cfg.Bucket != "":
		s3, err := storage.NewS3Storage(ctx, storage.Config{
			Endpoint:  cfg.Endpoint,
			Region:    cfg.Region,
			Bucket:    cfg.Bucket,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return s3, nil
	case cfg.Dir != "":
		local, err := storage.NewLocalStorage(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return local, nil
	default:
		return nil, nil
	}
}
