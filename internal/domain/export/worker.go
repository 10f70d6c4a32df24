package export

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/cloudban/cloudban-api/internal/domain/feed"
)

// Worker exports on a fixed interval and, when a Redis client is given, shortly
// after any feed event that changes the public banlist.
type Worker struct {
	service  *Service
	interval time.Duration
	rdb      *redis.Client
}

// NewWorker creates export worker
func NewWorker(service *Service, interval time.Duration, rdb *redis.Client) *Worker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Worker{service: service, interval: interval, rdb: rdb}
}

// Run blocks until ctx is cancelled. One export runs immediately on start.
func (w *Worker) Run(ctx context.Context) {
	wake := make(chan struct{}, 1)
	if w.rdb != nil {
		go w.subscribeWakeups(ctx, wake)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("export worker stopped")
			return
		case <-wake:
		case <-ticker.C:
		}
		w.runOnce(ctx)
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	start := time.Now()
	res, err := w.service.Export(ctx)
	if err != nil {
		// Export already logged the failure
		return
	}
	log.Info().
		Str("key", res.Key).
		Int("total", res.Total).
		Dur("took", time.Since(start)).
		Msg("Snapshot written")
}

func (w *Worker) subscribeWakeups(ctx context.Context, wake chan<- struct{}) {
	sub := w.rdb.Subscribe(ctx, feed.Channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !changesBanlist(msg.Payload) {
				continue
			}
			select {
			case wake <- struct{}{}:
			default:
			}
		}
	}
}

// changesBanlist reports whether a feed envelope carries an event that alters approved records.
func changesBanlist(payload string) bool {
	var env struct {
		Event struct {
			Type feed.EventType `json:"type"`
		} `json:"event"`
	}
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return false
	}
	switch env.Event.Type {
	case feed.EventBanApproved, feed.EventBanModified:
		return true
	}
	return false
}
