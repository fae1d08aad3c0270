package watcher

import (
	"context"
	"log"
	"time"

	"github.com/rentloop/crm-sync-worker/internal/service"
)

// Syncer runs one sync pass.
type Syncer interface {
	Run(ctx context.Context) (service.SyncResult, error)
}

// Watcher triggers sync runs on an interval. A single loop keeps runs
// serialized; overlapping runs can create duplicate CRM contacts because
// resolution is lookup-then-create, not atomic.
type Watcher struct {
	interval time.Duration
	syncer   Syncer
}

func New(intervalSeconds int, syncer Syncer) *Watcher {
	return &Watcher{
		interval: time.Duration(intervalSeconds) * time.Second,
		syncer:   syncer,
	}
}

// Start begins the scheduled sync loop. Run errors are logged and the
// loop continues; only context cancellation stops it.
func (w *Watcher) Start(ctx context.Context) error {
	log.Printf("Starting scheduled tenant sync every %s...", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler shutting down...")
			return ctx.Err()
		case <-ticker.C:
			result, err := w.syncer.Run(ctx)
			if err != nil {
				log.Printf("Scheduled sync failed: %v", err)
				continue
			}
			log.Printf("Scheduled sync finished: %d candidate(s), %d processed, %d failed", result.Candidates, result.Processed, result.Failed)
		}
	}
}
