package backup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Service writes snapshots on demand, on a timer and at shutdown.
type Service struct {
	db       *gorm.DB
	dir      string
	uploader Uploader
	log      *slog.Logger

	// one snapshot at a time; the timer and shutdown may race
	mu sync.Mutex
}

// NewService creates a snapshot service. uploader may be nil.
func NewService(gdb *gorm.DB, dir string, uploader Uploader, log *slog.Logger) *Service {
	return &Service{db: gdb, dir: dir, uploader: uploader, log: log}
}

// SnapshotNow takes a snapshot, writes it and uploads it when an uploader
// is configured. A failed upload is logged; the local file is kept.
func (s *Service) SnapshotNow(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now()
	snap, err := Take(ctx, s.db)
	if err != nil {
		return "", err
	}
	path, err := WriteFile(s.dir, snap)
	if err != nil {
		return "", err
	}

	s.log.Info("snapshot written",
		"path", path,
		"profiles", len(snap.Profiles),
		"likes", len(snap.Likes),
		"matches", len(snap.Matches),
		"took", time.Since(started),
	)

	if s.uploader != nil {
		if err := s.uploader.Upload(ctx, path); err != nil {
			s.log.Warn("snapshot upload failed", "path", path, "err", err)
		}
	}
	return path, nil
}

// Run snapshots every interval until ctx is done. A non-positive interval
// disables periodic snapshots and Run just waits. Runs in its own goroutine
// and never blocks event handling.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.SnapshotNow(ctx); err != nil {
				s.log.Error("periodic snapshot failed", "err", err)
			}
		}
	}
}
