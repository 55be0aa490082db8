// Package backup takes restorable JSON snapshots of the store. The store
// stays the single source of truth; snapshots are only ever read back by
// Restore.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/matchbot/internal/db"
)

// FormatVersion is bumped whenever Snapshot changes incompatibly.
const FormatVersion = 1

const restoreBatch = 500

// Snapshot is a full copy of every persisted table.
type Snapshot struct {
	Version  int                  `json:"version"`
	TakenAt  time.Time            `json:"taken_at"`
	Profiles []db.Profile         `json:"profiles"`
	Likes    []db.Like            `json:"likes"`
	Dislikes []db.Dislike         `json:"dislikes"`
	Matches  []db.Match           `json:"matches"`
	Bans     []db.Ban             `json:"bans"`
	Settings []db.ServiceSettings `json:"settings"`
}

// Take reads every table inside one read transaction so the copy is
// consistent across tables.
func Take(ctx context.Context, gdb *gorm.DB) (*Snapshot, error) {
	snap := &Snapshot{Version: FormatVersion, TakenAt: time.Now().UTC()}

	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			name string
			dest any
		}{
			{"profiles", &snap.Profiles},
			{"likes", &snap.Likes},
			{"dislikes", &snap.Dislikes},
			{"matches", &snap.Matches},
			{"bans", &snap.Bans},
			{"settings", &snap.Settings},
		}
		for _, s := range steps {
			if err := tx.Find(s.dest).Error; err != nil {
				return fmt.Errorf("read %s: %w", s.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("take snapshot: %w", err)
	}
	return snap, nil
}

// WriteFile stores snap under dir and returns the file path. The file is
// written to a temp name first and renamed, so a crash never leaves a
// truncated snapshot behind.
func WriteFile(dir string, snap *Snapshot) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	name := fmt.Sprintf("matchbot-%s-%s.json",
		snap.TakenAt.UTC().Format("20060102T150405Z"), uuid.NewString()[:8])
	path := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("publish snapshot: %w", err)
	}
	return path, nil
}

// ReadFile loads a snapshot written by WriteFile.
func ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	var snap Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != FormatVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snap.Version, FormatVersion)
	}
	return &snap, nil
}

// Restore loads snap into gdb in a single transaction.
//
// Behavior:
//   - Rows already present are kept; the snapshot only fills gaps.
//   - The settings singleton is overwritten with the snapshot's copy.
//   - Safe to run twice with the same snapshot.
func Restore(ctx context.Context, gdb *gorm.DB, snap *Snapshot) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := insert(tx, "profiles", snap.Profiles); err != nil {
			return err
		}
		if err := insert(tx, "likes", snap.Likes); err != nil {
			return err
		}
		if err := insert(tx, "dislikes", snap.Dislikes); err != nil {
			return err
		}
		if err := insert(tx, "matches", snap.Matches); err != nil {
			return err
		}
		if err := insert(tx, "bans", snap.Bans); err != nil {
			return err
		}

		if len(snap.Settings) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&snap.Settings).Error
			if err != nil {
				return fmt.Errorf("restore settings: %w", err)
			}
		}
		return nil
	})
}

func insert[T any](tx *gorm.DB, table string, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&rows, restoreBatch).Error
	if err != nil {
		return fmt.Errorf("restore %s: %w", table, err)
	}
	return nil
}
