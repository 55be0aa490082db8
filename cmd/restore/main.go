// Command restore loads a snapshot written by the bot back into the store
// configured by the environment. Existing rows are left untouched.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/oggyb/matchbot/internal/backup"
	"github.com/oggyb/matchbot/internal/config"
	"github.com/oggyb/matchbot/internal/db"
	"github.com/oggyb/matchbot/internal/logger"
)

func main() {
	path := flag.String("file", "", "snapshot file to restore")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall restore timeout")
	flag.Parse()

	cfg := config.New()
	logger.InitFromConfig(cfg)

	if err := run(cfg, *path, *timeout); err != nil {
		logger.Error("restore failed", "file", *path, "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, path string, timeout time.Duration) error {
	if path == "" {
		return errors.New("missing -file")
	}

	snap, err := backup.ReadFile(path)
	if err != nil {
		return err
	}

	database, err := db.NewDB(cfg)
	if err != nil {
		return fmt.Errorf("init db: %w", err)
	}
	defer db.Close(database)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := backup.Restore(ctx, database, snap); err != nil {
		return err
	}

	logger.Info("restore completed",
		"file", path,
		"taken_at", snap.TakenAt,
		"profiles", len(snap.Profiles),
		"likes", len(snap.Likes),
		"matches", len(snap.Matches),
	)
	return nil
}
