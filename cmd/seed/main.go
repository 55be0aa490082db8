package main

import (
	"github.com/oggyb/matchbot/internal/config"
	"github.com/oggyb/matchbot/internal/db"
	"github.com/oggyb/matchbot/internal/logger"
)

const (
	demoBaseID   = 9_000_000_000
	demoProfiles = 20
)

func main() {
	// Load configuration
	cfg := config.New()
	logger.InitFromConfig(cfg)

	database, err := db.NewDB(cfg)
	if err != nil {
		logger.Error("failed to init db", "err", err)
		return
	}
	defer db.Close(database)

	if err := db.SeedDemoData(database, demoBaseID, demoProfiles); err != nil {
		logger.Error("failed to seed", "err", err)
		return
	}

	logger.Info("seeding completed")
}
