// main.go - demo data seeder
package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"sitepulse/internal/config"
	"sitepulse/internal/database"
	"sitepulse/internal/logging"
	"sitepulse/internal/seeder"
)

func main() {
	eventCount := flag.Int("events", 5000, "number of events to generate per website")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.GetConfig()
	logger := logging.NewLogger(cfg)

	dbManager := database.NewManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	s := seeder.NewSeeder(dbManager.GetConnection(), logger, *eventCount)
	if err := s.Run(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
