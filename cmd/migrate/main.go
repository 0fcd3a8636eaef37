package main

import (
	"flag"
	"log"
	"os"

	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-enrichment/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-enrichment/pkg/config"
)

func main() {
	down := flag.Bool("down", false, "roll back instead of applying")
	steps := flag.Int("steps", 0, "maximum number of migrations to run (0 = all; down defaults to 1)")
	status := flag.Bool("status", false, "list pending migrations and exit")
	dir := flag.String("dir", "", "migrations directory (defaults to DB_MIGRATIONS_DIR)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *dir == "" {
		*dir = cfg.Database.Migrations
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database using GORM
	db, err := database.NewDB(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	if *status {
		pending, err := database.PendingMigrations(db, *dir)
		if err != nil {
			log.Fatalf("Failed to read migration status: %v", err)
		}
		if len(pending) == 0 {
			log.Println("✅ Schema is up to date")
			return
		}
		for _, id := range pending {
			log.Printf("⏳ pending: %s", id)
		}
		return
	}

	direction := migrate.Up
	if *down {
		direction = migrate.Down
		if *steps == 0 {
			*steps = 1
		}
	}

	n, err := database.Migrate(db, *dir, direction, *steps, logger)
	if err != nil {
		log.Fatalf("❌ Migration failed after %d step(s): %v", n, err)
	}

	log.Printf("✅ Successfully applied %d migration(s)!\n", n)
	os.Exit(0)
}
