package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-enrichment/internal/adapter/repository"
	"github.com/johnquangdev/meeting-enrichment/internal/export"
	"github.com/johnquangdev/meeting-enrichment/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-enrichment/pkg/config"
)

func main() {
	meetingID := flag.String("meeting", "", "meeting id to export")
	out := flag.String("out", "", "output .xlsx path (defaults to <meeting>.xlsx)")
	flag.Parse()

	id, err := uuid.Parse(*meetingID)
	if err != nil {
		log.Fatalf("Invalid -meeting %q: %v", *meetingID, err)
	}
	if *out == "" {
		*out = id.String() + ".xlsx"
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewDB(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}

	exporter := export.NewExporter(repository.NewGormStore(db), logger)
	n, err := exporter.Export(context.Background(), id, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(*out)
		log.Fatalf("❌ Export failed: %v", err)
	}

	log.Printf("✅ Wrote %d conversation row(s) to %s", n, *out)
}
