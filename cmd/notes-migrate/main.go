// Command notes-migrate converts legacy admin_notes journals into request events.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"visit-service/internal/config"
	"visit-service/internal/db"
	"visit-service/internal/logger"
	"visit-service/internal/repository"
	"visit-service/internal/service"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report what would be imported without writing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	importer := service.NewNotesImporter(repository.NewRequestRepository(database), cfg.Booking.Location, log, *dryRun)
	stats, err := importer.Run(ctx)

	event := log.Info()
	if err != nil {
		event = log.Error().Err(err)
	}
	event.
		Bool("dry_run", *dryRun).
		Int("scanned", stats.Scanned).
		Int("imported", stats.Imported).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Int("events", stats.Events).
		Msg("legacy notes import finished")

	stop()
	_ = db.Close(database)
	if err != nil || stats.Failed > 0 {
		os.Exit(1)
	}
}
