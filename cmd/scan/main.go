package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/matvault/matvault/internal/app"
	"github.com/matvault/matvault/internal/catalog/importer"
	"github.com/matvault/matvault/internal/catalog/service"
	"github.com/matvault/matvault/internal/storage/sqlstore"
)

// scan runs one import pass over VIDEOS_DIR; with WATCH=1 it keeps
// watching and re-scans as course folders are dropped in.
func main() {
	os.Exit(app.Run("scan", run))
}

func run(ctx context.Context, logger zerolog.Logger) error {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "matvault.db"
	}
	videosDir := os.Getenv("VIDEOS_DIR")
	if videosDir == "" {
		videosDir = "videos"
	}

	db, err := sqlstore.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	store := sqlstore.New(db)
	svc := service.New(store)
	if err := svc.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap categories: %w", err)
	}

	imp := importer.New(videosDir, store, logger)
	if err := imp.EnsureRoot(); err != nil {
		return err
	}

	report, err := imp.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	for _, course := range report.PerCourse {
		logger.Info().
			Str("course", course.Title).
			Str("creator", course.Creator).
			Int("added", course.Added).
			Msg("imported")
	}

	if os.Getenv("WATCH") == "1" {
		return imp.Watch(ctx, 2*time.Second)
	}
	return nil
}
