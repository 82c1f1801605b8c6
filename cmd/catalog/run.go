package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/matvault/matvault/internal/catalog/httpapi"
	"github.com/matvault/matvault/internal/catalog/importer"
	"github.com/matvault/matvault/internal/catalog/service"
	"github.com/matvault/matvault/internal/storage/sqlstore"
)

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
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	db, err := sqlstore.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	// Dependencies
	store := sqlstore.New(db)
	svc := service.New(store)
	if err := svc.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap categories: %w", err)
	}

	imp := importer.New(videosDir, store, logger)
	if err := imp.EnsureRoot(); err != nil {
		return err
	}

	h := httpapi.New(svc, imp)
	router := httpapi.NewRouter(h)

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	logger.Info().Str("addr", addr).Str("videos_dir", videosDir).Msg("catalog listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil

	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen and serve: %w", err)
	}
}
