// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"inkwell/internal/auth"
	"inkwell/internal/cache"
	"inkwell/internal/database"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/policy"
	"inkwell/internal/router"
	"inkwell/internal/session"
	"inkwell/internal/storage"
	"inkwell/internal/store"
)

// shutdownGrace is how long active requests get to finish after a signal.
const shutdownGrace = 30 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	cfg, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"strict_ownership", cfg.StrictOwnership,
	)

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(cmd.Context(), db); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
	}

	// Connect to Valkey (session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, cfg.SecureCookies())

	// Connect to S3-compatible object storage (optional, uploads answer 503
	// without it).
	storageClient, err := storage.New(storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		return fmt.Errorf("initialize s3 storage: %w", err)
	}
	var assets handlers.AssetStore
	if storageClient != nil {
		assets = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", storageClient.Bucket())
	} else {
		slog.Warn("s3 storage not configured, media uploads disabled")
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	articleStore := store.NewArticleStore(db)
	categoryStore := store.NewCategoryStore(db)
	mediaStore := store.NewMediaStore(db)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	opts := handlers.Options{
		PageSize:      cfg.PageSize,
		BaseURL:       cfg.PublicBaseURL,
		Writes:        policy.WritePolicy{StrictOwnership: cfg.StrictOwnership},
		SecureCookies: cfg.SecureCookies(),
	}

	r := router.New(router.Deps{
		Authenticator: &middleware.Authenticator{
			Tokens:   tokens,
			Sessions: sessionStore,
			Users:    userStore,
		},
		Articles:   handlers.NewArticles(articleStore, categoryStore, mediaStore, assets, opts),
		Categories: handlers.NewCategories(categoryStore, articleStore, assets, opts),
		Media:      handlers.NewMedia(mediaStore, assets, opts),
		Auth:       handlers.NewAuth(userStore, tokens, sessionStore, opts),
		Health: handlers.Health(map[string]handlers.Check{
			"database": db.PingContext,
			"valkey": func(ctx context.Context) error {
				return cache.Ping(ctx, valkeyClient)
			},
		}),
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the server in a goroutine so we can listen for shutdown signals.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Graceful shutdown: drain connections.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
