// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ytwall/ytwall/internal/api"
	"github.com/ytwall/ytwall/internal/catalog"
	"github.com/ytwall/ytwall/internal/config"
	ytlog "github.com/ytwall/ytwall/internal/log"
	"github.com/ytwall/ytwall/internal/manager"
	"github.com/ytwall/ytwall/internal/player"
	"github.com/ytwall/ytwall/internal/store"
	"github.com/ytwall/ytwall/internal/youtube"
)

var (
	version   = "v1.0.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ytlog.Configure(ytlog.Config{
		Level:   config.ParseString("LOG_LEVEL", "info"),
		Service: "ytwall",
		Version: version,
	})
	logger := ytlog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Msg("failed to load configuration")
	}

	logger.Info().
		Str("event", "startup").
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Str("addr", cfg.ListenAddr).
		Msg("starting ytwall")
	logger.Info().Msgf("→ Channels: %d configured", len(cfg.Channels))
	logger.Info().Msgf("→ Manual streams: %d configured", len(cfg.ManualVideos))
	logger.Info().Msgf("→ Cache TTL: %s", cfg.CacheTTL)
	logger.Info().Msgf("→ Refresh interval: %s", cfg.RefreshInterval)
	if cfg.APIToken != "" {
		logger.Info().Msg("→ API token: configured")
	} else {
		logger.Warn().
			Str("security", "weak").
			Msg("→ API token: NOT configured. Set YTWALL_API_TOKEN to restrict volume and selection changes.")
	}

	// The cache medium is a deployment-time choice: Redis when an address
	// is configured, the local filesystem otherwise.
	var backend store.Backend
	if cfg.RedisAddr != "" {
		redisBackend, err := store.NewRedisBackend(store.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, ytlog.WithComponent("store"))
		if err != nil {
			logger.Fatal().
				Err(err).
				Str("event", "store.connect_failed").
				Msg("failed to connect to Redis store")
		}
		defer func() {
			if cerr := redisBackend.Close(); cerr != nil {
				logger.Warn().Err(cerr).Msg("failed to close Redis store")
			}
		}()
		backend = redisBackend
		logger.Info().Msgf("→ Cache: redis (%s)", cfg.RedisAddr)
	} else {
		fileBackend, err := store.NewFileBackend(cfg.DataDir)
		if err != nil {
			logger.Fatal().
				Err(err).
				Str("event", "store.init_failed").
				Msg("failed to initialize file store")
		}
		backend = fileBackend
		logger.Info().Msgf("→ Cache: file (%s)", cfg.DataDir)
	}

	client := youtube.New(cfg.APIKey, youtube.Options{})
	selector := player.NewSelector(player.NewLogSink())
	defer selector.Stop()

	mgr := manager.New(manager.Options{
		Cache:      catalog.NewCache(backend, cfg.CacheTTL),
		Source:     catalog.NewSource(client, cfg.Channels, cfg.PriorityRules),
		Refresher:  catalog.NewRefresher(client),
		ManualURLs: cfg.ManualVideos,
		Notifier:   selector,
	})

	if err := mgr.Initialize(ctx, false); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "catalog.init_failed").
			Msg("failed to initialize catalog")
	}

	go mgr.Run(ctx, cfg.RefreshInterval)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.New(mgr, selector, cfg.APIToken).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("event", "api.listening").Str("addr", cfg.ListenAddr).Msg("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("event", "api.failed").Msg("API server failed")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("API server shutdown failed")
	}

	logger.Info().Msg("server exiting")
}
