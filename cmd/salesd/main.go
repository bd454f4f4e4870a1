// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/supermart/salesd/internal/api"
	"github.com/supermart/salesd/internal/cache"
	"github.com/supermart/salesd/internal/config"
	"github.com/supermart/salesd/internal/daemon"
	"github.com/supermart/salesd/internal/dataset"
	"github.com/supermart/salesd/internal/health"
	"github.com/supermart/salesd/internal/ingest"
	sdlog "github.com/supermart/salesd/internal/log"
	"github.com/supermart/salesd/internal/store"
)

var (
	version   = "v1.0.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Safe defaults until the config is loaded.
	sdlog.Configure(sdlog.Config{
		Level:   "info",
		Service: "salesd",
		Version: version,
	})

	logger := sdlog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Config path: explicit via --config, otherwise ${SALESD_DATA}/config.yaml
	// when it exists.
	explicitConfigPath := strings.TrimSpace(*configPath)
	effectiveConfigPath := explicitConfigPath
	if effectiveConfigPath == "" {
		dataDir := strings.TrimSpace(config.ParseString("SALESD_DATA", ""))
		if dataDir != "" {
			autoPath := filepath.Join(dataDir, "config.yaml")
			if _, err := os.Stat(autoPath); err == nil {
				effectiveConfigPath = autoPath
			}
		}
	}

	loader := config.NewLoader(effectiveConfigPath, version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
	}

	// Re-configure with the loaded settings.
	sdlog.Configure(sdlog.Config{
		Level:   cfg.LogLevel,
		Service: cfg.LogService,
		Version: version,
	})

	if effectiveConfigPath != "" {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file").
			Str("path", effectiveConfigPath).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "startup.check_failed").
			Str("data_dir", cfg.DataDir).
			Msg("data directory is not writable")
	}

	serverCfg := config.ParseServerConfig()
	// config.yaml may set the listen address; ENV stays the highest priority.
	if strings.TrimSpace(os.Getenv("SALESD_LISTEN")) == "" && strings.TrimSpace(cfg.APIListenAddr) != "" {
		serverCfg.ListenAddr = cfg.APIListenAddr
	}

	logger.Info().
		Str("event", "startup").
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Str("addr", serverCfg.ListenAddr).
		Msg("starting salesd")

	logger.Info().Msgf("→ Dataset: %s (strict: %v, watch: %v)", cfg.DatasetPath, cfg.StrictParse, cfg.WatchDataset)
	logger.Info().Msgf("→ Store: %s", cfg.SQLitePath)
	logger.Info().Msgf("→ Cache: %s (ttl: %s)", cfg.CacheBackend, cfg.CacheTTL)
	logger.Info().Msgf("→ Data dir: %s", cfg.DataDir)

	st, err := store.New(cfg.SQLitePath, store.DefaultConfig())
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "store.open_failed").
			Str("path", cfg.SQLitePath).
			Msg("failed to open sales store")
	}

	queryCache := cache.New(cache.Options{
		Backend: cfg.CacheBackend,
		Redis: cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
	}, sdlog.WithComponent("cache"))

	holder := dataset.NewHolder()
	runner := ingest.NewRunner(cfg, st, holder, queryCache)

	if cfg.InitialIngest {
		if _, err := runner.Run(ctx); err != nil {
			logger.Warn().
				Err(err).
				Str("event", "startup.ingest_failed").
				Msg("initial ingest failed, trying warm start from store")
			if n, warmErr := runner.WarmStart(ctx); warmErr != nil {
				logger.Error().
					Err(warmErr).
					Str("event", "startup.warm_start_failed").
					Msg("warm start failed, serving without data until refresh")
			} else if n > 0 {
				logger.Info().
					Str("event", "startup.warm_start").
					Int("records", n).
					Msg("loaded last ingested dataset from store")
			}
		}
	} else {
		if n, err := runner.WarmStart(ctx); err != nil {
			logger.Warn().Err(err).Msg("warm start from store failed")
		} else if n > 0 {
			logger.Info().
				Str("event", "startup.warm_start").
				Int("records", n).
				Msg("loaded last ingested dataset from store")
		}
	}

	healthMgr := health.NewManager(version)
	healthMgr.RegisterChecker(health.NewFileChecker("dataset", cfg.DatasetPath))
	healthMgr.RegisterChecker(health.NewPingChecker("sqlite", st.Ping))
	healthMgr.RegisterChecker(health.NewLastIngestChecker(runner.LastRun))

	apiServer := api.New(cfg, holder, runner, queryCache, healthMgr, st, version)

	deps := daemon.Deps{
		APIHandler: apiServer.Router(),
		Logger:     sdlog.Base(),
	}
	if cfg.MetricsEnabled {
		deps.MetricsHandler = promhttp.Handler()
		deps.MetricsAddr = cfg.MetricsAddr
	}

	mgr, err := daemon.NewManager(serverCfg, deps)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "daemon.init_failed").
			Msg("failed to initialize daemon manager")
	}

	mgr.RegisterShutdownHook("sqlite", func(context.Context) error {
		return st.Close()
	})
	if closer, ok := queryCache.(interface{ Close() error }); ok {
		mgr.RegisterShutdownHook("cache", func(context.Context) error {
			return closer.Close()
		})
	}

	if cfg.WatchDataset {
		go func() {
			if err := runner.Watch(ctx); err != nil && ctx.Err() == nil {
				logger.Error().
					Err(err).
					Str("event", "watch.failed").
					Msg("dataset watcher stopped")
			}
		}()
	}

	if err := mgr.Start(ctx); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "daemon.failed").
			Msg("daemon terminated with error")
	}

	logger.Info().Str("event", "shutdown.complete").Msg("salesd stopped")
}
