package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/astrachart/astrachart/internal/domain/chart"
	"github.com/astrachart/astrachart/internal/infra/chartcache"
	"github.com/astrachart/astrachart/internal/infra/config"
	"github.com/astrachart/astrachart/internal/infra/ephemeris"
	"github.com/astrachart/astrachart/internal/infra/specstore"
	"github.com/astrachart/astrachart/internal/infra/wheelrepo"
)

func provideChartConfig(cfg *config.Config) chart.Config {
	return chart.Config{
		DefaultWheel:       cfg.Chart.DefaultWheel,
		CanvasWidth:        cfg.Chart.CanvasWidth,
		CanvasHeight:       cfg.Chart.CanvasHeight,
		MarginFactor:       cfg.Chart.MarginFactor,
		MinGlyphSeparation: cfg.Chart.MinGlyphSeparation,
		GlyphBands:         cfg.Chart.GlyphBands,
	}
}

func provideEphemerisGateway(logger *slog.Logger) chart.EphemerisGateway {
	return ephemeris.NewAnalyticGateway(logger)
}

func provideResultCache(cfg *config.Config, logger *slog.Logger) chart.ResultCache {
	fallback := chartcache.NewMemory(cfg.Chart.CacheSize)
	if !cfg.Cache.Valkey.Enabled {
		return fallback
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, using memory cache", "error", err)
		return fallback
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, using memory cache", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, using memory cache", "error", err)
		return fallback
	}
	logger.Info("shared valkey result cache enabled", "addr", cfg.Cache.Valkey.Addr)
	return chartcache.NewValkey(client, "chartcache")
}

func provideWheelRepository(cfg *config.Config, logger *slog.Logger) chart.WheelRepository {
	fallback := wheelrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Wheels.Postgres.DSN)
	if dsn == "" {
		logger.Info("wheels postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.Wheels.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Wheels.Postgres.MaxConns
	}
	if cfg.Wheels.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Wheels.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("wheels postgres repository enabled")
	return wheelrepo.NewPostgresRepository(pool)
}

func provideSpecStore(cfg *config.Config, logger *slog.Logger) chart.SpecStore {
	if cfg.Archive.Enabled {
		store, err := specstore.NewObjectStore(
			cfg.Archive.Endpoint,
			cfg.Archive.AccessKey,
			cfg.Archive.SecretKey,
			cfg.Archive.Bucket,
			cfg.Archive.Region,
			logger,
		)
		if err != nil {
			logger.Error("failed to initialize object archive, using memory store", "error", err)
		} else {
			logger.Info("chart spec object archive enabled", "bucket", cfg.Archive.Bucket)
			return store
		}
	}
	return specstore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
