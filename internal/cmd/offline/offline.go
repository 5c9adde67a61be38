// Package offline parses offline proxy flags and launches the service.
package offline

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/pwa.edit/internal/platform/cmd"
	"github.com/louisbranch/pwa.edit/internal/services/offline"
)

// Config holds offline command configuration.
type Config struct {
	HTTPAddr        string        `env:"OFFLINE_HTTP_ADDR" envDefault:"localhost:8081"`
	OriginURL       string        `env:"OFFLINE_ORIGIN_URL" envDefault:"http://localhost:8080"`
	CacheDBPath     string        `env:"OFFLINE_CACHE_DB_PATH" envDefault:"data/offline-cache.db"`
	MaxAge          time.Duration `env:"OFFLINE_MAX_AGE" envDefault:"720h"`
	PrecacheVersion string        `env:"OFFLINE_PRECACHE_VERSION"`
	InstallRetry    time.Duration `env:"OFFLINE_INSTALL_RETRY" envDefault:"5s"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.OriginURL, "origin-url", cfg.OriginURL, "Editor origin base URL")
	fs.StringVar(&cfg.CacheDBPath, "cache-db-path", cfg.CacheDBPath, "Response cache SQLite path; empty keeps the cache in memory")
	fs.DurationVar(&cfg.MaxAge, "max-age", cfg.MaxAge, "Retention window for page and asset entries")
	fs.StringVar(&cfg.PrecacheVersion, "precache-version", cfg.PrecacheVersion, "Revision tag for the precache namespace")
	fs.DurationVar(&cfg.InstallRetry, "install-retry", cfg.InstallRetry, "Wait between failed worker installs")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the offline caching proxy.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceOffline, func(ctx context.Context) error {
		server, err := offline.NewServer(ctx, offline.Config{
			HTTPAddr:        cfg.HTTPAddr,
			OriginURL:       cfg.OriginURL,
			CacheDBPath:     cfg.CacheDBPath,
			MaxAge:          cfg.MaxAge,
			PrecacheVersion: cfg.PrecacheVersion,
			InstallRetry:    cfg.InstallRetry,
		})
		if err != nil {
			return fmt.Errorf("init offline server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve offline: %w", err)
		}
		return nil
	})
}
