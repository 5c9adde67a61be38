// Package edit parses editor origin flags and launches the service.
package edit

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/pwa.edit/internal/platform/cmd"
	"github.com/louisbranch/pwa.edit/internal/services/edit"
)

// Config holds edit command configuration.
type Config struct {
	HTTPAddr string `env:"EDIT_HTTP_ADDR" envDefault:"localhost:8080"`
	DBPath   string `env:"EDIT_DB_PATH" envDefault:"data/edit.db"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Local Store SQLite path; empty keeps the document in memory")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the editor origin.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceEdit, func(ctx context.Context) error {
		server, err := edit.NewServer(ctx, edit.Config{
			HTTPAddr: cfg.HTTPAddr,
			DBPath:   cfg.DBPath,
		})
		if err != nil {
			return fmt.Errorf("init edit server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve edit: %w", err)
		}
		return nil
	})
}
