package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wedding-site/internal/config"
	"wedding-site/internal/guests"
	"wedding-site/internal/storage"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// app bundles what every command needs.
type app struct {
	cfg     *config.Config
	event   *config.Event
	log     zerolog.Logger
	guests  *guests.Directory
	store   storage.Store
	records *storage.Records
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("Failed to close store")
		}
	}
}

// loadApp reads configuration and opens the record store.
func loadApp(cfg *config.Config) (*app, error) {
	log := newLogger(cfg)

	event, err := config.LoadEvent(cfg.EventConfig)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.StoreBackend, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	return &app{
		cfg:     cfg,
		event:   event,
		log:     log,
		guests:  guests.NewDirectory(cfg.GuestsPath, log),
		store:   store,
		records: storage.NewRecords(store),
	}, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.LogFormat == "console" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log = zerolog.New(os.Stdout)
	}
	return log.Level(level).With().Timestamp().Str("service", "wedding-site").Logger()
}

func main() {
	cfg := config.LoadConfig()

	root := &cobra.Command{
		Use:           "wedding-site",
		Short:         "Wedding invite website with RSVP and honeymoon pledges",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory for record storage")
	pf.StringVar(&cfg.GuestsPath, "guests", cfg.GuestsPath, "Path to the guest list CSV")
	pf.StringVar(&cfg.StoreBackend, "store", cfg.StoreBackend, "Record store backend: csv or sqlite")
	pf.StringVar(&cfg.EventConfig, "event", cfg.EventConfig, "Path to the event YAML (built-in defaults when empty)")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: json or console")

	root.AddCommand(
		newServeCmd(cfg),
		newExportCmd(cfg),
		newBackupCmd(cfg),
		newGuestsCmd(cfg),
		newInviteQRCmd(cfg),
		newWhatsAppCmd(cfg),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
