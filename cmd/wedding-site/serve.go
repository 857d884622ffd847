package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wedding-site/internal/config"
	"wedding-site/internal/handler"
	"wedding-site/internal/session"
	"wedding-site/internal/whatsapp"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the website",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.Port, "port", cfg.Port, "HTTP port")
	f.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "Base URL used in invite links")
	f.StringVar(&cfg.WhatsAppNotifyTo, "notify", cfg.WhatsAppNotifyTo, "Comma-separated phone numbers to notify on WhatsApp")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	a, err := loadApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := os.Stat(cfg.GuestsPath); err != nil {
		a.log.Warn().Err(err).Str("path", cfg.GuestsPath).Msg("Guest list not readable; guest pages will show a setup error")
	}
	if cfg.AdminPassword == "" {
		a.log.Warn().Msg("ADMIN_PASSWORD is not set; the admin view is disabled")
	}

	opts := handler.Options{
		Event:         a.event,
		Guests:        a.guests,
		Records:       a.records,
		Sessions:      session.NewManager(cfg.SessionTTL, strings.HasPrefix(cfg.PublicURL, "https://")),
		AdminPassword: cfg.AdminPassword,
		PublicURL:     cfg.PublicURL,
		CORSOrigins:   cfg.CORSOrigins,
		Log:           a.log,
	}

	if recipients := splitPhones(cfg.WhatsAppNotifyTo); len(recipients) > 0 {
		svc, err := whatsapp.NewService(ctx, &whatsapp.Config{DataDir: cfg.WhatsAppDataDir}, a.log)
		if err != nil {
			return fmt.Errorf("failed to initialize WhatsApp: %w", err)
		}
		if !svc.Linked() {
			return errors.New("WhatsApp device is not linked; run `wedding-site whatsapp link` first")
		}
		if err := svc.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to WhatsApp: %w", err)
		}
		defer svc.Disconnect()
		opts.Notifier = whatsapp.NewNotifier(svc, recipients...)
		a.log.Info().Int("recipients", len(recipients)).Msg("WhatsApp notifications enabled")
	}

	srv, err := handler.NewServer(opts)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", httpServer.Addr).Str("store", cfg.StoreBackend).Msg("Starting server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func splitPhones(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = whatsapp.NormalizePhoneNumber(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
