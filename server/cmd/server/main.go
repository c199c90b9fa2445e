package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/o2calc/o2calc/server/internal/advisory"
	"github.com/o2calc/o2calc/server/internal/api"
	"github.com/o2calc/o2calc/server/internal/auth"
	"github.com/o2calc/o2calc/server/internal/config"
	"github.com/o2calc/o2calc/server/internal/dashboard"
	"github.com/o2calc/o2calc/server/internal/gauge"
	"github.com/o2calc/o2calc/server/internal/metrics"
	"github.com/o2calc/o2calc/server/internal/store"
	"github.com/o2calc/o2calc/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "path to config file; built-in defaults are used when empty")
	flag.Parse()

	cfg := config.Defaults()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	slog.SetDefault(newLogger(cfg.Server.Log))
	slog.Info("o2calc-server starting", "config", *configPath)
	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"history_ttl", cfg.Server.History.TTL,
		"stream_interval", cfg.Server.Stream.Interval,
		"advisories", len(cfg.Advisories),
	)
	if cfg.Server.Auth.Mode == "apikey" && cfg.Server.Auth.Key() == "" {
		slog.Warn("auth mode is apikey but the key is empty; API is unauthenticated",
			"key_env", cfg.Server.Auth.KeyEnv)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Estimate history with background TTL eviction.
	st := store.New(cfg.Server.History.TTL, cfg.Server.History.MaxEntries)
	go st.Run(ctx)

	// Advisory engine: evaluates configured rules on every estimate.
	advisor := advisory.New(cfg.Rules())
	reg := metrics.New()

	svc := api.NewService(st, advisor, reg)
	svc.SetReference(cfg.UI.ReferenceFlows, cfg.UI.GaugeTicks)

	// WebSocket hub: answers live estimates and pushes the history.
	hub := ws.New(svc, cfg.Server.Stream.Interval)
	svc.SetStreamCounter(hub.Count)
	go hub.Run(ctx)

	page := dashboard.NewHandler(svc, dashboard.FromUI(cfg.UI))

	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, func(next *config.Config) {
				page.SetConfig(dashboard.FromUI(next.UI))
				svc.SetReference(next.UI.ReferenceFlows, next.UI.GaugeTicks)
				advisor.SetRules(next.Rules())
				slog.Info("config applied", "advisories", advisor.Len())
			})
			if err != nil {
				slog.Error("config watch stopped", "err", err)
			}
		}()
	}

	requireKey := auth.APIKey(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
	)

	// Combined HTTP server: dashboard, REST API, gauge images, WebSocket hub
	// and metrics on HTTPPort.
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", requireKey(api.New(svc)))
	httpMux.Handle("/metrics", requireKey(reg))
	httpMux.Handle("/gauge.png", api.GaugeHandler(svc, gauge.PNG))
	httpMux.Handle("/gauge.svg", api.GaugeHandler(svc, gauge.SVG))
	httpMux.Handle("/ws/stream", hub)
	httpMux.Handle("/", page)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           httpMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("o2calc-server shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
}

// newLogger builds the process logger: JSON by default, colourised text when
// format is "text".
func newLogger(c config.LogConfig) *slog.Logger {
	if c.Format == "text" {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      c.SlogLevel(),
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: c.SlogLevel()}))
}
