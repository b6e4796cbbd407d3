package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/soundgrid/snapctl/internal/config"
	"github.com/soundgrid/snapctl/pkg/client"
	"github.com/soundgrid/snapctl/pkg/middleware"
	"github.com/soundgrid/snapctl/pkg/state"
)

func serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Bridge the control API to HTTP",
		Long: `Run an HTTP server that mirrors the snapserver state.

Endpoints:
  GET /api/status    the mirrored server state as JSON
  GET /healthz       liveness probe
  GET /metrics       Prometheus metrics (unless disabled)

The bridge keeps a live connection to the snapserver and
resynchronizes after every reconnect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Serve.Listen = listen
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "HTTP listen address (overrides config)")

	return cmd
}

func runServe(cfg config.Config) error {
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()

	var c *client.Client
	c, err := connect(ctx, cfg, logger,
		client.WithMetrics(registry),
		client.WithOnConnect(func() {
			if c != nil {
				go c.ServerStatus(context.Background())
			}
		}),
	)
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := c.ServerStatus(ctx); err != nil {
		return err
	}

	// Drain the connection in the background; the cache does the bookkeeping.
	recvDone := make(chan error, 1)
	go func() {
		for {
			if _, err := c.Receive(ctx); err != nil {
				recvDone <- err
				return
			}
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.OpenTelemetry(
		middleware.WithRequestFilter(func(r *http.Request) bool {
			return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
		}),
	))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/api/status", statusHandler(c.State()))
	if cfg.Serve.Metrics {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	srv := &http.Server{
		Addr:              cfg.Serve.Listen,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	httpDone := make(chan error, 1)
	go func() {
		logger.Info("http bridge listening", "addr", cfg.Serve.Listen)
		httpDone <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-recvDone:
		if !errors.Is(err, context.Canceled) {
			logger.Error("control connection ended", "err", err)
		}
	case err := <-httpDone:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// statusSnapshot is the JSON shape of /api/status.
type statusSnapshot struct {
	Server  any                 `json:"server,omitempty"`
	Clients map[string]any      `json:"clients"`
	Groups  map[string]apiGroup `json:"groups"`
	Streams map[string]any      `json:"streams"`
}

type apiGroup struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	StreamID string   `json:"stream_id"`
	Muted    bool     `json:"muted"`
	Clients  []string `json:"clients"`
}

func statusHandler(cache *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := statusSnapshot{
			Clients: make(map[string]any),
			Groups:  make(map[string]apiGroup),
			Streams: make(map[string]any),
		}
		if details, ok := cache.ServerDetails(); ok {
			snap.Server = details
		}
		for id, c := range cache.Clients() {
			snap.Clients[id] = c
		}
		for id, g := range cache.Groups() {
			members := make([]string, 0, len(g.Clients))
			for m := range g.Clients {
				members = append(members, m)
			}
			sort.Strings(members)
			snap.Groups[id] = apiGroup{
				ID:       g.ID,
				Name:     g.Name,
				StreamID: g.StreamID,
				Muted:    g.Muted,
				Clients:  members,
			}
		}
		for id, entry := range cache.Streams() {
			if entry.Detail == nil {
				snap.Streams[id] = map[string]string{"id": id, "state": "pending"}
				continue
			}
			snap.Streams[id] = entry.Detail
		}

		w.Header().Set("Content-Type", "application/json")
		if err := writeJSON(w, snap); err != nil {
			slog.Default().Warn("write status response", "err", err)
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
