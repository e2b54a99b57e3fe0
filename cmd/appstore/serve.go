package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/appstore/pkg/live"
	"github.com/vango-dev/appstore/pkg/metrics"
	"github.com/vango-dev/appstore/pkg/recordserver"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the record server with a live store view",
		Long: `Run the reference record server, a store with the configured
models, and a live view of the store.

Routes:
  /records/{model}[/{id}]  record server (GET, PUT, DELETE)
  /app                     live page
  /app/ws                  live WebSocket
  /metrics                 Prometheus metrics

Examples:
  appstore serve
  appstore serve --config appstore.yaml
  appstore serve --addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, flags, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")

	return cmd
}

func runServe(ctx context.Context, flags *globalFlags, addr string) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	logger := newLogger(os.Stderr, logLevel(flags, cfg))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(metrics.WithRegistry(reg))

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return err
	}
	if err := seedBackend(ctx, cfg, backend, logger); err != nil {
		return err
	}

	st, err := newStore(cfg, logger, m, nil)
	if err != nil {
		return err
	}
	defer st.Close()

	hub := live.NewHub(&live.Config{Logger: logger, Metrics: m})
	defer hub.Close()

	data, err := initialData(ctx, cfg, backend)
	if err != nil {
		return err
	}
	if err := st.ResetData(ctx, data, modelsView(cfg.Models), hub); err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Mount("/records", recordserver.New(backend,
		recordserver.WithLogger(logger),
		recordserver.WithMetrics(m),
		recordserver.WithChangeHook(func(model, id string, deleted bool) {
			if deleted || !st.HasModel(model) {
				return
			}
			st.RefreshAsync(model, id, func(err error) {
				if err != nil {
					logger.Warn("refresh after write", "model", model, "id", id, "error", err)
				}
			})
		}),
	))
	r.Mount("/app", live.Routes(hub, cfg.Server.Title))
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/app", http.StatusFound)
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	printBanner()
	success("Serving %d models on %s", len(cfg.Models), cfg.BaseURL())
	info("Live view: %s/app", cfg.BaseURL())
	info("Records:   %s/records/{model}/{id}", cfg.BaseURL())
	if len(cfg.Models) == 0 {
		warn("No models configured")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hub.Close()
	return srv.Shutdown(shutdownCtx)
}
