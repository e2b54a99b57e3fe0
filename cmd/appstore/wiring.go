package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/appstore/internal/config"
	"github.com/vango-dev/appstore/pkg/collection"
	"github.com/vango-dev/appstore/pkg/metrics"
	"github.com/vango-dev/appstore/pkg/record"
	"github.com/vango-dev/appstore/pkg/recordserver"
	"github.com/vango-dev/appstore/pkg/render"
	"github.com/vango-dev/appstore/pkg/rest"
	"github.com/vango-dev/appstore/pkg/store"
)

// loadConfig reads the --config file, or searches the working directory
// and its parents when none is given.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	if flags.configPath != "" {
		return config.LoadFile(flags.configPath)
	}
	return config.LoadFromWorkingDir()
}

// newLogger returns a text logger at level, falling back to info.
func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func logLevel(flags *globalFlags, cfg *config.Config) string {
	if flags.logLevel != "" {
		return flags.logLevel
	}
	return cfg.LogLevel
}

// newTransport builds the store's REST client from the transport section.
func newTransport(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *rest.Client {
	return rest.New(
		rest.WithTimeout(cfg.Timeout()),
		rest.WithRetry(cfg.Retries(), cfg.RetryDelay()),
		rest.WithRateLimit(cfg.Transport.RateLimit, cfg.Transport.Burst),
		rest.WithHeader("User-Agent", "appstore/"+version),
		rest.WithLogger(logger),
		rest.WithMetrics(m),
	)
}

// newStore creates a store with every configured model registered.
func newStore(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics, renderer *render.Renderer) (*store.Store, error) {
	specs := make([]store.ModelSpec, 0, len(cfg.Models))
	for _, mc := range cfg.Models {
		specs = append(specs, store.ModelSpec{
			Name:        mc.Name,
			Constructor: collection.MemoryWith(collection.WithIDAttribute(mc.IDAttribute)),
			Endpoint:    cfg.EndpointURL(mc),
		})
	}
	return store.New(store.Config{
		Models:               specs,
		Transport:            newTransport(cfg, logger, m),
		Logger:               logger,
		Metrics:              m,
		Renderer:             renderer,
		MaxConcurrentFetches: cfg.Transport.MaxConcurrentFetches,
	})
}

// newBackend creates the record server's storage.
func newBackend(ctx context.Context, cfg *config.Config) (recordserver.Backend, error) {
	switch cfg.Backend.Type {
	case config.BackendS3:
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.Backend.Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.Backend.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		return recordserver.NewS3Backend(s3.NewFromConfig(awsCfg), cfg.Backend.Bucket, cfg.Backend.Prefix), nil
	default:
		return recordserver.NewMemoryBackend(), nil
	}
}

// seedBackend writes the configured seed records. Records without an id
// are skipped.
func seedBackend(ctx context.Context, cfg *config.Config, backend recordserver.Backend, logger *slog.Logger) error {
	for model, records := range cfg.Backend.Seed {
		attr := record.DefaultIDAttribute
		if mc, ok := cfg.Model(model); ok {
			attr = mc.IDAttribute
		}
		for _, r := range records {
			id, ok := record.IDOf(r, attr)
			if !ok {
				logger.Warn("seed record without id", "model", model)
				continue
			}
			if _, err := backend.Put(ctx, model, id, r); err != nil {
				return fmt.Errorf("seed %s/%s: %w", model, id, err)
			}
		}
	}
	return nil
}

// initialData lists every configured model's records from the backend.
func initialData(ctx context.Context, cfg *config.Config, backend recordserver.Backend) (map[string][]record.Record, error) {
	data := make(map[string][]record.Record, len(cfg.Models))
	for _, mc := range cfg.Models {
		records, err := backend.List(ctx, mc.Name)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", mc.Name, err)
		}
		data[mc.Name] = records
	}
	return data, nil
}
