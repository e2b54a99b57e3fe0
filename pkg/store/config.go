package store

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/appstore/pkg/collection"
	"github.com/vango-dev/appstore/pkg/metrics"
	"github.com/vango-dev/appstore/pkg/render"
	"github.com/vango-dev/appstore/pkg/rest"
)

// ModelSpec describes a model type to register.
type ModelSpec struct {
	// Name is the model type name, also the root prop key for its records.
	Name string

	// Constructor builds the model's collection.
	// Default: collection.NewMemory.
	Constructor collection.Constructor

	// Endpoint is the base URL for the model's records.
	Endpoint string
}

// Config configures a Store.
type Config struct {
	// Models are registered, in order, before New returns.
	Models []ModelSpec

	// Transport is the HTTP client used for reads and writes.
	// If nil, a client is built from Logger, Metrics and TracerProvider.
	Transport *rest.Client

	// Logger is the structured logger.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Metrics receives store counters. Optional.
	Metrics *metrics.Metrics

	// TracerProvider provides the store's tracer.
	// Default: the global OpenTelemetry provider.
	TracerProvider trace.TracerProvider

	// Renderer renders the mounted root.
	// Default: a compact renderer.
	Renderer *render.Renderer

	// MaxConcurrentFetches caps the number of ids one Fetch call requests
	// in parallel. 0 means no limit.
	MaxConcurrentFetches int

	// BaseContext is used by the callback forms (FetchAsync, SetAsync,
	// RefreshAsync). Default: context.Background().
	BaseContext context.Context
}
