package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/vango-dev/appstore/internal/errors"
	"github.com/vango-dev/appstore/pkg/collection"
	"github.com/vango-dev/appstore/pkg/metrics"
	"github.com/vango-dev/appstore/pkg/record"
	"github.com/vango-dev/appstore/pkg/rest"
	"github.com/vango-dev/appstore/pkg/view"
)

const tracerName = "github.com/vango-dev/appstore/pkg/store"

// AppStoreKey is the root prop under which the store passes itself to the
// mounted component tree.
const AppStoreKey = "appStore"

// Store is the application store. The zero value is not usable; create
// one with New.
type Store struct {
	mu     sync.RWMutex
	models map[string]*model

	renderMu  sync.Mutex
	root      *view.Node
	rootProps view.Props
	viewOpts  []view.Option

	pendingMu sync.Mutex
	pending   map[string]struct{}
	flights   singleflight.Group

	client     *rest.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	baseCtx    context.Context
	maxFetches int
}

// model is one registered type. mu guards every field.
type model struct {
	mu       sync.RWMutex
	name     string
	coll     collection.Collection
	ctor     collection.Constructor
	endpoint *rest.Endpoint
}

func (m *model) collection() collection.Collection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.coll
}

// source returns the model's Source. It resolves the endpoint on every
// call so a collection built before the endpoint was known still reaches
// it.
func (m *model) source() collection.Source {
	return modelSource{m: m}
}

type modelSource struct {
	m *model
}

func (s modelSource) endpoint() (*rest.Endpoint, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	if s.m.endpoint == nil {
		return nil, apperrors.New(apperrors.CodeInvalidArgument).WithDetailf("model %q has no endpoint", s.m.name)
	}
	return s.m.endpoint, nil
}

func (s modelSource) Read(ctx context.Context, id string) (record.Record, error) {
	ep, err := s.endpoint()
	if err != nil {
		return nil, err
	}
	return ep.Read(ctx, id)
}

func (s modelSource) Write(ctx context.Context, id string, fields record.Record) (record.Record, error) {
	ep, err := s.endpoint()
	if err != nil {
		return nil, err
	}
	return ep.Write(ctx, id, fields)
}

// New creates a Store and registers cfg.Models.
func New(cfg Config) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	client := cfg.Transport
	if client == nil {
		client = rest.New(
			rest.WithLogger(logger),
			rest.WithMetrics(cfg.Metrics),
			rest.WithTracerProvider(tp),
		)
	}

	baseCtx := cfg.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	s := &Store{
		models:     make(map[string]*model),
		rootProps:  view.Props{},
		pending:    make(map[string]struct{}),
		client:     client,
		logger:     logger,
		metrics:    cfg.Metrics,
		tracer:     tp.Tracer(tracerName),
		baseCtx:    baseCtx,
		maxFetches: cfg.MaxConcurrentFetches,
	}
	if cfg.Renderer != nil {
		s.viewOpts = append(s.viewOpts, view.WithRenderer(cfg.Renderer))
	}

	for _, spec := range cfg.Models {
		if err := s.Register(spec.Name, spec.Constructor, spec.Endpoint); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// FromProps returns the store passed to a component under AppStoreKey.
func FromProps(props view.Props) (*Store, bool) {
	s, ok := props[AppStoreKey].(*Store)
	return s, ok && s != nil
}

// Register adds a model type. Registration is idempotent: a collection,
// constructor or endpoint already set for name is kept. An empty endpoint
// leaves the endpoint unset so a later registration can provide it.
func (s *Store) Register(name string, ctor collection.Constructor, endpoint string) error {
	if name == "" {
		return apperrors.New(apperrors.CodeInvalidArgument).WithDetail("model name is empty")
	}

	s.mu.Lock()
	m, ok := s.models[name]
	if !ok {
		m = &model{name: name}
		s.models[name] = m
	}
	s.mu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctor == nil {
		if ctor == nil {
			ctor = collection.NewMemory
		}
		m.ctor = ctor
	}
	if m.endpoint == nil && endpoint != "" {
		m.endpoint = s.client.Endpoint(endpoint)
	}
	if m.coll == nil {
		m.coll = m.ctor(m.source(), nil)
	}

	if ok {
		s.logger.Debug("model already registered", "model", name)
	}
	return nil
}

// HasModel reports whether name is registered.
func (s *Store) HasModel(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.models[name]
	return ok
}

// Models returns the registered model names, sorted.
func (s *Store) Models() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.models))
	for name := range s.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Endpoint returns the base URL registered for name.
func (s *Store) Endpoint(name string) (string, error) {
	m, err := s.lookup(name)
	if err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.endpoint == nil {
		return "", nil
	}
	return m.endpoint.Base(), nil
}

func (s *Store) lookup(name string) (*model, error) {
	s.mu.RLock()
	m, ok := s.models[name]
	s.mu.RUnlock()
	if !ok {
		return nil, unregistered(name)
	}
	return m, nil
}

// ResetCollections replaces the collection of every registered type in
// mapping with a new one seeded from its records. Types absent from
// mapping are untouched. Unregistered keys are skipped and reported after
// the registered ones have been applied.
func (s *Store) ResetCollections(mapping map[string][]record.Record) error {
	var unknown []string
	for name, records := range mapping {
		m, err := s.lookup(name)
		if err != nil {
			unknown = append(unknown, name)
			continue
		}

		m.mu.Lock()
		m.coll = m.ctor(m.source(), record.CloneAll(records))
		m.mu.Unlock()
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return apperrors.New(apperrors.CodeUnregisteredType).WithDetailf("models %q", unknown)
	}
	return nil
}

// Add inserts rec into the model's collection, merging it into an existing
// record with the same id. A record without an id is appended. It does not
// contact the server or re-render.
func (s *Store) Add(name string, rec record.Record) error {
	m, err := s.lookup(name)
	if err != nil {
		return err
	}
	return m.collection().Upsert(rec)
}

// Get returns a copy of the cached record. A missing record is reported
// with ok == false, not an error.
func (s *Store) Get(name, id string) (rec record.Record, ok bool, err error) {
	m, err := s.lookup(name)
	if err != nil {
		return nil, false, err
	}
	rec, ok = m.collection().Get(id)
	return rec, ok, nil
}

// GetAll returns copies of every cached record of the model in
// collection order.
func (s *Store) GetAll(name string) ([]record.Record, error) {
	m, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return m.collection().Records(), nil
}

// Len returns the number of cached records of the model.
func (s *Store) Len(name string) (int, error) {
	m, err := s.lookup(name)
	if err != nil {
		return 0, err
	}
	return m.collection().Len(), nil
}

// Close unmounts the root, if any.
func (s *Store) Close() error {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	if s.root == nil {
		return nil
	}
	err := s.root.Unmount()
	s.root = nil
	return err
}
