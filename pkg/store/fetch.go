package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/vango-dev/appstore/internal/errors"
	"github.com/vango-dev/appstore/pkg/record"
)

// Fetch loads the records for ids from the model's endpoint into its
// collection, then re-renders the root once.
//
// An empty ids slice returns immediately without network activity.
// Duplicate ids are fetched once, and ids already being fetched by another
// call are awaited rather than fetched again. If some ids fail, the others
// are still cached and rendered and a *FetchError naming the failed ids is
// returned.
func (s *Store) Fetch(ctx context.Context, name string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	m, err := s.lookup(name)
	if err != nil {
		return err
	}

	ctx, span := s.tracer.Start(ctx, "store.Fetch")
	defer span.End()

	unique := dedupe(ids)
	span.SetAttributes(
		attribute.String("appstore.model", name),
		attribute.Int("appstore.ids", len(unique)),
	)

	var (
		mu        sync.Mutex
		errs      *multierror.Error
		failed    []string
		succeeded int
	)

	var g errgroup.Group
	if s.maxFetches > 0 {
		g.SetLimit(s.maxFetches)
	}
	for _, id := range unique {
		id := id
		g.Go(func() error {
			err := s.fetchOne(ctx, m, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", id, err))
				failed = append(failed, id)
				return nil
			}
			succeeded++
			return nil
		})
	}
	_ = g.Wait()

	if succeeded > 0 {
		if err := s.RenderRoot(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	if errs != nil {
		sort.Strings(failed)
		ferr := &FetchError{Model: name, IDs: failed, Err: errs.ErrorOrNil()}
		s.logger.Warn("fetch failed", "model", name, "ids", failed, "error", errs.ErrorOrNil())
		span.RecordError(ferr)
		span.SetStatus(codes.Error, ferr.Error())
		return ferr
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// FetchAsync runs Fetch in the background with the store's base context
// and calls cb with its result. An empty ids slice calls cb before
// FetchAsync returns. cb may be nil.
func (s *Store) FetchAsync(name string, ids []string, cb func(error)) {
	if len(ids) == 0 {
		if cb != nil {
			cb(nil)
		}
		return
	}
	go func() {
		err := s.Fetch(s.baseCtx, name, ids)
		if cb != nil {
			cb(err)
		}
	}()
}

// fetchOne loads a single id, joining an in-flight request for the same
// id if there is one.
func (s *Store) fetchOne(ctx context.Context, m *model, id string) error {
	if id == "" {
		return apperrors.New(apperrors.CodeInvalidArgument).WithDetail("empty id")
	}

	key := pendingKey(m.name, id)
	if s.isPending(key) {
		s.metrics.RecordSharedFetch(m.name)
		s.logger.Debug("joining in-flight fetch", "model", m.name, "id", id)
	}

	// The shared request outlives any single caller's cancellation.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.flights.DoChan(key, func() (any, error) {
		s.markPending(key)
		defer s.clearPending(key)

		s.metrics.FetchStarted()
		defer s.metrics.FetchDone()

		rec, err := m.source().Read(flightCtx, id)
		s.metrics.RecordFetch(m.name, err)
		if err != nil {
			return nil, err
		}

		if rec == nil {
			rec = record.Record{}
		}
		coll := m.collection()
		attr := record.DefaultIDAttribute
		if a, ok := coll.(interface{ IDAttribute() string }); ok {
			attr = a.IDAttribute()
		}
		if _, ok := record.IDOf(rec, attr); !ok {
			rec[attr] = id
		}
		return nil, coll.Upsert(rec)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func pendingKey(name, id string) string {
	return name + "/" + id
}

func (s *Store) markPending(key string) {
	s.pendingMu.Lock()
	s.pending[key] = struct{}{}
	s.pendingMu.Unlock()
}

func (s *Store) clearPending(key string) {
	s.pendingMu.Lock()
	delete(s.pending, key)
	s.pendingMu.Unlock()
}

func (s *Store) isPending(key string) bool {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	_, ok := s.pending[key]
	return ok
}

// Pending reports whether a fetch for id is outstanding. The answer is
// advisory: it may change as soon as it is returned.
func (s *Store) Pending(name, id string) bool {
	return s.isPending(pendingKey(name, id))
}

// PendingCount returns the number of outstanding fetches.
func (s *Store) PendingCount() int {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	return len(s.pending)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
