package store

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vango-dev/appstore/pkg/record"
)

// Set writes fields for id to the server. The local record changes only
// after the server acknowledges the write; Set then refreshes the record
// from the server and re-renders, and returns the refresh's result. On a
// failed write nothing is committed and no refresh happens.
func (s *Store) Set(ctx context.Context, name, id string, fields record.Record) error {
	m, err := s.lookup(name)
	if err != nil {
		return err
	}

	ctx, span := s.tracer.Start(ctx, "store.Set")
	defer span.End()
	span.SetAttributes(
		attribute.String("appstore.model", name),
		attribute.String("appstore.id", id),
	)

	err = m.collection().Save(ctx, id, fields)
	s.metrics.RecordWrite(name, err)
	if err != nil {
		s.logger.Warn("write failed", "model", name, "id", id, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return s.Refresh(ctx, name, id)
}

// Refresh reloads id from the server, then re-renders the root.
func (s *Store) Refresh(ctx context.Context, name, id string) error {
	m, err := s.lookup(name)
	if err != nil {
		return err
	}

	ctx, span := s.tracer.Start(ctx, "store.Refresh")
	defer span.End()
	span.SetAttributes(
		attribute.String("appstore.model", name),
		attribute.String("appstore.id", id),
	)

	err = m.collection().Reload(ctx, id)
	s.metrics.RecordRefresh(name, err)
	if err != nil {
		s.logger.Warn("refresh failed", "model", name, "id", id, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.RenderRoot(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// SetAsync runs Set in the background with the store's base context and
// calls cb with its result once the follow-up refresh has completed.
// cb may be nil.
func (s *Store) SetAsync(name, id string, fields record.Record, cb func(error)) {
	go func() {
		err := s.Set(s.baseCtx, name, id, fields)
		if cb != nil {
			cb(err)
		}
	}()
}

// RefreshAsync runs Refresh in the background with the store's base
// context and calls cb with its result. cb may be nil.
func (s *Store) RefreshAsync(name, id string, cb func(error)) {
	go func() {
		err := s.Refresh(s.baseCtx, name, id)
		if cb != nil {
			cb(err)
		}
	}()
}
