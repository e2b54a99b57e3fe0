package store

import (
	"context"
	"time"

	"github.com/vango-dev/appstore/pkg/record"
	"github.com/vango-dev/appstore/pkg/view"
)

// ResetData replaces the collections of the registered types present in
// data, then mounts root on target with every model's records and the
// store as props.
// A previously mounted root is unmounted first. Keys of data that are not
// registered models are passed through as props unchanged.
func (s *Store) ResetData(ctx context.Context, data map[string][]record.Record, root view.Component, target view.Target) error {
	_, span := s.tracer.Start(ctx, "store.ResetData")
	defer span.End()

	known := make(map[string][]record.Record, len(data))
	props := view.Props{}
	for name, records := range data {
		if s.HasModel(name) {
			known[name] = records
			continue
		}
		props[name] = record.CloneAll(records)
	}
	if err := s.ResetCollections(known); err != nil {
		return err
	}
	for _, name := range s.Models() {
		records, err := s.GetAll(name)
		if err != nil {
			return err
		}
		props[name] = records
	}
	props[AppStoreKey] = s

	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	if s.root != nil {
		if err := s.root.Unmount(); err != nil {
			s.logger.Error("unmount previous root", "error", err)
		}
		s.root = nil
	}

	node, err := view.Mount(root, props, target, s.viewOpts...)
	if err != nil {
		span.RecordError(err)
		return err
	}
	s.root = node
	s.rootProps = props
	s.logger.Debug("root mounted", "models", len(known))
	return nil
}

// RenderRoot copies every registered model's records into the root props
// under the model's name and pushes the props to the mounted root. It is a
// no-op when nothing is mounted.
func (s *Store) RenderRoot() error {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	if s.root == nil {
		return nil
	}

	start := time.Now()
	props := s.rootProps.Clone()
	for _, name := range s.Models() {
		records, err := s.GetAll(name)
		if err != nil {
			return err
		}
		props[name] = records
	}
	props[AppStoreKey] = s
	s.rootProps = props

	if err := s.root.SetProps(props); err != nil {
		s.logger.Error("render root", "error", err)
		return err
	}
	s.metrics.RecordRender(time.Since(start))
	return nil
}

// RootProps returns a shallow copy of the current root props.
func (s *Store) RootProps() view.Props {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	return s.rootProps.Clone()
}

// Mounted reports whether a root is mounted.
func (s *Store) Mounted() bool {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	return s.root != nil
}
