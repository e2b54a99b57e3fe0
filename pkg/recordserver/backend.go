package recordserver

import (
	"context"
	"errors"
	"sync"

	"github.com/vango-dev/appstore/pkg/record"
)

// ErrNotFound is returned by backends for unknown records.
var ErrNotFound = errors.New("recordserver: record not found")

// Backend stores records by model and id.
type Backend interface {
	List(ctx context.Context, model string) ([]record.Record, error)
	Get(ctx context.Context, model, id string) (record.Record, error)
	Put(ctx context.Context, model, id string, fields record.Record) (record.Record, error)
	Delete(ctx context.Context, model, id string) error
}

// MemoryBackend keeps records in memory, in insertion order per model.
type MemoryBackend struct {
	mu     sync.RWMutex
	models map[string]*memModel
}

type memModel struct {
	order []string
	byID  map[string]record.Record
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{models: make(map[string]*memModel)}
}

// Seed stores records under model, keyed by their "id" attribute.
// Records without an id are skipped.
func (b *MemoryBackend) Seed(model string, records ...record.Record) {
	b.mu.Lock()
	defer b.mu.Unlock()

	mm := b.model(model)
	for _, r := range records {
		id := r.ID()
		if id == "" {
			continue
		}
		if _, ok := mm.byID[id]; !ok {
			mm.order = append(mm.order, id)
		}
		mm.byID[id] = r.Clone()
	}
}

func (b *MemoryBackend) model(name string) *memModel {
	mm, ok := b.models[name]
	if !ok {
		mm = &memModel{byID: make(map[string]record.Record)}
		b.models[name] = mm
	}
	return mm
}

func (b *MemoryBackend) List(_ context.Context, model string) ([]record.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	mm, ok := b.models[model]
	if !ok {
		return []record.Record{}, nil
	}
	out := make([]record.Record, 0, len(mm.order))
	for _, id := range mm.order {
		out = append(out, mm.byID[id].Clone())
	}
	return out, nil
}

func (b *MemoryBackend) Get(_ context.Context, model, id string) (record.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if mm, ok := b.models[model]; ok {
		if r, ok := mm.byID[id]; ok {
			return r.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (b *MemoryBackend) Put(_ context.Context, model, id string, fields record.Record) (record.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	mm := b.model(model)
	r, ok := mm.byID[id]
	if !ok {
		r = record.Record{}
		mm.byID[id] = r
		mm.order = append(mm.order, id)
	}
	r.Merge(fields)
	r[record.DefaultIDAttribute] = id
	return r.Clone(), nil
}

func (b *MemoryBackend) Delete(_ context.Context, model, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	mm, ok := b.models[model]
	if !ok {
		return ErrNotFound
	}
	if _, ok := mm.byID[id]; !ok {
		return ErrNotFound
	}
	delete(mm.byID, id)
	for i, oid := range mm.order {
		if oid == id {
			mm.order = append(mm.order[:i], mm.order[i+1:]...)
			break
		}
	}
	return nil
}
