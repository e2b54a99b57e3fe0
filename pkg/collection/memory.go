package collection

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	apperrors "github.com/vango-dev/appstore/internal/errors"
	"github.com/vango-dev/appstore/pkg/record"
)

// MemoryOption configures a Memory collection.
type MemoryOption func(*Memory)

// WithIDAttribute sets the attribute used as the record id.
func WithIDAttribute(attr string) MemoryOption {
	return func(m *Memory) {
		if attr != "" {
			m.idAttr = attr
		}
	}
}

// Memory is an ordered, in-memory Collection. Records without an id are
// kept under a local key and are reachable only through Records.
type Memory struct {
	mu      sync.RWMutex
	src     Source
	idAttr  string
	order   []string
	byKey   map[string]record.Record
	nextCID int
}

var _ Collection = (*Memory)(nil)

// NewMemory creates a Memory collection. It satisfies Constructor.
func NewMemory(src Source, records []record.Record) Collection {
	return newMemory(src, records)
}

// MemoryWith returns a Constructor producing Memory collections with the
// given options applied.
func MemoryWith(opts ...MemoryOption) Constructor {
	return func(src Source, records []record.Record) Collection {
		return newMemory(src, records, opts...)
	}
}

func newMemory(src Source, records []record.Record, opts ...MemoryOption) *Memory {
	m := &Memory{
		src:    src,
		idAttr: record.DefaultIDAttribute,
		byKey:  make(map[string]record.Record, len(records)),
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, r := range records {
		if r == nil {
			r = record.Record{}
		}
		m.upsert(r)
	}
	return m
}

func idKey(id string) string { return "id:" + id }

func (m *Memory) localKey() string {
	m.nextCID++
	return "cid:" + strconv.Itoa(m.nextCID)
}

// IDAttribute returns the attribute used as the record id.
func (m *Memory) IDAttribute() string {
	return m.idAttr
}

// Upsert inserts rec or merges it into the existing record with its id.
// A record without an id is appended as a new local record.
func (m *Memory) Upsert(rec record.Record) error {
	if rec == nil {
		return apperrors.New(apperrors.CodeInvalidArgument).WithDetail("nil record")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsert(rec)
	return nil
}

func (m *Memory) upsert(rec record.Record) {
	id, ok := record.IDOf(rec, m.idAttr)
	if !ok {
		key := m.localKey()
		m.byKey[key] = rec.Clone()
		m.order = append(m.order, key)
		return
	}
	m.upsertLocked(id, rec)
}

func (m *Memory) upsertLocked(id string, rec record.Record) {
	key := idKey(id)
	if existing, ok := m.byKey[key]; ok {
		existing.Merge(rec)
		return
	}
	m.byKey[key] = rec.Clone()
	m.order = append(m.order, key)
}

// Get returns a copy of the record for id.
func (m *Memory) Get(id string) (record.Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.byKey[idKey(id)]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// Records returns copies of every record in insertion order.
func (m *Memory) Records() []record.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]record.Record, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, m.byKey[key].Clone())
	}
	return out
}

// Len returns the number of records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// Save writes fields through the Source. Nothing is committed locally
// unless the write succeeds; the server's response is merged last.
func (m *Memory) Save(ctx context.Context, id string, fields record.Record) error {
	if m.src == nil {
		return apperrors.New(apperrors.CodeInvalidArgument).WithDetail("collection has no source")
	}

	stored, err := m.src.Write(ctx, id, fields)
	if err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	committed := fields.Clone()
	if committed == nil {
		committed = record.Record{}
	}
	committed.Merge(stored)
	committed[m.idAttr] = id
	m.upsertLocked(id, committed)
	return nil
}

// Reload replaces the local record for id with the server's canonical
// state, keeping its position.
func (m *Memory) Reload(ctx context.Context, id string) error {
	if m.src == nil {
		return apperrors.New(apperrors.CodeInvalidArgument).WithDetail("collection has no source")
	}

	fresh, err := m.src.Read(ctx, id)
	if err != nil {
		return fmt.Errorf("reload %s: %w", id, err)
	}
	fresh = fresh.Clone()
	if fresh == nil {
		fresh = record.Record{}
	}
	if _, ok := record.IDOf(fresh, m.idAttr); !ok {
		fresh[m.idAttr] = id
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := idKey(id)
	if _, ok := m.byKey[key]; !ok {
		m.order = append(m.order, key)
	}
	m.byKey[key] = fresh
	return nil
}
