package collection

import (
	"context"

	"github.com/vango-dev/appstore/pkg/record"
)

// Source is the server side of a collection.
type Source interface {
	// Read returns the server's canonical record for id.
	Read(ctx context.Context, id string) (record.Record, error)

	// Write sends fields for id and returns the record as stored by the
	// server.
	Write(ctx context.Context, id string, fields record.Record) (record.Record, error)
}

// Collection holds the records of one model type.
type Collection interface {
	// Upsert inserts rec, or merges it into the record with the same id.
	// A record without an id is appended.
	Upsert(rec record.Record) error

	// Get returns a copy of the record for id.
	Get(id string) (record.Record, bool)

	// Records returns copies of every record in insertion order.
	Records() []record.Record

	// Len returns the number of records.
	Len() int

	// Save writes fields for id through the Source and merges them into
	// the local record once the server acknowledges.
	Save(ctx context.Context, id string, fields record.Record) error

	// Reload replaces the local record for id with the server's state.
	Reload(ctx context.Context, id string) error
}

// Constructor creates a collection bound to src and seeded with records.
// records may be nil.
type Constructor func(src Source, records []record.Record) Collection
