// Package store defines the Record Store external interface the object
// core consumes (spec §6): get/put/delete/insert/update/scan over records
// keyed by a numeric identifier, with layered fallthrough for reads and
// top-writable-layer semantics for writes. The physical storage format is
// explicitly out of the core's scope (spec §1); this package only fixes
// the Go shape of the interface plus one in-memory reference
// implementation and one etcd-backed implementation (internal/store/memory
// and internal/store/etcdstore).
package store

import (
	"context"

	"github.com/schemat-io/core/internal/catalog"
)

// Record is the (id, data) pair persisted by the store (spec §3 "Record").
type Record struct {
	ID   int64
	Data *catalog.Catalog
}

// RecordIterator is the async iterator returned by Scan (spec §6).
type RecordIterator interface {
	// Next advances the iterator and reports whether a record is
	// available; it returns false (with a nil error) at end of stream.
	Next(ctx context.Context) (bool, error)
	// Record returns the record most recently advanced to by Next.
	Record() *Record
	Close() error
}

// Store is the Record Store interface the object core consumes (spec §6).
// Select raises a *schematerr.Error of kind not-found on miss (callers
// should use errors.As against *schematerr.Error, not string/sentinel
// comparison).
type Store interface {
	// Select loads the record for id.
	Select(ctx context.Context, id int64) (*Record, error)

	// Insert assigns a fresh id (respecting layer id-range policy) and
	// persists data, returning the committed record.
	Insert(ctx context.Context, data *catalog.Catalog) (*Record, error)

	// InsertMany commits several newborn catalogs together, assigning ids
	// to all of them before any @id reference among them needs to
	// resolve (spec §6 "insert_many ... references resolve after the
	// commit").
	InsertMany(ctx context.Context, data ...*catalog.Catalog) ([]*Record, error)

	// Update applies edits to the record for id under that id's
	// exclusive lock, in submission order, and returns the resulting
	// record.
	Update(ctx context.Context, id int64, edits ...catalog.Edit) (*Record, error)

	// Delete removes the record for id, reporting whether it existed.
	Delete(ctx context.Context, id int64) (bool, error)

	// Scan iterates records belonging to category (or every record, when
	// category is 0 and the store has no cheaper category index —
	// implementations are free to treat 0 as "unfiltered").
	Scan(ctx context.Context, category int64) (RecordIterator, error)
}

// sliceIterator adapts a pre-materialized slice of records to
// RecordIterator; both reference implementations build their scan results
// this way since neither backs onto a true streaming cursor.
type sliceIterator struct {
	records []*Record
	pos     int
}

// NewSliceIterator returns a RecordIterator over an already-fetched slice.
func NewSliceIterator(records []*Record) RecordIterator {
	return &sliceIterator{records: records, pos: -1}
}

func (it *sliceIterator) Next(ctx context.Context) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}
	it.pos++
	return it.pos < len(it.records), nil
}

func (it *sliceIterator) Record() *Record {
	if it.pos < 0 || it.pos >= len(it.records) {
		return nil
	}
	return it.records[it.pos]
}

func (it *sliceIterator) Close() error { return nil }
