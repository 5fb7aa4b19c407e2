// Package memory implements internal/store.Store entirely in process
// memory: a single non-layered backing (Store) plus a composable layered
// wrapper (Layered) matching spec §6's "a store may be layered: reads fall
// through layers in order; writes go to the top writable layer; a
// read-only layer forwards writes to the layer above." Grounded on the
// teacher's pkg/registry/etcdregistry.go (the per-key AtomicUpdate shape)
// and on other_examples' open-policy-agent-eopa storage/store.go (a store
// spanning one read-write root plus attached read-only backends).
package memory

import (
	"context"
	"sync"

	"github.com/schemat-io/core/internal/catalog"
	"github.com/schemat-io/core/internal/schematerr"
	"github.com/schemat-io/core/internal/store"
)

// Store is a single, non-layered, in-memory record store.
type Store struct {
	mu      sync.Mutex
	records map[int64]*catalog.Catalog
	locks   map[int64]*sync.Mutex
	nextID  int64
}

// New returns an empty in-memory store whose ids start at startID.
func New(startID int64) *Store {
	return &Store{
		records: map[int64]*catalog.Catalog{},
		locks:   map[int64]*sync.Mutex{},
		nextID:  startID,
	}
}

func (s *Store) Select(ctx context.Context, id int64) (*store.Record, error) {
	s.mu.Lock()
	data, ok := s.records[id]
	s.mu.Unlock()
	if !ok {
		return nil, schematerr.ObjectNotFound(id)
	}
	return &store.Record{ID: id, Data: data.Clone()}, nil
}

func (s *Store) Insert(ctx context.Context, data *catalog.Catalog) (*store.Record, error) {
	recs, err := s.InsertMany(ctx, data)
	if err != nil {
		return nil, err
	}
	return recs[0], nil
}

// InsertMany assigns consecutive ids and stores every catalog while
// holding the store lock once, so no reader sees part of the batch. It
// does not rewrite references inside the catalogs: callers learn the new
// ids only from the returned records.
func (s *Store) InsertMany(ctx context.Context, data ...*catalog.Catalog) ([]*store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := make([]*store.Record, len(data))
	for i, d := range data {
		id := s.nextID
		s.nextID++
		s.records[id] = d.Clone()
		s.locks[id] = &sync.Mutex{}
		recs[i] = &store.Record{ID: id, Data: d}
	}
	return recs, nil
}

func (s *Store) lockFor(id int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Update applies edits under id's own exclusive lock (spec §4.2.3, §5):
// the per-id mutex, not the store-wide mutex, is held while edits apply,
// so concurrent updates to different ids never block one another.
func (s *Store) Update(ctx context.Context, id int64, edits ...catalog.Edit) (*store.Record, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	cur, ok := s.records[id]
	s.mu.Unlock()
	if !ok {
		return nil, schematerr.ObjectNotFound(id)
	}

	next, err := catalog.Apply(cur, edits...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.records[id] = next
	s.mu.Unlock()
	return &store.Record{ID: id, Data: next.Clone()}, nil
}

func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return false, nil
	}
	delete(s.records, id)
	delete(s.locks, id)
	return true, nil
}

// Scan returns every record whose `category` entry references category,
// or every record when category is 0.
func (s *Store) Scan(ctx context.Context, category int64) (store.RecordIterator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var recs []*store.Record
	for id, data := range s.records {
		if category != 0 {
			cat, ok := data.First("category")
			if !ok || !cat.IsRef() || cat.Ref.ID != category {
				continue
			}
		}
		recs = append(recs, &store.Record{ID: id, Data: data.Clone()})
	}
	return store.NewSliceIterator(recs), nil
}
