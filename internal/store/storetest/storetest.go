// Package storetest provides a store.Store fixture for exercising the
// object core without real I/O, modeled on the teacher's
// pkg/registry/registrytest package (an in-memory double standing in for
// the etcd-backed registry in tests).
package storetest

import (
	"context"

	"github.com/schemat-io/core/internal/catalog"
	"github.com/schemat-io/core/internal/store"
	"github.com/schemat-io/core/internal/store/memory"
)

// New returns a fresh in-memory store, along with a counter recording how
// many Select calls were made — used by tests asserting the
// single-flight/load-collapsing invariant (spec §8 invariant 2: "O.load()
// called N times concurrently causes exactly one store read").
func New() (*CountingStore, *memory.Store) {
	m := memory.New(1)
	return &CountingStore{inner: m}, m
}

// CountingStore wraps a store.Store and counts Select calls.
type CountingStore struct {
	inner   store.Store
	Selects int
}

func (c *CountingStore) Select(ctx context.Context, id int64) (*store.Record, error) {
	c.Selects++
	return c.inner.Select(ctx, id)
}

func (c *CountingStore) Insert(ctx context.Context, data *catalog.Catalog) (*store.Record, error) {
	return c.inner.Insert(ctx, data)
}

func (c *CountingStore) InsertMany(ctx context.Context, data ...*catalog.Catalog) ([]*store.Record, error) {
	return c.inner.InsertMany(ctx, data...)
}

func (c *CountingStore) Update(ctx context.Context, id int64, edits ...catalog.Edit) (*store.Record, error) {
	return c.inner.Update(ctx, id, edits...)
}

func (c *CountingStore) Delete(ctx context.Context, id int64) (bool, error) {
	return c.inner.Delete(ctx, id)
}

func (c *CountingStore) Scan(ctx context.Context, category int64) (store.RecordIterator, error) {
	return c.inner.Scan(ctx, category)
}
