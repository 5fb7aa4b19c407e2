package memory

import (
	"context"

	"github.com/schemat-io/core/internal/catalog"
	"github.com/schemat-io/core/internal/schematerr"
	"github.com/schemat-io/core/internal/store"
)

// Layer is one tier of a Layered store: typically one process-local
// overlay (e.g. development overrides) stacked over a read-only base
// layer (e.g. a shipped application bundle).
type Layer struct {
	Store    store.Store
	ReadOnly bool
}

// Layered composes layers top-to-bottom: reads fall through in order and
// return the first hit; writes go to the topmost layer not marked
// ReadOnly, skipping any read-only layers above it (spec §6).
type Layered struct {
	layers []Layer
}

// NewLayered builds a layered store from top (first, most specific) to
// bottom (last, most general).
func NewLayered(layers ...Layer) *Layered {
	return &Layered{layers: layers}
}

func (l *Layered) writableLayer() (store.Store, error) {
	for _, layer := range l.layers {
		if !layer.ReadOnly {
			return layer.Store, nil
		}
	}
	return nil, schematerr.Internal("layered store: no writable layer configured")
}

func (l *Layered) Select(ctx context.Context, id int64) (*store.Record, error) {
	var lastErr error
	for _, layer := range l.layers {
		rec, err := layer.Store.Select(ctx, id)
		if err == nil {
			return rec, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, schematerr.ObjectNotFound(id)
}

func (l *Layered) Insert(ctx context.Context, data *catalog.Catalog) (*store.Record, error) {
	w, err := l.writableLayer()
	if err != nil {
		return nil, err
	}
	return w.Insert(ctx, data)
}

func (l *Layered) InsertMany(ctx context.Context, data ...*catalog.Catalog) ([]*store.Record, error) {
	w, err := l.writableLayer()
	if err != nil {
		return nil, err
	}
	return w.InsertMany(ctx, data...)
}

func (l *Layered) Update(ctx context.Context, id int64, edits ...catalog.Edit) (*store.Record, error) {
	w, err := l.writableLayer()
	if err != nil {
		return nil, err
	}
	return w.Update(ctx, id, edits...)
}

func (l *Layered) Delete(ctx context.Context, id int64) (bool, error) {
	w, err := l.writableLayer()
	if err != nil {
		return false, err
	}
	return w.Delete(ctx, id)
}

// Scan merges per-layer scans, letting a record from a higher (more
// specific) layer shadow one with the same id from a lower layer.
func (l *Layered) Scan(ctx context.Context, category int64) (store.RecordIterator, error) {
	seen := map[int64]bool{}
	var merged []*store.Record
	for _, layer := range l.layers {
		it, err := layer.Store.Scan(ctx, category)
		if err != nil {
			return nil, err
		}
		for {
			ok, err := it.Next(ctx)
			if err != nil {
				it.Close()
				return nil, err
			}
			if !ok {
				break
			}
			rec := it.Record()
			if seen[rec.ID] {
				continue
			}
			seen[rec.ID] = true
			merged = append(merged, rec)
		}
		it.Close()
	}
	return store.NewSliceIterator(merged), nil
}
