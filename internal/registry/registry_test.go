package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/schemat-io/core/internal/catalog"
	"github.com/schemat-io/core/internal/object"
	"github.com/schemat-io/core/internal/schema"
	"github.com/schemat-io/core/internal/store"
	"github.com/schemat-io/core/internal/store/memory"
	"github.com/schemat-io/core/internal/store/storetest"
)

func testDeps(s store.Store) *object.Deps {
	return &object.Deps{
		Store: s,
		ResolveClass: func(*object.Object) (object.Class, error) {
			return object.NewDefaultClass(), nil
		},
		ResolveSchema: func(*object.Object) (schema.Schema, error) {
			return schema.Schema{}, nil
		},
	}
}

func TestGetLoadedCollapsesConcurrentLoads(t *testing.T) {
	counting, mem := storetest.New()
	ctx := context.Background()
	rec, err := mem.Insert(ctx, catalog.New(catalog.Entry{Key: "name", Value: catalog.PlainValue("x")}))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	r := New(counting, testDeps(counting), time.Minute)

	var wg sync.WaitGroup
	results := make([]*object.Object, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o, err := r.GetLoaded(ctx, rec.ID)
			if err != nil {
				t.Errorf("GetLoaded: %v", err)
				return
			}
			results[i] = o
		}(i)
	}
	wg.Wait()

	if counting.Selects != 1 {
		t.Fatalf("Selects = %d; want exactly 1 (spec invariant 2)", counting.Selects)
	}
	for i, o := range results {
		if o != results[0] {
			t.Fatalf("result %d is a different instance than result 0", i)
		}
	}
}

func TestEvictReinstallsRootCategory(t *testing.T) {
	mem := memory.New(RootCategoryID)
	ctx := context.Background()

	root, err := mem.Insert(ctx, catalog.New(
		catalog.Entry{Key: "name", Value: catalog.PlainValue("category")},
	))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	r := New(mem, testDeps(mem), time.Minute)
	if _, err := r.GetLoaded(ctx, root.ID); err != nil {
		t.Fatalf("GetLoaded(root): %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d; want 1 after first load", r.Len())
	}

	// Force eviction by aging the cached entry out.
	r.mu.Lock()
	for _, o := range r.objects {
		o.SetExpiry(time.Now().Add(-time.Second))
	}
	r.mu.Unlock()

	r.Evict(ctx)

	if r.Len() != 1 {
		t.Fatalf("Len() = %d after Evict; want root re-installed", r.Len())
	}
}

func TestRegisterRecordInstalls(t *testing.T) {
	_, mem := storetest.New()
	ctx := context.Background()
	r := New(mem, testDeps(mem), time.Minute)

	rec := &store.Record{ID: 7, Data: catalog.New()}
	if _, err := r.RegisterRecord(ctx, rec); err != nil {
		t.Fatalf("RegisterRecord: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d; want 1", r.Len())
	}
}
