// Package registry implements the Object Registry (spec §4.1): a
// process-wide cache of loaded objects keyed by id, TTL eviction, and a
// single in-flight load per id. Grounded on the teacher's
// pkg/client/cache/fifo.go (a lock + condition-variable queue
// deduplicating concurrent updates to the same key) and
// pkg/registry/etcdregistry.go (a registry wrapping a layered store with
// per-key atomic access). The in-flight-load collapsing fifo.go models by
// hand is replaced here by golang.org/x/sync/singleflight, a dependency
// already present in two other repos of the retrieval pack
// (andyballingall-json-schema-manager, theRebelliousNerd-codenerd).
package registry

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/golang/glog"

	"github.com/schemat-io/core/internal/object"
	"github.com/schemat-io/core/internal/schematerr"
	"github.com/schemat-io/core/internal/store"
)

// RootCategoryID is the reserved identifier for the category describing
// categories (spec §3 "Identifier 0 is reserved for the root category").
const RootCategoryID int64 = 0

// Registry is the process-wide object cache (spec §4.1).
type Registry struct {
	store store.Store
	deps  *object.Deps

	defaultTTL time.Duration

	mu      sync.RWMutex
	objects map[int64]*object.Object

	group singleflight.Group
}

// New builds a Registry over store s. deps.Loader is set to the registry
// itself before first use, so object loads resolve prototypes/category
// through get_loaded semantics (spec §4.2.1).
func New(s store.Store, deps *object.Deps, defaultTTL time.Duration) *Registry {
	r := &Registry{
		store:      s,
		deps:       deps,
		defaultTTL: defaultTTL,
		objects:    map[int64]*object.Object{},
	}
	if deps.Loader == nil {
		deps.Loader = r
	}
	return r
}

// GetLoaded returns a fully loaded, immutable object for id, loading it on
// a cache miss; concurrent callers for the same id collapse into one load
// (spec §4.1 "get_loaded(id) -> object ... guarantees at-most-one
// concurrent load per id", spec §8 invariant 2).
func (r *Registry) GetLoaded(ctx context.Context, id int64) (*object.Object, error) {
	return r.load(ctx, id, true)
}

// Load is GetLoaded under the name object.Loader expects.
func (r *Registry) Load(ctx context.Context, id int64) (*object.Object, error) {
	return r.GetLoaded(ctx, id)
}

// LoadNoURL loads (or returns cached) an object without awaiting its URL
// computation, the form prototypes/categories use to avoid container
// cycles (spec §4.2.1). Together with Load it satisfies object.Loader.
func (r *Registry) LoadNoURL(ctx context.Context, id int64) (*object.Object, error) {
	return r.load(ctx, id, false)
}

func (r *Registry) load(ctx context.Context, id int64, awaitURL bool) (*object.Object, error) {
	r.mu.RLock()
	if o, ok := r.objects[id]; ok {
		r.mu.RUnlock()
		if awaitURL {
			if err := o.Load(ctx, r.deps, object.LoadOptions{AwaitURL: true}); err != nil {
				return nil, err
			}
		}
		return o, nil
	}
	r.mu.RUnlock()

	key := strconv.FormatInt(id, 10)
	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		o := object.NewStub(id)
		opts := object.LoadOptions{AwaitURL: awaitURL}
		if err := o.Load(ctx, r.deps, opts); err != nil {
			return nil, err
		}
		r.install(o)
		return o, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*object.Object), nil
}

// RegisterRecord installs or refreshes a record received from an external
// source (e.g. over the wire), per spec §4.1 "register_record(rec)": a
// newer record supersedes an older one of the same id. Mutable objects
// are rejected, never entering the registry (spec §3 invariant 3, §4.1
// policy).
func (r *Registry) RegisterRecord(ctx context.Context, rec *store.Record) (*object.Object, error) {
	o := object.NewStub(rec.ID)
	if err := o.Load(ctx, r.deps, object.LoadOptions{Record: rec, AwaitURL: false}); err != nil {
		return nil, err
	}
	if o.IsMutable() {
		return nil, schematerr.Internal("registry: refusing to install a mutable object for id %d", rec.ID)
	}
	r.install(o)
	return o, nil
}

func (r *Registry) install(o *object.Object) {
	if o.IsMutable() {
		return
	}
	id, ok := o.ID()
	if !ok {
		return
	}
	ttl := r.defaultTTL
	if t := o.TTL(); t >= 0 {
		// An explicit ttl of 0 means "evict on next purge" (spec §3):
		// Add(0) yields an expiry of now, which Evict treats as already
		// past.
		ttl = time.Duration(t) * time.Second
	}
	o.SetExpiry(time.Now().Add(ttl))

	r.mu.Lock()
	r.objects[id] = o
	r.mu.Unlock()
}

// Evict removes every entry whose expiry has passed, then re-ensures the
// root category is present, loading it ad hoc if it was just evicted
// (spec §4.1 "After eviction, the registry must re-ensure the root
// category is present", spec §7 recovery point (b)).
func (r *Registry) Evict(ctx context.Context) {
	now := time.Now()
	var evicted []int64

	r.mu.Lock()
	for id, o := range r.objects {
		if !o.Expiry().After(now) {
			delete(r.objects, id)
			evicted = append(evicted, id)
		}
	}
	_, rootStillCached := r.objects[RootCategoryID]
	r.mu.Unlock()

	if len(evicted) > 0 {
		glog.V(2).Infof("registry: evicted %d object(s): %v", len(evicted), evicted)
	}

	if !rootStillCached {
		glog.Warningf("registry: root category evicted, re-loading ad hoc")
		if _, err := r.GetLoaded(ctx, RootCategoryID); err != nil {
			glog.Errorf("registry: failed to re-load root category after eviction: %v", err)
		}
	}
}

// RunEvictionLoop evicts expired entries every interval until ctx is done.
// Driven by internal/config's eviction-interval setting (SPEC_FULL §2).
func (r *Registry) RunEvictionLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Evict(ctx)
		}
	}
}

// Len reports how many objects are currently cached (test/introspection use).
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}
