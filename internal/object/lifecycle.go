package object

import (
	"context"

	"github.com/schemat-io/core/internal/schema"
	"github.com/schemat-io/core/internal/schematerr"
	"github.com/schemat-io/core/internal/store"
)

// Loader resolves another object by id, fully loaded or loaded-without-url
// (spec §4.2.1: "each [prototype] becomes at least loaded-without-url to
// avoid cycles through containers"). The registry satisfies this
// interface with its singleflight-backed get_loaded, but object stays
// decoupled from internal/registry so the dependency only runs one way.
type Loader interface {
	Load(ctx context.Context, id int64) (*Object, error)
	LoadNoURL(ctx context.Context, id int64) (*Object, error)
}

// Deps bundles everything load() needs beyond the record itself: the
// Record Store, a Loader for prototypes/category, and the two resolution
// hooks the higher layers (module loader, container tree) own.
type Deps struct {
	Store store.Store
	Loader Loader

	// ResolveClass maps a category object (nil for the root category's
	// own bootstrap) to the behavior implementation that category
	// installs, normally by reading its `class` field and handing the
	// named module off to the module loader.
	ResolveClass func(category *Object) (Class, error)

	// ResolveSchema maps a category object to the effective child schema
	// new instances of that category resolve and validate against.
	ResolveSchema func(category *Object) (schema.Schema, error)

	// ResolveURL computes an object's access path and canonical URL by
	// walking its container chain (internal/container). May run
	// asynchronously when await_url is false.
	ResolveURL func(ctx context.Context, o *Object) (path, url string, err error)
}

// LoadOptions mirrors spec §4.2.1's `load({record?, await_url=true})`.
type LoadOptions struct {
	Record   *store.Record
	AwaitURL bool
}

var defaultOptions = LoadOptions{AwaitURL: true}

// Load is idempotent and reentrant: a second caller while a load is in
// flight waits for the same result instead of issuing a second fetch; an
// already-loaded object short-circuits immediately (spec §4.2.1).
func (o *Object) Load(ctx context.Context, deps *Deps, opts ...LoadOptions) error {
	opt := defaultOptions
	if len(opts) > 0 {
		opt = opts[0]
	}

	o.mu.Lock()
	if o.st == stateLoaded || (o.st == stateLoadedWithoutURL && !opt.AwaitURL) {
		o.mu.Unlock()
		return nil
	}
	if o.loading != nil {
		ch := o.loading
		o.mu.Unlock()
		<-ch
		o.mu.RLock()
		err := o.loadErr
		o.mu.RUnlock()
		if err != nil {
			return err
		}
		if opt.AwaitURL {
			return o.awaitURL(ctx, deps)
		}
		return nil
	}
	o.loading = make(chan struct{})
	o.st = stateLoading
	o.mu.Unlock()

	err := o.doLoad(ctx, deps, opt)

	o.mu.Lock()
	o.loadErr = err
	ch := o.loading
	o.loading = nil
	if err != nil {
		o.data = nil
		o.st = stateStub
	} else if opt.AwaitURL {
		o.st = stateLoaded
	} else {
		o.st = stateLoadedWithoutURL
	}
	o.mu.Unlock()
	close(ch)
	return err
}

func (o *Object) doLoad(ctx context.Context, deps *Deps, opt LoadOptions) error {
	id, hasID := o.ID()

	rec := opt.Record
	if rec == nil {
		if !hasID {
			return schematerr.Internal("object: cannot load a newborn without an id or explicit record")
		}
		r, err := deps.Store.Select(ctx, id)
		if err != nil {
			return err
		}
		rec = r
	}

	o.mu.Lock()
	o.data = rec.Data
	o.mu.Unlock()

	if err := o.loadPrototypes(ctx, deps); err != nil {
		return err
	}
	if err := o.loadCategory(ctx, deps); err != nil {
		return err
	}

	class, err := deps.ResolveClass(o.Category())
	if err != nil {
		return err
	}
	o.mu.Lock()
	o.class = class
	o.mu.Unlock()

	sch, err := deps.ResolveSchema(o.Category())
	if err != nil {
		return err
	}
	o.mu.Lock()
	o.ownSchema = sch
	o.mu.Unlock()

	if opt.AwaitURL {
		if err := o.computeURL(ctx, deps); err != nil {
			return err
		}
	} else {
		o.kickOffURL(ctx, deps)
	}

	if class != nil {
		if err := class.Init(o); err != nil {
			return err
		}
	}
	return nil
}

func (o *Object) loadPrototypes(ctx context.Context, deps *Deps) error {
	data := o.Data()
	refs := data.All("extends")
	protos := make([]*Object, 0, len(refs))
	for _, v := range refs {
		if !v.IsRef() {
			continue
		}
		p, err := deps.Loader.LoadNoURL(ctx, v.Ref.ID)
		if err != nil {
			return err
		}
		protos = append(protos, p)
	}
	o.mu.Lock()
	o.prototypes = protos
	o.mu.Unlock()
	return nil
}

func (o *Object) loadCategory(ctx context.Context, deps *Deps) error {
	data := o.Data()
	catVal, ok := data.First("category")
	if !ok || !catVal.IsRef() {
		return nil // root category and similar roots have no category of their own
	}
	cat, err := deps.Loader.LoadNoURL(ctx, catVal.Ref.ID)
	if err != nil {
		return err
	}
	o.mu.Lock()
	o.category = cat
	o.mu.Unlock()
	return nil
}

func (o *Object) computeURL(ctx context.Context, deps *Deps) error {
	if deps.ResolveURL == nil {
		return nil
	}
	path, url, err := deps.ResolveURL(ctx, o)
	if err != nil {
		return err
	}
	o.mu.Lock()
	o.path, o.url = path, url
	o.mu.Unlock()
	return nil
}

// kickOffURL runs URL resolution in the background, the un-awaited
// promise the spec describes for `await_url=false`; a subsequent Load
// call with AwaitURL=true waits for it via awaitURL.
func (o *Object) kickOffURL(ctx context.Context, deps *Deps) {
	o.mu.Lock()
	if o.pendingURL != nil {
		o.mu.Unlock()
		return
	}
	ch := make(chan struct{})
	o.pendingURL = ch
	o.mu.Unlock()

	go func() {
		err := o.computeURL(ctx, deps)
		o.mu.Lock()
		o.urlErr = err
		o.pendingURL = nil
		o.mu.Unlock()
		close(ch)
	}()
}

func (o *Object) awaitURL(ctx context.Context, deps *Deps) error {
	o.mu.Lock()
	ch := o.pendingURL
	o.mu.Unlock()
	if ch == nil {
		return o.computeURL(ctx, deps)
	}
	<-ch
	o.mu.RLock()
	err := o.urlErr
	o.mu.RUnlock()
	return err
}
