// Package object implements the web object: lifecycle (stub -> loading ->
// loaded), property resolution through prototype inheritance and
// schema-driven defaults/imputation, structured edits, and validation
// (spec §3, §4.2). Grounded on the teacher's pkg/registry/pod/rest.go
// (validate-then-commit REST verbs) and pkg/api/meta/meta.go (reserved
// attribute access bypassing schema resolution).
package object

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/schemat-io/core/internal/catalog"
	"github.com/schemat-io/core/internal/schema"
)

// Status tags the special states an object's lifecycle can be in, beyond
// the ordinary case (spec §3 "status — ordinary or special state tag").
type Status string

const (
	StatusOrdinary Status = ""
	StatusDeleted  Status = "deleted"
)

// state is the internal lifecycle state machine (spec §3 lifecycles, §9
// Design Note: "represent this as an object-state enum {Stub, Loading,
// Loaded, LoadedWithoutURL}").
type state int

const (
	stateNewborn state = iota
	stateStub
	stateLoading
	stateLoadedWithoutURL
	stateLoaded
	stateEvicted
)

// sentinel distinguishes "resolved to undefined" from "not yet resolved"
// in the per-object resolution cache (spec §4.2.2 step 7).
type sentinel struct{}

var undefinedSentinel = &sentinel{}

// Object is the runtime projection of a record (spec §3 "Web Object").
type Object struct {
	mu sync.RWMutex

	id        *int64 // nil for a newborn, not-yet-persisted object (invariant 1: write-once)
	data      *catalog.Catalog
	category  *Object
	prototypes []*Object
	container *Object
	class     Class

	path string
	url  string

	status Status
	ttl    int
	expiry time.Time

	mutable       bool
	provisionalID string

	st state

	// cache holds resolved property values keyed by "name" or "name$" for
	// plural reads, per spec §4.2.2 step 7.
	cache map[string]interface{}

	// pendingURL is non-nil while URL computation is in flight
	// (spec §9: load() kicks off an un-awaited URL computation).
	pendingURL chan struct{}
	urlErr     error

	loading chan struct{} // closed when a load() in flight completes
	loadErr error

	// ownSchema is the schema this object's OWN fields resolve and
	// validate against: its category's child schema (spec §4.2.2 step 3).
	ownSchema schema.Schema
}

// unsetTTL marks "no explicit per-object ttl given": the registry should
// fall back to its own default. This is distinct from an explicit ttl of
// 0, which per spec §3 means "evict on next purge".
const unsetTTL = -1

// New returns a newborn object: no id, mutable, ready for __create__ to
// populate fields (spec §3 "Newborn"). It is tagged with a provisional id
// (spec §3 meta "provisional_id — id assigned to a newborn before commit")
// so a batch of cross-referencing newborns can be tracked and logged
// before InsertMany assigns their real, permanent ids.
func New() *Object {
	return &Object{
		mutable:       true,
		st:            stateNewborn,
		cache:         map[string]interface{}{},
		ttl:           unsetTTL,
		provisionalID: uuid.NewString(),
	}
}

// ProvisionalID returns the uuid assigned to this object at construction
// time, stable for its whole newborn lifetime and meaningless once Insert
// or InsertMany assigns a real id (spec §3 meta "provisional_id").
func (o *Object) ProvisionalID() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.provisionalID
}

// NewStub returns a stub referencing id, not yet loaded (spec §3 "Stub").
func NewStub(id int64) *Object {
	return &Object{id: &id, st: stateStub, cache: map[string]interface{}{}, ttl: unsetTTL}
}

// ID returns the object's identifier, or (0, false) if it is an
// unpersisted newborn (spec §3 invariant 1: write-once).
func (o *Object) ID() (int64, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.id == nil {
		return 0, false
	}
	return *o.id, true
}

// setID assigns the id exactly once; a second call with a different value
// panics, enforcing invariant 1 defensively (callers — the store/registry
// boundary — are expected never to attempt it).
func (o *Object) setID(id int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.id != nil {
		if *o.id != id {
			panic("object: attempt to change an already-assigned id")
		}
		return
	}
	o.id = &id
}

// IsMutable reports whether edits may be applied in place (newborn or
// explicitly opened for editing) rather than only through the store's
// edit pipeline. Mutable objects are never cacheable (spec §3 invariant 3).
func (o *Object) IsMutable() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.mutable
}

// Data returns the object's own catalog. Present only once loaded.
func (o *Object) Data() *catalog.Catalog {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.data
}

// Category returns the describing category object, if resolved.
func (o *Object) Category() *Object {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.category
}

// Prototypes returns the object's direct ancestor references.
func (o *Object) Prototypes() []*Object {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]*Object(nil), o.prototypes...)
}

// Container returns the object's publishing container, if any.
func (o *Object) Container() *Object { o.mu.RLock(); defer o.mu.RUnlock(); return o.container }

// Path returns the access path computed at load time (spec §3 "path").
func (o *Object) Path() string { o.mu.RLock(); defer o.mu.RUnlock(); return o.path }

// URL returns the access URL computed at load time (spec §3 "url").
func (o *Object) URL() string { o.mu.RLock(); defer o.mu.RUnlock(); return o.url }

// Status returns the object's state tag.
func (o *Object) Status() Status { o.mu.RLock(); defer o.mu.RUnlock(); return o.status }

// TTL returns the cache residency in seconds; 0 means evict on next
// purge, and unsetTTL (-1, the default) means "no explicit ttl — the
// registry's own default applies".
func (o *Object) TTL() int { o.mu.RLock(); defer o.mu.RUnlock(); return o.ttl }

// Expiry returns the timestamp the registry should evict this entry at.
func (o *Object) Expiry() time.Time { o.mu.RLock(); defer o.mu.RUnlock(); return o.expiry }

// SetExpiry is called by the registry after installing a loaded object.
func (o *Object) SetExpiry(t time.Time) { o.mu.Lock(); defer o.mu.Unlock(); o.expiry = t }

// SetTTL is called by a class's Init hook to declare this object's own
// cache residency (spec §3 "ttl"), overriding the registry's default.
func (o *Object) SetTTL(seconds int) { o.mu.Lock(); defer o.mu.Unlock(); o.ttl = seconds }

// IsLoaded reports whether data/category/class/url have been resolved.
func (o *Object) IsLoaded() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.st == stateLoaded || o.st == stateLoadedWithoutURL
}

// Class returns the resolved behavior implementation (spec §3 "class" via
// category, or the default Item class).
func (o *Object) Class() Class { o.mu.RLock(); defer o.mu.RUnlock(); return o.class }

// OwnSchema returns the schema this object's own fields are resolved and
// validated against: its category's child schema, as computed by
// Deps.ResolveSchema during load.
func (o *Object) OwnSchema() schema.Schema {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.ownSchema
}
