package object

import (
	"context"

	"github.com/golang/glog"

	"github.com/schemat-io/core/internal/catalog"
	"github.com/schemat-io/core/internal/schema"
	"github.com/schemat-io/core/internal/schematerr"
)

// Create populates a newborn object's own catalog (spec §3 "__create__
// populates fields"). It panics if called on an already-persisted object,
// matching setID's defensive style for the other write-once invariant.
func (o *Object) Create(data *catalog.Catalog) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.st != stateNewborn {
		panic("object: Create called on a non-newborn object")
	}
	o.data = data
}

// Validate runs spec §4.2.4: schema-structural checks via
// schema.ValidateCatalog, plus the class's own __validate__ hook. allowed
// custom fields and the schema come from the category this object belongs
// to (its OwnSchema).
func (o *Object) Validate() []error {
	var errs []error
	sch := o.OwnSchema()
	allowCustom := false
	if cat := o.Category(); cat != nil {
		if v, ok := cat.Get("allow_custom_fields"); ok {
			if b, ok2 := v.Plain.(bool); ok2 {
				allowCustom = b
			}
		}
	}
	if sch != nil {
		errs = append(errs, schema.ValidateCatalog(o.Data(), sch, allowCustom)...)
	}
	if class := o.Class(); class != nil {
		errs = append(errs, class.Validate(o)...)
	}
	return errs
}

// Insert validates then commits a newborn object through deps.Store,
// assigning its id and transitioning it out of the newborn state (spec §3
// "insert ... commits and assigns id").
func (o *Object) Insert(ctx context.Context, deps *Deps) error {
	o.mu.RLock()
	newborn := o.st == stateNewborn
	o.mu.RUnlock()
	if !newborn {
		return schematerr.Internal("object: Insert called on a non-newborn object")
	}
	if errs := o.Validate(); len(errs) > 0 {
		return schematerr.ValidationFailed("newborn object", errs)
	}
	rec, err := deps.Store.Insert(ctx, o.Data())
	if err != nil {
		return err
	}
	o.setID(rec.ID)
	o.mu.Lock()
	o.data = rec.Data
	o.mutable = false
	o.mu.Unlock()
	return o.Load(ctx, deps, LoadOptions{Record: rec, AwaitURL: true})
}

// InsertMany commits several newborn objects with one Store.InsertMany
// call (spec §6 "insert_many"); references inside their data are not
// rewritten, so their real ids are known only after the commit. Each
// object in objs must be newborn; on success every one of them has a
// fresh id and loaded data, in the order given.
func InsertMany(ctx context.Context, deps *Deps, objs ...*Object) error {
	for _, o := range objs {
		if errs := o.Validate(); len(errs) > 0 {
			return schematerr.ValidationFailed("newborn object", errs)
		}
	}
	datas := make([]*catalog.Catalog, len(objs))
	for i, o := range objs {
		datas[i] = o.Data()
	}
	recs, err := deps.Store.InsertMany(ctx, datas...)
	if err != nil {
		return err
	}
	for i, o := range objs {
		glog.V(3).Infof("object: newborn %s committed as id %d", o.ProvisionalID(), recs[i].ID)
		o.setID(recs[i].ID)
		o.mu.Lock()
		o.data = recs[i].Data
		o.mutable = false
		o.mu.Unlock()
	}
	for i, o := range objs {
		if err := o.Load(ctx, deps, LoadOptions{Record: recs[i], AwaitURL: true}); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEdits commits one or more structured edits against a stored object
// through deps.Store.Update, which enforces the per-id exclusive lock and
// submission-order application at the storage boundary (spec §4.2.3).
// The in-memory object is refreshed from the resulting record; cached
// resolved properties are dropped since the underlying data changed.
func (o *Object) ApplyEdits(ctx context.Context, deps *Deps, edits ...catalog.Edit) error {
	id, ok := o.ID()
	if !ok {
		return schematerr.Internal("object: ApplyEdits called on an object with no id")
	}
	rec, err := deps.Store.Update(ctx, id, edits...)
	if err != nil {
		return err
	}
	o.mu.Lock()
	o.data = rec.Data
	o.cache = map[string]interface{}{}
	o.mu.Unlock()
	return nil
}

// Delete removes the stored record after running the class's teardown
// hook (spec §3 "Deleted: record removed; __teardown__ ran").
func (o *Object) Delete(ctx context.Context, deps *Deps) (bool, error) {
	id, ok := o.ID()
	if !ok {
		return false, schematerr.Internal("object: Delete called on an object with no id")
	}
	if class := o.Class(); class != nil {
		if err := class.Teardown(o); err != nil {
			return false, err
		}
	}
	existed, err := deps.Store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	o.mu.Lock()
	o.status = StatusDeleted
	o.mu.Unlock()
	return existed, nil
}
