package object

import (
	"context"
	"testing"

	"github.com/schemat-io/core/internal/catalog"
	"github.com/schemat-io/core/internal/schema"
	"github.com/schemat-io/core/internal/store"
	"github.com/schemat-io/core/internal/store/memory"
)

// simpleLoader resolves prototype/category references by loading them
// directly through the same Deps, with no caching — object_test exercises
// load() in isolation; the collapsing/caching behavior it would otherwise
// need a Loader for is covered by internal/registry's own tests.
type simpleLoader struct {
	deps *Deps
}

func (l *simpleLoader) Load(ctx context.Context, id int64) (*Object, error) {
	o := NewStub(id)
	return o, o.Load(ctx, l.deps, LoadOptions{AwaitURL: true})
}

func (l *simpleLoader) LoadNoURL(ctx context.Context, id int64) (*Object, error) {
	o := NewStub(id)
	return o, o.Load(ctx, l.deps, LoadOptions{AwaitURL: false})
}

func deps(s store.Store, sch schema.Schema) *Deps {
	d := &Deps{
		Store: s,
		ResolveClass: func(*Object) (Class, error) {
			return NewDefaultClass(), nil
		},
		ResolveSchema: func(*Object) (schema.Schema, error) {
			return sch, nil
		},
	}
	d.Loader = &simpleLoader{deps: d}
	return d
}

// repeatedStringType is a repeated, inheriting string type, the shape
// spec §8 scenario 3 ("Inheritance merge") describes for `tags`.
func repeatedStringType() *schema.Type {
	return &schema.Type{Name: "tags", Repeated: true, Inherit: true}
}

// TestIDWriteOnce exercises spec §8 invariant 1: once an id is assigned it
// cannot be changed to a different value.
func TestIDWriteOnce(t *testing.T) {
	o := NewStub(5)
	id, ok := o.ID()
	if !ok || id != 5 {
		t.Fatalf("ID() = %d,%v; want 5,true", id, ok)
	}
	o.setID(5) // same value is a harmless no-op
	if id, _ := o.ID(); id != 5 {
		t.Fatalf("ID() changed to %d", id)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("setID with a different value did not panic")
		}
	}()
	o.setID(6)
}

// TestInheritanceMerge reproduces spec §8 scenario 3 literally: object A
// has prototype B; both define a repeated, inheriting `tags` property. A
// has tags=[a1], B has tags=[b1,b2], the category declares defaults
// tags=[d]. GetAll("tags$") must yield [a1,b1,b2,d]; Get("tags") must
// yield "a1" (plural and singular reads agree per spec §8 invariant 4 in
// the sense that the singular read is the plural read's first element).
func TestInheritanceMerge(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(1)
	sch := schema.Schema{"tags": repeatedStringType()}

	catRec, err := mem.Insert(ctx, catalog.New(
		catalog.Entry{Key: "defaults", Value: catalog.CatalogValue(catalog.New(
			catalog.Entry{Key: "tags", Value: catalog.PlainValue("d")},
		))},
	))
	if err != nil {
		t.Fatalf("insert category: %v", err)
	}

	bRec, err := mem.Insert(ctx, catalog.New(
		catalog.Entry{Key: "category", Value: catalog.RefValue(catRec.ID)},
		catalog.Entry{Key: "tags", Value: catalog.PlainValue("b1")},
		catalog.Entry{Key: "tags", Value: catalog.PlainValue("b2")},
	))
	if err != nil {
		t.Fatalf("insert B: %v", err)
	}

	aRec, err := mem.Insert(ctx, catalog.New(
		catalog.Entry{Key: "category", Value: catalog.RefValue(catRec.ID)},
		catalog.Entry{Key: "extends", Value: catalog.RefValue(bRec.ID)},
		catalog.Entry{Key: "tags", Value: catalog.PlainValue("a1")},
	))
	if err != nil {
		t.Fatalf("insert A: %v", err)
	}

	d := deps(mem, sch)
	a := NewStub(aRec.ID)
	if err := a.Load(ctx, d); err != nil {
		t.Fatalf("load A: %v", err)
	}

	all := a.GetAll("tags$")
	got := make([]string, len(all))
	for i, v := range all {
		got[i] = v.Plain.(string)
	}
	want := []string{"a1", "b1", "b2", "d"}
	if len(got) != len(want) {
		t.Fatalf("GetAll(tags$) = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("GetAll(tags$)[%d] = %q; want %q (full: %v)", i, got[i], want[i], got)
		}
	}

	single, ok := a.Get("tags")
	if !ok || single.Plain.(string) != "a1" {
		t.Fatalf("Get(tags) = %v,%v; want a1,true", single.Raw(), ok)
	}
}

// TestPropertyResolutionIsCached exercises spec §8 invariant 3: after a
// successful load, repeated reads of the same property return the same
// resolved value (referential stability via the per-object cache).
func TestPropertyResolutionIsCached(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(1)
	sch := schema.Schema{"name": schemaStringType()}

	rec, err := mem.Insert(ctx, catalog.New(catalog.Entry{Key: "name", Value: catalog.PlainValue("x")}))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	o := NewStub(rec.ID)
	if err := o.Load(ctx, deps(mem, sch)); err != nil {
		t.Fatalf("load: %v", err)
	}

	first, _ := o.Get("name")
	second, _ := o.Get("name")
	if first.Plain != second.Plain {
		t.Fatalf("Get(name) not stable across calls: %v != %v", first.Raw(), second.Raw())
	}
}

func schemaStringType() *schema.Type {
	return &schema.Type{Name: "string"}
}

// TestApplyEditsRefreshesObject exercises the object-level half of spec
// §4.2.3: ApplyEdits commits through the store and refreshes the cached
// data and resolution cache in place (catalog.Apply itself, and the
// literal edit sequence of spec §8 scenario 4, are covered in
// internal/catalog's own tests).
func TestApplyEditsRefreshesObject(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(1)
	sch := schema.Schema{"x": schemaStringType()}

	rec, err := mem.Insert(ctx, catalog.New(catalog.Entry{Key: "x", Value: catalog.PlainValue("before")}))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	o := NewStub(rec.ID)
	d := deps(mem, sch)
	if err := o.Load(ctx, d); err != nil {
		t.Fatalf("load: %v", err)
	}

	if v, _ := o.Get("x"); v.Plain.(string) != "before" {
		t.Fatalf("Get(x) = %v; want before", v.Raw())
	}

	if err := o.ApplyEdits(ctx, d, catalog.Update([]catalog.PathStep{catalog.Key("x")}, catalog.Entry{Value: catalog.PlainValue("after")})); err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}

	if v, _ := o.Get("x"); v.Plain.(string) != "after" {
		t.Fatalf("Get(x) after edit = %v; want after (stale resolution cache not dropped)", v.Raw())
	}
}

// TestInsertManyTagsProvisionalIDs exercises spec §3 meta "provisional_id"
// and §6 insert_many: every newborn gets a distinct provisional id before
// commit, and a real, distinct store id after.
func TestInsertManyTagsProvisionalIDs(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(1)
	d := deps(mem, schema.Schema{})

	a, b := New(), New()
	a.Create(catalog.New(catalog.Entry{Key: "name", Value: catalog.PlainValue("a")}))
	b.Create(catalog.New(catalog.Entry{Key: "name", Value: catalog.PlainValue("b")}))

	if a.ProvisionalID() == "" || b.ProvisionalID() == "" {
		t.Fatal("newborn missing a provisional id")
	}
	if a.ProvisionalID() == b.ProvisionalID() {
		t.Fatal("two newborns share a provisional id")
	}

	if err := InsertMany(ctx, d, a, b); err != nil {
		t.Fatalf("InsertMany: %v", err)
	}
	idA, _ := a.ID()
	idB, _ := b.ID()
	if idA == idB {
		t.Fatalf("InsertMany assigned the same id to both newborns: %d", idA)
	}
}
