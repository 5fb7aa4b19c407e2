package container

import (
	"context"
	"strconv"
	"testing"

	"github.com/schemat-io/core/internal/catalog"
	"github.com/schemat-io/core/internal/object"
	"github.com/schemat-io/core/internal/schema"
	"github.com/schemat-io/core/internal/store/storetest"
)

type stubLoader struct {
	deps *object.Deps
}

func (l *stubLoader) LoadNoURL(ctx context.Context, id int64) (*object.Object, error) {
	o := object.NewStub(id)
	if err := o.Load(ctx, l.deps, object.LoadOptions{AwaitURL: false}); err != nil {
		return nil, err
	}
	return o, nil
}

func (l *stubLoader) Load(ctx context.Context, id int64) (*object.Object, error) {
	return l.LoadNoURL(ctx, id)
}

func newFixture(t *testing.T) (*stubLoader, *storetest.CountingStore) {
	counting, mem := storetest.New()
	deps := &object.Deps{
		Store: counting,
		ResolveClass: func(*object.Object) (object.Class, error) {
			return object.NewDefaultClass(), nil
		},
		ResolveSchema: func(*object.Object) (schema.Schema, error) {
			return schema.Schema{}, nil
		},
	}
	loader := &stubLoader{deps: deps}
	deps.Loader = loader
	_ = mem
	return loader, counting
}

func TestObjectSpaceResolvesByID(t *testing.T) {
	loader, counting := newFixture(t)
	ctx := context.Background()
	rec, err := counting.Insert(ctx, catalog.New(catalog.Entry{Key: "name", Value: catalog.PlainValue("x")}))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	space := NewObjectSpace(loader)
	tree := NewTree(space, "/$")

	// tree.Root IS the ObjectSpace here (a bare id-only mount), so the
	// path it resolves is just the id segment, not the DefaultURL form
	// (which assumes an intervening "$" Directory entry — see ResolveURL).
	got, tail, err := tree.Resolve(ctx, "/"+strconv.FormatInt(rec.ID, 10))
	if err != nil || tail != nil {
		t.Fatalf("Resolve: %v, tail=%v", err, tail)
	}
	gotID, _ := got.ID()
	if gotID != rec.ID {
		t.Fatalf("resolved id = %d; want %d", gotID, rec.ID)
	}
}

func TestDirectoryResolveAndIdentify(t *testing.T) {
	loader, counting := newFixture(t)
	ctx := context.Background()
	rec, err := counting.Insert(ctx, catalog.New(catalog.Entry{Key: "name", Value: catalog.PlainValue("child")}))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	dir := NewDirectory(loader, NewTree(nil, "/$"))
	dir.Set("users", rec.ID)

	got, _, err := dir.Resolve(ctx, []string{"users"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	gotID, _ := got.ID()
	if gotID != rec.ID {
		t.Fatalf("resolved id = %d; want %d", gotID, rec.ID)
	}

	if seg := dir.Identify(got); seg != "users" {
		t.Fatalf("Identify = %q; want \"users\"", seg)
	}
}

func TestStripBlanksRemovesStarSegments(t *testing.T) {
	segments := []string{"*sys", "users", "42"}
	got := StripBlanks(segments)
	want := []string{"users", "42"}
	if len(got) != len(want) {
		t.Fatalf("StripBlanks = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("StripBlanks = %v; want %v", got, want)
		}
	}
	if JoinPath(got) != "/users/42" {
		t.Fatalf("JoinPath(stripped) = %q; want /users/42", JoinPath(got))
	}
	access := JoinPath(segments)
	if access != "/*sys/users/42" {
		t.Fatalf("JoinPath(access) = %q; want /*sys/users/42", access)
	}
}
