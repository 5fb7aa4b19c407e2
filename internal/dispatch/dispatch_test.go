package dispatch

import (
	"context"
	"encoding/json"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/schemat-io/core/internal/catalog"
	"github.com/schemat-io/core/internal/container"
	"github.com/schemat-io/core/internal/object"
	"github.com/schemat-io/core/internal/registry"
	"github.com/schemat-io/core/internal/schema"
	"github.com/schemat-io/core/internal/service"
	"github.com/schemat-io/core/internal/store/storetest"
)

func TestParse(t *testing.T) {
	cases := []struct {
		raw      string
		path     string
		endpoint string
	}{
		{"/x/y", "x/y", ""},
		{"/x/y::view", "x/y", "view"},
		{"/x/y::view?a=1", "x/y", "view"},
		{"x::json", "x", "json"},
	}
	for _, c := range cases {
		p, err := Parse(c.raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.raw, err)
		}
		if p.Path != c.path || p.Endpoint != c.endpoint {
			t.Fatalf("Parse(%q) = %+v; want path=%q endpoint=%q", c.raw, p, c.path, c.endpoint)
		}
	}
}

func TestCandidatesFallback(t *testing.T) {
	_, counting := fixtureStore()
	ctx := context.Background()
	catRec, _ := counting.Insert(ctx, catalog.New(
		catalog.Entry{Key: "default_endpoints", Value: catalog.CatalogValue(catalog.New(
			catalog.Entry{Key: "GET", Value: catalog.CatalogValue(catalog.New(
				catalog.Entry{Key: "0", Value: catalog.PlainValue("admin")},
			))},
		))},
	))
	objRec, _ := counting.Insert(ctx, catalog.New(
		catalog.Entry{Key: "category", Value: catalog.RefValue(catRec.ID)},
	))

	deps := &object.Deps{
		Store: counting,
		ResolveClass: func(*object.Object) (object.Class, error) {
			return object.NewDefaultClass(), nil
		},
		ResolveSchema: func(*object.Object) (schema.Schema, error) { return schema.Schema{}, nil },
	}
	reg := registry.New(counting, deps, time.Minute)

	target, err := reg.GetLoaded(ctx, objRec.ID)
	if err != nil {
		t.Fatalf("GetLoaded: %v", err)
	}

	got := Candidates(target, "GET", "")
	want := []string{"admin"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Candidates = %v; want %v", got, want)
	}
}

func fixtureStore() (*storetest.CountingStore, *storetest.CountingStore) {
	c, _ := storetest.New()
	return c, c
}

func TestDispatchViaObjectSpaceJSON(t *testing.T) {
	counting, _ := fixtureStore()
	ctx := context.Background()
	rec, err := counting.Insert(ctx, catalog.New(catalog.Entry{Key: "name", Value: catalog.PlainValue("hello")}))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	deps := &object.Deps{
		Store: counting,
		ResolveClass: func(*object.Object) (object.Class, error) {
			return object.NewDefaultClass(), nil
		},
		ResolveSchema: func(*object.Object) (schema.Schema, error) { return schema.Schema{}, nil },
	}
	reg := registry.New(counting, deps, time.Minute)

	space := container.NewObjectSpace(reg)
	tree := container.NewTree(space, "/$")
	deps.ResolveURL = tree.ResolveURL

	d := New(tree)
	status, body := d.Dispatch(ctx, "GET", "/"+strconv.FormatInt(rec.ID, 10)+"::json", nil)
	if status != 200 {
		t.Fatalf("status = %d; want 200, body=%s", status, body)
	}

	var rp service.RecordPayload
	if err := json.Unmarshal(body, &rp); err != nil {
		t.Fatalf("decoding body: %v, body=%s", err, body)
	}
	if rp.ID != rec.ID {
		t.Fatalf("record id = %d; want %d", rp.ID, rec.ID)
	}
	name, ok := rp.Data.First("name")
	if !ok || name.Plain != "hello" {
		t.Fatalf("record data name = %v, ok=%v; want %q", name, ok, "hello")
	}
}
