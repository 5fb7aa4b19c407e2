package site

import (
	"testing"

	"github.com/schemat-io/core/internal/catalog"
	"github.com/schemat-io/core/internal/object"
	"github.com/schemat-io/core/internal/schema"
)

// TestResolveSchemaMergesBuiltinsWithDefaults exercises spec §4.2.2 step 3:
// a category's `schema` catalog names builtin types by name, merged over
// schema.DefaultFields so category records stay self-describing.
func TestResolveSchemaMergesBuiltinsWithDefaults(t *testing.T) {
	s := New(nil, nil)

	category := object.New()
	category.Create(catalog.New(
		catalog.Entry{Key: "schema", Value: catalog.CatalogValue(catalog.New(
			catalog.Entry{Key: "name", Value: catalog.PlainValue("string")},
			catalog.Entry{Key: "owner", Value: catalog.PlainValue("reference")},
		))},
	))

	sch, err := s.ResolveSchema(category)
	if err != nil {
		t.Fatalf("ResolveSchema: %v", err)
	}
	if _, ok := sch["name"]; !ok {
		t.Fatal(`ResolveSchema result missing "name" field from category schema`)
	}
	if _, ok := sch["owner"]; !ok {
		t.Fatal(`ResolveSchema result missing "owner" field from category schema`)
	}
	for k := range schema.DefaultFields() {
		if _, ok := sch[k]; !ok {
			t.Fatalf("ResolveSchema result missing default field %q", k)
		}
	}
}

// TestResolveSchemaWithNilCategoryReturnsDefaults exercises the root
// category fallback: no category means just the built-in default fields.
func TestResolveSchemaWithNilCategoryReturnsDefaults(t *testing.T) {
	s := New(nil, nil)
	sch, err := s.ResolveSchema(nil)
	if err != nil {
		t.Fatalf("ResolveSchema(nil): %v", err)
	}
	for k := range schema.DefaultFields() {
		if _, ok := sch[k]; !ok {
			t.Fatalf("ResolveSchema(nil) missing default field %q", k)
		}
	}
}

// TestResolveClassWithNoClassFieldUsesDefault exercises the "no custom
// behavior" fallback (spec §3 Design Note "Polymorphic behavior per
// category"): a category with no `class` field gets the base class.
func TestResolveClassWithNoClassFieldUsesDefault(t *testing.T) {
	s := New(nil, nil)
	category := object.New()
	category.Create(catalog.New())

	class, err := s.ResolveClass(category)
	if err != nil {
		t.Fatalf("ResolveClass: %v", err)
	}
	if _, ok := class.(*object.DefaultClass); !ok {
		t.Fatalf("ResolveClass with no class field = %T; want *object.DefaultClass", class)
	}
}
