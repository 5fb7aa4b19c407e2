// Package site wires the Object Registry, Module Loader, and schema
// compiler together into the two resolver functions object.Deps needs:
// ResolveClass (per-category behavior, resolved through the Module
// Loader) and ResolveSchema (per-category field schema, compiled through
// santhosh-tekuri/jsonschema/v6 for fields that opt into a JSON-Schema
// fragment). Grounded on the teacher's pkg/master/master.go, which is the
// single place a running apiserver assembles its registries, storages,
// and REST handlers into one process-wide object.
package site

import (
	"context"
	"fmt"

	"github.com/schemat-io/core/internal/catalog"
	"github.com/schemat-io/core/internal/container"
	"github.com/schemat-io/core/internal/dispatch"
	"github.com/schemat-io/core/internal/modloader"
	"github.com/schemat-io/core/internal/object"
	"github.com/schemat-io/core/internal/schema"
	"github.com/schemat-io/core/internal/schematerr"
)

// ClassFactory is what a category's `class` module is expected to export:
// a zero-arg constructor for the object.Class it attaches to instances.
type ClassFactory func() object.Class

// Site bundles the resolvers needed to build object.Deps, plus the
// routing Tree built on top of the same registry.
type Site struct {
	Loader   *modloader.Loader
	Compiler *schema.Compiler
	Tree     *container.Tree
}

// New builds a Site. tree is only stored on the Site and may be nil (e.g.
// in tests); New does not install tree.ResolveURL into any object.Deps,
// which callers wire themselves.
func New(loader *modloader.Loader, tree *container.Tree) *Site {
	return &Site{Loader: loader, Compiler: schema.NewCompiler(), Tree: tree}
}

// ResolveClass reads category's `class` field (a module path, local or
// SUN) and loads it through the Module Loader, expecting it to export a
// ClassFactory. A category with no `class` field gets object.NewDefaultClass,
// the same way a Schemat category with no custom behavior falls back to
// the base class (spec §3 "class", Design Note "Polymorphic behavior per
// category").
func (s *Site) ResolveClass(category *object.Object) (object.Class, error) {
	if category == nil {
		return object.NewDefaultClass(), nil
	}
	v, ok := category.Get("class")
	if !ok {
		return object.NewDefaultClass(), nil
	}
	modPath, ok := v.Plain.(string)
	if !ok || modPath == "" {
		return object.NewDefaultClass(), nil
	}

	exported, err := s.Loader.Load(context.Background(), modPath, "")
	if err != nil {
		return nil, fmt.Errorf("site: loading class module %q: %w", modPath, err)
	}
	factory, ok := exported.(ClassFactory)
	if !ok {
		if f, ok := exported.(func() object.Class); ok {
			factory = f
		} else {
			return nil, fmt.Errorf("site: module %q does not export a class factory", modPath)
		}
	}
	return factory(), nil
}

// ResolveSchema reads category's `schema` catalog (field name -> either a
// builtin type name or a raw JSON-Schema fragment) and compiles it into a
// schema.Schema, always including schema.DefaultFields so category
// records themselves remain self-describing (spec §4.2.2 step 3,
// RootChildSchema).
func (s *Site) ResolveSchema(category *object.Object) (schema.Schema, error) {
	merged := schema.Schema{}
	for k, t := range schema.DefaultFields() {
		merged[k] = t
	}
	if category == nil {
		return merged, nil
	}
	v, ok := category.Get("schema")
	if !ok || !v.IsCatalog() {
		return merged, nil
	}
	for _, entry := range v.Catalog.Entries() {
		t, err := s.resolveFieldType(entry.Key, entry.Value)
		if err != nil {
			return nil, err
		}
		merged[entry.Key] = t
	}
	return merged, nil
}

func (s *Site) resolveFieldType(name string, v catalog.Value) (*schema.Type, error) {
	if name2, ok := v.Plain.(string); ok {
		if t, ok := builtinByName(name2); ok {
			return t, nil
		}
	}
	return s.Compiler.CompileFragment(name, v.Raw())
}

// TextFetcherFor builds a modloader.TextFetcher that obtains a SUN
// module's source by invoking LOCAL.text through d (spec §4.6 "the text
// of the module is obtained by invoking the LOCAL.text endpoint on the
// object at that path").
func TextFetcherFor(d *dispatch.Dispatcher) modloader.TextFetcher {
	return func(ctx context.Context, sunPath string) (string, error) {
		status, body := d.Dispatch(ctx, "LOCAL", sunPath+"::text", nil)
		if status != 200 {
			return "", schematerr.Internal("site: LOCAL.text %q returned status %d", sunPath, status)
		}
		return string(body), nil
	}
}

func builtinByName(name string) (*schema.Type, bool) {
	switch name {
	case "string":
		return schema.StringType(), true
	case "integer":
		return schema.IntegerType(), true
	case "boolean":
		return schema.BooleanType(), true
	case "reference":
		return schema.ReferenceType(true), true
	case "catalog":
		return schema.CatalogType(nil), true
	}
	return nil, false
}
