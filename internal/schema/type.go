// Package schema implements Schemat's Type and Category-schema layer: the
// validation predicate, default/imputation, repeated/mergeable/inherit
// flags, and catalog-typed subtyping described in spec §3 ("Type").
// Grounded on the teacher's pkg/api/validation.go (field-by-field
// validation returning an aggregate) and on
// andyballingall-json-schema-manager/internal/validator/santhosh.go, which
// wraps santhosh-tekuri/jsonschema/v6 behind a small interface — the same
// library validates any Type that declares a JSON-Schema fragment.
package schema

import (
	"fmt"

	"github.com/schemat-io/core/internal/catalog"
)

// Impute derives a value for a property when none is stored, given the
// object being resolved (opaque here to avoid an import cycle with
// internal/object; the object package passes itself as `this`).
type Impute func(this interface{}) (catalog.Value, bool)

// Validate checks a single value against the type; a non-nil error means
// the value is rejected.
type Validate func(v catalog.Value) error

// Type is a schema node (spec §3 "Type"). Subtypes, for a catalog-typed
// property, are looked up by key via Subtype.
type Type struct {
	Name      string
	Validate  Validate
	Default   *catalog.Value
	Impute    Impute
	Repeated  bool
	Mergeable bool
	Inherit   bool

	// Subtypes holds, for a catalog-type Type (one whose values are
	// themselves catalogs with their own per-key schema), the schema
	// applied to each key's value. A nil map means this Type is not a
	// catalog-type.
	Subtypes map[string]*Type
}

// IsCatalogType reports whether this type's values are themselves
// catalogs with a key-indexed sub-schema.
func (t *Type) IsCatalogType() bool { return t.Subtypes != nil }

// Subtype returns the schema node for key within a catalog-typed Type.
func (t *Type) Subtype(key string) (*Type, bool) {
	if t.Subtypes == nil {
		return nil, false
	}
	st, ok := t.Subtypes[key]
	return st, ok
}

func (t *Type) String() string {
	if t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("type@%p", t)
}
