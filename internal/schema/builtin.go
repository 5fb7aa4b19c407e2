package schema

import (
	"fmt"

	"github.com/schemat-io/core/internal/catalog"
)

// StringType validates that the value is a string.
func StringType() *Type {
	return &Type{
		Name: "string",
		Validate: func(v catalog.Value) error {
			if _, ok := v.Plain.(string); !ok {
				return fmt.Errorf("expected string, got %T", v.Raw())
			}
			return nil
		},
	}
}

// IntegerType validates that the value decodes to a whole number (JSON
// numbers decode to float64; this accepts any integral float64).
func IntegerType() *Type {
	return &Type{
		Name: "integer",
		Validate: func(v catalog.Value) error {
			f, ok := v.Plain.(float64)
			if !ok || f != float64(int64(f)) {
				return fmt.Errorf("expected integer, got %v", v.Raw())
			}
			return nil
		},
	}
}

// BooleanType validates that the value is a bool.
func BooleanType() *Type {
	return &Type{
		Name: "boolean",
		Validate: func(v catalog.Value) error {
			if _, ok := v.Plain.(bool); !ok {
				return fmt.Errorf("expected boolean, got %T", v.Raw())
			}
			return nil
		},
	}
}

// ReferenceType validates that the value is an object reference. Used,
// per spec §4.2.2 step 3, as the fixed type for `category` and
// `extends`/prototypes so those two names resolve without consulting the
// schema (breaking bootstrap cycles).
func ReferenceType(inherit bool) *Type {
	return &Type{
		Name: "reference",
		Validate: func(v catalog.Value) error {
			if !v.IsRef() {
				return fmt.Errorf("expected object reference, got %v", v.Raw())
			}
			return nil
		},
		Inherit: inherit,
	}
}

// CategoryType is the fixed, non-schema-driven type for the `category`
// property (spec §4.2.2 step 3).
func CategoryType() *Type {
	t := ReferenceType(false)
	t.Name = "category"
	return t
}

// PrototypesType is the fixed, non-inheriting type for `extends`
// (prototypes); it is Repeated because an object may have more than one
// prototype.
func PrototypesType() *Type {
	t := ReferenceType(false)
	t.Name = "extends"
	t.Repeated = true
	return t
}

// CatalogType builds a mergeable, inheriting type whose values are nested
// catalogs validated per-key against subtypes.
func CatalogType(subtypes map[string]*Type) *Type {
	return &Type{
		Name:      "catalog",
		Mergeable: true,
		Inherit:   true,
		Subtypes:  subtypes,
		Validate: func(v catalog.Value) error {
			if !v.IsCatalog() {
				return fmt.Errorf("expected nested catalog, got %v", v.Raw())
			}
			return nil
		},
	}
}
