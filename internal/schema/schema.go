package schema

// Schema maps a field name to the Type governing it (spec §3 "Category":
// "data includes a schema (mapping field-name -> field-type)").
type Schema map[string]*Type

// Lookup returns the Type for name, the two bootstrap-breaking fixed types
// for `category`/`extends` (spec §4.2.2 step 3), or false if name is
// neither declared nor fixed.
func (s Schema) Lookup(name string) (*Type, bool) {
	switch name {
	case "category":
		return categoryTypeSingleton, true
	case "extends":
		return prototypesTypeSingleton, true
	}
	t, ok := s[name]
	return t, ok
}

var (
	categoryTypeSingleton   = CategoryType()
	prototypesTypeSingleton = PrototypesType()
)

// DefaultFields is the schema applied to every category object itself —
// the fields a category record may set (schema, defaults,
// allow_custom_fields, class, name) — used to bootstrap the root category
// without recursing into "the root category's child schema is itself"
// (spec §3).
func DefaultFields() Schema {
	return Schema{
		"schema":              CatalogType(nil),
		"defaults":            CatalogType(nil),
		"allow_custom_fields": BooleanType(),
		"class":               StringType(),
		"name":                StringType(),
	}
}

// RootChildSchema resolves the root category's effective child schema:
// per spec §3, "The root category's child schema is itself (resolved
// without recursion by manual merge of own fields with the default fields
// catalog)." own is the root category's own `schema` entries (as declared
// in its stored data, possibly empty); the result always includes
// DefaultFields so a freshly-bootstrapped store still knows how to
// validate category records.
func RootChildSchema(own Schema) Schema {
	merged := Schema{}
	for k, v := range DefaultFields() {
		merged[k] = v
	}
	for k, v := range own {
		merged[k] = v
	}
	return merged
}
