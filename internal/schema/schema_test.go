package schema

import "testing"

import "github.com/schemat-io/core/internal/catalog"

func TestValidateCatalogUnknownField(t *testing.T) {
	s := Schema{"name": StringType()}
	c := catalog.New(catalog.Entry{Key: "unknown", Value: catalog.PlainValue("x")})

	if errs := ValidateCatalog(c, s, false); len(errs) == 0 {
		t.Fatal("expected error for unknown field with allow_custom_fields=false")
	}
	if errs := ValidateCatalog(c, s, true); len(errs) != 0 {
		t.Fatalf("unexpected errors with allow_custom_fields=true: %v", errs)
	}
}

func TestValidateCatalogDuplicateSingleValued(t *testing.T) {
	s := Schema{"name": StringType()}
	c := catalog.New(
		catalog.Entry{Key: "name", Value: catalog.PlainValue("a")},
		catalog.Entry{Key: "name", Value: catalog.PlainValue("b")},
	)
	errs := ValidateCatalog(c, s, false)
	if len(errs) != 1 {
		t.Fatalf("errs = %v; want exactly 1 duplicate-value error", errs)
	}
}

func TestValidateCatalogTypeMismatch(t *testing.T) {
	s := Schema{"count": IntegerType()}
	c := catalog.New(catalog.Entry{Key: "count", Value: catalog.PlainValue("not a number")})
	if errs := ValidateCatalog(c, s, false); len(errs) != 1 {
		t.Fatalf("errs = %v; want exactly 1 type error", errs)
	}
}

func TestRootChildSchemaIncludesDefaults(t *testing.T) {
	merged := RootChildSchema(Schema{"custom": StringType()})
	if _, ok := merged["schema"]; !ok {
		t.Fatal("root child schema missing default field 'schema'")
	}
	if _, ok := merged["custom"]; !ok {
		t.Fatal("root child schema missing own field 'custom'")
	}
}

func TestCompilerJSONSchemaFragment(t *testing.T) {
	c := NewCompiler()
	ty, err := c.CompileFragment("tagline", map[string]interface{}{
		"type":      "string",
		"minLength": 3,
	})
	if err != nil {
		t.Fatalf("CompileFragment: %v", err)
	}
	if err := ty.Validate(catalog.PlainValue("hi")); err == nil {
		t.Fatal("expected validation failure for string shorter than minLength")
	}
	if err := ty.Validate(catalog.PlainValue("hello")); err != nil {
		t.Fatalf("unexpected validation failure: %v", err)
	}
}
