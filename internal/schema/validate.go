package schema

import (
	"fmt"

	"github.com/schemat-io/core/internal/catalog"
)

// ValidateCatalog runs spec §4.2.4's validation pass: for each own entry,
// look up the type in the schema; if absent and allowCustomFields is
// false, fail; validate each value through its type; for single-valued
// properties, fail if multiple values are present. Errors accumulate (in
// the teacher's own aggregate-error-list style, pkg/api/validation.go)
// rather than stopping at the first failure.
func ValidateCatalog(c *catalog.Catalog, s Schema, allowCustomFields bool) []error {
	var errs []error
	counts := map[string]int{}
	for _, e := range c.Entries() {
		counts[e.Key]++
	}
	reported := map[string]bool{}
	for _, e := range c.Entries() {
		t, ok := s.Lookup(e.Key)
		if !ok {
			if !allowCustomFields {
				errs = append(errs, fmt.Errorf("field %q: not declared in schema and custom fields are not allowed", e.Key))
			}
			continue
		}
		if !t.Repeated && counts[e.Key] > 1 && !reported[e.Key] {
			reported[e.Key] = true
			errs = append(errs, fmt.Errorf("field %q: %d values given for a single-valued property", e.Key, counts[e.Key]))
		}
		if t.Validate != nil {
			if err := t.Validate(e.Value); err != nil {
				errs = append(errs, fmt.Errorf("field %q: %w", e.Key, err))
			}
		}
		if t.IsCatalogType() && e.Value.IsCatalog() {
			for _, sub := range e.Value.Catalog.Entries() {
				st, ok := t.Subtype(sub.Key)
				if !ok {
					continue
				}
				if st.Validate != nil {
					if err := st.Validate(sub.Value); err != nil {
						errs = append(errs, fmt.Errorf("field %q.%q: %w", e.Key, sub.Key, err))
					}
				}
			}
		}
	}
	return errs
}
