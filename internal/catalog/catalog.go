// Package catalog implements the ordered, repeat-permitting key/value
// sequence that is the serialization unit for every web object's data
// (spec §3 "Catalog"). A Catalog preserves insertion order, allows the same
// key to appear more than once unless a schema forbids it, and nests: a
// Value may itself hold a Catalog, or a reference to another object.
package catalog

import "fmt"

// Value is the tagged union of what a catalog entry can hold: a primitive
// (string, float64, bool, nil, []interface{} of primitives), a Ref to
// another web object, or a nested Catalog. This is the concrete form of
// Design Note "Dynamic property access ... tagged-variant type system."
type Value struct {
	Plain   interface{} // set when this is a primitive or a plain slice/map of primitives
	Ref     *Ref        // set when this is an object reference
	Catalog *Catalog    // set when this is a nested catalog
}

// Ref is an object reference: the typed `{"@id": N}` token from spec §3.
type Ref struct {
	ID int64
}

func PlainValue(v interface{}) Value   { return Value{Plain: v} }
func RefValue(id int64) Value          { return Value{Ref: &Ref{ID: id}} }
func CatalogValue(c *Catalog) Value    { return Value{Catalog: c} }

// IsRef reports whether v holds an object reference.
func (v Value) IsRef() bool { return v.Ref != nil }

// IsCatalog reports whether v holds a nested catalog.
func (v Value) IsCatalog() bool { return v.Catalog != nil }

// Raw returns a plain Go value: the Plain field, the nested *Catalog
// itself, or the reference id, without distinguishing the variant from the
// caller's point of view (used where the type system already knows which
// form is expected, e.g. imputation functions operating on plain data).
func (v Value) Raw() interface{} {
	switch {
	case v.Ref != nil:
		return v.Ref.ID
	case v.Catalog != nil:
		return v.Catalog
	default:
		return v.Plain
	}
}

// Entry is a single (key, value) pair. Repeated keys are permitted at the
// Catalog level unless a schema's Type says otherwise (spec §3).
type Entry struct {
	Key   string
	Value Value
}

// Catalog is an ordered sequence of entries. The zero value is an empty,
// usable catalog.
type Catalog struct {
	entries []Entry
}

// New builds a Catalog from a flat list of key/value pairs, preserving the
// order given.
func New(entries ...Entry) *Catalog {
	c := &Catalog{}
	c.entries = append(c.entries, entries...)
	return c
}

// Len returns the number of entries, including repeats.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns the catalog's entries in order. The returned slice must
// not be mutated by the caller; Catalog is conceptually immutable once
// loaded (spec §3 invariant 2) and is only ever changed through Edit.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	return c.entries
}

// Append adds an entry at the end, permitting a repeated key.
func (c *Catalog) Append(key string, v Value) {
	c.entries = append(c.entries, Entry{Key: key, Value: v})
}

// First returns the first value stored under key, and whether it was
// present at all.
func (c *Catalog) First(key string) (Value, bool) {
	for _, e := range c.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// All returns every value stored under key, in entry order. A nil slice
// means the key is absent.
func (c *Catalog) All(key string) []Value {
	var out []Value
	for _, e := range c.entries {
		if e.Key == key {
			out = append(out, e.Value)
		}
	}
	return out
}

// Count returns how many entries exist under key.
func (c *Catalog) Count(key string) int {
	n := 0
	for _, e := range c.entries {
		if e.Key == key {
			n++
		}
	}
	return n
}

// Keys returns the distinct keys in first-occurrence order.
func (c *Catalog) Keys() []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range c.entries {
		if !seen[e.Key] {
			seen[e.Key] = true
			out = append(out, e.Key)
		}
	}
	return out
}

// Clone returns a deep-enough copy: entries are copied, nested catalogs are
// cloned recursively, primitives are shared (they are never mutated
// in-place).
func (c *Catalog) Clone() *Catalog {
	if c == nil {
		return nil
	}
	out := &Catalog{entries: make([]Entry, len(c.entries))}
	for i, e := range c.entries {
		v := e.Value
		if v.Catalog != nil {
			v.Catalog = v.Catalog.Clone()
		}
		out.entries[i] = Entry{Key: e.Key, Value: v}
	}
	return out
}

// Equal reports deep structural equality, order-sensitive (used by the
// round-trip invariant in spec §8).
func (c *Catalog) Equal(other *Catalog) bool {
	a, b := c.Entries(), other.Entries()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key || !valuesEqual(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b Value) bool {
	if (a.Ref == nil) != (b.Ref == nil) {
		return false
	}
	if a.Ref != nil {
		return a.Ref.ID == b.Ref.ID
	}
	if (a.Catalog == nil) != (b.Catalog == nil) {
		return false
	}
	if a.Catalog != nil {
		return a.Catalog.Equal(b.Catalog)
	}
	return fmt.Sprintf("%v", a.Plain) == fmt.Sprintf("%v", b.Plain)
}
