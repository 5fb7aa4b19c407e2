package object

import (
	"strings"

	"github.com/schemat-io/core/internal/catalog"
	"github.com/schemat-io/core/internal/schema"
)

// pluralSuffix is the sentinel marking a plural query (spec §4.2.2 step 2).
const pluralSuffix = "$"

// reserved names bypass schema-driven resolution entirely and read the
// plain attribute (spec §4.2.2 step 1).
var reservedNames = map[string]bool{
	"id": true, "data": true, "record": true,
	"status": true, "ttl": true, "expiry": true, "path": true, "url": true,
}

// Get returns the first resolved value for key, or (zero, false) if the
// property has no value after combination/imputation (spec §4.2.2).
func (o *Object) Get(key string) (catalog.Value, bool) {
	vals := o.GetAll(key)
	if len(vals) == 0 {
		return catalog.Value{}, false
	}
	return vals[0], true
}

// GetAll returns every resolved value for key, honoring a trailing "$"
// plural sentinel the same as a bare key (spec §4.2.2 step 2): `Get("x")`
// and `GetAll("x$")[0]` always agree (spec §8 invariant 4).
func (o *Object) GetAll(key string) []catalog.Value {
	plain := strings.TrimSuffix(key, pluralSuffix)

	o.mu.RLock()
	if v, ok := o.cache[plain+pluralSuffix]; ok {
		o.mu.RUnlock()
		return cachedSlice(v)
	}
	o.mu.RUnlock()

	vals := o.resolve(plain)

	o.mu.Lock()
	if o.cache == nil {
		o.cache = map[string]interface{}{}
	}
	if len(vals) == 0 {
		o.cache[plain+pluralSuffix] = undefinedSentinel
	} else {
		o.cache[plain+pluralSuffix] = vals
	}
	o.mu.Unlock()

	return vals
}

func cachedSlice(v interface{}) []catalog.Value {
	if v == undefinedSentinel {
		return nil
	}
	return v.([]catalog.Value)
}

// resolve performs the actual combination described in spec §4.2.2 steps
// 3-6, uncached.
func (o *Object) resolve(key string) []catalog.Value {
	if reservedNames[key] {
		return o.reservedAttr(key)
	}

	sch := o.OwnSchema()
	t, known := lookupType(sch, key)

	data := o.Data()

	// Step 4: atomic, non-mergeable, own data present -> first own value,
	// short-circuiting the ancestor stream entirely.
	if known && !t.Repeated && !t.Mergeable {
		if own := data.All(key); len(own) > 0 {
			return []catalog.Value{own[0]}
		}
	} else if !known {
		if own := data.All(key); len(own) > 0 {
			return []catalog.Value{own[0]}
		}
	}

	// Step 5: build the ancestor stream and combine.
	var ancestors []*Object
	if known && t.Inherit {
		ancestors = Linearize(o)
	} else {
		ancestors = []*Object{o}
	}

	streams := make([][]catalog.Value, 0, len(ancestors)+1)
	for _, a := range ancestors {
		streams = append(streams, a.Data().All(key))
	}

	if cat := o.Category(); cat != nil && key != "defaults" {
		if def := categoryDefault(cat, key); def != nil {
			streams = append(streams, []catalog.Value{*def})
		}
	}

	var repeated, mergeable bool
	if known {
		repeated, mergeable = t.Repeated, t.Mergeable
	}
	combined := catalog.Combine(streams, repeated, mergeable)

	if len(combined) == 0 && known && t.Impute != nil {
		if v, ok := t.Impute(o); ok {
			return []catalog.Value{v}
		}
	}
	return combined
}

// reservedAttr reads one of the plain, non-schema-resolved attributes
// (spec §4.2.2 step 1).
func (o *Object) reservedAttr(key string) []catalog.Value {
	switch key {
	case "id":
		if id, ok := o.ID(); ok {
			return []catalog.Value{catalog.PlainValue(float64(id))}
		}
		return nil
	case "data":
		return []catalog.Value{catalog.CatalogValue(o.Data())}
	case "status":
		return []catalog.Value{catalog.PlainValue(string(o.Status()))}
	case "ttl":
		return []catalog.Value{catalog.PlainValue(float64(o.TTL()))}
	case "path":
		return []catalog.Value{catalog.PlainValue(o.Path())}
	case "url":
		return []catalog.Value{catalog.PlainValue(o.URL())}
	default:
		return nil
	}
}

// lookupType resolves key against sch, falling back to the two
// bootstrap-breaking fixed types for "category"/"extends" even when sch is
// nil (an object loaded before its schema is known, e.g. the root
// category's first resolution pass).
func lookupType(sch schema.Schema, key string) (*schema.Type, bool) {
	if sch != nil {
		return sch.Lookup(key)
	}
	fallback := schema.Schema{}
	return fallback.Lookup(key)
}

// categoryDefault reads the raw `defaults[key]` entry from a category
// object's own data, if distinct from the property itself (spec §4.2.2
// step 5: "Append the category's defaults[key] stream if distinct from
// the property itself").
func categoryDefault(cat *Object, key string) *catalog.Value {
	data := cat.Data()
	if data == nil {
		return nil
	}
	defsVal, ok := data.First("defaults")
	if !ok || !defsVal.IsCatalog() {
		return nil
	}
	v, ok := defsVal.Catalog.First(key)
	if !ok {
		return nil
	}
	return &v
}
