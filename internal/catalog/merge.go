package catalog

// Combine implements the stream-combination rule of spec §4.2.2 step 5: for
// repeated keys concatenate, for mergeable (catalog) types perform a
// recursive catalog merge, for atomic types take the first. streams is
// ordered [self, ...linearized_ancestors, category.defaults], and each
// inner slice is the raw values found for the key on that ancestor (a
// single ancestor may itself contribute more than one value if the key
// repeats on it).
func Combine(streams [][]Value, repeated, mergeable bool) []Value {
	var flat []Value
	for _, s := range streams {
		flat = append(flat, s...)
	}
	if len(flat) == 0 {
		return nil
	}
	if repeated {
		return flat
	}
	if mergeable {
		return []Value{mergeValues(flat)}
	}
	return flat[:1]
}

// mergeValues folds a list of catalog-typed values into one, with earlier
// (more specific) values taking precedence over later (more ancestral)
// ones on conflicting keys, matching the "self overrides ancestors"
// ordering of the ancestor stream.
func mergeValues(vs []Value) Value {
	if len(vs) == 0 {
		return Value{}
	}
	result := vs[0]
	for _, v := range vs[1:] {
		result = mergeTwo(result, v)
	}
	return result
}

func mergeTwo(dst, src Value) Value {
	if dst.Catalog == nil || src.Catalog == nil {
		// Non-catalog mergeable values (unexpected for a well-formed
		// mergeable type) fall back to "first wins".
		return dst
	}
	merged := dst.Catalog.Clone()
	for _, e := range src.Catalog.Entries() {
		if _, exists := merged.First(e.Key); exists {
			continue
		}
		merged.Append(e.Key, e.Value)
	}
	return CatalogValue(merged)
}
