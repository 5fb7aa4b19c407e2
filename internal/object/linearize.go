package object

// Linearize computes the C3-style ancestor order for o: self first, then
// its prototypes' own linearizations merged left-to-right, deduplicated
// by id so a diamond-shaped prototype graph contributes each ancestor
// exactly once (spec §4.2.2 "Ancestor linearization").
func Linearize(o *Object) []*Object {
	return linearize(o, map[int64]bool{})
}

func linearize(o *Object, seen map[int64]bool) []*Object {
	if id, ok := o.ID(); ok {
		if seen[id] {
			return nil
		}
		seen[id] = true
	}
	out := []*Object{o}
	for _, p := range o.Prototypes() {
		out = append(out, linearize(p, seen)...)
	}
	return out
}
