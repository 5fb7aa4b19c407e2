package catalog

import "fmt"

// EditOp tags which of the five edit operations an Edit carries (spec
// §4.2.3, Design Note "Edits ... tagged sum type").
type EditOp int

const (
	OpOverwrite EditOp = iota
	OpInsert
	OpDelete
	OpUpdate
	OpMove
)

// PathStep is one key-or-index hop into the catalog tree. A step with a
// non-empty Key addresses an entry by key (its first occurrence at this
// level); a step with Key == "" and Index >= 0 addresses the Index-th
// entry at this level regardless of key, which is how Move/Delete/Update
// disambiguate among repeated keys.
type PathStep struct {
	Key   string
	Index int // -1 when the step is a Key step
}

func Key(k string) PathStep   { return PathStep{Key: k, Index: -1} }
func Index(i int) PathStep    { return PathStep{Index: i} }

// Edit is a single structured mutation, applied deterministically to a
// Catalog to produce a new one (spec §4.2.3). path is a sequence of
// PathStep into the catalog tree; the edit applies to the catalog reached
// by following all but interpreting the final step itself.
type Edit struct {
	Op    EditOp
	Path  []PathStep
	Pos   int    // Insert: position to insert at; Move: source position
	PosNew int   // Move: destination position
	Entry Entry  // Insert: entry to insert; Update: replacement entry (value only is required)
	Data  *Catalog // Overwrite: the replacement catalog
}

func Overwrite(data *Catalog) Edit {
	return Edit{Op: OpOverwrite, Data: data}
}

func Insert(path []PathStep, pos int, entry Entry) Edit {
	return Edit{Op: OpInsert, Path: path, Pos: pos, Entry: entry}
}

func Delete(path []PathStep) Edit {
	return Edit{Op: OpDelete, Path: path}
}

func Update(path []PathStep, entry Entry) Edit {
	return Edit{Op: OpUpdate, Path: path, Entry: entry}
}

func Move(path []PathStep, pos, posNew int) Edit {
	return Edit{Op: OpMove, Path: path, Pos: pos, PosNew: posNew}
}

// Apply applies a sequence of edits in order, returning the resulting
// catalog. The input catalog is never mutated; each step clones as needed.
func Apply(c *Catalog, edits ...Edit) (*Catalog, error) {
	cur := c
	for i, e := range edits {
		next, err := applyOne(cur, e)
		if err != nil {
			return nil, fmt.Errorf("catalog: edit %d (%v): %w", i, e.Op, err)
		}
		cur = next
	}
	return cur, nil
}

func applyOne(c *Catalog, e Edit) (*Catalog, error) {
	switch e.Op {
	case OpOverwrite:
		return e.Data.Clone(), nil
	case OpInsert:
		return mutateAt(c, e.Path, func(target *Catalog) error {
			if e.Pos < 0 || e.Pos > target.Len() {
				return fmt.Errorf("insert position %d out of range [0,%d]", e.Pos, target.Len())
			}
			target.entries = append(target.entries, Entry{})
			copy(target.entries[e.Pos+1:], target.entries[e.Pos:])
			target.entries[e.Pos] = e.Entry
			return nil
		})
	case OpDelete:
		parent, step, err := splitLast(e.Path)
		if err != nil {
			return nil, err
		}
		return mutateAt(c, parent, func(target *Catalog) error {
			idx, err := resolveIndex(target, step)
			if err != nil {
				return err
			}
			target.entries = append(target.entries[:idx], target.entries[idx+1:]...)
			return nil
		})
	case OpUpdate:
		parent, step, err := splitLast(e.Path)
		if err != nil {
			return nil, err
		}
		return mutateAt(c, parent, func(target *Catalog) error {
			idx, err := resolveIndex(target, step)
			if err != nil {
				return err
			}
			key := target.entries[idx].Key
			if e.Entry.Key != "" {
				key = e.Entry.Key
			}
			target.entries[idx] = Entry{Key: key, Value: e.Entry.Value}
			return nil
		})
	case OpMove:
		return mutateAt(c, e.Path, func(target *Catalog) error {
			if e.Pos < 0 || e.Pos >= target.Len() || e.PosNew < 0 || e.PosNew >= target.Len() {
				return fmt.Errorf("move positions %d->%d out of range [0,%d)", e.Pos, e.PosNew, target.Len())
			}
			entry := target.entries[e.Pos]
			target.entries = append(target.entries[:e.Pos], target.entries[e.Pos+1:]...)
			rest := make([]Entry, len(target.entries))
			copy(rest, target.entries)
			newEntries := make([]Entry, 0, len(rest)+1)
			newEntries = append(newEntries, rest[:e.PosNew]...)
			newEntries = append(newEntries, entry)
			newEntries = append(newEntries, rest[e.PosNew:]...)
			target.entries = newEntries
			return nil
		})
	default:
		return nil, fmt.Errorf("unknown edit op %v", e.Op)
	}
}

func splitLast(path []PathStep) (parent []PathStep, last PathStep, err error) {
	if len(path) == 0 {
		return nil, PathStep{}, fmt.Errorf("path must address an entry, got empty path")
	}
	return path[:len(path)-1], path[len(path)-1], nil
}

func resolveIndex(c *Catalog, step PathStep) (int, error) {
	if step.Key == "" && step.Index >= 0 {
		if step.Index >= c.Len() {
			return 0, fmt.Errorf("index %d out of range [0,%d)", step.Index, c.Len())
		}
		return step.Index, nil
	}
	for i, e := range c.entries {
		if e.Key == step.Key {
			return i, nil
		}
	}
	return 0, fmt.Errorf("key %q not found", step.Key)
}

// mutateAt clones c, walks path down to the addressed nested catalog, runs
// fn against it in place, and returns the new root. path may be empty, in
// which case fn runs directly against the (cloned) root.
func mutateAt(c *Catalog, path []PathStep, fn func(*Catalog) error) (*Catalog, error) {
	root := c.Clone()
	if root == nil {
		root = &Catalog{}
	}
	target := root
	for _, step := range path {
		idx, err := resolveIndex(target, step)
		if err != nil {
			return nil, err
		}
		if target.entries[idx].Value.Catalog == nil {
			return nil, fmt.Errorf("path step %+v does not address a nested catalog", step)
		}
		target = target.entries[idx].Value.Catalog
	}
	if err := fn(target); err != nil {
		return nil, err
	}
	return root, nil
}
