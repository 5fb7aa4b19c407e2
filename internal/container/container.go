// Package container implements Container & Routing (spec §4.3):
// bidirectional URL<->object mapping through nested containers, and
// default-path generation. Grounded on the teacher's
// pkg/apiserver/apiserver.go, whose `splitPath`/prefix-install routing
// this package generalizes from a flat verb/resource map to an arbitrary
// tree of containers.
package container

import (
	"context"
	"strconv"
	"strings"

	"github.com/schemat-io/core/internal/object"
	"github.com/schemat-io/core/internal/schematerr"
)

// blankPrefix marks a container segment that is present in access paths
// but elided from URLs (spec §3 "blanks", §4.3 "identify").
const blankPrefix = "*"

// TailFunc is returned by Resolve when a container wants to finish
// handling the request inline rather than hand off to a loaded object —
// used by local-filesystem mounts serving raw files (spec §4.3).
type TailFunc func(req interface{}) (interface{}, error)

// Loader resolves an id to a loaded-without-url object, the form
// ObjectSpace needs when serving an object by numeric segment (spec
// §4.2.1 "avoid cycles through containers").
type Loader interface {
	LoadNoURL(ctx context.Context, id int64) (*object.Object, error)
}

// Container is a web object that maps string segments to member objects
// (spec §4.3).
type Container interface {
	// Resolve consumes the first segment(s) of path and returns the
	// member reached, a TailFunc, or (nil, nil, nil) if nothing matches.
	Resolve(ctx context.Context, path []string) (*object.Object, TailFunc, error)

	// Identify returns the segment string that addresses member within
	// this container, or "" if member is not a direct member.
	Identify(member *object.Object) string
}

// SplitPath returns the non-empty segments of path, grounded on the
// teacher's apiserver.splitPath.
func SplitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// StripBlanks removes every segment beginning with blankPrefix, turning
// an access path into the de-blanked URL form (spec §3 invariant 4,
// §4.3 "Access path vs URL").
func StripBlanks(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		if strings.HasPrefix(s, blankPrefix) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// JoinPath renders segments as a "/"-prefixed path.
func JoinPath(segments []string) string {
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/")
}

// Index looks up the Container implementation installed for a given
// object id, so a container whose member is itself a container can
// recurse into it without Container needing to know about object.Class
// (spec §4.3 "nested containers").
type Index interface {
	ContainerFor(id int64) (Container, bool)
}

// Directory is a static name -> object mapping (spec §4.3).
type Directory struct {
	loader  Loader
	index   Index
	entries map[string]int64 // segment -> member id
}

func NewDirectory(loader Loader, index Index) *Directory {
	return &Directory{loader: loader, index: index, entries: map[string]int64{}}
}

// Set publishes member under name within this directory. A leading "*"
// in name marks a blank segment (spec §3 "Blank segment").
func (d *Directory) Set(name string, memberID int64) { d.entries[name] = memberID }

func (d *Directory) Resolve(ctx context.Context, path []string) (*object.Object, TailFunc, error) {
	if len(path) == 0 {
		return nil, nil, nil
	}
	id, ok := d.entries[path[0]]
	if !ok {
		return nil, nil, nil
	}
	member, err := d.loader.LoadNoURL(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if len(path) == 1 {
		return member, nil, nil
	}
	sub, ok := d.index.ContainerFor(id)
	if !ok {
		return nil, nil, nil
	}
	return sub.Resolve(ctx, path[1:])
}

func (d *Directory) Identify(member *object.Object) string {
	id, ok := member.ID()
	if !ok {
		return ""
	}
	for name, mid := range d.entries {
		if mid == id {
			return name
		}
	}
	return ""
}

// ObjectSpace serves every object by its numeric identifier (spec §4.3
// "ObjectSpace"): the site's default_path is one of these, guaranteeing a
// stable canonical URL for every persistent object (spec §4.3, §6).
type ObjectSpace struct {
	loader Loader
}

func NewObjectSpace(loader Loader) *ObjectSpace { return &ObjectSpace{loader: loader} }

func (s *ObjectSpace) Resolve(ctx context.Context, path []string) (*object.Object, TailFunc, error) {
	if len(path) == 0 {
		return nil, nil, nil
	}
	id, err := strconv.ParseInt(path[0], 10, 64)
	if err != nil {
		return nil, nil, nil
	}
	member, err := s.loader.LoadNoURL(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return member, nil, nil
}

func (s *ObjectSpace) Identify(member *object.Object) string {
	id, ok := member.ID()
	if !ok {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

// CategoryIDNamespace resolves segments of the shape "SPACE:ID" where
// SPACE is a named pointer to a category, for human-readable URLs (spec
// §4.3 "Category/ID namespace").
type CategoryIDNamespace struct {
	loader     Loader
	categories map[string]int64 // space name -> category id
}

func NewCategoryIDNamespace(loader Loader) *CategoryIDNamespace {
	return &CategoryIDNamespace{loader: loader, categories: map[string]int64{}}
}

func (c *CategoryIDNamespace) RegisterSpace(name string, categoryID int64) {
	c.categories[name] = categoryID
}

func (c *CategoryIDNamespace) Resolve(ctx context.Context, path []string) (*object.Object, TailFunc, error) {
	if len(path) == 0 {
		return nil, nil, nil
	}
	space, idStr, ok := strings.Cut(path[0], ":")
	if !ok {
		return nil, nil, nil
	}
	if _, known := c.categories[space]; !known {
		return nil, nil, nil
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, nil, schematerr.UrlPathNotFound(strings.Join(path, "/"))
	}
	member, err := c.loader.LoadNoURL(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return member, nil, nil
}

func (c *CategoryIDNamespace) Identify(member *object.Object) string {
	id, ok := member.ID()
	if !ok {
		return ""
	}
	cat := member.Category()
	if cat == nil {
		return ""
	}
	catID, ok := cat.ID()
	if !ok {
		return ""
	}
	for space, cid := range c.categories {
		if cid == catID {
			return space + ":" + strconv.FormatInt(id, 10)
		}
	}
	return ""
}
