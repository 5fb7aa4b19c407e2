package container

import (
	"context"
	"strconv"

	"github.com/golang/glog"

	"github.com/schemat-io/core/internal/object"
	"github.com/schemat-io/core/internal/schematerr"
)

// Tree is the site's routing root: a registered set of Container
// implementations keyed by the id of the object they belong to, rooted
// at Root (spec §4.3 "Routing is rooted in the site object's root
// container"). It satisfies container.Index for recursive Resolve, and
// provides the bidirectional access-path/URL machinery spec §4.3 and §8
// invariants 6-7 describe.
type Tree struct {
	Root        Container
	DefaultPath string // e.g. "/$" — prefix of the canonical object-id ObjectSpace

	byID map[int64]Container
}

// NewTree builds a Tree whose canonical-URL fallback is
// "<defaultPath>/<id>" for any object (spec §4.3 "the site holds a
// default_path pointing to an ObjectSpace that serves every object by
// id").
func NewTree(root Container, defaultPath string) *Tree {
	return &Tree{Root: root, DefaultPath: defaultPath, byID: map[int64]Container{}}
}

// RegisterContainer associates containerObjID's Container implementation
// so Directory/nested containers can recurse into it (spec §4.3 "nested
// containers (directory / namespace / id-space)").
func (t *Tree) RegisterContainer(containerObjID int64, c Container) {
	t.byID[containerObjID] = c
}

func (t *Tree) ContainerFor(id int64) (Container, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// Resolve walks path from the root (spec §4.5 step 1: "Call
// site.root.resolve(path)").
func (t *Tree) Resolve(ctx context.Context, path string) (*object.Object, TailFunc, error) {
	segments := SplitPath(path)
	member, tail, err := t.Root.Resolve(ctx, segments)
	if err != nil {
		return nil, nil, err
	}
	if tail != nil {
		return nil, tail, nil
	}
	if member == nil {
		return nil, nil, schematerr.UrlPathNotFound(path)
	}
	return member, nil, nil
}

// DefaultURL returns the canonical, always-available URL for an object id
// (spec §4.3, §6, §8 invariant 7).
func (t *Tree) DefaultURL(id int64) string {
	return t.DefaultPath + "/" + strconv.FormatInt(id, 10)
}

// AccessPath concatenates the identify() segments from the root down to
// member, preserving blanks (spec §4.3 "get_access_path"). ancestry is
// the chain of container-object-ids from root to member's immediate
// container, in order; the caller (object load's ResolveURL hook) is
// expected to know member's container chain since it is itself a web
// object attribute (spec §3 "container").
func (t *Tree) AccessPath(ancestry []int64, member *object.Object) (segments []string, ok bool) {
	cur := t.Root
	for _, id := range ancestry {
		next, found := t.byID[id]
		if !found {
			return nil, false
		}
		seg := identifyChild(cur, id)
		if seg == "" {
			return nil, false
		}
		segments = append(segments, seg)
		cur = next
	}
	seg := cur.Identify(member)
	if seg == "" {
		return nil, false
	}
	segments = append(segments, seg)
	return segments, true
}

// identifyChild returns the segment c uses to address the member whose
// object id is childID, without needing childID's loaded *object.Object
// (ObjectSpace addresses purely by id; Directory and
// CategoryIDNamespace need the object itself, so they are only reachable
// as the final AccessPath hop via Container.Identify).
func identifyChild(c Container, childID int64) string {
	if _, ok := c.(*ObjectSpace); ok {
		return strconv.FormatInt(childID, 10)
	}
	if d, ok := c.(*Directory); ok {
		for name, id := range d.entries {
			if id == childID {
				return name
			}
		}
	}
	return ""
}

// ResolveURL implements the object.Deps.ResolveURL hook (spec §4.2.1
// "Compute url lazily"): it computes o's access path by walking its
// container ancestry, derives the de-blanked URL, and — per spec
// invariant 4 — falls back to the default object-id URL if the computed
// path can't be resolved back to o (a collision with an ancestor's URL,
// or the container chain is simply unknown), logging a warning as spec §7
// recovery point (a) requires.
func (t *Tree) ResolveURL(ctx context.Context, o *object.Object) (path, url string, err error) {
	id, ok := o.ID()
	if !ok {
		return "", "", schematerr.Internal("container: cannot resolve URL for an object with no id")
	}

	container := o.Container()
	if container == nil {
		return t.DefaultURL(id), t.DefaultURL(id), nil
	}

	var ancestry []int64
	for c := container; c != nil; c = c.Container() {
		cid, ok := c.ID()
		if !ok {
			glog.Warningf("container: ancestor of object %d has no id, falling back to default url", id)
			return t.DefaultURL(id), t.DefaultURL(id), nil
		}
		ancestry = append([]int64{cid}, ancestry...)
	}

	segments, ok := t.AccessPath(ancestry, o)
	if !ok {
		glog.Warningf("container: object %d's access path did not resolve, falling back to default url", id)
		return t.DefaultURL(id), t.DefaultURL(id), nil
	}

	accessPath := JoinPath(segments)
	urlSegments := StripBlanks(segments)
	derivedURL := JoinPath(urlSegments)

	// Re-resolve the de-blanked URL to guard against a collision with an
	// ancestor's own URL (spec invariant 4: "if path decodes to a URL
	// already claimed by an ancestor of the container chain, the object
	// falls back to its default URL").
	resolved, tail, rerr := t.Resolve(ctx, derivedURL)
	if rerr != nil || tail != nil {
		glog.Warningf("container: url %q for object %d did not re-resolve, falling back to default url", derivedURL, id)
		return t.DefaultURL(id), t.DefaultURL(id), nil
	}
	resolvedID, _ := resolved.ID()
	if resolvedID != id {
		glog.Warningf("container: url %q for object %d collided with object %d, falling back to default url", derivedURL, id, resolvedID)
		return t.DefaultURL(id), t.DefaultURL(id), nil
	}

	return accessPath, derivedURL, nil
}
