// Package dispatch implements Request Dispatch (spec §4.5): parsing
// "path::endpoint?query" into a resolved target and a selected service
// endpoint, with the protocol-specific fallback lists. Grounded on the
// teacher's pkg/apiserver/apiserver.go ("Handle", "NewAPIGroupVersion",
// "InstallREST"), whose flat verb-dispatch table this package
// generalizes into container-tree resolution plus per-class endpoint
// lookup.
package dispatch

import (
	"context"
	"net/url"
	"strings"

	"github.com/schemat-io/core/internal/container"
	"github.com/schemat-io/core/internal/object"
	"github.com/schemat-io/core/internal/schematerr"
	"github.com/schemat-io/core/internal/service"
)

// endpointSeparator is the "::" between a container path and an endpoint
// name (spec §4.5, §6 "Endpoint name separator is ::").
const endpointSeparator = "::"

// Parsed is the result of splitting an incoming request target into its
// three components (spec §4.5 "Incoming path P::E?Q").
type Parsed struct {
	Path     string
	Endpoint string
	Query    url.Values
}

// Parse splits raw (everything after the host, e.g. "/x/y::view?a=1")
// into path, endpoint name, and query (spec §4.5 step-0 parse).
func Parse(raw string) (Parsed, error) {
	path, rest := raw, ""
	if i := strings.Index(raw, "?"); i >= 0 {
		path, rest = raw[:i], raw[i+1:]
	}
	endpoint := ""
	if i := strings.Index(path, endpointSeparator); i >= 0 {
		endpoint, path = path[i+len(endpointSeparator):], path[:i]
	}
	q, err := url.ParseQuery(rest)
	if err != nil {
		return Parsed{}, schematerr.Internal("dispatch: invalid query string: %v", err)
	}
	return Parsed{Path: strings.TrimPrefix(path, "/"), Endpoint: endpoint, Query: q}, nil
}

// defaultEndpoints is the built-in fallback list per protocol, used when
// neither an explicit endpoint name nor the category's own
// default_endpoints property supplies one (spec §4.5 step 4).
var defaultEndpoints = map[string][]string{
	"GET":   {"view", "admin", "inspect"},
	"LOCAL": {"self"},
}

// CategoryDefaults resolves a target's category-level default_endpoints
// for method, if declared (spec §4.5 step 4 "else category-level defaults
// for this protocol").
func CategoryDefaults(target *object.Object, method string) []string {
	cat := target.Category()
	if cat == nil {
		return nil
	}
	v, ok := cat.Get("default_endpoints")
	if !ok || !v.IsCatalog() {
		return nil
	}
	entry, ok := v.Catalog.First(method)
	if !ok {
		return nil
	}
	if !entry.IsCatalog() {
		return nil
	}
	var names []string
	for _, e := range entry.Catalog.Entries() {
		if s, ok := e.Value.Plain.(string); ok {
			names = append(names, s)
		}
	}
	return names
}

// Candidates builds the endpoint candidate list for method against target
// (spec §4.5 step 4).
func Candidates(target *object.Object, method, endpoint string) []string {
	if endpoint != "" {
		return []string{endpoint}
	}
	if names := CategoryDefaults(target, method); len(names) > 0 {
		return names
	}
	return defaultEndpoints[method]
}

// Dispatcher ties a container.Tree to the class-level service API lookup
// and runs the six-step resolution algorithm (spec §4.5).
type Dispatcher struct {
	Tree *container.Tree
}

func New(tree *container.Tree) *Dispatcher { return &Dispatcher{Tree: tree} }

// Dispatch resolves raw into a target + endpoint and invokes the bound
// Service, returning the status code and encoded body produced by
// Service.Handle (spec §4.5 steps 1-6).
func (d *Dispatcher) Dispatch(ctx context.Context, method, raw string, body []byte) (status int, respBody []byte) {
	p, err := Parse(raw)
	if err != nil {
		return errStatus(err)
	}

	target, tail, err := d.Tree.Resolve(ctx, p.Path)
	if err != nil {
		return errStatus(err)
	}
	if tail != nil {
		// Filesystem-mount tail function handles the request inline
		// (spec §4.5 step 2).
		result, err := tail(&service.Request{Method: method, Query: p.Query, Body: body})
		if err != nil {
			return errStatus(err)
		}
		if s, ok := result.(string); ok {
			return 200, []byte(s)
		}
		return 200, nil
	}

	candidates := Candidates(target, method, p.Endpoint)
	for _, name := range candidates {
		class := target.Class()
		if class == nil {
			continue
		}
		svc, ok := class.Endpoints()[method+"."+name]
		if !ok {
			continue
		}
		req := &service.Request{Endpoint: name, Method: method, Query: p.Query, Body: body}
		return svc.Handle(target, req)
	}

	return errStatus(schematerr.EndpointNotFound(p.Path, p.Endpoint))
}

func errStatus(err error) (int, []byte) {
	se, ok := schematerr.As(err)
	if !ok {
		se = schematerr.Internal("%v", err)
	}
	return se.HTTPStatus(), []byte(se.Error())
}
