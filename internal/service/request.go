// Package service implements the Service Layer: endpoints declared as
// METHOD.name bindings on a class, isomorphic client/server invocation,
// the nine MessageEncoders, and the per-class API cache (spec §4.4).
// Grounded on the teacher's pkg/apiserver/handlers.go (decode request ->
// call storage -> encode response, with a dedicated error path) and its
// use of github.com/emicklei/go-restful/v3 for the HTTP surface (wired at
// the dispatch layer, not here — this package stays transport-agnostic so
// the same Service answers a LOCAL.* in-process call or an HTTP one).
package service

import "net/url"

// Capability records, at construction time, whether a Service may invoke
// its server function directly from Invoke. Invoke calls the server
// function whenever Server is set and otherwise returns a NotImplemented
// error; it does not check whether the caller is colocated with the
// target and never goes over the wire. Remote calls go through
// InvokeRemote, which does not consult Capability.
type Capability int

const (
	// Server means Invoke calls server() directly.
	Server Capability = 1 << iota
	// Client marks a Service as callable remotely; Invoke does not consult
	// it.
	Client
)

// Request bundles an incoming call's decoded arguments, its raw wire
// payload, and enough of the original query/method to let input decoders
// that need it (QueryString, in particular) reach the source fields.
type Request struct {
	Endpoint string
	Method   string // GET, POST, LOCAL
	Query    url.Values
	Body     []byte
	Args     []interface{}
}

// Handler is the server-side function bound to an endpoint: `this =
// target` in the spec's prose becomes the first argument here.
type Handler func(target interface{}, req *Request) (interface{}, error)
