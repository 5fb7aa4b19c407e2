package service

import (
	"context"
	"net/url"

	"github.com/schemat-io/core/internal/schematerr"
)

// NoInput is used by endpoints that take no arguments (e.g. GET.json):
// EncodeArgs/DecodeArgs are no-ops.
var NoInput MessageEncoder = noInputEncoder{}

type noInputEncoder struct{ named }

func (noInputEncoder) Name() string                                       { return "NoInput" }
func (noInputEncoder) EncodeArgs([]interface{}) ([]byte, error)           { return nil, nil }
func (noInputEncoder) DecodeArgs([]byte, url.Values) ([]interface{}, error) { return nil, nil }
func (noInputEncoder) EncodeResult(interface{}) ([]byte, error)           { return nil, nil }
func (noInputEncoder) DecodeResult([]byte) (interface{}, error)           { return nil, nil }
func (noInputEncoder) EncodeError(err error) (int, []byte)                { return encodeError(err) }
func (noInputEncoder) DecodeError(body []byte, status int) error          { return decodeError(body, status) }

// JsonOutput and WebObjectsOutput are thin aliases read naturally at a
// Service's construction site (`service.New(service.NoInput,
// service.JsonOutput(), nil, handler)`).
func JsonOutput() MessageEncoder       { return JsonEncoder() }
func WebObjectsOutput() MessageEncoder { return WebObjectsEncoder() }
func StringOutput() MessageEncoder     { return StringEncoder() }

// Transport performs the actual network call for a Service's client side;
// the HTTP adapter (built on go-restful at the dispatch layer) supplies a
// concrete implementation. Kept as an interface here so this package
// never imports net/http directly, matching how cleanly the teacher's own
// client.Client sits behind a RESTClient interface in pkg/client.
type Transport interface {
	Do(ctx context.Context, method, targetURL, endpoint string, body []byte, contentType string) (status int, respBody []byte, err error)
}

// Service is one METHOD.name binding: an input/output/error MessageEncoder
// triple plus the server handler, invocable locally (Invoke) or remotely
// (InvokeRemote) — spec §4.4.
type Service struct {
	Method string // GET, POST, LOCAL — set by the endpoint table that registers this Service
	Input  MessageEncoder
	Output MessageEncoder
	Err    MessageEncoder
	Cap    Capability

	handler Handler
}

// New builds a server-capable Service. errEnc defaults to JsonEncoder when
// nil, matching the spec's "default code 500" fallback policy.
func New(input, output, errEnc MessageEncoder, handler Handler) *Service {
	if errEnc == nil {
		errEnc = JsonEncoder()
	}
	return &Service{Input: input, Output: output, Err: errEnc, Cap: Server, handler: handler}
}

// Server runs the handler directly — the function executed on the server
// side (spec §4.4 "server(target, request, ...args)").
func (s *Service) Server(target interface{}, req *Request) (interface{}, error) {
	if s.handler == nil {
		return nil, schematerr.NotImplemented("service handler")
	}
	return s.handler(target, req)
}

// Invoke is the isomorphic dispatcher: when the caller is colocated with
// target (the only case this core process ever needs, since every Service
// here is constructed with Server capability), it calls Server directly
// (spec §4.4 "invoke(target, endpoint, ...args)").
func (s *Service) Invoke(target interface{}, req *Request) (interface{}, error) {
	if s.Cap&Server != 0 {
		return s.Server(target, req)
	}
	return nil, schematerr.NotImplemented("remote-only service invoked without a transport")
}

// InvokeRemote encodes args, performs the network call via t, and decodes
// the result — the Client half of an isomorphic Service, used when target
// lives in another process (spec §4.4 "client(target, ...args)").
func (s *Service) InvokeRemote(ctx context.Context, t Transport, targetURL, endpoint string, args []interface{}) (interface{}, error) {
	body, err := s.Input.EncodeArgs(args)
	if err != nil {
		return nil, err
	}
	status, respBody, err := t.Do(ctx, s.Method, targetURL, endpoint, body, "application/json")
	if err != nil {
		return nil, schematerr.RequestFailed(err.Error())
	}
	if status >= 400 {
		return nil, s.Err.DecodeError(respBody, status)
	}
	return s.Output.DecodeResult(respBody)
}

// Handle is the server request-to-response orchestration: decode args, run
// the handler, encode the result; on error, encode via Err and report its
// status (spec §4.4 "handle(target, request)").
func (s *Service) Handle(target interface{}, req *Request) (status int, body []byte) {
	if req.Args == nil {
		args, err := s.Input.DecodeArgs(req.Body, req.Query)
		if err != nil {
			return s.Err.EncodeError(err)
		}
		req.Args = args
	}
	result, err := s.Server(target, req)
	if err != nil {
		return s.Err.EncodeError(err)
	}
	out, err := s.Output.EncodeResult(result)
	if err != nil {
		return s.Err.EncodeError(err)
	}
	return 200, out
}

// API is an endpoint -> Service table type. Nothing in this module builds
// or caches API values: Request Dispatch reads each Class's Endpoints()
// map directly.
type API map[string]*Service

// Lookup returns the Service for endpoint, if any.
func (a API) Lookup(endpoint string) (*Service, bool) {
	s, ok := a[endpoint]
	return s, ok
}
