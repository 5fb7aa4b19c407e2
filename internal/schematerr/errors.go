// Package schematerr defines the error taxonomy shared by every layer of the
// object core: not-found, validation, consistency, network and internal
// errors, each with a default HTTP status (spec §7) that the service layer's
// error encoders translate a response to.
package schematerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for status-code mapping and client-side typed
// re-raising.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindConsistency Kind = "consistency"
	KindNetwork    Kind = "network"
	KindInternal   Kind = "internal"
)

// defaultCode is the HTTP status a Kind maps to unless the error carries an
// explicit override (Error.Code).
var defaultCode = map[Kind]int{
	KindNotFound:    404,
	KindValidation:  400,
	KindConsistency: 409,
	KindNetwork:     504,
	KindInternal:    500,
}

// Error is the structured error type carried across the core: a Name for
// typed re-raising on the client, a human Message, an HTTP Code, and a free
// form Args dictionary (spec §6: "Each error carries a name, message, code,
// and a structured args dictionary").
type Error struct {
	Kind    Kind
	Name    string
	Message string
	Code    int
	Args    map[string]interface{}
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s", e.Name, e.Message)
	}
	return e.Message
}

// HTTPStatus returns the status code to send for this error: the explicit
// Code if set, else the Kind's default.
func (e *Error) HTTPStatus() int {
	if e.Code != 0 {
		return e.Code
	}
	if c, ok := defaultCode[e.Kind]; ok {
		return c
	}
	return 500
}

func new(kind Kind, name, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Name: name, Message: fmt.Sprintf(format, args...)}
}

// ObjectNotFound reports that no record exists for id.
func ObjectNotFound(id int64) *Error {
	e := new(KindNotFound, "ObjectNotFound", "no object with id %d", id)
	e.Args = map[string]interface{}{"id": id}
	return e
}

// UrlPathNotFound reports that a container chain could not resolve path.
func UrlPathNotFound(path string) *Error {
	e := new(KindNotFound, "UrlPathNotFound", "no object at path %q", path)
	e.Args = map[string]interface{}{"path": path}
	return e
}

// EndpointNotFound reports that dispatch found a target but no candidate
// endpoint resolved to a handler.
func EndpointNotFound(path, endpoint string) *Error {
	e := new(KindNotFound, "EndpointNotFound", "no endpoint %q on object at %q", endpoint, path)
	e.Args = map[string]interface{}{"path": path, "endpoint": endpoint}
	return e
}

// ValidationFailed wraps one or more field validation failures.
func ValidationFailed(object string, errs []error) *Error {
	e := new(KindValidation, "ValidationFailed", "%d validation error(s) on %s", len(errs), object)
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	e.Args = map[string]interface{}{"object": object, "errors": msgs}
	return e
}

// ServerTimeout reports a deadline exceeded while serving a request.
func ServerTimeout(op string) *Error {
	e := new(KindNetwork, "ServerTimeout", "timed out during %s", op)
	e.Code = 504
	return e
}

// RequestFailed reports a transport-level failure on the client side of an
// isomorphic service call.
func RequestFailed(reason string) *Error {
	return new(KindNetwork, "RequestFailed", "%s", reason)
}

// CircularDependency reports a module loader cycle, citing the full chain
// in load order (spec §4.6, §8 invariant 10).
func CircularDependency(chain []string) *Error {
	e := new(KindInternal, "CircularDependency", "circular module dependency: %v", chain)
	e.Code = 500
	e.Args = map[string]interface{}{"chain": chain}
	return e
}

// NotLoaded reports an attempt to read object data before load() completed.
func NotLoaded(id int64) *Error {
	e := new(KindInternal, "NotLoaded", "object %d is not loaded", id)
	e.Args = map[string]interface{}{"id": id}
	return e
}

// NotImplemented reports a handler or encoder stub that was never filled in.
func NotImplemented(what string) *Error {
	return new(KindInternal, "NotImplemented", "%s is not implemented", what)
}

// Internal wraps an arbitrary internal failure (store disagreement, etc.)
func Internal(format string, args ...interface{}) *Error {
	return new(KindInternal, "Internal", format, args...)
}

// AlreadyExists reports a conflicting insert.
func AlreadyExists(kind string, id int64) *Error {
	e := new(KindConsistency, "AlreadyExists", "%s %d already exists", kind, id)
	e.Args = map[string]interface{}{"kind": kind, "id": id}
	return e
}

// As reports whether err is (or wraps) a *Error and returns it.
func As(err error) (*Error, bool) {
	var se *Error
	ok := errors.As(err, &se)
	return se, ok
}
