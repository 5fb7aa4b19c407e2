package service

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/schemat-io/core/internal/catalog"
	"github.com/schemat-io/core/internal/schematerr"
)

// MessageEncoder marshals arguments and results across the wire, and
// translates exceptions to/from an HTTP-shaped (status, body) pair (spec
// §4.4's enumerated encoders and its error policy paragraph).
type MessageEncoder interface {
	Name() string
	IsArray() bool
	EncodeArgs(args []interface{}) ([]byte, error)
	DecodeArgs(body []byte, query url.Values) ([]interface{}, error)
	EncodeResult(v interface{}) ([]byte, error)
	DecodeResult(body []byte) (interface{}, error)
	EncodeError(err error) (status int, body []byte)
	DecodeError(body []byte, status int) error
}

type named struct {
	name  string
	array bool
}

func (n named) Name() string  { return n.name }
func (n named) IsArray() bool { return n.array }

// errorPayload is the wire shape every encoder below uses for exceptions,
// matching spec §6's "name, message, code, args" error record.
type errorPayload struct {
	Name    string                 `json:"name"`
	Message string                 `json:"message"`
	Code    int                    `json:"code"`
	Args    map[string]interface{} `json:"args,omitempty"`
}

func encodeError(err error) (int, []byte) {
	se, ok := schematerr.As(err)
	if !ok {
		se = schematerr.Internal("%v", err)
	}
	status := se.HTTPStatus()
	body, _ := json.Marshal(errorPayload{Name: se.Name, Message: se.Message, Code: status, Args: se.Args})
	return status, body
}

func decodeError(body []byte, status int) error {
	var p errorPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return schematerr.RequestFailed(fmt.Sprintf("status %d: %s", status, string(body)))
	}
	e := &schematerr.Error{Name: p.Name, Message: p.Message, Code: status, Args: p.Args}
	return e
}

// stringEncoder is the identity encoder: pass-through, no marshalling.
type stringEncoder struct{ named }

func StringEncoder() MessageEncoder { return stringEncoder{named{name: "String"}} }

func (stringEncoder) EncodeArgs(args []interface{}) ([]byte, error) {
	if len(args) == 0 {
		return nil, nil
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, schematerr.Internal("String encoder: argument is not a string")
	}
	return []byte(s), nil
}

func (stringEncoder) DecodeArgs(body []byte, _ url.Values) ([]interface{}, error) {
	return []interface{}{string(body)}, nil
}

func (stringEncoder) EncodeResult(v interface{}) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, schematerr.Internal("String encoder: result is not a string")
	}
	return []byte(s), nil
}

func (stringEncoder) DecodeResult(body []byte) (interface{}, error) { return string(body), nil }
func (stringEncoder) EncodeError(err error) (int, []byte)           { return encodeError(err) }
func (stringEncoder) DecodeError(body []byte, status int) error     { return decodeError(body, status) }

// queryStringEncoder marshals a plain map to/from a URL query string.
type queryStringEncoder struct{ named }

func QueryStringEncoder() MessageEncoder { return queryStringEncoder{named{name: "QueryString"}} }

func (queryStringEncoder) EncodeArgs(args []interface{}) ([]byte, error) {
	if len(args) == 0 {
		return nil, nil
	}
	m, ok := args[0].(map[string]interface{})
	if !ok {
		return nil, schematerr.Internal("QueryString encoder: argument is not a map")
	}
	q := url.Values{}
	for k, v := range m {
		q.Set(k, fmt.Sprintf("%v", v))
	}
	return []byte(q.Encode()), nil
}

func (queryStringEncoder) DecodeArgs(body []byte, query url.Values) ([]interface{}, error) {
	q := query
	if q == nil {
		var err error
		q, err = url.ParseQuery(string(body))
		if err != nil {
			return nil, schematerr.Internal("QueryString encoder: %v", err)
		}
	}
	m := map[string]interface{}{}
	for k := range q {
		m[k] = q.Get(k)
	}
	return []interface{}{m}, nil
}

func (queryStringEncoder) EncodeResult(v interface{}) ([]byte, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, schematerr.Internal("QueryString encoder: result is not a map")
	}
	q := url.Values{}
	for k, val := range m {
		q.Set(k, fmt.Sprintf("%v", val))
	}
	return []byte(q.Encode()), nil
}

func (queryStringEncoder) DecodeResult(body []byte) (interface{}, error) {
	q, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, err
	}
	m := map[string]interface{}{}
	for k := range q {
		m[k] = q.Get(k)
	}
	return m, nil
}

func (queryStringEncoder) EncodeError(err error) (int, []byte)       { return encodeError(err) }
func (queryStringEncoder) DecodeError(body []byte, status int) error { return decodeError(body, status) }

// jsonEncoder marshals one plain value as JSON.
type jsonEncoder struct{ named }

func JsonEncoder() MessageEncoder { return jsonEncoder{named{name: "Json"}} }

func (jsonEncoder) EncodeArgs(args []interface{}) ([]byte, error) {
	if len(args) == 0 {
		return json.Marshal(nil)
	}
	return json.Marshal(args[0])
}

func (jsonEncoder) DecodeArgs(body []byte, _ url.Values) ([]interface{}, error) {
	var v interface{}
	if len(body) == 0 {
		return []interface{}{nil}, nil
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, schematerr.Internal("Json encoder: %v", err)
	}
	return []interface{}{v}, nil
}

func (jsonEncoder) EncodeResult(v interface{}) ([]byte, error) { return json.Marshal(v) }
func (jsonEncoder) DecodeResult(body []byte) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}
func (jsonEncoder) EncodeError(err error) (int, []byte)       { return encodeError(err) }
func (jsonEncoder) DecodeError(body []byte, status int) error { return decodeError(body, status) }

// jsonArrayEncoder marshals/spreads a JSON array of arguments.
type jsonArrayEncoder struct{ named }

func JsonArrayEncoder() MessageEncoder { return jsonArrayEncoder{named{name: "JsonArray", array: true}} }

func (jsonArrayEncoder) EncodeArgs(args []interface{}) ([]byte, error) { return json.Marshal(args) }

func (jsonArrayEncoder) DecodeArgs(body []byte, _ url.Values) ([]interface{}, error) {
	var args []interface{}
	if len(body) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(body, &args); err != nil {
		return nil, schematerr.Internal("JsonArray encoder: %v", err)
	}
	return args, nil
}

func (jsonArrayEncoder) EncodeResult(v interface{}) ([]byte, error) { return json.Marshal(v) }
func (jsonArrayEncoder) DecodeResult(body []byte) (interface{}, error) {
	var v []interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}
func (jsonArrayEncoder) EncodeError(err error) (int, []byte)       { return encodeError(err) }
func (jsonArrayEncoder) DecodeError(body []byte, status int) error { return decodeError(body, status) }

// jsonxEncoder marshals one value through catalog's tagged wire form, so
// object references inside arguments/results survive the round trip
// instead of decaying to plain numbers (spec §4.4 "preserves object
// references via {"@id": N}").
type jsonxEncoder struct{ named }

func JsonxEncoder() MessageEncoder { return jsonxEncoder{named{name: "Jsonx"}} }

func (jsonxEncoder) EncodeArgs(args []interface{}) ([]byte, error) {
	if len(args) == 0 {
		return catalog.EncodeValue(catalog.PlainValue(nil))
	}
	return catalog.EncodeValue(toValue(args[0]))
}

func (jsonxEncoder) DecodeArgs(body []byte, _ url.Values) ([]interface{}, error) {
	v, err := catalog.DecodeValue(body)
	if err != nil {
		return nil, schematerr.Internal("Jsonx encoder: %v", err)
	}
	return []interface{}{v}, nil
}

func (jsonxEncoder) EncodeResult(v interface{}) ([]byte, error) {
	return catalog.EncodeValue(toValue(v))
}

func (jsonxEncoder) DecodeResult(body []byte) (interface{}, error) { return catalog.DecodeValue(body) }
func (jsonxEncoder) EncodeError(err error) (int, []byte)            { return encodeError(err) }
func (jsonxEncoder) DecodeError(body []byte, status int) error      { return decodeError(body, status) }

// toValue coerces a handler-returned Go value into a catalog.Value so
// Jsonx/JsonxArray can encode it uniformly: an existing catalog.Value or
// *catalog.Ref passes through typed, everything else becomes Plain.
func toValue(v interface{}) catalog.Value {
	switch t := v.(type) {
	case catalog.Value:
		return t
	case *catalog.Ref:
		return catalog.RefValue(t.ID)
	case *catalog.Catalog:
		return catalog.CatalogValue(t)
	default:
		return catalog.PlainValue(v)
	}
}

// jsonxArrayEncoder is JsonxEncoder spread over a JSON array.
type jsonxArrayEncoder struct{ named }

func JsonxArrayEncoder() MessageEncoder {
	return jsonxArrayEncoder{named{name: "JsonxArray", array: true}}
}

func (jsonxArrayEncoder) EncodeArgs(args []interface{}) ([]byte, error) {
	raws := make([]json.RawMessage, len(args))
	for i, a := range args {
		r, err := catalog.EncodeValue(toValue(a))
		if err != nil {
			return nil, err
		}
		raws[i] = r
	}
	return json.Marshal(raws)
}

func (jsonxArrayEncoder) DecodeArgs(body []byte, _ url.Values) ([]interface{}, error) {
	var raws []json.RawMessage
	if len(body) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, schematerr.Internal("JsonxArray encoder: %v", err)
	}
	args := make([]interface{}, len(raws))
	for i, r := range raws {
		v, err := catalog.DecodeValue(r)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (jsonxArrayEncoder) EncodeResult(v interface{}) ([]byte, error) {
	vals, ok := v.([]interface{})
	if !ok {
		return nil, schematerr.Internal("JsonxArray encoder: result is not a slice")
	}
	return jsonxArrayEncoder{}.EncodeArgs(vals)
}

func (jsonxArrayEncoder) DecodeResult(body []byte) (interface{}, error) {
	return jsonxArrayEncoder{}.DecodeArgs(body, nil)
}
func (jsonxArrayEncoder) EncodeError(err error) (int, []byte)       { return encodeError(err) }
func (jsonxArrayEncoder) DecodeError(body []byte, status int) error { return decodeError(body, status) }
