package service

import (
	"encoding/json"
	"net/url"

	"github.com/schemat-io/core/internal/catalog"
	"github.com/schemat-io/core/internal/schematerr"
)

// RecordPayload is the wire shape of one `{id, data}` record (spec §4.4's
// DataRecord/WebObjects encoders). DecodeResult hands these back as plain
// values; registering them into the Object Registry is the caller's job
// (for example through registry.Registry.RegisterRecord), since this
// package stays independent of the object/registry packages.
type RecordPayload struct {
	ID   int64            `json:"id"`
	Data *catalog.Catalog `json:"data"`
}

// ActionResultPayload is the wire shape of an action's combined outcome:
// a status tag, an optional plain result, and zero or more modified
// records the caller should register (spec §4.4 "bundles modified
// records; caller registers them").
type ActionResultPayload struct {
	Status  string          `json:"status"`
	Result  interface{}     `json:"result,omitempty"`
	Records []RecordPayload `json:"records,omitempty"`
}

// dataRecordEncoder carries a single {id, data} record. DecodeResult
// returns it as a RecordPayload; it does not register the record in the
// Object Registry.
type dataRecordEncoder struct{ named }

func DataRecordEncoder() MessageEncoder { return dataRecordEncoder{named{name: "DataRecord"}} }

func (dataRecordEncoder) EncodeArgs(args []interface{}) ([]byte, error) {
	if len(args) == 0 {
		return json.Marshal(RecordPayload{})
	}
	rp, ok := args[0].(RecordPayload)
	if !ok {
		return nil, schematerr.Internal("DataRecord encoder: argument is not a RecordPayload")
	}
	return json.Marshal(rp)
}

func (dataRecordEncoder) DecodeArgs(body []byte, _ url.Values) ([]interface{}, error) {
	var rp RecordPayload
	if err := json.Unmarshal(body, &rp); err != nil {
		return nil, schematerr.Internal("DataRecord encoder: %v", err)
	}
	return []interface{}{rp}, nil
}

func (dataRecordEncoder) EncodeResult(v interface{}) ([]byte, error) {
	rp, ok := v.(RecordPayload)
	if !ok {
		return nil, schematerr.Internal("DataRecord encoder: result is not a RecordPayload")
	}
	return json.Marshal(rp)
}

func (dataRecordEncoder) DecodeResult(body []byte) (interface{}, error) {
	var rp RecordPayload
	if err := json.Unmarshal(body, &rp); err != nil {
		return nil, err
	}
	return rp, nil
}
func (dataRecordEncoder) EncodeError(err error) (int, []byte)       { return encodeError(err) }
func (dataRecordEncoder) DecodeError(body []byte, status int) error { return decodeError(body, status) }

// webObjectsEncoder carries an array of records, each to be registered
// then loaded by the caller (spec §4.4 "each registered, then loaded").
type webObjectsEncoder struct{ named }

func WebObjectsEncoder() MessageEncoder {
	return webObjectsEncoder{named{name: "WebObjects", array: true}}
}

func (webObjectsEncoder) EncodeArgs(args []interface{}) ([]byte, error) {
	recs, err := toRecordSlice(args)
	if err != nil {
		return nil, err
	}
	return json.Marshal(recs)
}

func (webObjectsEncoder) DecodeArgs(body []byte, _ url.Values) ([]interface{}, error) {
	var recs []RecordPayload
	if len(body) > 0 {
		if err := json.Unmarshal(body, &recs); err != nil {
			return nil, schematerr.Internal("WebObjects encoder: %v", err)
		}
	}
	out := make([]interface{}, len(recs))
	for i, r := range recs {
		out[i] = r
	}
	return out, nil
}

func (webObjectsEncoder) EncodeResult(v interface{}) ([]byte, error) {
	recs, ok := v.([]RecordPayload)
	if !ok {
		return nil, schematerr.Internal("WebObjects encoder: result is not []RecordPayload")
	}
	return json.Marshal(recs)
}

func (webObjectsEncoder) DecodeResult(body []byte) (interface{}, error) {
	var recs []RecordPayload
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
func (webObjectsEncoder) EncodeError(err error) (int, []byte)       { return encodeError(err) }
func (webObjectsEncoder) DecodeError(body []byte, status int) error { return decodeError(body, status) }

func toRecordSlice(args []interface{}) ([]RecordPayload, error) {
	recs := make([]RecordPayload, len(args))
	for i, a := range args {
		rp, ok := a.(RecordPayload)
		if !ok {
			return nil, schematerr.Internal("WebObjects encoder: argument %d is not a RecordPayload", i)
		}
		recs[i] = rp
	}
	return recs, nil
}

// actionResultEncoder bundles a status, a plain result, and the records an
// action mutated, so the caller can register them in one round trip
// instead of re-fetching each one (spec §4.4 ActionResult).
type actionResultEncoder struct{ named }

func ActionResultEncoder() MessageEncoder {
	return actionResultEncoder{named{name: "ActionResult"}}
}

func (actionResultEncoder) EncodeArgs(args []interface{}) ([]byte, error) {
	if len(args) == 0 {
		return json.Marshal(ActionResultPayload{})
	}
	ar, ok := args[0].(ActionResultPayload)
	if !ok {
		return nil, schematerr.Internal("ActionResult encoder: argument is not an ActionResultPayload")
	}
	return json.Marshal(ar)
}

func (actionResultEncoder) DecodeArgs(body []byte, _ url.Values) ([]interface{}, error) {
	var ar ActionResultPayload
	if err := json.Unmarshal(body, &ar); err != nil {
		return nil, schematerr.Internal("ActionResult encoder: %v", err)
	}
	return []interface{}{ar}, nil
}

func (actionResultEncoder) EncodeResult(v interface{}) ([]byte, error) {
	ar, ok := v.(ActionResultPayload)
	if !ok {
		return nil, schematerr.Internal("ActionResult encoder: result is not an ActionResultPayload")
	}
	return json.Marshal(ar)
}

func (actionResultEncoder) DecodeResult(body []byte) (interface{}, error) {
	var ar ActionResultPayload
	if err := json.Unmarshal(body, &ar); err != nil {
		return nil, err
	}
	return ar, nil
}
func (actionResultEncoder) EncodeError(err error) (int, []byte) { return encodeError(err) }
func (actionResultEncoder) DecodeError(body []byte, status int) error {
	return decodeError(body, status)
}
