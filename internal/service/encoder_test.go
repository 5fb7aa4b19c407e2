package service

import (
	"testing"

	"github.com/schemat-io/core/internal/catalog"
	"github.com/schemat-io/core/internal/schematerr"
)

// TestEncoderResultRoundTrip exercises spec §8 invariant 8 for every
// single-value encoder: decode(encode(x)) == x up to structural equality.
func TestEncoderResultRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		enc  MessageEncoder
		in   interface{}
		eq   func(a, b interface{}) bool
	}{
		{"String", StringEncoder(), "hello", eqString},
		{"Json", JsonEncoder(), map[string]interface{}{"a": 1.0, "b": "x"}, eqJSON},
		{"JsonArray", JsonArrayEncoder(), []interface{}{1.0, "x", true}, eqJSON},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			body, err := c.enc.EncodeResult(c.in)
			if err != nil {
				t.Fatalf("EncodeResult: %v", err)
			}
			out, err := c.enc.DecodeResult(body)
			if err != nil {
				t.Fatalf("DecodeResult: %v", err)
			}
			if !c.eq(c.in, out) {
				t.Fatalf("round trip mismatch: in=%#v out=%#v", c.in, out)
			}
		})
	}
}

// TestJsonxRoundTripPreservesReferences exercises spec §4.4's claim that
// Jsonx preserves object references through the wire form, unlike plain
// Json (which would decay an @id token to a generic map).
func TestJsonxRoundTripPreservesReferences(t *testing.T) {
	enc := JsonxEncoder()
	in := catalog.CatalogValue(catalog.New(
		catalog.Entry{Key: "owner", Value: catalog.RefValue(42)},
		catalog.Entry{Key: "name", Value: catalog.PlainValue("widget")},
	))

	body, err := enc.EncodeResult(in)
	if err != nil {
		t.Fatalf("EncodeResult: %v", err)
	}
	out, err := enc.DecodeResult(body)
	if err != nil {
		t.Fatalf("DecodeResult: %v", err)
	}
	v, ok := out.(catalog.Value)
	if !ok || !v.IsCatalog() {
		t.Fatalf("decoded result is not a catalog value: %#v", out)
	}
	owner, ok := v.Catalog.First("owner")
	if !ok || !owner.IsRef() || owner.Ref.ID != 42 {
		t.Fatalf("owner reference did not survive round trip: %#v", owner)
	}
}

// TestErrorRoundTrip exercises spec §7's error policy: encode_error/
// decode_error preserve name, message, and code across the wire.
func TestErrorRoundTrip(t *testing.T) {
	for _, enc := range []MessageEncoder{StringEncoder(), JsonEncoder(), JsonxEncoder()} {
		orig := schematerr.ObjectNotFound(17)
		status, body := enc.EncodeError(orig)
		if status != orig.HTTPStatus() {
			t.Fatalf("%s: EncodeError status = %d; want %d", enc.Name(), status, orig.HTTPStatus())
		}
		decoded := enc.DecodeError(body, status)
		se, ok := schematerr.As(decoded)
		if !ok {
			t.Fatalf("%s: DecodeError did not produce a *schematerr.Error: %v", enc.Name(), decoded)
		}
		if se.Name != orig.Name || se.Message != orig.Message {
			t.Fatalf("%s: round trip = %+v; want name/message to match %+v", enc.Name(), se, orig)
		}
	}
}

func eqString(a, b interface{}) bool { return a.(string) == b.(string) }

func eqJSON(a, b interface{}) bool {
	switch av := a.(type) {
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			if !eqJSONScalar(v, bv[k]) {
				return false
			}
		}
		return true
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !eqJSONScalar(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return eqJSONScalar(a, b)
	}
}

func eqJSONScalar(a, b interface{}) bool { return a == b }
