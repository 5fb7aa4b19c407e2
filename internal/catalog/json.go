package catalog

import (
	"encoding/json"
	"fmt"
)

// wireEntry is the on-the-wire shape of one Catalog entry: a 2-element
// JSON array of [key, value]. Using an array instead of a JSON object lets
// the same key repeat, which spec §3 explicitly permits.
type wireEntry [2]json.RawMessage

// refToken is the typed object-reference form from spec §3: object
// references become `{"@id": N}` tokens.
type refToken struct {
	ID int64 `json:"@id"`
}

// catalogToken wraps a nested catalog's own wire form so it is
// distinguishable, on decode, from a plain JSON array value.
type catalogToken struct {
	Catalog []wireEntry `json:"@catalog"`
}

// MarshalJSON implements the tagged JSON form described in spec §3.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	wire, err := c.toWire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(wire)
}

func (c *Catalog) toWire() ([]wireEntry, error) {
	entries := c.Entries()
	wire := make([]wireEntry, len(entries))
	for i, e := range entries {
		keyJSON, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		valJSON, err := encodeValue(e.Value)
		if err != nil {
			return nil, fmt.Errorf("catalog: encoding value for key %q: %w", e.Key, err)
		}
		wire[i] = wireEntry{keyJSON, valJSON}
	}
	return wire, nil
}

func encodeValue(v Value) (json.RawMessage, error) {
	switch {
	case v.Ref != nil:
		return json.Marshal(refToken{ID: v.Ref.ID})
	case v.Catalog != nil:
		sub, err := v.Catalog.toWire()
		if err != nil {
			return nil, err
		}
		return json.Marshal(catalogToken{Catalog: sub})
	default:
		return json.Marshal(v.Plain)
	}
}

// UnmarshalJSON restores a Catalog from its tagged JSON form.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	var wire []wireEntry
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("catalog: decoding wire form: %w", err)
	}
	entries, err := fromWire(wire)
	if err != nil {
		return err
	}
	c.entries = entries
	return nil
}

func fromWire(wire []wireEntry) ([]Entry, error) {
	entries := make([]Entry, len(wire))
	for i, w := range wire {
		var key string
		if err := json.Unmarshal(w[0], &key); err != nil {
			return nil, fmt.Errorf("catalog: decoding key at position %d: %w", i, err)
		}
		v, err := decodeValue(w[1])
		if err != nil {
			return nil, fmt.Errorf("catalog: decoding value for key %q: %w", key, err)
		}
		entries[i] = Entry{Key: key, Value: v}
	}
	return entries, nil
}

func decodeValue(raw json.RawMessage) (Value, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err == nil {
		if idRaw, ok := probe["@id"]; ok && len(probe) == 1 {
			var id int64
			if err := json.Unmarshal(idRaw, &id); err != nil {
				return Value{}, err
			}
			return RefValue(id), nil
		}
		if subRaw, ok := probe["@catalog"]; ok && len(probe) == 1 {
			var wire []wireEntry
			if err := json.Unmarshal(subRaw, &wire); err != nil {
				return Value{}, err
			}
			entries, err := fromWire(wire)
			if err != nil {
				return Value{}, err
			}
			return CatalogValue(&Catalog{entries: entries}), nil
		}
	}
	var plain interface{}
	if err := json.Unmarshal(raw, &plain); err != nil {
		return Value{}, err
	}
	return PlainValue(plain), nil
}

// EncodeValue serializes a single Value to its tagged JSON form — the same
// `{"@id": N}` / `{"@catalog": [...]}` tokens a Catalog entry's value uses,
// for callers (the Jsonx message encoder) that need to move one value
// rather than a whole Catalog.
func EncodeValue(v Value) ([]byte, error) { return encodeValue(v) }

// DecodeValue restores a single Value from its tagged JSON form.
func DecodeValue(data []byte) (Value, error) { return decodeValue(data) }

// Decode parses the tagged JSON form into a new Catalog.
func Decode(data []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := c.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return c, nil
}

// Encode serializes the catalog to its tagged JSON form.
func Encode(c *Catalog) ([]byte, error) {
	return c.MarshalJSON()
}
