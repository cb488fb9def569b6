package gltfdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// AttributeMap is an insertion-order-preserving map from attribute semantic
// (e.g. "POSITION", "NORMAL", "_FEATURE_ID_0") to accessor index.
//
// A plain Go map loses the order in which a producing tool wrote its
// attributes, which matters for unknown/extension attributes: two tools
// that both emit "_FEATURE_ID_0" alongside the standard set may disagree on
// where it belongs relative to other custom attributes, and a naive
// map[string]int round-trip silently reorders them on every rewrite. This
// type keeps entries in the order they were first set (or, when decoded
// from JSON, in the order the source document's JSON object listed them),
// so a document rewritten by this tool diffs identically against the
// original besides the accessor indices that actually changed.
type AttributeMap struct {
	keys   []string
	values map[string]int
}

// NewAttributeMap creates an empty ordered attribute map.
func NewAttributeMap() AttributeMap {
	return AttributeMap{values: make(map[string]int)}
}

// Get returns the accessor index for a semantic and whether it is present.
func (m AttributeMap) Get(key string) (int, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set assigns the accessor index for a semantic, appending it to the
// iteration order on first insertion.
func (m *AttributeMap) Set(key string, value int) {
	if m.values == nil {
		m.values = make(map[string]int)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Delete removes a semantic from the map.
func (m *AttributeMap) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (m AttributeMap) Len() int { return len(m.keys) }

// Keys returns the semantics in insertion order.
func (m AttributeMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Range calls fn for each entry in insertion order, stopping early if fn
// returns false.
func (m AttributeMap) Range(fn func(key string, value int) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Clone returns an independent copy of the map.
func (m AttributeMap) Clone() AttributeMap {
	out := AttributeMap{
		keys:   append([]string(nil), m.keys...),
		values: make(map[string]int, len(m.values)),
	}
	for k, v := range m.values {
		out.values[k] = v
	}
	return out
}

// MarshalJSON emits the map as a JSON object with keys in insertion order.
// encoding/json has no hook for ordered object keys, so the object is
// built by hand rather than delegating to json.Marshal(map[string]int).
func (m AttributeMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", m.values[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the map, preserving the source
// document's key order via json.Decoder's token stream (map[string]int
// would discard it).
func (m *AttributeMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return fmt.Errorf("gltfdoc: expected JSON object for attribute map")
	}

	m.keys = nil
	m.values = make(map[string]int)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("gltfdoc: attribute map key is not a string")
		}

		var value int
		if err := dec.Decode(&value); err != nil {
			return err
		}
		m.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// sortedByValue returns the map's keys sorted by accessor index ascending,
// breaking ties by insertion order. This matches the convention the source
// pipeline uses when flattening a primitive's attributes + morph targets
// into one accessor-collection pass (lowest accessor index first).
func (m AttributeMap) sortedByValue() []string {
	keys := m.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		return m.values[keys[i]] < m.values[keys[j]]
	})
	return keys
}

// SortedEntries returns (key, value) pairs ordered by accessor index
// ascending, ties broken by insertion order.
func (m AttributeMap) SortedEntries() []struct {
	Key   string
	Value int
} {
	keys := m.sortedByValue()
	out := make([]struct {
		Key   string
		Value int
	}, len(keys))
	for i, k := range keys {
		out[i] = struct {
			Key   string
			Value int
		}{Key: k, Value: m.values[k]}
	}
	return out
}
