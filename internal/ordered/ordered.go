// Package ordered decodes a JSON document into a tree that keeps every
// object's field order, which generic decode into map[string]interface{}
// discards (Go maps have no order of their own). internal/engine needs
// that order to satisfy the evaluator's insertion-order guarantee for
// wildcard, descendant, and filter traversal of objects.
package ordered

import (
	"bytes"
	"encoding/json"
	"io"

	jsoniter "github.com/json-iterator/go"
)

// Map is an insertion-order-preserving string-keyed map: O(1) lookup via
// an index alongside O(1) amortized append, with Keys returning members
// in the order they were first set. Re-setting an existing key updates
// its value in place without moving its position; Delete removes a key
// without disturbing the relative order of the rest.
type Map struct {
	keys   []string
	values map[string]interface{}
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{values: map[string]interface{}{}}
}

// Set stores value under key, appending key to the end of Keys() the
// first time it is set.
func (m *Map) Set(key string, value interface{}) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key, and whether key is present.
func (m *Map) Get(key string) (interface{}, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Delete removes key, if present.
func (m *Map) Delete(key string) {
	if _, exists := m.values[key]; !exists {
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

// Len returns the number of members.
func (m *Map) Len() int { return len(m.keys) }

// Keys returns the object's member names in insertion order.
func (m *Map) Keys() []string { return m.keys }

// MarshalJSON renders the map back to a JSON object, members in the same
// order Keys() reports, so re-encoding a decoded document doesn't
// scramble field order either.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Decode reads one JSON value from data: objects become *Map (so their
// field order survives), arrays become []interface{}, and scalars decode
// to the same types encoding/json would use (float64, string, bool, nil).
func Decode(cfg jsoniter.API, data []byte) (interface{}, error) {
	iter := cfg.BorrowIterator(data)
	defer cfg.ReturnIterator(iter)
	v := DecodeIterator(iter)
	if iter.Error != nil && iter.Error != io.EOF {
		return nil, iter.Error
	}
	return v, nil
}

// DecodeIterator is Decode's recursive step, exposed so callers reading
// from a stream (internal/ordered's one caller being the jsonpath root
// package's ParseJSONReader) can drive a jsoniter.Iterator directly
// instead of buffering the whole input first.
func DecodeIterator(iter *jsoniter.Iterator) interface{} {
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		m := NewMap()
		iter.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
			m.Set(field, DecodeIterator(it))
			return true
		})
		return m
	case jsoniter.ArrayValue:
		var arr []interface{}
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			arr = append(arr, DecodeIterator(it))
			return true
		})
		return arr
	case jsoniter.StringValue:
		return iter.ReadString()
	case jsoniter.NumberValue:
		return iter.ReadFloat64()
	case jsoniter.BoolValue:
		return iter.ReadBool()
	case jsoniter.NilValue:
		iter.ReadNil()
		return nil
	default:
		iter.Skip()
		return nil
	}
}
