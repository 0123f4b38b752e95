package jsonpath

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/h2non/jsonpath-ng/internal/datum"
	"github.com/h2non/jsonpath-ng/internal/engine"
	"github.com/h2non/jsonpath-ng/internal/query"
)

// Path is a compiled JSONPath query: an immutable query tree plus the
// source text it was parsed from. A Path is safe to share across
// goroutines for concurrent Find/FindValues calls against distinct
// input values; the mutation methods (Update, UpdateOrCreate, Filter)
// require the caller to hold exclusive access to the target value,
// since they write through it in place.
type Path struct {
	root query.Node
	text string
}

// String returns the canonical stringification of the compiled query
// tree, which may differ cosmetically from the original source text
// (e.g. redundant parentheses are dropped). For queries built from `$`,
// `@`, dot and bracket segments, bracket unions, slices and filters it
// re-parses to an equivalent tree. It does not for queries that use the
// `|`, `&`, `where` or `wherenot` operators, a `..` step whose name needs
// bracket quoting, or a filter string literal holding a control character
// other than \b, \f, \n, \r or \t: the text printed for those is not
// accepted by Parse.
func (p *Path) String() string { return p.root.String() }

// Source returns the original query text Path was parsed from.
func (p *Path) Source() string { return p.text }

// Node is a single JSONPath match: a value together with the canonical,
// fully-qualified path text that addresses it from the document root.
type Node struct {
	Value interface{}
	Path  string
}

// Find evaluates p against value and returns every matching Node, in
// the order query-tree traversal and object-key order determine (see
// the engine package). It never fails: a query that matches nothing
// returns an empty, non-nil slice.
func (p *Path) Find(value interface{}) []Node {
	matches := engine.Find(p.root, value)
	out := make([]Node, len(matches))
	for i, m := range matches {
		out[i] = Node{Value: m.Value, Path: datum.FullPath(m).String()}
	}
	return out
}

// FindValues is Find but returns just the matched values, discarding
// path information, for callers that only care about the data.
func (p *Path) FindValues(value interface{}) []interface{} {
	return engine.FindValues(p.root, value)
}

// FindAll evaluates p against value and re-marshals the matched values
// as a single JSON array, using jsoniter for the encode. This is a
// convenience for callers who received value by decoding JSON and want
// their query result back out as JSON rather than as Go interface{}
// values.
func (p *Path) FindAll(value interface{}) (string, error) {
	vals := p.FindValues(value)
	if vals == nil {
		vals = []interface{}{}
	}
	s, err := json.MarshalToString(vals)
	if err != nil {
		return "", err
	}
	return s, nil
}

// Update replaces the value at every existing match of p within value
// with newValue, mutating in place where possible, and returns the
// (possibly reassigned) root value. Paths that do not already exist are
// left untouched; use UpdateOrCreate to materialize missing containers
// along the way.
func (p *Path) Update(value interface{}, newValue interface{}) interface{} {
	return engine.Update(p.root, value, newValue)
}

// UpdateOrCreate addresses the single location p describes within
// value, materializing missing map containers and padding missing array
// slots with nil up to the target index, and sets it to newValue. It
// creates locations only along a query built from Root, Fields, Index and
// Child steps -- the shapes plain `.`/`[...]` chaining produces. A
// wildcard step creates nothing: it assigns the value built for the rest
// of the chain to every member or element its container already has. A
// slice, descendant search, union or filter step leaves the value
// untouched.
func (p *Path) UpdateOrCreate(value interface{}, newValue interface{}) interface{} {
	return engine.UpdateOrCreate(p.root, value, newValue)
}

// Filter removes every existing match of p within value for which keep
// returns false: object keys are deleted outright and matched array
// elements are compacted out rather than left as holes.
func (p *Path) Filter(value interface{}, keep func(v interface{}) bool) interface{} {
	return engine.Filter(p.root, value, keep)
}

// singleFieldName reports the field name addressed by p when p is
// exactly `$.name` (a Root step followed by a single, non-wildcard,
// non-glob Fields step) and nothing else -- the one shape a raw-byte
// gjson lookup can answer without decoding the rest of the document.
func (p *Path) singleFieldName() (string, bool) {
	child, ok := p.root.(query.Child)
	if !ok {
		return "", false
	}
	if _, ok := child.Left.(query.Root); !ok {
		return "", false
	}
	fields, ok := child.Right.(query.Fields)
	if !ok || len(fields.Names) != 1 {
		return "", false
	}
	name := fields.Names[0]
	if strings.ContainsAny(name, "*?") {
		return "", false
	}
	return name, true
}

// TryFastSingleField is an additive, non-standard fast path: when p is a
// single `$.name` field query, it answers directly from raw JSON bytes
// via gjson.GetBytes, without decoding the rest of the document into Go
// values. It is opt-in -- Find only ever operates on an already-decoded
// interface{} value and never touches gjson -- and returns ok=false for
// any query shape it cannot answer this way (wildcards, slices, filters,
// multi-segment paths, unions), so callers must fall back to decoding
// value with ParseJSON and calling Find when ok is false.
func (p *Path) TryFastSingleField(raw []byte) (value interface{}, ok bool) {
	name, isSingle := p.singleFieldName()
	if !isSingle {
		return nil, false
	}
	res := gjson.GetBytes(raw, gjson.Escape(name))
	if !res.Exists() {
		return nil, false
	}
	return res.Value(), true
}
