// Package engine is the tree-walking evaluator: it turns a query tree and
// a decoded JSON value into an ordered list of Datum matches, and
// provides the update/update-or-create mutation primitives that reuse
// the same tree to address a target inside a value.
package engine

import (
	"reflect"
	"sort"
	"strings"

	"github.com/h2non/jsonpath-ng/internal/datum"
	"github.com/h2non/jsonpath-ng/internal/filter"
	"github.com/h2non/jsonpath-ng/internal/ordered"
	"github.com/h2non/jsonpath-ng/internal/query"
	"github.com/tidwall/match"
)

// objectView is the read-only surface find/findWildcard/descend/findFilter
// need from an object value, satisfied by both representations the engine
// accepts: *ordered.Map, what ParseJSON/ParseJSONString/ParseJSONReader
// produce, whose Keys() is true document order; and a plain Go
// map[string]interface{} a caller constructed directly, adapted by
// rawMapView, whose Keys() falls back to alphabetical order since Go maps
// retain no order of their own to report.
type objectView interface {
	Keys() []string
	Get(key string) (interface{}, bool)
}

type rawMapView map[string]interface{}

func (m rawMapView) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m rawMapView) Get(key string) (interface{}, bool) {
	v, ok := m[key]
	return v, ok
}

func asObject(v interface{}) (objectView, bool) {
	switch t := v.(type) {
	case *ordered.Map:
		return t, true
	case map[string]interface{}:
		return rawMapView(t), true
	}
	return nil, false
}

// Find evaluates n against value and returns every matching Datum, in
// the order §5's ordering guarantee requires: query-tree traversal order
// (left before right, parent before children for descendants), object
// members visited in insertion order for a document this library decoded
// (*ordered.Map), or alphabetical order for a plain map[string]interface{}
// a caller constructed directly (see rawMapView -- Go retains no order
// for such a map to fall back to).
func Find(n query.Node, value interface{}) []datum.Datum {
	root := datum.Root(value)
	return find(n, root, root)
}

// FindValues is a convenience wrapper returning just the matched values.
func FindValues(n query.Node, value interface{}) []interface{} {
	matches := Find(n, value)
	out := make([]interface{}, len(matches))
	for i, m := range matches {
		out[i] = m.Value
	}
	return out
}

func find(n query.Node, cur, root datum.Datum) []datum.Datum {
	switch v := n.(type) {
	case query.Root:
		return []datum.Datum{root}

	case query.This, query.CurrentNode:
		return []datum.Datum{cur}

	case query.Parent:
		if cur.Parent == nil {
			return nil
		}
		return []datum.Datum{*cur.Parent}

	case query.Fields:
		obj, ok := asObject(cur.Value)
		if !ok {
			return nil
		}
		var out []datum.Datum
		for _, name := range v.Names {
			if child, exists := obj.Get(name); exists {
				out = append(out, cur.Child(child, query.Fields{Names: []string{name}}))
				continue
			}
			// Additive, non-standard convenience: a name containing a glob
			// metacharacter ('*' or '?', which are otherwise invalid as a
			// literal JSON object key to write in a query) matches every
			// key the tidwall/match glob engine accepts. RFC 9535's own
			// wildcard selector (a whole segment of '*') is unaffected --
			// it is parsed as query.Wildcard, never as query.Fields.
			if isGlobPattern(name) {
				for _, k := range obj.Keys() {
					if match.Match(k, name) {
						child, _ := obj.Get(k)
						out = append(out, cur.Child(child, query.Fields{Names: []string{k}}))
					}
				}
			}
		}
		return out

	case query.Wildcard:
		return findWildcard(cur)

	case query.Index:
		arr, ok := cur.Value.([]interface{})
		if !ok {
			return nil
		}
		idx := v.Value
		if idx < 0 {
			idx += len(arr)
		}
		if idx < 0 || idx >= len(arr) {
			return nil
		}
		return []datum.Datum{cur.Child(arr[idx], query.Index{Value: v.Value})}

	case query.Slice:
		return findSlice(v, cur)

	case query.Child:
		var out []datum.Datum
		for _, ld := range find(v.Left, cur, root) {
			out = append(out, find(v.Right, ld, root)...)
		}
		return out

	case query.Descendants:
		var out []datum.Datum
		for _, lm := range find(v.Left, cur, root) {
			out = append(out, descend(v.Right, lm, root)...)
		}
		return out

	case query.Where:
		var out []datum.Datum
		for _, ld := range find(v.Left, cur, root) {
			if len(find(v.Right, ld, root)) > 0 {
				out = append(out, ld)
			}
		}
		return out

	case query.WhereNot:
		var out []datum.Datum
		for _, ld := range find(v.Left, cur, root) {
			if len(find(v.Right, ld, root)) == 0 {
				out = append(out, ld)
			}
		}
		return out

	case query.Union:
		var out []datum.Datum
		for _, item := range v.Items {
			out = append(out, find(item, cur, root)...)
		}
		return out

	case query.Intersect:
		// Reserved: the grammar builds it and it stringifies, but RFC 9535
		// gives no normative evaluation semantics for it.
		return nil

	case query.Filter:
		return findFilter(v, cur, root)

	default:
		return nil
	}
}

func findWildcard(cur datum.Datum) []datum.Datum {
	if obj, ok := asObject(cur.Value); ok {
		var out []datum.Datum
		for _, k := range obj.Keys() {
			v, _ := obj.Get(k)
			out = append(out, cur.Child(v, query.Fields{Names: []string{k}}))
		}
		return out
	}
	if arr, ok := cur.Value.([]interface{}); ok {
		var out []datum.Datum
		for i, item := range arr {
			out = append(out, cur.Child(item, query.Index{Value: i}))
		}
		return out
	}
	return nil
}

func findSlice(s query.Slice, cur datum.Datum) []datum.Datum {
	arr, ok := cur.Value.([]interface{})
	if !ok {
		// Scalar-to-one-element-array coercion (§3.4): a bare scalar is
		// sliced as if it were its own singleton array.
		arr = []interface{}{cur.Value}
	}
	n := len(arr)

	step := 1
	if s.Step != nil {
		step = *s.Step
	}
	if step == 0 {
		return nil
	}

	start, end := sliceBounds(s.Start, s.End, step, n)

	var out []datum.Datum
	if step > 0 {
		for i := start; i < end; i += step {
			if i < 0 || i >= n {
				continue
			}
			out = append(out, cur.Child(arr[i], query.Index{Value: i}))
		}
	} else {
		for i := start; i > end; i += step {
			if i < 0 || i >= n {
				continue
			}
			out = append(out, cur.Child(arr[i], query.Index{Value: i}))
		}
	}
	return out
}

func sliceBounds(startP, endP *int, step, n int) (start, end int) {
	norm := func(i int) int {
		if i < 0 {
			i += n
		}
		return i
	}
	if step > 0 {
		if startP == nil {
			start = 0
		} else {
			start = norm(*startP)
			if start < 0 {
				start = 0
			}
		}
		if endP == nil {
			end = n
		} else {
			end = norm(*endP)
			if end > n {
				end = n
			}
		}
		return
	}
	if startP == nil {
		start = n - 1
	} else {
		start = norm(*startP)
		if start >= n {
			start = n - 1
		}
	}
	if endP == nil {
		end = -1
	} else {
		end = norm(*endP)
		if end < -1 {
			end = -1
		}
	}
	return
}

func descend(right query.Node, d datum.Datum, root datum.Datum) []datum.Datum {
	out := find(right, d, root)
	if arr, ok := d.Value.([]interface{}); ok {
		for i, item := range arr {
			child := d.Child(item, query.Index{Value: i})
			out = append(out, descend(right, child, root)...)
		}
		return out
	}
	if obj, ok := asObject(d.Value); ok {
		for _, k := range obj.Keys() {
			v, _ := obj.Get(k)
			child := d.Child(v, query.Fields{Names: []string{k}})
			out = append(out, descend(right, child, root)...)
		}
	}
	return out
}

func findFilter(f query.Filter, cur, root datum.Datum) []datum.Datum {
	finder := func(n query.Node, d datum.Datum) []datum.Datum { return find(n, d, root) }

	if arr, ok := cur.Value.([]interface{}); ok {
		var out []datum.Datum
		for i, item := range arr {
			child := cur.Child(item, query.Index{Value: i})
			if filter.EvalBool(finder, f.Expr, child) {
				out = append(out, child)
			}
		}
		return out
	}
	if obj, ok := asObject(cur.Value); ok {
		var out []datum.Datum
		for _, k := range obj.Keys() {
			v, _ := obj.Get(k)
			child := cur.Child(v, query.Fields{Names: []string{k}})
			if filter.EvalBool(finder, f.Expr, child) {
				out = append(out, child)
			}
		}
		return out
	}
	return nil
}

// Update replaces the value at every existing match of n within value
// with newValue, mutating in place where possible (map writes and
// in-bounds slice element writes are visible through the original
// reference) and returning the (possibly reassigned) root value. Paths
// that do not already exist are left untouched -- use UpdateOrCreate to
// materialize missing containers.
func Update(n query.Node, value interface{}, newValue interface{}) interface{} {
	for _, m := range Find(n, value) {
		setInParent(m, newValue)
	}
	return value
}

func setInParent(d datum.Datum, newValue interface{}) {
	if d.Parent == nil {
		return
	}
	switch p := d.Path.(type) {
	case query.Fields:
		if len(p.Names) != 1 {
			return
		}
		switch m := d.Parent.Value.(type) {
		case map[string]interface{}:
			m[p.Names[0]] = newValue
		case *ordered.Map:
			m.Set(p.Names[0], newValue)
		}
	case query.Index:
		if arr, ok := d.Parent.Value.([]interface{}); ok {
			idx := p.Value
			if idx < 0 {
				idx += len(arr)
			}
			if idx >= 0 && idx < len(arr) {
				arr[idx] = newValue
			}
		}
	}
}

// UpdateOrCreate addresses the single location n describes within value,
// materializing missing maps and padding missing array slots with nil
// (mirroring the list-key padding the mutation helpers this is modeled
// on use), and sets it to newValue. It creates locations only along a
// chain of Root, Fields and Index steps joined by Child -- the shapes
// `.`/`[...]` chaining actually produces. A Wildcard step creates nothing:
// it assigns the value built for the rest of the chain to every member or
// element its container already has. Slice, Descendants, Union, Filter
// and the other steps leave the value untouched.
func UpdateOrCreate(n query.Node, value interface{}, newValue interface{}) interface{} {
	return updateOrCreate(n, value, newValue)
}

func updateOrCreate(n query.Node, cur interface{}, value interface{}) interface{} {
	switch v := n.(type) {
	case query.Root:
		return value
	case query.Fields:
		switch m := cur.(type) {
		case map[string]interface{}:
			for _, name := range v.Names {
				m[name] = value
			}
			return m
		case *ordered.Map:
			for _, name := range v.Names {
				m.Set(name, value)
			}
			return m
		default:
			// cur is not yet an object (commonly nil, the not-yet-materialized
			// case): a fresh container defaults to *ordered.Map so anything
			// built by UpdateOrCreate keeps the same order guarantee as a
			// document ParseJSON decoded.
			m := ordered.NewMap()
			for _, name := range v.Names {
				m.Set(name, value)
			}
			return m
		}
	case query.Index:
		arr, _ := cur.([]interface{})
		idx := v.Value
		if idx < 0 {
			idx += len(arr)
		}
		if idx < 0 {
			idx = 0
		}
		for len(arr) <= idx {
			arr = append(arr, nil)
		}
		arr[idx] = value
		return arr
	case query.Child:
		childCur := peek(v.Left, cur)
		newChild := updateOrCreate(v.Right, childCur, value)
		return updateOrCreate(v.Left, cur, newChild)
	case query.Wildcard:
		switch c := cur.(type) {
		case map[string]interface{}:
			for k := range c {
				c[k] = value
			}
			return c
		case *ordered.Map:
			for _, k := range c.Keys() {
				c.Set(k, value)
			}
			return c
		case []interface{}:
			for i := range c {
				c[i] = value
			}
			return c
		}
		return cur
	default:
		// Descendants, Union, Intersect, Where/WhereNot and Filter have no
		// single creatable location; leave cur untouched.
		return cur
	}
}

// peek reads the current value at n's position within cur without
// creating anything, returning nil when the position does not exist.
func peek(n query.Node, cur interface{}) interface{} {
	switch v := n.(type) {
	case query.Root:
		return cur
	case query.Fields:
		if len(v.Names) != 1 {
			return nil
		}
		switch m := cur.(type) {
		case map[string]interface{}:
			return m[v.Names[0]]
		case *ordered.Map:
			val, _ := m.Get(v.Names[0])
			return val
		}
		return nil
	case query.Index:
		if arr, ok := cur.([]interface{}); ok {
			idx := v.Value
			if idx < 0 {
				idx += len(arr)
			}
			if idx >= 0 && idx < len(arr) {
				return arr[idx]
			}
		}
		return nil
	case query.Child:
		return peek(v.Right, peek(v.Left, cur))
	default:
		return nil
	}
}

// Filter removes every existing match of n within value for which keep
// returns false: object keys are deleted outright (map deletes are
// visible through the original reference, so no write-back is needed),
// and matched array elements are compacted out so no hole is left
// behind. Array compaction has to write a shorter slice back into
// whatever holds it -- an interface{} copy of a slice header cannot be
// truncated in place -- so matches addressing the same backing array are
// grouped, removed together in descending-index order, and the trimmed
// slice is written back through the array datum's own parent (or, if the
// array is the root value itself, substituted for value directly).
func Filter(n query.Node, value interface{}, keep func(v interface{}) bool) interface{} {
	type arrGroup struct {
		arrayDatum *datum.Datum
		indices    []int
	}
	groups := map[uintptr]*arrGroup{}

	for _, m := range Find(n, value) {
		if keep(m.Value) || m.Parent == nil {
			continue
		}
		switch p := m.Path.(type) {
		case query.Fields:
			if len(p.Names) != 1 {
				continue
			}
			switch obj := m.Parent.Value.(type) {
			case map[string]interface{}:
				delete(obj, p.Names[0])
			case *ordered.Map:
				obj.Delete(p.Names[0])
			}
		case query.Index:
			arr, ok := m.Parent.Value.([]interface{})
			if !ok {
				continue
			}
			idx := p.Value
			if idx < 0 {
				idx += len(arr)
			}
			if idx < 0 || idx >= len(arr) {
				continue
			}
			key := sliceIdentity(arr)
			g := groups[key]
			if g == nil {
				g = &arrGroup{arrayDatum: m.Parent}
				groups[key] = g
			}
			g.indices = append(g.indices, idx)
		}
	}

	for _, g := range groups {
		arr, ok := g.arrayDatum.Value.([]interface{})
		if !ok {
			continue
		}
		sort.Sort(sort.Reverse(sort.IntSlice(g.indices)))
		last := -1
		for _, idx := range g.indices {
			if idx == last {
				continue // duplicate match of the same index; already removed
			}
			last = idx
			arr = append(arr[:idx], arr[idx+1:]...)
		}
		if g.arrayDatum.Parent == nil {
			value = arr
			continue
		}
		setInParent(*g.arrayDatum, arr)
	}
	return value
}

// sliceIdentity returns the address of a slice's backing array, used to
// recognize when two matched datums address elements of the very same
// array so their deletions can be applied together.
func sliceIdentity(s []interface{}) uintptr {
	return reflect.ValueOf(s).Pointer()
}

// isGlobPattern reports whether name contains a tidwall/match glob
// metacharacter. A literal JSON object key can never legally contain an
// unescaped '*' or '?' in a way a JSONPath author would intend as a
// single-character key, so treating these as glob patterns never shadows
// a real exact-match key lookup, which is always tried first.
func isGlobPattern(name string) bool {
	return strings.ContainsAny(name, "*?")
}
