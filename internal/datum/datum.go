// Package datum defines the zipper-style evaluator state that both
// internal/engine and internal/filter walk: a JSON value paired with the
// query-tree fragment that produced it and a pointer to the datum it was
// produced from.
package datum

import "github.com/h2non/jsonpath-ng/internal/query"

// Datum is {value, path, parent}. Path is the step, relative to Parent,
// that produced Value; Parent is nil for the root datum. Go's == on a
// Datum compares Parent by pointer identity, not by walking the chain;
// the parent chain is only walked to reconstruct the full path.
type Datum struct {
	Value  interface{}
	Path   query.Node
	Parent *Datum
}

// Root wraps a value as the root datum: no parent, path is query.Root{}.
func Root(value interface{}) Datum {
	return Datum{Value: value, Path: query.Root{}}
}

// Child builds a datum for a value reached by stepping `path` from d.
func (d Datum) Child(value interface{}, path query.Node) Datum {
	parent := d
	return Datum{Value: value, Path: path, Parent: &parent}
}

// FullPath reconstructs the full path from the document root to d by
// walking the parent chain and composing each step with query.Child.
func FullPath(d Datum) query.Node {
	if d.Parent == nil {
		return d.Path
	}
	return query.Child{Left: FullPath(*d.Parent), Right: d.Path}
}
