// Package jsonpath implements JSONPath (RFC 9535) as a library: it
// compiles a textual query into an immutable query tree and evaluates
// that tree against a decoded JSON value, returning the ordered list of
// matching nodes. It also offers Update, UpdateOrCreate and Filter
// mutation primitives that reuse the same compiled tree to address their
// targets.
//
// The compile step (Parse) is the only place an error is returned:
// evaluation (Find and friends) is total and never fails -- a query that
// matches nothing simply returns an empty slice.
package jsonpath

import (
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/h2non/jsonpath-ng/internal/ordered"
	"github.com/h2non/jsonpath-ng/internal/parser"
	"github.com/h2non/jsonpath-ng/internal/validate"
)

// ErrEmptyQuery is returned by Parse for the empty string, which is not
// a legal JSONPath query (the shortest legal query is "$").
var ErrEmptyQuery = errors.New("jsonpath: empty query")

// json is the decode/encode configuration used throughout the package.
// Decoding goes through internal/ordered, which drives this config's
// iterator and yields *ordered.Map objects, []interface{} arrays and
// float64 numbers; encoding uses its Marshal and MarshalToString paths
// for MarshalNode, FindAll and Debug.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ParseJSON decodes a JSON document from data into the recursive
// interface{} shape Find and the mutation helpers expect: objects decode
// to *ordered.Map (so §3.4's object-member insertion-order guarantee
// survives decode), arrays to []interface{}, and scalars to string,
// float64, bool or nil, matching encoding/json's defaults.
func ParseJSON(data []byte) (interface{}, error) {
	v, err := ordered.Decode(json, data)
	if err != nil {
		return nil, fmt.Errorf("jsonpath: decode JSON: %w", err)
	}
	return v, nil
}

// ParseJSONString is ParseJSON over a string.
func ParseJSONString(data string) (interface{}, error) {
	return ParseJSON([]byte(data))
}

// ParseJSONReader decodes a single JSON document streamed from r, in the
// same order-preserving shape as ParseJSON.
func ParseJSONReader(r io.Reader) (interface{}, error) {
	iter := jsoniter.Parse(json, r, 4096)
	v := ordered.DecodeIterator(iter)
	if iter.Error != nil && iter.Error != io.EOF {
		return nil, fmt.Errorf("jsonpath: decode JSON: %w", iter.Error)
	}
	return v, nil
}

// Parse compiles query text into a reusable, immutable Path. Parse runs
// the grammar (internal/parser) and then the static checks
// (internal/validate) that RFC 9535 requires beyond what the grammar
// alone enforces: singular-query restrictions in comparisons, function
// arity and argument typing, and numeric index legality. Either stage's
// failure is returned wrapped with "jsonpath: ", so callers that need
// position detail can unwrap down to a *lexer.Error, *parser.Error or
// *validate.Error with errors.As.
func Parse(query string) (*Path, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	root, err := parser.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("jsonpath: %w", err)
	}
	if err := validate.Validate(root); err != nil {
		return nil, fmt.Errorf("jsonpath: %w", err)
	}
	return &Path{root: root, text: query}, nil
}

// MustParse is Parse but panics on error; meant for package-level
// variable initialization with a known-good query string.
func MustParse(query string) *Path {
	p, err := Parse(query)
	if err != nil {
		panic(err)
	}
	return p
}

// MarshalNode re-encodes a single matched value (as returned in Node.Value
// or FindValues) back to JSON, using the same jsoniter configuration as
// ParseJSON. It exists for callers, such as the cmd/jsonpath CLI, that want
// to print individual matches rather than the FindAll array form.
func MarshalNode(value interface{}) ([]byte, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("jsonpath: encode JSON: %w", err)
	}
	return b, nil
}
