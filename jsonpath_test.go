package jsonpath

import (
	"errors"
	"reflect"
	"testing"

	"github.com/h2non/jsonpath-ng/internal/ordered"
	"github.com/h2non/jsonpath-ng/internal/parser"
)

func mustParse(t *testing.T, q string) *Path {
	t.Helper()
	p, err := Parse(q)
	if err != nil {
		t.Fatalf("Parse(%q): %v", q, err)
	}
	return p
}

func TestParseEmptyQueryError(t *testing.T) {
	if _, err := Parse(""); err != ErrEmptyQuery {
		t.Fatalf("got %v, want ErrEmptyQuery", err)
	}
}

func TestParseInvalidSyntaxWraps(t *testing.T) {
	_, err := Parse("$.")
	if err == nil {
		t.Fatalf("expected error for trailing dot")
	}
	var perr *parser.Error
	if !errors.As(err, &perr) {
		t.Fatalf("got %T, want an error wrapping *parser.Error", err)
	}
}

func TestParseWhitespaceRejected(t *testing.T) {
	if _, err := Parse(" $.a"); err == nil {
		t.Fatalf("expected error for leading whitespace")
	}
}

func TestFindReturnsNodesWithPaths(t *testing.T) {
	doc, err := ParseJSONString(`{"store":{"name":"acme"}}`)
	if err != nil {
		t.Fatalf("ParseJSONString: %v", err)
	}
	p := mustParse(t, "$.store.name")
	nodes := p.Find(doc)
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
	if nodes[0].Value != "acme" {
		t.Fatalf("got value %#v, want acme", nodes[0].Value)
	}
	if nodes[0].Path != "$.store.name" {
		t.Fatalf("got path %q, want $.store.name", nodes[0].Path)
	}
}

func TestFindValues(t *testing.T) {
	doc, _ := ParseJSONString(`[10,20,30,40,50,60]`)
	p := mustParse(t, "$[0:2,5]")
	got := p.FindValues(doc)
	want := []interface{}{10.0, 20.0, 60.0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestFindAllJSON(t *testing.T) {
	doc, _ := ParseJSONString(`{"a":1,"b":2}`)
	p := mustParse(t, "$.a")
	got, err := p.FindAll(doc)
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if got != "[1]" {
		t.Fatalf("got %q, want [1]", got)
	}
}

func TestUpdateOrCreateThenFind(t *testing.T) {
	doc, _ := ParseJSONString(`{}`)
	p := mustParse(t, "$.a.b")
	doc = p.UpdateOrCreate(doc, "hi")
	found := mustParse(t, "$.a.b").FindValues(doc)
	if len(found) != 1 || found[0] != "hi" {
		t.Fatalf("got %#v, want [hi]", found)
	}
}

func TestFilterCompaction(t *testing.T) {
	doc, _ := ParseJSONString(`{"arr":[1,2,3,4]}`)
	p := mustParse(t, "$.arr[*]")
	doc = p.Filter(doc, func(v interface{}) bool {
		n, _ := v.(float64)
		return n < 3
	})
	m := doc.(*ordered.Map)
	arrVal, _ := m.Get("arr")
	arr := arrVal.([]interface{})
	if len(arr) != 2 {
		t.Fatalf("got %#v, want 2 elements", arr)
	}
}

func TestObjectFieldOrderPreserved(t *testing.T) {
	doc, err := ParseJSONString(`{"z":1,"a":2,"m":3}`)
	if err != nil {
		t.Fatalf("ParseJSONString: %v", err)
	}
	got := mustParse(t, "$.*").FindValues(doc)
	want := []interface{}{1.0, 2.0, 3.0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v (document order, not alphabetical)", got, want)
	}
}

func TestTryFastSingleFieldMatchesFind(t *testing.T) {
	raw := []byte(`{"name":"acme","nested":{"x":1}}`)
	p := mustParse(t, "$.name")
	val, ok := p.TryFastSingleField(raw)
	if !ok || val != "acme" {
		t.Fatalf("got %v, %v, want acme, true", val, ok)
	}

	multi := mustParse(t, "$.nested.x")
	if _, ok := multi.TryFastSingleField(raw); ok {
		t.Fatalf("multi-segment path should not use the fast path")
	}
}

func TestDebugProducesPrettyJSON(t *testing.T) {
	doc, _ := ParseJSONString(`{"a":1}`)
	p := mustParse(t, "$.a")
	out, err := p.Debug(doc)
	if err != nil {
		t.Fatalf("Debug: %v", err)
	}
	if out == "" {
		t.Fatalf("expected non-empty debug output")
	}
}

func TestStringRoundTrip(t *testing.T) {
	p := mustParse(t, "$.store.book")
	if p.String() != "$.store.book" {
		t.Fatalf("got %q", p.String())
	}
	reparsed := mustParse(t, p.String())
	if reparsed.String() != p.String() {
		t.Fatalf("stringify-then-reparse did not round-trip: %q vs %q", reparsed.String(), p.String())
	}
}
