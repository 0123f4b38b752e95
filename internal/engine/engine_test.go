package engine

import (
	"reflect"
	"testing"

	"github.com/h2non/jsonpath-ng/internal/ordered"
	"github.com/h2non/jsonpath-ng/internal/parser"
	"github.com/h2non/jsonpath-ng/internal/query"
)

func parse(t *testing.T, text string) query.Node {
	t.Helper()
	n, err := parser.Parse(text)
	if err != nil {
		t.Fatalf("parse(%q): %v", text, err)
	}
	return n
}

func TestFindFieldChain(t *testing.T) {
	doc := map[string]interface{}{"store": map[string]interface{}{"name": "acme"}}
	got := FindValues(parse(t, "$.store.name"), doc)
	want := []interface{}{"acme"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestIndexOutOfRangeIsEmpty(t *testing.T) {
	doc := []interface{}{1.0, 2.0}
	got := FindValues(parse(t, "$[5]"), doc)
	if len(got) != 0 {
		t.Fatalf("got %#v, want empty", got)
	}
}

func TestNegativeIndex(t *testing.T) {
	doc := []interface{}{1.0, 2.0, 3.0}
	got := FindValues(parse(t, "$[-1]"), doc)
	want := []interface{}{3.0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestSliceScalarCoercion(t *testing.T) {
	// $[0:1] over the bare scalar 7 yields [7] via the scalar-to-one-
	// element-array coercion rule (spec §3.4 / §8.2).
	got := FindValues(parse(t, "$[0:1]"), 7.0)
	want := []interface{}{7.0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestWildcardOverScalarIsEmpty(t *testing.T) {
	got := FindValues(parse(t, "$[*]"), 7.0)
	if len(got) != 0 {
		t.Fatalf("got %#v, want empty", got)
	}
}

func TestSliceStepZeroIsEmpty(t *testing.T) {
	doc := []interface{}{1.0, 2.0, 3.0, 4.0}
	got := FindValues(parse(t, "$[1:2:0]"), doc)
	if len(got) != 0 {
		t.Fatalf("got %#v, want empty", got)
	}
}

func TestUnionOfSliceAndIndex(t *testing.T) {
	doc := []interface{}{10.0, 20.0, 30.0, 40.0, 50.0, 60.0}
	got := FindValues(parse(t, "$[0:2,5]"), doc)
	want := []interface{}{10.0, 20.0, 60.0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestDescendantsSupersetOfChild(t *testing.T) {
	doc := map[string]interface{}{
		"a": map[string]interface{}{"x": 1.0},
		"b": map[string]interface{}{"a": map[string]interface{}{"x": 2.0}},
	}
	direct := FindValues(parse(t, "$.a"), doc)
	all := FindValues(parse(t, "$..a"), doc)
	if len(all) < len(direct) {
		t.Fatalf("descendants result %#v is not a superset of child result %#v", all, direct)
	}
}

func TestNullVsMissingFilter(t *testing.T) {
	doc := []interface{}{
		map[string]interface{}{"d": "e"},
		map[string]interface{}{"a": nil, "d": "f"},
		map[string]interface{}{"a": "c", "d": "g"},
	}
	got := FindValues(parse(t, "$[?@.a==null]"), doc)
	want := []interface{}{map[string]interface{}{"a": nil, "d": "f"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestExistenceTestKeepsNullField(t *testing.T) {
	doc := []interface{}{
		map[string]interface{}{"a": nil, "d": "e"},
		map[string]interface{}{"d": "f"},
		map[string]interface{}{"a": "d", "d": "f"},
	}
	got := FindValues(parse(t, "$[?!@.a]"), doc)
	want := []interface{}{map[string]interface{}{"d": "f"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestFilterPrecedenceOrBindsLooserThanAnd(t *testing.T) {
	doc := []interface{}{
		map[string]interface{}{"a": 1.0},
		map[string]interface{}{"b": 2.0, "c": 3.0},
		map[string]interface{}{"c": 3.0},
		map[string]interface{}{"b": 2.0},
		map[string]interface{}{"a": 1.0, "b": 2.0, "c": 3.0},
	}
	got := FindValues(parse(t, "$[?@.a || @.b && @.c]"), doc)
	want := []interface{}{
		map[string]interface{}{"a": 1.0},
		map[string]interface{}{"b": 2.0, "c": 3.0},
		map[string]interface{}{"a": 1.0, "b": 2.0, "c": 3.0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestUpdateOrCreatePadsArray(t *testing.T) {
	doc := map[string]interface{}{"arr": []interface{}{1.0, 2.0}}
	result := UpdateOrCreate(parse(t, "$.arr[5]"), doc, 99.0)
	m := result.(map[string]interface{})
	arr := m["arr"].([]interface{})
	if len(arr) != 6 {
		t.Fatalf("got len %d, want 6", len(arr))
	}
	if arr[5] != 99.0 {
		t.Fatalf("got arr[5] = %#v, want 99.0", arr[5])
	}
	for i := 2; i < 5; i++ {
		if arr[i] != nil {
			t.Fatalf("arr[%d] = %#v, want nil padding", i, arr[i])
		}
	}
}

func TestUpdateOrCreateMaterializesMap(t *testing.T) {
	doc := map[string]interface{}{}
	result := UpdateOrCreate(parse(t, "$.a.b"), doc, "hi")
	m := result.(map[string]interface{})
	// doc itself already existed as a plain map, so it stays one; the
	// nested "a" container didn't exist yet, so it materializes as
	// *ordered.Map (see updateOrCreate's query.Fields default case).
	inner, ok := m["a"].(*ordered.Map)
	if !ok {
		t.Fatalf("got %#v, want *ordered.Map", m["a"])
	}
	v, _ := inner.Get("b")
	if v != "hi" {
		t.Fatalf("got %#v, want hi", v)
	}
}

func TestWildcardPreservesObjectInsertionOrder(t *testing.T) {
	doc := ordered.NewMap()
	doc.Set("z", 1.0)
	doc.Set("a", 2.0)
	doc.Set("m", 3.0)
	got := FindValues(parse(t, "$.*"), doc)
	want := []interface{}{1.0, 2.0, 3.0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v (document order, not alphabetical)", got, want)
	}
}

func TestUpdateLeavesMissingPathUntouched(t *testing.T) {
	doc := map[string]interface{}{"a": 1.0}
	result := Update(parse(t, "$.b"), doc, 2.0)
	m := result.(map[string]interface{})
	if _, exists := m["b"]; exists {
		t.Fatalf("Update should not create missing paths, got %#v", m)
	}
}

func TestFilterDropsNonMatching(t *testing.T) {
	doc := map[string]interface{}{"arr": []interface{}{1.0, 2.0, 3.0, 4.0}}
	result := Filter(parse(t, "$.arr[*]"), doc, func(v interface{}) bool {
		n, _ := v.(float64)
		return n < 3
	})
	m := result.(map[string]interface{})
	arr := m["arr"].([]interface{})
	if len(arr) != 2 || arr[0] != 1.0 || arr[1] != 2.0 {
		t.Fatalf("got %#v, want [1 2]", arr)
	}
}

func TestFieldGlobConvenience(t *testing.T) {
	doc := map[string]interface{}{"foo_a": 1.0, "foo_b": 2.0, "bar": 3.0}
	got := FindValues(parse(t, "$['foo_*']"), doc)
	want := []interface{}{1.0, 2.0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}
