// Package filter evaluates the RFC 9535 filter sub-language: the
// boolean/comparison/function-call expressions that appear inside
// `[?(...)]`. It is deliberately decoupled from internal/engine -- it
// takes the engine's path-matching function as a parameter (Finder)
// rather than importing the engine package, so the two packages can call
// into each other without an import cycle.
package filter

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/h2non/jsonpath-ng/internal/datum"
	"github.com/h2non/jsonpath-ng/internal/ordered"
	"github.com/h2non/jsonpath-ng/internal/query"
)

// Nothing is JSONPath's "nothing" sentinel: the result of a singular
// query that matched no node. It is distinct from a JSON null, which is
// represented as a plain Go nil.
type Nothing struct{}

func isNothing(v interface{}) bool {
	_, ok := v.(Nothing)
	return ok
}

// Finder runs a query-tree node against a datum and returns the matching
// datums, exactly like internal/engine.Find. Injected so this package
// need not import internal/engine.
type Finder func(n query.Node, d datum.Datum) []datum.Datum

// EvalBool evaluates expr in a boolean position: a filter's top-level
// body, or a direct operand of &&, ||, !. A bare path reference here is
// tested for existence, not value truthiness, so `[?@.a]` keeps elements
// that HAVE an `a` field even when its value is null or zero.
func EvalBool(find Finder, expr query.FilterExpr, d datum.Datum) bool {
	switch e := expr.(type) {
	case query.LogicalAnd:
		return EvalBool(find, e.Left, d) && EvalBool(find, e.Right, d)
	case query.LogicalOr:
		return EvalBool(find, e.Left, d) || EvalBool(find, e.Right, d)
	case query.LogicalNot:
		return !EvalBool(find, e.Expr, d)
	case query.Comparison:
		return evalComparison(find, e, d)
	case query.FunctionCall:
		v := callFunction(find, e, d)
		if b, ok := v.(bool); ok {
			return b
		}
		return !isNothing(v)
	default:
		if n, ok := expr.(query.Node); ok {
			return len(find(n, d)) > 0
		}
		return false
	}
}

// EvalValue reduces expr to a concrete value or Nothing: used for
// comparison operands and function arguments that expect a value rather
// than a boolean.
func EvalValue(find Finder, expr query.FilterExpr, d datum.Datum) interface{} {
	switch e := expr.(type) {
	case query.Literal:
		return e.Value
	case query.FunctionCall:
		return callFunction(find, e, d)
	case query.Comparison, query.LogicalAnd, query.LogicalOr, query.LogicalNot:
		return EvalBool(find, expr, d)
	default:
		if n, ok := expr.(query.Node); ok {
			matches := find(n, d)
			if len(matches) != 1 {
				return Nothing{}
			}
			return matches[0].Value
		}
		return Nothing{}
	}
}

func evalComparison(find Finder, cmp query.Comparison, d datum.Datum) bool {
	lv := EvalValue(find, cmp.Left, d)
	rv := EvalValue(find, cmp.Right, d)
	return compare(cmp.Op, lv, rv)
}

func compare(op query.CompareOp, lv, rv interface{}) bool {
	lNothing, rNothing := isNothing(lv), isNothing(rv)

	switch op {
	case query.OpEq:
		if lNothing || rNothing {
			return lNothing && rNothing
		}
		return valuesEqual(lv, rv)
	case query.OpNe:
		return !compare(query.OpEq, lv, rv)
	default:
		if lNothing || rNothing {
			if lNothing && rNothing {
				return op == query.OpLe || op == query.OpGe
			}
			return false
		}
		return orderCompare(op, lv, rv)
	}
}

func valuesEqual(lv, rv interface{}) bool {
	switch l := lv.(type) {
	case float64:
		r, ok := rv.(float64)
		return ok && l == r
	case string:
		r, ok := rv.(string)
		return ok && l == r
	case bool:
		r, ok := rv.(bool)
		return ok && l == r
	case nil:
		return rv == nil
	default:
		return false
	}
}

func orderCompare(op query.CompareOp, lv, rv interface{}) bool {
	switch l := lv.(type) {
	case float64:
		r, ok := rv.(float64)
		if !ok {
			return false
		}
		return numericOrder(op, l, r)
	case string:
		r, ok := rv.(string)
		if !ok {
			return false
		}
		return stringOrder(op, l, r)
	default:
		return false
	}
}

func numericOrder(op query.CompareOp, l, r float64) bool {
	switch op {
	case query.OpLt:
		return l < r
	case query.OpLe:
		return l <= r
	case query.OpGt:
		return l > r
	case query.OpGe:
		return l >= r
	}
	return false
}

func stringOrder(op query.CompareOp, l, r string) bool {
	switch op {
	case query.OpLt:
		return l < r
	case query.OpLe:
		return l <= r
	case query.OpGt:
		return l > r
	case query.OpGe:
		return l >= r
	}
	return false
}

func callFunction(find Finder, call query.FunctionCall, d datum.Datum) interface{} {
	switch call.Name {
	case "match":
		return regexTest(find, call, d, true)
	case "search":
		return regexTest(find, call, d, false)
	case "length":
		return lengthOf(EvalValue(find, call.Args[0], d))
	case "count":
		if n, ok := call.Args[0].(query.Node); ok {
			return float64(len(find(n, d)))
		}
		return float64(0)
	case "value":
		// §4.4: value() is the unique value of a node list of size 1, and
		// Nothing otherwise -- a non-path argument is never a node list, so
		// it always reduces to Nothing, not its literal value.
		n, ok := call.Args[0].(query.Node)
		if !ok {
			return Nothing{}
		}
		matches := find(n, d)
		if len(matches) != 1 {
			return Nothing{}
		}
		return matches[0].Value
	default:
		return Nothing{}
	}
}

func lengthOf(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return float64(utf8.RuneCountInString(t))
	case []interface{}:
		return float64(len(t))
	case map[string]interface{}:
		return float64(len(t))
	case *ordered.Map:
		return float64(t.Len())
	default:
		return Nothing{}
	}
}

// regexTest implements match() (full := true) and search() (full :=
// false). Per RFC 9535, `.` in the pattern must not match U+000A,
// U+000D, U+2028 or U+2029; Go's RE2 only excludes U+000A by default, so
// the pattern is rewritten before compiling.
func regexTest(find Finder, call query.FunctionCall, d datum.Datum, full bool) interface{} {
	subject, ok1 := EvalValue(find, call.Args[0], d).(string)
	pattern, ok2 := EvalValue(find, call.Args[1], d).(string)
	if !ok1 || !ok2 {
		return false
	}

	translated := translateDot(pattern)
	if full {
		translated = "^(?:" + translated + ")$"
	}

	re, err := regexp.Compile(translated)
	if err != nil {
		return false
	}
	return re.MatchString(subject)
}

// translateDot rewrites unescaped, unbracketed '.' metacharacters into a
// character class that excludes the four line-terminator code points
// RFC 9535 requires `.` to skip.
func translateDot(pattern string) string {
	var b strings.Builder
	inClass := false
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			b.WriteRune(r)
			escaped = true
		case r == '[':
			inClass = true
			b.WriteRune(r)
		case r == ']':
			inClass = false
			b.WriteRune(r)
		case r == '.' && !inClass:
			b.WriteString(`[^\n\r\x{2028}\x{2029}]`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
