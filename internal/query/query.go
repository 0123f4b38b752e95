// Package query defines the closed set of query-tree node types that the
// parser builds and the evaluator walks. A query tree is an immutable,
// arena-style value: every node is a plain Go value (or a pointer to one)
// holding only its own children, never a back-pointer to a parent. This
// keeps the tree acyclic by construction and lets nodes be shared freely
// between queries built from the same text.
package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is any node that can appear in a path query: a segment that steps
// from one Datum to the next. FilterExpr values that happen to be path
// references (This, Root, Child, Fields, ...) also implement Node.
type Node interface {
	fmt.Stringer
	node()
}

// Root represents `$`, the query root. It is always the first segment of
// a top-level query and, within a filter, a query rooted at the document
// root rather than at the current node.
type Root struct{}

func (Root) node()          {}
func (Root) String() string { return "$" }

// This represents the backquoted `this` named operator: the current datum,
// unchanged. It stringifies as `@`; the parser itself turns a literal `@`
// into CurrentNode, which evaluates the same way.
type This struct{}

func (This) node()          {}
func (This) String() string { return "@" }

// Fields selects one or more named object fields. The parser only builds
// single-element Fields (`.foo`, `['foo']`); a bracket list of names
// (`['a','b']`) parses to a Union of single-element Fields instead.
type Fields struct {
	Names []string
}

func (Fields) node() {}

// String renders a single, dot-safe name bare (so a Child wrapping it
// reconstructs as `.name`); every other case -- multiple names, or a
// single name that isn't a legal bare identifier -- renders as a
// bracket-quoted union (`['a b']`, `['a','b']`), which is also how a
// name containing a character a bare identifier can't hold round-trips
// back through the parser.
func (f Fields) String() string {
	if len(f.Names) == 1 && isBareIdent(f.Names[0]) {
		return f.Names[0]
	}
	parts := make([]string, len(f.Names))
	for i, name := range f.Names {
		parts[i] = quoteFieldName(name)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// isBareIdent reports whether name can appear after `.` without bracket
// quoting: ASCII letters and underscore to start, then ASCII letters,
// digits, or underscore, and not one of the lexer's reserved words.
func isBareIdent(name string) bool {
	switch name {
	case "", "where", "wherenot", "null", "true", "false":
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z'):
			continue
		case i > 0 && c >= '0' && c <= '9':
			continue
		default:
			return false
		}
	}
	return true
}

// quoteFieldName renders name as a single-quoted bracket-selector string,
// escaping the characters that would otherwise end the literal early.
func quoteFieldName(name string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range name {
		switch r {
		case '\\', '\'':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('\'')
	return b.String()
}

// Wildcard selects every field of an object or every element of an array
// (`*`).
type Wildcard struct{}

func (Wildcard) node()          {}
func (Wildcard) String() string { return "*" }

// Index selects a single array element by zero-based offset, which may be
// negative (counts from the end, Python-style). Literal preserves the
// original numeric token text (e.g. "-0", "1.0") so internal/validate
// can reject forms that are lexically an index but not a legal one.
type Index struct {
	Value   int
	Literal string
}

func (Index) node() {}
func (i Index) String() string {
	return "[" + strconv.Itoa(i.Value) + "]"
}

// Slice selects a range of array elements. Start, End and Step are
// pointers so the distinction between "not specified" and "specified as
// zero" survives parsing, matching Python slice semantics.
type Slice struct {
	Start *int
	End   *int
	Step  *int
}

func (Slice) node() {}
func (s Slice) String() string {
	fmt := func(p *int) string {
		if p == nil {
			return ""
		}
		return strconv.Itoa(*p)
	}
	out := "[" + fmt(s.Start) + ":" + fmt(s.End)
	if s.Step != nil {
		out += ":" + fmt(s.Step)
	}
	return out + "]"
}

// Child composes two segments: Left is applied first, then Right is
// applied to each Datum Left produced. `.` and bracket chaining both
// desugar to Child.
type Child struct {
	Left, Right Node
}

func (Child) node() {}
func (c Child) String() string {
	l, r := c.Left.String(), c.Right.String()
	if strings.HasPrefix(r, "[") {
		return l + r
	}
	return l + "." + r
}

// Descendants represents `Left..Right`: matches Left, then recursively
// matches Right against every value reachable from each Left match at
// every depth (including zero, i.e. the Left match itself).
type Descendants struct {
	Left, Right Node
}

func (Descendants) node() {}
func (d Descendants) String() string {
	return d.Left.String() + ".." + d.Right.String()
}

// Filter represents a bracketed predicate step `[?(expr)]`: keep only
// children of the current container for which Expr evaluates truthy.
type Filter struct {
	Expr FilterExpr
}

func (Filter) node()          {}
func (f Filter) String() string { return "[?(" + f.Expr.String() + ")]" }

// Where is the `WHERE` infix path operator: evaluate Left, then keep only
// the resulting datums for which Right (itself a path, tested for
// existence) matches at least once.
type Where struct {
	Left, Right Node
}

func (Where) node() {}
func (w Where) String() string {
	return w.Left.String() + " where " + w.Right.String()
}

// WhereNot is the negated counterpart of Where, produced by the
// `WHERENOT` infix operator: keeps datums from Left for which Right
// matches zero times.
type WhereNot struct {
	Left, Right Node
}

func (WhereNot) node() {}
func (w WhereNot) String() string {
	return w.Left.String() + " wherenot " + w.Right.String()
}

// Union represents a bracket list combining multiple selectors with `,`,
// e.g. `[0,2,'name']`.
type Union struct {
	Items []Node
}

func (Union) node() {}
func (u Union) String() string {
	parts := make([]string, len(u.Items))
	for i, it := range u.Items {
		s := it.String()
		// A bracket selector is listed without its own brackets, so
		// `[0,2,5]` prints back as one bracket list.
		switch it.(type) {
		case Index, Slice, Filter, Union, Fields:
			if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
				s = s[1 : len(s)-1]
			}
		}
		parts[i] = s
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Intersect represents the `&` combinator between two path queries. The
// grammar accepts it and the parser builds it; nothing in the evaluator
// computes an actual set intersection over it, since RFC 9535 has no
// normative semantics for it beyond parse-and-stringify.
type Intersect struct {
	Left, Right Node
}

func (Intersect) node() {}
func (i Intersect) String() string {
	return i.Left.String() + "&" + i.Right.String()
}

// Parent represents the `` `parent` `` named operator: steps from a Datum
// to the Datum that produced it.
type Parent struct{}

func (Parent) node()          {}
func (Parent) String() string { return "`parent`" }

// FilterExpr is any node that can appear inside a `[?(...)]` filter
// expression: boolean/comparison logic, literals, function calls, and
// path references (which also satisfy Node).
type FilterExpr interface {
	fmt.Stringer
	filterExpr()
}

// CurrentNode represents `@`: the current node, both as an ordinary path
// step (so `@.price` steps from the current datum into its price field)
// and, used bare in a filter's boolean position (`[?(@.a && @.b)]`), as
// an existence test that is true whenever the current node exists at
// all, independent of its value.
type CurrentNode struct{}

func (CurrentNode) node()          {}
func (CurrentNode) filterExpr()    {}
func (CurrentNode) String() string { return "@" }

// Literal wraps a constant value parsed from the query text: a string,
// float64, bool, or nil (for the `null` keyword).
type Literal struct {
	Value interface{}
}

func (Literal) filterExpr() {}
func (l Literal) String() string {
	switch v := l.Value.(type) {
	case string:
		return strconv.Quote(v)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// CompareOp identifies a Comparison's operator.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

func (op CompareOp) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	}
	return "?"
}

// Comparison compares two filter expressions.
type Comparison struct {
	Op          CompareOp
	Left, Right FilterExpr
}

func (Comparison) filterExpr() {}
func (c Comparison) String() string {
	l, r := c.Left.String(), c.Right.String()
	switch c.Left.(type) {
	case Comparison, LogicalAnd, LogicalOr, LogicalNot:
		l = "(" + l + ")"
	}
	switch c.Right.(type) {
	case Comparison, LogicalAnd, LogicalOr, LogicalNot:
		r = "(" + r + ")"
	}
	return l + " " + c.Op.String() + " " + r
}

// LogicalAnd is the `&&` filter combinator.
type LogicalAnd struct {
	Left, Right FilterExpr
}

func (LogicalAnd) filterExpr() {}
func (l LogicalAnd) String() string {
	left, right := l.Left.String(), l.Right.String()
	if _, ok := l.Left.(LogicalOr); ok {
		left = "(" + left + ")"
	}
	if _, ok := l.Right.(LogicalOr); ok {
		right = "(" + right + ")"
	}
	return left + " && " + right
}

// LogicalOr is the `||` filter combinator.
type LogicalOr struct {
	Left, Right FilterExpr
}

func (LogicalOr) filterExpr() {}
func (l LogicalOr) String() string {
	return l.Left.String() + " || " + l.Right.String()
}

// LogicalNot is unary `!`.
type LogicalNot struct {
	Expr FilterExpr
}

func (LogicalNot) filterExpr() {}
func (l LogicalNot) String() string {
	return "!(" + l.Expr.String() + ")"
}

// FunctionCall is one of the built-in filter functions: match, search,
// length, count, value. Args are evaluated as filter expressions (which
// may themselves be path references) before the function runs.
type FunctionCall struct {
	Name string
	Args []FilterExpr
}

func (FunctionCall) filterExpr() {}
func (f FunctionCall) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	return f.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Segment nodes double as FilterExpr so a path reference (`@.price`,
// `$.store.name`) can appear directly as a comparison or boolean operand.
func (Root) filterExpr()        {}
func (This) filterExpr()        {}
func (Fields) filterExpr()      {}
func (Wildcard) filterExpr()    {}
func (Index) filterExpr()       {}
func (Slice) filterExpr()       {}
func (Child) filterExpr()       {}
func (Descendants) filterExpr() {}
func (Where) filterExpr()       {}
func (WhereNot) filterExpr()    {}
func (Filter) filterExpr()      {}
func (Union) filterExpr()       {}
func (Intersect) filterExpr()   {}
func (Parent) filterExpr()      {}

// IsSingular reports whether q is guaranteed to select at most one value:
// a chain of Root/This/Fields(single name)/Index/Child steps with no
// Wildcard, Slice, Descendants, Where/WhereNot, Union or Intersect
// anywhere in it. The validator uses this to enforce RFC 9535's
// singular-query restriction on comparison operands.
func IsSingular(n Node) bool {
	switch v := n.(type) {
	case Root, This, CurrentNode, Parent:
		return true
	case Fields:
		return len(v.Names) == 1
	case Index:
		return true
	case Child:
		return IsSingular(v.Left) && IsSingular(v.Right)
	default:
		return false
	}
}
