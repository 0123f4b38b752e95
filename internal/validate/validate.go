// Package validate runs the static checks RFC 9535 requires beyond what
// the grammar itself enforces: numeric index legality, the
// singular-query restriction on comparison operands, filter function
// arity, and the rule that a bare literal cannot stand alone as a
// filter's boolean body.
package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/h2non/jsonpath-ng/internal/query"
)

// Error reports a static validation failure found after parsing.
type Error struct {
	Msg string
}

func (e *Error) Error() string {
	return "jsonpath validation error: " + e.Msg
}

const maxSafeInteger = 1<<53 - 1

// Validate walks a parsed query tree and returns the first violation it
// finds, or nil if the tree is well-formed.
func Validate(n query.Node) error {
	return validateNode(n)
}

func validateNode(n query.Node) error {
	switch v := n.(type) {
	case query.Index:
		return validateIndexLiteral(v)
	case query.Child:
		if err := validateNode(v.Left); err != nil {
			return err
		}
		return validateNode(v.Right)
	case query.Descendants:
		if err := validateNode(v.Left); err != nil {
			return err
		}
		return validateNode(v.Right)
	case query.Where:
		if err := validateNode(v.Left); err != nil {
			return err
		}
		return validateNode(v.Right)
	case query.WhereNot:
		if err := validateNode(v.Left); err != nil {
			return err
		}
		return validateNode(v.Right)
	case query.Intersect:
		if err := validateNode(v.Left); err != nil {
			return err
		}
		return validateNode(v.Right)
	case query.Union:
		for _, item := range v.Items {
			if err := validateNode(item); err != nil {
				return err
			}
		}
		return nil
	case query.Filter:
		return validateFilterExpr(v.Expr, false)
	default:
		return nil
	}
}

func validateIndexLiteral(idx query.Index) error {
	lit := idx.Literal
	if lit == "" {
		return nil
	}
	if lit == "-0" {
		return &Error{"negative zero (-0) is not a valid array index"}
	}
	if strings.ContainsAny(lit, ".eE") {
		return &Error{fmt.Sprintf("array index %q must be an integer", lit)}
	}
	if math.Abs(float64(idx.Value)) > maxSafeInteger {
		return &Error{fmt.Sprintf("array index %d exceeds the maximum safe integer range", idx.Value)}
	}
	return nil
}

// validateFilterExpr walks a filter expression. inValuePosition is true
// when expr is being used where a concrete value (not a bare boolean) is
// expected -- a comparison operand or a function argument -- the one
// place a bare literal is legal. At the top of a filter body, as a
// direct operand of &&/||/!, a bare literal is a validation error:
// RFC 9535 filters only test truth through comparisons, function calls,
// or path existence.
func validateFilterExpr(expr query.FilterExpr, inValuePosition bool) error {
	switch v := expr.(type) {
	case query.Literal:
		if !inValuePosition {
			return &Error{"a bare literal cannot be used as a filter's boolean expression"}
		}
		return nil
	case query.Comparison:
		if err := validateSingularOperand(v.Left); err != nil {
			return err
		}
		if err := validateSingularOperand(v.Right); err != nil {
			return err
		}
		if err := validateFilterExpr(v.Left, true); err != nil {
			return err
		}
		return validateFilterExpr(v.Right, true)
	case query.LogicalAnd:
		if err := validateFilterExpr(v.Left, false); err != nil {
			return err
		}
		return validateFilterExpr(v.Right, false)
	case query.LogicalOr:
		if err := validateFilterExpr(v.Left, false); err != nil {
			return err
		}
		return validateFilterExpr(v.Right, false)
	case query.LogicalNot:
		return validateFilterExpr(v.Expr, false)
	case query.FunctionCall:
		return validateFunctionCall(v)
	case query.Child:
		if err := validateNode(v.Left); err != nil {
			return err
		}
		return validateNode(v.Right)
	default:
		if n, ok := expr.(query.Node); ok {
			return validateNode(n)
		}
		return nil
	}
}

// validateSingularOperand enforces RFC 9535's restriction that a
// comparison's path operand must be guaranteed to yield at most one
// node: no wildcard, slice, descendant search, union, or intersect
// anywhere in it.
func validateSingularOperand(expr query.FilterExpr) error {
	switch expr.(type) {
	case query.Literal, query.FunctionCall:
		return nil
	}
	if n, ok := expr.(query.Node); ok {
		if !query.IsSingular(n) {
			return &Error{fmt.Sprintf("%s is not a singular query and cannot be used in a comparison", n.String())}
		}
	}
	return nil
}

var functionArity = map[string]int{
	"match":  2,
	"search": 2,
	"length": 1,
	"count":  1,
	"value":  1,
}

func validateFunctionCall(call query.FunctionCall) error {
	arity, known := functionArity[call.Name]
	if !known {
		return &Error{"unknown filter function " + call.Name}
	}
	if len(call.Args) != arity {
		return &Error{fmt.Sprintf("%s() expects %d argument(s), got %d", call.Name, arity, len(call.Args))}
	}
	for _, arg := range call.Args {
		if err := validateFilterExpr(arg, true); err != nil {
			return err
		}
	}
	switch call.Name {
	case "match", "search":
		for _, arg := range call.Args {
			switch a := arg.(type) {
			case query.Literal:
				if _, ok := a.Value.(string); !ok {
					return &Error{call.Name + "() arguments must be strings"}
				}
			default:
				if n, ok := arg.(query.Node); ok && !query.IsSingular(n) {
					return &Error{call.Name + "() arguments must be a singular query or a string literal"}
				}
			}
		}
	}
	return nil
}
