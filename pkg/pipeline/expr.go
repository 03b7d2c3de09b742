package pipeline

import (
	"github.com/Knetic/govaluate"

	"github.com/viewstream/viewstream/log"
)

// Expr compiles a govaluate expression once and returns a ComputeFunc that
// evaluates it against an item's properties on every call — mirroring how
// graft's CalcOperator (pkg/graft/operators/op_calc.go) embeds govaluate
// for arithmetic over resolved operands, except here the item's own
// properties are passed in directly as named variables rather than
// pre-substituted into the expression text.
func Expr(expression string) (ComputeFunc, error) {
	compiled, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return nil, err
	}
	return func(props Item) interface{} {
		result, err := compiled.Evaluate(props)
		if err != nil {
			log.DEBUG("expr: evaluating %q failed: %s", expression, err)
			return nil
		}
		return result
	}, nil
}

// ExprPredicate is Expr's Filter-flavored twin: the compiled expression
// must evaluate to a bool, and anything else (including an evaluation
// error) is treated as "does not pass."
func ExprPredicate(expression string) (Predicate, error) {
	compiled, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return nil, err
	}
	return func(props Item) bool {
		result, err := compiled.Evaluate(props)
		if err != nil {
			log.DEBUG("exprPredicate: evaluating %q failed: %s", expression, err)
			return false
		}
		ok, _ := result.(bool)
		return ok
	}, nil
}
