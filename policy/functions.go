package policy

import (
	"fmt"
)

// CurrentVersion is the policy document format this engine evaluates.
const CurrentVersion = "2025-06-01"

// AccessDecision is the outcome of evaluating one action against a
// policy document. Filter is only populated when an allow statement
// carried a row filter.
type AccessDecision struct {
	Conclusion Conclusion
	Filter     map[string]any
}

func SummarizeConclusion(conclusions []Conclusion, defaultAllow bool) bool {
	result := UNSET
	for _, c := range conclusions {
		switch c {
		case ALLOW:
			return true
		case DENY:
			return false
		default:
			result = result.Or(c)
		}
	}
	if result == UNSET {
		return defaultAllow
	}
	return result == ALLOW
}

// EvaluateAccess runs every statement for the action and folds the
// emitted conclusions. When the winning statement attaches a row
// filter, the caller must scope its lookup with it instead of granting
// unconditional access.
func EvaluateAccess(policydoc PolicyDocument, ctx RequestContext, action string) (AccessDecision, error) {

	policy, ok := policydoc.Versions[CurrentVersion]
	if !ok {
		return AccessDecision{Conclusion: UNSET}, fmt.Errorf("unsupported policy version")
	}

	statements, ok := policy.Statements[action]
	if !ok {
		// No statements for this action
		return AccessDecision{Conclusion: UNSET}, nil
	}

	decision := AccessDecision{Conclusion: UNSET}
	for _, stmt := range statements {
		evalResult, err := Eval(ctx, stmt.Condition)
		if err != nil {
			continue
		}

		if evalResult.Result == true {
			emit := ParseConclusion(stmt.Emit)
			decision.Conclusion = decision.Conclusion.Or(emit)
			if emit == ALLOW && stmt.Filter != nil {
				decision.Filter = stmt.Filter
			}
		}
	}
	return decision, nil
}

func Eval(ctx RequestContext, expr Expr) (EvalResult, error) {

	if expr.Const != nil {
		return EvalResult{
			Operator: "Const",
			Result:   expr.Const,
		}, nil
	}

	args := make([]any, 0, len(expr.Args))
	for _, arg := range expr.Args {
		result, err := Eval(ctx, arg)
		if err != nil {
			return EvalResult{
				Operator: expr.Operator,
				Error:    err.Error(),
			}, err
		}
		args = append(args, result.Result)
	}

	if operatorFunc, exists := operators[expr.Operator]; exists {
		return operatorFunc(ctx, args)
	}

	err := fmt.Errorf("unknown operator: %s", expr.Operator)
	return EvalResult{
		Operator: expr.Operator,
		Error:    err.Error(),
	}, err
}
