package policy

import (
	"testing"
)

func adminDoc(filter map[string]any) PolicyDocument {
	return PolicyDocument{
		Name: "pages",
		Versions: map[string]Policy{
			CurrentVersion: {
				Statements: map[string][]Stmt{
					"read": {
						{
							Emit: "allow",
							Condition: Expr{
								Operator: "Contains",
								Args: []Expr{
									{Operator: "Load", Args: []Expr{{Const: "principal.roles"}}},
									{Const: "admin"},
								},
							},
							Filter: filter,
						},
					},
				},
			},
		},
	}
}

func TestEvalRoleCheck(t *testing.T) {
	ctx := RequestContext{
		Principal: map[string]any{
			"id":    "user-1",
			"roles": []any{"editor", "admin"},
		},
	}

	expr := Expr{
		Operator: "Contains",
		Args: []Expr{
			{Operator: "Load", Args: []Expr{{Const: "principal.roles"}}},
			{Const: "admin"},
		},
	}

	result, err := Eval(ctx, expr)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.Result != true {
		t.Fatalf("expected true got %v", result.Result)
	}
}

func TestEvaluateAccessAllow(t *testing.T) {
	ctx := RequestContext{
		Principal: map[string]any{"roles": []any{"admin"}},
	}

	decision, err := EvaluateAccess(adminDoc(nil), ctx, "read")
	if err != nil {
		t.Fatalf("EvaluateAccess failed: %v", err)
	}
	if decision.Conclusion != ALLOW {
		t.Fatalf("expected ALLOW got %v", decision.Conclusion)
	}
	if decision.Filter != nil {
		t.Fatalf("expected no filter")
	}
}

func TestEvaluateAccessCarriesFilter(t *testing.T) {
	ctx := RequestContext{
		Principal: map[string]any{"roles": []any{"admin"}},
	}

	filter := map[string]any{"owner": "user-1"}
	decision, err := EvaluateAccess(adminDoc(filter), ctx, "read")
	if err != nil {
		t.Fatalf("EvaluateAccess failed: %v", err)
	}
	if decision.Conclusion != ALLOW {
		t.Fatalf("expected ALLOW got %v", decision.Conclusion)
	}
	if decision.Filter == nil || decision.Filter["owner"] != "user-1" {
		t.Fatalf("expected filter to carry owner predicate, got %v", decision.Filter)
	}
}

func TestEvaluateAccessNoStatements(t *testing.T) {
	ctx := RequestContext{Principal: map[string]any{"roles": []any{"admin"}}}

	decision, err := EvaluateAccess(adminDoc(nil), ctx, "delete")
	if err != nil {
		t.Fatalf("EvaluateAccess failed: %v", err)
	}
	if decision.Conclusion != UNSET {
		t.Fatalf("expected UNSET got %v", decision.Conclusion)
	}
}

func TestSummarizeConclusion(t *testing.T) {
	if !SummarizeConclusion([]Conclusion{ALLOW, DENY}, false) {
		t.Fatalf("first ALLOW should win")
	}
	if SummarizeConclusion([]Conclusion{DENY, ALLOW}, true) {
		t.Fatalf("first DENY should win")
	}
	if !SummarizeConclusion(nil, true) {
		t.Fatalf("empty conclusions should fall back to default")
	}
}
