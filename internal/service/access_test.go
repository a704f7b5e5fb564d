package service

import (
	"context"
	"testing"

	"github.com/quillcms/quill/internal/domain"
	"github.com/quillcms/quill/policy"
)

func editorPolicy() map[string]policy.PolicyDocument {
	roleCheck := policy.Expr{
		Operator: "Contains",
		Args: []policy.Expr{
			{Operator: "Load", Args: []policy.Expr{{Const: "principal.roles"}}},
			{Const: "editor"},
		},
	}

	return map[string]policy.PolicyDocument{
		"editor-access": {
			Name: "editor-access",
			Versions: map[string]policy.Policy{
				policy.CurrentVersion: {
					Statements: map[string][]policy.Stmt{
						"read": {
							{Emit: "allow", Condition: roleCheck},
						},
						"create": {
							{Emit: "allow", Condition: roleCheck},
						},
						"update": {
							{
								Emit:      "allow",
								Condition: roleCheck,
								Filter:    map[string]any{"owner": "editors"},
							},
						},
					},
				},
			},
		},
	}
}

func guardedCollection() domain.CollectionConfig {
	return domain.CollectionConfig{
		Slug: "pages",
		Access: map[domain.OperationKind]string{
			domain.OperationRead:   "editor-access",
			domain.OperationCreate: "editor-access",
			domain.OperationUpdate: "editor-access",
		},
	}
}

func TestEvaluateOpenWithoutPolicy(t *testing.T) {
	svc := NewAccessService(editorPolicy())
	col := domain.CollectionConfig{Slug: "tags"}

	decision, err := svc.Evaluate(context.Background(), domain.Principal{}, domain.OperationRead, col, nil)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if !decision.Allowed {
		t.Errorf("collections without a policy must be open")
	}
}

func TestEvaluateAllowsMatchingRole(t *testing.T) {
	svc := NewAccessService(editorPolicy())
	principal := domain.Principal{ID: "u1", Roles: []string{"editor"}}

	decision, err := svc.Evaluate(context.Background(), principal, domain.OperationRead, guardedCollection(), nil)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if !decision.Allowed {
		t.Errorf("editor role must be allowed")
	}
	if decision.Filter != nil {
		t.Errorf("read allow carries no filter, got %v", decision.Filter)
	}
}

func TestEvaluateDeniesMissingRole(t *testing.T) {
	svc := NewAccessService(editorPolicy())
	principal := domain.Principal{ID: "u2", Roles: []string{"viewer"}}

	decision, err := svc.Evaluate(context.Background(), principal, domain.OperationRead, guardedCollection(), nil)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if decision.Allowed {
		t.Errorf("viewer role must be denied")
	}
}

func TestEvaluateCarriesRowFilter(t *testing.T) {
	svc := NewAccessService(editorPolicy())
	principal := domain.Principal{ID: "u1", Roles: []string{"editor"}}

	decision, err := svc.Evaluate(context.Background(), principal, domain.OperationUpdate, guardedCollection(), nil)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected allow")
	}
	if decision.Filter["owner"] != "editors" {
		t.Errorf("expected row filter carried through, got %v", decision.Filter)
	}
}

func TestEvaluateUnknownPolicy(t *testing.T) {
	svc := NewAccessService(nil)
	col := domain.CollectionConfig{
		Slug: "pages",
		Access: map[domain.OperationKind]string{
			domain.OperationRead: "missing-policy",
		},
	}

	_, err := svc.Evaluate(context.Background(), domain.Principal{}, domain.OperationRead, col, nil)
	if err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestEvaluateCachesDataIndependentDecision(t *testing.T) {
	policies := editorPolicy()
	svc := NewAccessService(policies)
	principal := domain.Principal{ID: "u1", Roles: []string{"editor"}}

	first, err := svc.Evaluate(context.Background(), principal, domain.OperationRead, guardedCollection(), nil)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	// swap the policy set out from under the service; the cached
	// decision for the same principal and operation must still win
	delete(policies, "editor-access")

	second, err := svc.Evaluate(context.Background(), principal, domain.OperationRead, guardedCollection(), nil)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if first.Allowed != second.Allowed {
		t.Errorf("expected cached decision, got %v then %v", first, second)
	}
}

func TestEvaluateRoleChangeInvalidatesCachedDecision(t *testing.T) {
	svc := NewAccessService(editorPolicy())

	editor := domain.Principal{ID: "u1", Roles: []string{"editor"}}
	decision, err := svc.Evaluate(context.Background(), editor, domain.OperationRead, guardedCollection(), nil)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected allow for editor")
	}

	// same principal id, demoted roles: the cached allow must not apply
	demoted := domain.Principal{ID: "u1", Roles: []string{"viewer"}}
	decision, err = svc.Evaluate(context.Background(), demoted, domain.OperationRead, guardedCollection(), nil)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if decision.Allowed {
		t.Errorf("demoted principal must be re-evaluated, not served the cached allow")
	}
}

func TestEvaluateDataDependentNotCached(t *testing.T) {
	svc := NewAccessService(editorPolicy())
	principal := domain.Principal{ID: "u1", Roles: []string{"editor"}}

	data := map[string]any{"title": "Hello"}
	decision, err := svc.Evaluate(context.Background(), principal, domain.OperationCreate, guardedCollection(), data)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if !decision.Allowed {
		t.Errorf("expected allow for create with data")
	}
}
