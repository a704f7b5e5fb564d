package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/quillcms/quill/internal/domain"
	"github.com/quillcms/quill/policy"
)

// defaultCollections registers the built-in collections. Hooks are
// plain functions, so collections live in code rather than yaml.
func defaultCollections() []domain.CollectionConfig {
	return []domain.CollectionConfig{
		{
			Slug: "pages",
			Fields: []domain.FieldConfig{
				{Name: "title", Localized: true, Required: true},
				{Name: "slug", Required: true, Unique: true, BeforeValidate: regenerateSlug},
				{Name: "content", Localized: true},
				{Name: "internalNotes", Hidden: true},
			},
			Versions: domain.VersionsConfig{Enabled: true, Drafts: true},
			Access: map[domain.OperationKind]string{
				domain.OperationRead:   "editor-access",
				domain.OperationCreate: "editor-access",
			},
		},
		{
			Slug: "tags",
			Fields: []domain.FieldConfig{
				{Name: "label", Localized: true, Required: true},
				{Name: "slug", Required: true, Unique: true, BeforeValidate: regenerateSlug},
			},
		},
	}
}

// regenerateSlug keeps slugs unique when a document is duplicated.
func regenerateSlug(ctx context.Context, args domain.FieldHookArgs) (any, error) {
	if !args.Duplicate || args.Operation != domain.OperationCreate {
		return nil, nil
	}
	slug, ok := args.Value.(string)
	if !ok || slug == "" {
		return nil, nil
	}
	suffix := strings.Split(uuid.New().String(), "-")[0]
	return fmt.Sprintf("%s-copy-%s", slug, suffix), nil
}

func defaultPolicies() map[string]policy.PolicyDocument {
	editorCondition := policy.Expr{
		Operator: "Or",
		Args: []policy.Expr{
			{
				Operator: "Contains",
				Args: []policy.Expr{
					{Operator: "Load", Args: []policy.Expr{{Const: "principal.roles"}}},
					{Const: "editor"},
				},
			},
			{
				Operator: "Contains",
				Args: []policy.Expr{
					{Operator: "Load", Args: []policy.Expr{{Const: "principal.roles"}}},
					{Const: "admin"},
				},
			},
		},
	}

	return map[string]policy.PolicyDocument{
		"editor-access": {
			Name: "editor-access",
			Versions: map[string]policy.Policy{
				policy.CurrentVersion: {
					Statements: map[string][]policy.Stmt{
						"read":   {{Emit: "allow", Condition: editorCondition}},
						"create": {{Emit: "allow", Condition: editorCondition}},
					},
				},
			},
		},
	}
}
