package domain

import (
	"context"
)

// Principal identifies the caller for access evaluation.
type Principal struct {
	ID    string         `json:"id"`
	Roles []string       `json:"roles"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Filter is a row-level predicate attached to a store lookup. Keys are
// field names matched by equality against the stored document data.
type Filter map[string]any

// AccessDecision is what an access evaluator answers for one
// operation. Allowed=true with a nil Filter means unrestricted access;
// a non-nil Filter scopes row lookups to matching rows only.
type AccessDecision struct {
	Allowed bool
	Filter  Filter
}

// CollectionConfig declares a collection: its fields, versioning
// behavior, access policies and lifecycle hooks.
type CollectionConfig struct {
	Slug     string
	Fields   []FieldConfig
	Versions VersionsConfig
	Hooks    CollectionHooks
	Access   map[OperationKind]string // policy name per operation
}

// Field looks up a field config by name.
func (c CollectionConfig) Field(name string) (FieldConfig, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldConfig{}, false
}

type VersionsConfig struct {
	Enabled bool
	Drafts  bool
}

// FieldConfig declares one field of a collection. The optional hooks run
// inside the field pipeline at the matching lifecycle point; a nil
// return leaves the value unchanged.
type FieldConfig struct {
	Name      string
	Localized bool
	Hidden    bool
	Required  bool
	Unique    bool

	BeforeValidate FieldHook
	BeforeChange   FieldHook
	AfterRead      FieldHook
	AfterChange    FieldHook
}

// FieldHookArgs carries the state a field hook sees.
type FieldHookArgs struct {
	Value     any
	Data      map[string]any
	Operation OperationKind
	Duplicate bool
	Locale    string
}

type FieldHook func(ctx context.Context, args FieldHookArgs) (any, error)

// CollectionHooks holds the ordered hook lists per lifecycle phase.
type CollectionHooks struct {
	BeforeOperation []CollectionHook
	BeforeValidate  []CollectionHook
	BeforeChange    []CollectionHook
	AfterRead       []CollectionHook
	AfterChange     []CollectionHook
	AfterOperation  []CollectionHook
}

// Phase returns the hook list for a phase.
func (h CollectionHooks) Phase(phase HookPhase) []CollectionHook {
	switch phase {
	case HookBeforeOperation:
		return h.BeforeOperation
	case HookBeforeValidate:
		return h.BeforeValidate
	case HookBeforeChange:
		return h.BeforeChange
	case HookAfterRead:
		return h.AfterRead
	case HookAfterChange:
		return h.AfterChange
	case HookAfterOperation:
		return h.AfterOperation
	}
	return nil
}

// HookContext is the state handed to a collection hook. Hooks run
// strictly in declared order; each hook sees the previous hook's output
// in Data (or Result for the after phases). Context is request-scoped
// scratch space shared by convention across the whole call chain.
type HookContext struct {
	Collection  *CollectionConfig
	Operation   OperationKind
	Phase       HookPhase
	Principal   Principal
	Locale      string
	Duplicate   bool
	OriginalDoc map[string]any
	Data        map[string]any
	Result      map[string]any
	Context     map[string]any
}

// CollectionHook transforms the accumulator at one lifecycle point. A
// nil map return means "no change"; the caller keeps the prior value.
type CollectionHook func(ctx context.Context, hc *HookContext) (map[string]any, error)
