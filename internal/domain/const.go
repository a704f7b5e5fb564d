package domain

const (
	PrincipalCtxKey = "quill-principal"
)

const (
	PrincipalHeader = "quill-principal"
	APIKeyHeader    = "authorization"
)

// OperationKind tags which lifecycle operation is running. The duplicate
// flow processes its first locale as a create and every subsequent
// locale as an update against the just-created row.
type OperationKind string

const (
	OperationCreate    OperationKind = "create"
	OperationRead      OperationKind = "read"
	OperationUpdate    OperationKind = "update"
	OperationDelete    OperationKind = "delete"
	OperationDuplicate OperationKind = "duplicate"
)

// HookPhase identifies a collection-hook lifecycle point.
type HookPhase string

const (
	HookBeforeOperation HookPhase = "beforeOperation"
	HookBeforeValidate  HookPhase = "beforeValidate"
	HookBeforeChange    HookPhase = "beforeChange"
	HookAfterRead       HookPhase = "afterRead"
	HookAfterChange     HookPhase = "afterChange"
	HookAfterOperation  HookPhase = "afterOperation"
)
