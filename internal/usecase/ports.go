package usecase

import (
	"context"

	"github.com/quillcms/quill"
	"github.com/quillcms/quill/internal/domain"
	"github.com/quillcms/quill/internal/fields"
)

// AccessEvaluator decides whether the principal may perform an
// operation on a collection. data carries the candidate document for
// create checks and is nil otherwise.
type AccessEvaluator interface {
	Evaluate(ctx context.Context, principal domain.Principal, kind domain.OperationKind, col domain.CollectionConfig, data map[string]any) (domain.AccessDecision, error)
}

// DocumentStore persists and fetches canonical locale-keyed documents.
// FindLatestVersion returns the latest draft or published shape of the
// row, nil when no row matches id plus filter.
type DocumentStore interface {
	FindLatestVersion(ctx context.Context, col domain.CollectionConfig, id string, filter domain.Filter) (*quill.Document, error)
	Create(ctx context.Context, col domain.CollectionConfig, data map[string]any) (*quill.Document, error)
}

// VersionStore persists a version snapshot of a freshly written row and
// returns the canonical post-version document.
type VersionStore interface {
	Save(ctx context.Context, col domain.CollectionConfig, doc quill.Document, draft bool) (*quill.Document, error)
}

// FieldPipeline applies ordered field-level transforms at the four
// lifecycle points.
type FieldPipeline interface {
	AfterRead(ctx context.Context, args fields.AfterReadArgs) (map[string]any, error)
	BeforeValidate(ctx context.Context, args fields.TransformArgs) (map[string]any, error)
	BeforeChange(ctx context.Context, args fields.TransformArgs) (map[string]any, error)
	AfterChange(ctx context.Context, args fields.TransformArgs) (map[string]any, error)
}

// CollectionHookSet folds the collection's hooks for one phase over the
// accumulator in hc. It must run hooks strictly in declared order and
// keep the prior accumulator when a hook returns nil.
type CollectionHookSet interface {
	Run(ctx context.Context, phase domain.HookPhase, hc *domain.HookContext) (map[string]any, error)
}

// TransactionScope wraps an operation in a storage transaction. Begin
// reports whether this call actually opened one; nested invocations get
// false and must not commit or roll back the outer transaction.
type TransactionScope interface {
	Begin(ctx context.Context) (context.Context, bool, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
