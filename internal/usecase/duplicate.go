package usecase

import (
	"context"

	"go.opentelemetry.io/otel"

	"github.com/quillcms/quill"
	"github.com/quillcms/quill/internal/domain"
	"github.com/quillcms/quill/internal/fields"
)

var tracer = otel.Tracer("usecase")

// DuplicateInput is the entry contract for the duplicate operation.
// Draft defaults to true when nil.
type DuplicateInput struct {
	ID               string
	Collection       domain.CollectionConfig
	Principal        domain.Principal
	Locale           string
	Depth            int
	Draft            *bool
	OverrideAccess   bool
	ShowHiddenFields bool
	Context          map[string]any
}

// DuplicateUsecase copies an existing document into a brand-new row,
// funneling every configured locale through the field pipeline and the
// collection hooks exactly once, inside a single transaction.
type DuplicateUsecase struct {
	access       AccessEvaluator
	store        DocumentStore
	versions     VersionStore
	pipeline     FieldPipeline
	hooks        CollectionHookSet
	tx           TransactionScope
	localization domain.Localization
}

func NewDuplicateUsecase(
	access AccessEvaluator,
	store DocumentStore,
	versions VersionStore,
	pipeline FieldPipeline,
	hooks CollectionHookSet,
	tx TransactionScope,
	localization domain.Localization,
) *DuplicateUsecase {
	return &DuplicateUsecase{
		access:       access,
		store:        store,
		versions:     versions,
		pipeline:     pipeline,
		hooks:        hooks,
		tx:           tx,
		localization: localization,
	}
}

func (uc *DuplicateUsecase) Duplicate(ctx context.Context, input DuplicateInput) (map[string]any, error) {
	ctx, span := tracer.Start(ctx, "Duplicate.Usecase.Duplicate")
	defer span.End()

	if input.ID == "" {
		return nil, domain.BadRequestError{Message: "missing id"}
	}

	ctx, didOpen, err := uc.tx.Begin(ctx)
	if err != nil {
		return nil, err
	}

	result, err := uc.duplicate(ctx, input)
	if err != nil {
		span.RecordError(err)
		if didOpen {
			_ = uc.tx.Rollback(ctx)
		}
		// errors propagate unwrapped; rollback must not mask them
		return nil, err
	}

	if didOpen {
		if err := uc.tx.Commit(ctx); err != nil {
			_ = uc.tx.Rollback(ctx)
			return nil, err
		}
	}

	return result, nil
}

func (uc *DuplicateUsecase) duplicate(ctx context.Context, input DuplicateInput) (map[string]any, error) {
	col := input.Collection
	if input.Context == nil {
		input.Context = make(map[string]any)
	}

	_, err := uc.hooks.Run(ctx, domain.HookBeforeOperation, &domain.HookContext{
		Collection: &col,
		Operation:  domain.OperationCreate,
		Phase:      domain.HookBeforeOperation,
		Principal:  input.Principal,
		Duplicate:  true,
		Context:    input.Context,
	})
	if err != nil {
		return nil, err
	}

	var filter domain.Filter
	if !input.OverrideAccess {
		decision, err := uc.access.Evaluate(ctx, input.Principal, domain.OperationRead, col, nil)
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			return nil, domain.ForbiddenError{Message: "read not allowed"}
		}
		filter = decision.Filter
	}

	doc, err := uc.store.FindLatestVersion(ctx, col, input.ID, filter)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		// same missing row, different answer: a row-level filter must
		// not leak whether the document exists
		if filter != nil {
			return nil, domain.ForbiddenError{Message: "read not allowed"}
		}
		return nil, domain.NotFoundError{Resource: "document"}
	}

	raw := quill.CloneFields(doc.Fields)
	if raw == nil {
		// rows with a null data column fetch as nil fields
		raw = make(map[string]any)
	}

	saveAsDraft := col.Versions.Drafts && (input.Draft == nil || *input.Draft)
	if saveAsDraft {
		raw["_status"] = string(quill.StatusDraft)
	} else if doc.Status != "" {
		raw["_status"] = string(doc.Status)
	}

	locales, requestLocale := uc.localeSequence(input.Locale)
	fallback := uc.localization.Fallback()
	merged := make(map[string]any)

	for i, locale := range locales {
		operation := domain.OperationUpdate
		if i == 0 {
			operation = domain.OperationCreate
		}

		// internal re-projection of the source, not a user-facing read
		view, err := uc.pipeline.AfterRead(ctx, fields.AfterReadArgs{
			Collection:       col,
			Doc:              raw,
			Locale:           locale,
			FallbackLocale:   fallback,
			OverrideAccess:   true,
			ShowHiddenFields: true,
		})
		if err != nil {
			return nil, err
		}

		if i == 0 && !input.OverrideAccess {
			decision, err := uc.access.Evaluate(ctx, input.Principal, domain.OperationCreate, col, view)
			if err != nil {
				return nil, err
			}
			if !decision.Allowed {
				return nil, domain.ForbiddenError{Message: "create not allowed"}
			}
		}

		data, err := uc.pipeline.BeforeValidate(ctx, fields.TransformArgs{
			Collection: col,
			Data:       view,
			Operation:  operation,
			Duplicate:  true,
			Locale:     locale,
		})
		if err != nil {
			return nil, err
		}

		data, err = uc.hooks.Run(ctx, domain.HookBeforeValidate, &domain.HookContext{
			Collection:  &col,
			Operation:   operation,
			Phase:       domain.HookBeforeValidate,
			Principal:   input.Principal,
			Locale:      locale,
			Duplicate:   true,
			OriginalDoc: doc.Fields,
			Data:        data,
			Context:     input.Context,
		})
		if err != nil {
			return nil, err
		}

		data, err = uc.hooks.Run(ctx, domain.HookBeforeChange, &domain.HookContext{
			Collection:  &col,
			Operation:   operation,
			Phase:       domain.HookBeforeChange,
			Principal:   input.Principal,
			Locale:      locale,
			Duplicate:   true,
			OriginalDoc: doc.Fields,
			Data:        data,
			Context:     input.Context,
		})
		if err != nil {
			return nil, err
		}

		// validation already ran on the create pass, and draft saves
		// intentionally allow incomplete data
		data, err = uc.pipeline.BeforeChange(ctx, fields.TransformArgs{
			Collection:     col,
			Data:           data,
			Operation:      operation,
			Duplicate:      true,
			Locale:         locale,
			SkipValidation: saveAsDraft || operation == domain.OperationUpdate,
		})
		if err != nil {
			return nil, err
		}

		fields.MergeLocale(col, merged, data, locale)
	}

	created, err := uc.store.Create(ctx, col, merged)
	if err != nil {
		return nil, err
	}

	authoritative := created
	if col.Versions.Enabled {
		versioned, err := uc.versions.Save(ctx, col, *created, saveAsDraft)
		if err != nil {
			return nil, err
		}
		// keep the primary row's fresh timestamp on the snapshot
		versioned.CreatedAt = created.CreatedAt
		authoritative = versioned
	}

	result, err := uc.pipeline.AfterRead(ctx, fields.AfterReadArgs{
		Collection:       col,
		Doc:              composeDocument(authoritative),
		Locale:           requestLocale,
		FallbackLocale:   fallback,
		OverrideAccess:   input.OverrideAccess,
		ShowHiddenFields: input.ShowHiddenFields,
		Depth:            input.Depth,
	})
	if err != nil {
		return nil, err
	}

	result, err = uc.hooks.Run(ctx, domain.HookAfterRead, &domain.HookContext{
		Collection: &col,
		Operation:  domain.OperationCreate,
		Phase:      domain.HookAfterRead,
		Principal:  input.Principal,
		Locale:     requestLocale,
		Duplicate:  true,
		Data:       result,
		Context:    input.Context,
	})
	if err != nil {
		return nil, err
	}

	result, err = uc.pipeline.AfterChange(ctx, fields.TransformArgs{
		Collection:  col,
		Data:        result,
		Operation:   domain.OperationCreate,
		Duplicate:   true,
		Locale:      requestLocale,
		PreviousDoc: map[string]any{},
	})
	if err != nil {
		return nil, err
	}

	result, err = uc.hooks.Run(ctx, domain.HookAfterChange, &domain.HookContext{
		Collection: &col,
		Operation:  domain.OperationCreate,
		Phase:      domain.HookAfterChange,
		Principal:  input.Principal,
		Locale:     requestLocale,
		Duplicate:  true,
		Data:       result,
		Context:    input.Context,
	})
	if err != nil {
		return nil, err
	}

	final, err := uc.hooks.Run(ctx, domain.HookAfterOperation, &domain.HookContext{
		Collection: &col,
		Operation:  domain.OperationCreate,
		Phase:      domain.HookAfterOperation,
		Principal:  input.Principal,
		Locale:     requestLocale,
		Duplicate:  true,
		Data:       result,
		Result:     result,
		Context:    input.Context,
	})
	if err != nil {
		return nil, err
	}

	return final, nil
}

// localeSequence orders the configured locales with the request locale
// first. The first entry is processed as a create, the rest as updates
// against the just-created row; swapping that order would run
// validation against the wrong locale.
func (uc *DuplicateUsecase) localeSequence(requested string) ([]string, string) {
	if !uc.localization.Enabled() {
		return []string{""}, ""
	}

	requestLocale := requested
	if requestLocale == "" {
		requestLocale = uc.localization.DefaultLocale
	}

	locales := []string{requestLocale}
	for _, locale := range uc.localization.Locales {
		if locale != requestLocale {
			locales = append(locales, locale)
		}
	}
	return locales, requestLocale
}

// composeDocument flattens a stored document into the working map the
// pipeline operates on: field data plus the system keys.
func composeDocument(doc *quill.Document) map[string]any {
	out := quill.CloneFields(doc.Fields)
	if out == nil {
		out = make(map[string]any)
	}
	out["id"] = doc.ID
	if doc.Status != "" {
		out["_status"] = string(doc.Status)
	}
	out["createdAt"] = doc.CreatedAt
	out["updatedAt"] = doc.UpdatedAt
	return out
}
