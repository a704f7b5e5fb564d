package usecase

import (
	"context"

	"github.com/quillcms/quill/internal/domain"
	"github.com/quillcms/quill/internal/fields"
)

// GetInput is the entry contract for reading one document.
type GetInput struct {
	ID               string
	Collection       domain.CollectionConfig
	Principal        domain.Principal
	Locale           string
	Depth            int
	OverrideAccess   bool
	ShowHiddenFields bool
	Context          map[string]any
}

// DocumentUsecase serves single-document reads through the same access
// and shaping path the duplicate operation uses for its read half.
type DocumentUsecase struct {
	access       AccessEvaluator
	store        DocumentStore
	pipeline     FieldPipeline
	hooks        CollectionHookSet
	localization domain.Localization
}

func NewDocumentUsecase(
	access AccessEvaluator,
	store DocumentStore,
	pipeline FieldPipeline,
	hooks CollectionHookSet,
	localization domain.Localization,
) *DocumentUsecase {
	return &DocumentUsecase{
		access:       access,
		store:        store,
		pipeline:     pipeline,
		hooks:        hooks,
		localization: localization,
	}
}

func (uc *DocumentUsecase) Get(ctx context.Context, input GetInput) (map[string]any, error) {
	ctx, span := tracer.Start(ctx, "Document.Usecase.Get")
	defer span.End()

	if input.ID == "" {
		return nil, domain.BadRequestError{Message: "missing id"}
	}
	if input.Context == nil {
		input.Context = make(map[string]any)
	}

	col := input.Collection

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
		if filter != nil {
			return nil, domain.ForbiddenError{Message: "read not allowed"}
		}
		return nil, domain.NotFoundError{Resource: "document"}
	}

	locale := input.Locale
	if uc.localization.Enabled() && locale == "" {
		locale = uc.localization.DefaultLocale
	}

	result, err := uc.pipeline.AfterRead(ctx, fields.AfterReadArgs{
		Collection:       col,
		Doc:              composeDocument(doc),
		Locale:           locale,
		FallbackLocale:   uc.localization.Fallback(),
		OverrideAccess:   input.OverrideAccess,
		ShowHiddenFields: input.ShowHiddenFields,
		Depth:            input.Depth,
	})
	if err != nil {
		return nil, err
	}

	result, err = uc.hooks.Run(ctx, domain.HookAfterRead, &domain.HookContext{
		Collection: &col,
		Operation:  domain.OperationRead,
		Phase:      domain.HookAfterRead,
		Principal:  input.Principal,
		Locale:     locale,
		Data:       result,
		Context:    input.Context,
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
