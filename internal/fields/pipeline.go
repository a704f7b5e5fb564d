package fields

import (
	"context"
	"fmt"

	"github.com/quillcms/quill"
	"github.com/quillcms/quill/internal/domain"
)

// Pipeline applies field-level transforms at the four lifecycle points.
// It owns the structural work (locale resolution, hidden-field
// stripping, required-field validation) and dispatches the per-field
// hooks declared on the collection config.
type Pipeline struct {
	localization domain.Localization
}

func NewPipeline(localization domain.Localization) *Pipeline {
	return &Pipeline{localization: localization}
}

// AfterReadArgs shapes a raw locale-keyed document into the view for a
// single locale. Locale is empty when localization is disabled.
type AfterReadArgs struct {
	Collection       domain.CollectionConfig
	Doc              map[string]any
	Locale           string
	FallbackLocale   string
	OverrideAccess   bool
	ShowHiddenFields bool
	Depth            int
}

type TransformArgs struct {
	Collection     domain.CollectionConfig
	Data           map[string]any
	Operation      domain.OperationKind
	Locale         string
	Duplicate      bool
	SkipValidation bool
	PreviousDoc    map[string]any
}

func (p *Pipeline) AfterRead(ctx context.Context, args AfterReadArgs) (map[string]any, error) {
	view := make(map[string]any, len(args.Doc))

	for key, value := range args.Doc {
		cfg, known := args.Collection.Field(key)
		if !known {
			// system keys (_status, timestamps) pass through untouched
			view[key] = value
			continue
		}

		if cfg.Hidden && !args.ShowHiddenFields {
			continue
		}

		if cfg.Localized && args.Locale != "" {
			resolved, ok := quill.ResolveLocalized(value, args.Locale, args.FallbackLocale)
			if !ok {
				continue
			}
			value = resolved
		}

		if cfg.AfterRead != nil {
			out, err := cfg.AfterRead(ctx, domain.FieldHookArgs{
				Value:     value,
				Data:      view,
				Operation: domain.OperationRead,
				Locale:    args.Locale,
			})
			if err != nil {
				return nil, err
			}
			if out != nil {
				value = out
			}
		}

		view[key] = value
	}

	return view, nil
}

func (p *Pipeline) BeforeValidate(ctx context.Context, args TransformArgs) (map[string]any, error) {
	data := quill.CloneFields(args.Data)

	for _, cfg := range args.Collection.Fields {
		if cfg.BeforeValidate == nil {
			continue
		}
		out, err := cfg.BeforeValidate(ctx, domain.FieldHookArgs{
			Value:     data[cfg.Name],
			Data:      data,
			Operation: args.Operation,
			Duplicate: args.Duplicate,
			Locale:    args.Locale,
		})
		if err != nil {
			return nil, err
		}
		if out != nil {
			data[cfg.Name] = out
		}
	}

	return data, nil
}

func (p *Pipeline) BeforeChange(ctx context.Context, args TransformArgs) (map[string]any, error) {
	data := quill.CloneFields(args.Data)

	for _, cfg := range args.Collection.Fields {
		if cfg.BeforeChange == nil {
			continue
		}
		out, err := cfg.BeforeChange(ctx, domain.FieldHookArgs{
			Value:     data[cfg.Name],
			Data:      data,
			Operation: args.Operation,
			Duplicate: args.Duplicate,
			Locale:    args.Locale,
		})
		if err != nil {
			return nil, err
		}
		if out != nil {
			data[cfg.Name] = out
		}
	}

	if !args.SkipValidation {
		if err := p.validate(args.Collection, data); err != nil {
			return nil, err
		}
	}

	return data, nil
}

func (p *Pipeline) AfterChange(ctx context.Context, args TransformArgs) (map[string]any, error) {
	data := quill.CloneFields(args.Data)

	for _, cfg := range args.Collection.Fields {
		if cfg.AfterChange == nil {
			continue
		}
		out, err := cfg.AfterChange(ctx, domain.FieldHookArgs{
			Value:     data[cfg.Name],
			Data:      data,
			Operation: args.Operation,
			Duplicate: args.Duplicate,
			Locale:    args.Locale,
		})
		if err != nil {
			return nil, err
		}
		if out != nil {
			data[cfg.Name] = out
		}
	}

	return data, nil
}

func (p *Pipeline) validate(col domain.CollectionConfig, data map[string]any) error {
	for _, cfg := range col.Fields {
		if !cfg.Required {
			continue
		}
		v, ok := data[cfg.Name]
		if !ok || v == nil || v == "" {
			return domain.BadRequestError{Message: fmt.Sprintf("field %s is required", cfg.Name)}
		}
	}
	return nil
}

// MergeLocale folds one locale's processed view back into the raw
// locale-keyed accumulator. Localized fields land under their locale
// key; everything else is written directly.
func MergeLocale(col domain.CollectionConfig, merged map[string]any, data map[string]any, locale string) {
	for key, value := range data {
		cfg, known := col.Field(key)
		if !known || !cfg.Localized || locale == "" {
			merged[key] = value
			continue
		}

		slot, ok := merged[key].(map[string]any)
		if !ok {
			slot = make(map[string]any)
			merged[key] = slot
		}
		slot[locale] = value
	}
}
