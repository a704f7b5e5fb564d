package service

import (
	"github.com/quillcms/quill/internal/domain"
)

// CollectionRegistry resolves collection slugs to their configs.
// Collections are registered at boot; hooks are functions, so they
// cannot come from the yaml config.
type CollectionRegistry struct {
	collections map[string]domain.CollectionConfig
}

func NewCollectionRegistry() *CollectionRegistry {
	return &CollectionRegistry{
		collections: make(map[string]domain.CollectionConfig),
	}
}

func (r *CollectionRegistry) Register(col domain.CollectionConfig) {
	r.collections[col.Slug] = col
}

func (r *CollectionRegistry) Get(slug string) (domain.CollectionConfig, bool) {
	col, ok := r.collections[slug]
	return col, ok
}
