package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
	"gorm.io/gorm"

	"github.com/quillcms/quill"
	"github.com/quillcms/quill/internal/domain"
	"github.com/quillcms/quill/internal/infrastructure/database/models"
)

type VersionRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

func NewVersionRepository(db *gorm.DB, mc *memcache.Client) *VersionRepository {
	return &VersionRepository{db: db, mc: mc}
}

// Save writes one version snapshot for the given row and returns the
// canonical post-version document. The snapshot digest deduplicates
// identical content across versions.
func (r *VersionRepository) Save(ctx context.Context, col domain.CollectionConfig, doc quill.Document, draft bool) (*quill.Document, error) {
	db := dbFrom(ctx, r.db)

	snapshot, err := json.Marshal(doc.Fields)
	if err != nil {
		return nil, err
	}

	status := quill.StatusPublished
	if draft {
		status = quill.StatusDraft
	}

	version := models.DocumentVersion{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		Collection: col.Slug,
		Status:     string(status),
		Snapshot:   string(snapshot),
		Digest:     fmt.Sprintf("%016x", xxh3.Hash(snapshot)),
	}

	if err := db.WithContext(ctx).Create(&version).Error; err != nil {
		return nil, err
	}

	if r.mc != nil {
		_ = r.mc.Delete(docCacheKey(col.Slug, doc.ID))
	}

	out := doc
	out.Status = status
	return &out, nil
}
