package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quillcms/quill"
	"github.com/quillcms/quill/internal/domain"
	"github.com/quillcms/quill/internal/infrastructure/database/models"
)

const docCacheTTL = 60 // seconds

type DocumentRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

func NewDocumentRepository(db *gorm.DB, mc *memcache.Client) *DocumentRepository {
	return &DocumentRepository{db: db, mc: mc}
}

// FindLatestVersion loads the canonical shape of a document: the
// primary row, superseded by a newer draft snapshot when the collection
// uses drafts. Returns nil without error when no row matches id and
// filter. Unfiltered lookups outside a transaction go through memcache.
func (r *DocumentRepository) FindLatestVersion(ctx context.Context, col domain.CollectionConfig, id string, filter domain.Filter) (*quill.Document, error) {
	db := dbFrom(ctx, r.db)

	cacheable := filter == nil && txFrom(ctx) == nil && r.mc != nil
	cacheKey := docCacheKey(col.Slug, id)
	if cacheable {
		if item, err := r.mc.Get(cacheKey); err == nil {
			var doc quill.Document
			if err := json.Unmarshal(item.Value, &doc); err == nil {
				return &doc, nil
			}
		}
	}

	query := db.WithContext(ctx).
		Where("id = ? AND collection = ?", id, col.Slug)
	for key, value := range filter {
		query = query.Where("data ->> ? = ?", key, fmt.Sprint(value))
	}

	var row models.Document
	err := query.Take(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	doc, err := rowToDocument(row)
	if err != nil {
		return nil, err
	}

	if col.Versions.Drafts {
		var version models.DocumentVersion
		verr := db.WithContext(ctx).
			Where("document_id = ?", id).
			Order("c_date DESC").
			Take(&version).Error
		if verr != nil && verr != gorm.ErrRecordNotFound {
			return nil, verr
		}
		// a draft snapshot newer than the row carries unpublished edits
		if verr == nil && version.CDate.After(row.MDate) {
			var snapshot map[string]any
			if err := json.Unmarshal([]byte(version.Snapshot), &snapshot); err != nil {
				return nil, err
			}
			doc.Fields = snapshot
			doc.Status = quill.Status(version.Status)
		}
	}

	if cacheable {
		if encoded, err := json.Marshal(doc); err == nil {
			_ = r.mc.Set(&memcache.Item{Key: cacheKey, Value: encoded, Expiration: docCacheTTL})
		}
	}

	return doc, nil
}

// Create persists data as a brand-new row. The store assigns the id and
// the creation timestamp; the _status key of data becomes the row
// status.
func (r *DocumentRepository) Create(ctx context.Context, col domain.CollectionConfig, data map[string]any) (*quill.Document, error) {
	db := dbFrom(ctx, r.db)

	fields := quill.CloneFields(data)
	status, _ := fields["_status"].(string)
	delete(fields, "_status")

	encoded, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	row := models.Document{
		ID:         uuid.New().String(),
		Collection: col.Slug,
		Status:     status,
		Data:       string(encoded),
		Locales:    localeCodes(col, fields),
		MDate:      time.Now(),
	}

	if err := db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}

	if r.mc != nil {
		_ = r.mc.Delete(docCacheKey(col.Slug, row.ID))
	}

	return rowToDocument(row)
}

func rowToDocument(row models.Document) (*quill.Document, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(row.Data), &fields); err != nil {
		return nil, err
	}

	return &quill.Document{
		ID:         row.ID,
		Collection: row.Collection,
		Status:     quill.Status(row.Status),
		Fields:     fields,
		CreatedAt:  row.CDate,
		UpdatedAt:  row.MDate,
	}, nil
}

func localeCodes(col domain.CollectionConfig, fields map[string]any) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, cfg := range col.Fields {
		if !cfg.Localized {
			continue
		}
		for locale := range quill.LocalizedMap(fields[cfg.Name]) {
			if !seen[locale] {
				seen[locale] = true
				codes = append(codes, locale)
			}
		}
	}
	return codes
}

func docCacheKey(collection, id string) string {
	return fmt.Sprintf("doc:%s:%s", collection, id)
}
