package repository

import (
	"slices"
	"testing"
	"time"

	"github.com/quillcms/quill/internal/domain"
	"github.com/quillcms/quill/internal/infrastructure/database/models"
)

func TestRowToDocument(t *testing.T) {
	now := time.Now()
	row := models.Document{
		ID:         "doc-1",
		Collection: "pages",
		Status:     "draft",
		Data:       `{"title":{"en":"Hello"},"slug":"hello"}`,
		CDate:      now,
		MDate:      now,
	}

	doc, err := rowToDocument(row)
	if err != nil {
		t.Fatalf("rowToDocument failed: %v", err)
	}
	if doc.ID != "doc-1" || doc.Status != "draft" {
		t.Errorf("unexpected document: %+v", doc)
	}
	if doc.Fields["slug"] != "hello" {
		t.Errorf("expected fields decoded, got %v", doc.Fields)
	}
}

func TestRowToDocumentBadData(t *testing.T) {
	if _, err := rowToDocument(models.Document{Data: "not-json"}); err == nil {
		t.Errorf("expected decode error")
	}
}

func TestLocaleCodes(t *testing.T) {
	col := domain.CollectionConfig{
		Fields: []domain.FieldConfig{
			{Name: "title", Localized: true},
			{Name: "body", Localized: true},
			{Name: "slug"},
		},
	}
	fields := map[string]any{
		"title": map[string]any{"en": "Hello", "ja": "こんにちは"},
		"body":  map[string]any{"en": "text"},
		"slug":  "hello",
	}

	codes := localeCodes(col, fields)
	slices.Sort(codes)
	if len(codes) != 2 || codes[0] != "en" || codes[1] != "ja" {
		t.Errorf("expected deduplicated locale codes, got %v", codes)
	}
}

func TestDocCacheKey(t *testing.T) {
	if docCacheKey("pages", "doc-1") != "doc:pages:doc-1" {
		t.Errorf("unexpected cache key: %s", docCacheKey("pages", "doc-1"))
	}
}
