package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quillcms/quill"
	"github.com/quillcms/quill/internal/domain"
	"github.com/quillcms/quill/internal/fields"
	"github.com/quillcms/quill/internal/service"
	"github.com/quillcms/quill/internal/usecase"
)

// --- mocks ---

type mockAccess struct{}

func (m *mockAccess) Evaluate(ctx context.Context, principal domain.Principal, kind domain.OperationKind, col domain.CollectionConfig, data map[string]any) (domain.AccessDecision, error) {
	return domain.AccessDecision{Allowed: true}, nil
}

type mockStore struct {
	doc *quill.Document
}

func (m *mockStore) FindLatestVersion(ctx context.Context, col domain.CollectionConfig, id string, filter domain.Filter) (*quill.Document, error) {
	if m.doc == nil || m.doc.ID != id {
		return nil, nil
	}
	return m.doc, nil
}

func (m *mockStore) Create(ctx context.Context, col domain.CollectionConfig, data map[string]any) (*quill.Document, error) {
	fieldsCopy := quill.CloneFields(data)
	status, _ := fieldsCopy["_status"].(string)
	delete(fieldsCopy, "_status")

	return &quill.Document{
		ID:         "dup-1",
		Collection: col.Slug,
		Status:     quill.Status(status),
		Fields:     fieldsCopy,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}, nil
}

type mockVersions struct{}

func (m *mockVersions) Save(ctx context.Context, col domain.CollectionConfig, doc quill.Document, draft bool) (*quill.Document, error) {
	out := doc
	out.Status = quill.StatusPublished
	if draft {
		out.Status = quill.StatusDraft
	}
	return &out, nil
}

type mockTx struct{}

func (m *mockTx) Begin(ctx context.Context) (context.Context, bool, error) { return ctx, true, nil }
func (m *mockTx) Commit(ctx context.Context) error                         { return nil }
func (m *mockTx) Rollback(ctx context.Context) error                       { return nil }

// --- fixtures ---

func newTestHandler(store *mockStore) *Handler {
	localization := domain.Localization{
		Locales:        []string{"en", "ja"},
		DefaultLocale:  "en",
		FallbackLocale: "en",
	}

	registry := service.NewCollectionRegistry()
	registry.Register(domain.CollectionConfig{
		Slug: "pages",
		Fields: []domain.FieldConfig{
			{Name: "title", Localized: true, Required: true},
		},
		Versions: domain.VersionsConfig{Enabled: true, Drafts: true},
	})

	pipeline := fields.NewPipeline(localization)
	hooks := service.NewHookRunner()

	duplicateUC := usecase.NewDuplicateUsecase(
		&mockAccess{}, store, &mockVersions{}, pipeline, hooks, &mockTx{}, localization,
	)
	documentUC := usecase.NewDocumentUsecase(
		&mockAccess{}, store, pipeline, hooks, localization,
	)

	return NewHandler(domain.Config{FQDN: "cms.example.com"}, registry, duplicateUC, documentUC, nil)
}

func storedPage() *quill.Document {
	return &quill.Document{
		ID:         "page-1",
		Collection: "pages",
		Status:     quill.StatusPublished,
		Fields: map[string]any{
			"title": map[string]any{"en": "Hello", "ja": "こんにちは"},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// --- tests ---

func TestHandleDuplicate(t *testing.T) {
	h := newTestHandler(&mockStore{doc: storedPage()})

	e := echo.New()
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodPost, "/collections/pages/page-1/duplicate?locale=ja", nil)
	res := httptest.NewRecorder()

	e.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body["id"] != "dup-1" {
		t.Errorf("expected new id, got %v", body["id"])
	}
	if body["_status"] != "draft" {
		t.Errorf("expected draft status, got %v", body["_status"])
	}
	if body["title"] != "こんにちは" {
		t.Errorf("expected ja title, got %v", body["title"])
	}
}

func TestHandleDuplicateUnknownCollection(t *testing.T) {
	h := newTestHandler(&mockStore{})

	e := echo.New()
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodPost, "/collections/nope/page-1/duplicate", nil)
	res := httptest.NewRecorder()

	e.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestHandleDuplicateMissingDocument(t *testing.T) {
	h := newTestHandler(&mockStore{})

	e := echo.New()
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodPost, "/collections/pages/missing/duplicate", nil)
	res := httptest.NewRecorder()

	e.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestHandleDuplicateInvalidDraftParam(t *testing.T) {
	h := newTestHandler(&mockStore{doc: storedPage()})

	e := echo.New()
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodPost, "/collections/pages/page-1/duplicate?draft=maybe", nil)
	res := httptest.NewRecorder()

	e.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestHandleRealtimeWithoutSignal(t *testing.T) {
	h := newTestHandler(&mockStore{})

	e := echo.New()
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/realtime", nil)
	res := httptest.NewRecorder()

	e.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when realtime is not configured, got %d", res.Code)
	}
}

func TestHandleGet(t *testing.T) {
	h := newTestHandler(&mockStore{doc: storedPage()})

	e := echo.New()
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/collections/pages/page-1?locale=en", nil)
	res := httptest.NewRecorder()

	e.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body["title"] != "Hello" {
		t.Errorf("expected en title, got %v", body["title"])
	}
	if body["id"] != "page-1" {
		t.Errorf("expected source id, got %v", body["id"])
	}
}
