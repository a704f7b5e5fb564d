package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/quillcms/quill/internal/config"
	"github.com/quillcms/quill/internal/domain"
)

func TestAuthAPIKeyResolvesPrincipal(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	svc := NewAuthService([]config.APIKey{
		{Principal: "ci-bot", Hash: string(hash), Roles: []string{"editor"}},
	})

	result, err := svc.AuthAPIKey(context.Background(), "secret-key")
	if err != nil {
		t.Fatalf("auth failed: %v", err)
	}
	if result.Principal.ID != "ci-bot" {
		t.Errorf("expected ci-bot, got %s", result.Principal.ID)
	}
	if len(result.Principal.Roles) != 1 || result.Principal.Roles[0] != "editor" {
		t.Errorf("expected editor role, got %v", result.Principal.Roles)
	}
}

func TestAuthAPIKeyRejectsUnknownKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	svc := NewAuthService([]config.APIKey{
		{Principal: "ci-bot", Hash: string(hash)},
	})

	if _, err := svc.AuthAPIKey(context.Background(), "wrong-key"); err == nil {
		t.Errorf("expected error for unknown key")
	}
}

func TestCollectionRegistry(t *testing.T) {
	registry := NewCollectionRegistry()

	if _, ok := registry.Get("pages"); ok {
		t.Fatalf("empty registry must not resolve anything")
	}

	registry.Register(domain.CollectionConfig{Slug: "pages"})
	registry.Register(domain.CollectionConfig{Slug: "tags"})

	col, ok := registry.Get("pages")
	if !ok || col.Slug != "pages" {
		t.Errorf("expected pages collection, got %v %v", col, ok)
	}
}
