package service

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/quillcms/quill/internal/config"
	"github.com/quillcms/quill/internal/domain"
)

type AuthService struct {
	keys []config.APIKey
}

func NewAuthService(keys []config.APIKey) *AuthService {
	return &AuthService{
		keys: keys,
	}
}

type AuthResult struct {
	Principal domain.Principal
}

// AuthAPIKey resolves a raw API key to its configured principal. Keys
// are stored as bcrypt hashes, so every configured key is compared.
func (s *AuthService) AuthAPIKey(ctx context.Context, key string) (*AuthResult, error) {
	_, span := tracer.Start(ctx, "Auth.Service.AuthAPIKey")
	defer span.End()

	for _, candidate := range s.keys {
		if bcrypt.CompareHashAndPassword([]byte(candidate.Hash), []byte(key)) != nil {
			continue
		}
		return &AuthResult{
			Principal: domain.Principal{
				ID:    candidate.Principal,
				Roles: candidate.Roles,
			},
		}, nil
	}

	err := fmt.Errorf("unknown api key")
	span.RecordError(errors.Wrap(err, "AuthService.AuthAPIKey: no configured key matched"))
	return nil, err
}
