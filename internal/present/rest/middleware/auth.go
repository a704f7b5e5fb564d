package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/quillcms/quill/internal/domain"
	"github.com/quillcms/quill/internal/service"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	auth *service.AuthService
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		auth: auth,
	}
}

// IdentifyPrincipal resolves the Bearer API key to a principal and
// stores it on the request context. Requests without a usable key stay
// anonymous; access policies decide what anonymous may do.
func (s *AuthMiddleware) IdentifyPrincipal(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyPrincipal")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")

		if authHeader != "" {
			split := strings.Split(authHeader, " ")
			if len(split) != 2 {
				span.RecordError(fmt.Errorf("invalid authentication header"))
				goto skipCheckAuthorization
			}

			{
				authType, key := split[0], split[1]
				if authType != "Bearer" {
					span.RecordError(fmt.Errorf("only Bearer is acceptable"))
					goto skipCheckAuthorization
				}

				result, err := s.auth.AuthAPIKey(ctx, key)
				if err != nil {
					span.RecordError(errors.Wrap(err, "AuthMiddleware.IdentifyPrincipal: s.auth.AuthAPIKey failed"))
					goto skipCheckAuthorization
				}

				ctx = context.WithValue(ctx, domain.PrincipalCtxKey, result.Principal)
				span.SetAttributes(attribute.String("PrincipalId", result.Principal.ID))
			}
		}

	skipCheckAuthorization:
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
