package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/quizlive/engine/internal/auth/jwt"
	httperrors "github.com/quizlive/engine/pkg/http/errors"
)

type claimsKey struct{}

// RequireHost wraps a handler with bearer token resolution. Requests
// without a valid token get 401 before the handler runs.
func (s *Service) RequireHost(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "Bearer token required")
			return
		}

		claims, err := s.Resolve(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			code := httperrors.ErrCodeInvalidToken
			if err == jwt.ErrExpiredToken {
				code = httperrors.ErrCodeTokenExpired
			}
			httperrors.RespondUnauthorized(w, code, "Invalid or expired token")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	}
}

// ClaimsFromContext returns host claims set by RequireHost.
func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*jwt.Claims)
	return claims, ok
}
