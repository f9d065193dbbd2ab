package middleware

import (
	"net/http"
	"strings"

	"github.com/baharkarakas/skillstack-backend/internal/api/httpx"
	"github.com/baharkarakas/skillstack-backend/internal/auth"
	"github.com/baharkarakas/skillstack-backend/internal/logger"
)

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	tokens TokenParser
}

func NewAuthMiddleware(tp TokenParser) *AuthMiddleware {
	return &AuthMiddleware{tokens: tp}
}

// Auth requires "Authorization: Bearer <jwt>" and puts the user id in the context.
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if len(ah) < len("Bearer ") || !strings.EqualFold(ah[:len("Bearer ")], "bearer ") {
			httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Not authorized, no token", nil)
			return
		}
		token := strings.TrimSpace(ah[len("Bearer "):])

		claims, err := m.tokens.Parse(token)
		if err != nil || claims.UserID == "" {
			logger.FromContext(r.Context()).Debug("rejected token", "err", err)
			httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Not authorized, token failed", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
	})
}
