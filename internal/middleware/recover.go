package middleware

import (
	"net/http"

	"github.com/baharkarakas/skillstack-backend/internal/api/httpx"
	"github.com/baharkarakas/skillstack-backend/internal/logger"
)

func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.FromContext(r.Context()).Error("panic", "err", rec)
				httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternal, "Server error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
