package httpmw

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type ctxKey string

const ctxKeyLogin ctxKey = "login"

// TokenVerifier проверяет access-токен и возвращает логин пользователя.
type TokenVerifier interface {
	VerifyLogin(token string) (string, error)
}

// AuthMiddleware требует валидный токен: Authorization: Bearer <jwt>
// или ?access_token=<jwt> (браузер не умеет ставить заголовки на websocket).
func AuthMiddleware(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}
			login, err := v.VerifyLogin(token)
			if err != nil {
				slog.Debug("auth rejected", "path", r.URL.Path, "err", err)
				writeUnauthorized(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyLogin, login)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func LoginFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyLogin).(string); ok {
		return v
	}
	return ""
}

func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
