package httpmw

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticVerifier map[string]string

func (v staticVerifier) VerifyLogin(token string) (string, error) {
	if login, ok := v[token]; ok {
		return login, nil
	}
	return "", errors.New("bad token")
}

func TestAuthMiddleware(t *testing.T) {
	mw := AuthMiddleware(staticVerifier{"good": "alice"})
	var seen string
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = LoginFromCtx(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		req    func() *http.Request
		status int
		login  string
	}{
		{"bearer header", func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/rooms/x", nil)
			r.Header.Set("Authorization", "Bearer good")
			return r
		}, http.StatusNoContent, "alice"},
		{"query token", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/ws?access_token=good", nil)
		}, http.StatusNoContent, "alice"},
		{"missing", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/rooms/x", nil)
		}, http.StatusUnauthorized, ""},
		{"invalid", func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/rooms/x", nil)
			r.Header.Set("Authorization", "Bearer nope")
			return r
		}, http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = ""
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tc.req())
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.login, seen)
		})
	}
}

func TestRequestLogger_KeepsStatus(t *testing.T) {
	h := WithRequestLoggerCtx(RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotNil(t, L(r.Context()))
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("tea"))
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "tea", rec.Body.String())
}

func TestRedactQuery(t *testing.T) {
	q := url.Values{"access_token": {"secret"}, "a": {"1"}}
	assert.Equal(t, "a=1&access_token=REDACTED", redactQuery(q))
}
