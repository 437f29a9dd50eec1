package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"kaspabot/internal/contextutil"
)

func TestLoggerMiddlewareInjectsLogger(t *testing.T) {
	var got *slog.Logger
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = contextutil.LoggerFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	LoggerMiddleware(inner).ServeHTTP(rec, req)

	if got == nil {
		t.Fatal("logger not injected into request context")
	}
}

func TestCORSPassThrough(t *testing.T) {
	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	CORS(inner).ServeHTTP(rec, req)

	if !called {
		t.Error("CORS middleware should pass non-preflight requests through")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin = %q, want *", got)
	}
}
