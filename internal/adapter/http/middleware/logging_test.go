package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggingMiddlewareRecordsStatusAndPath(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	m := NewLoggingMiddleware(logger)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/missing", nil)
	rec := httptest.NewRecorder()

	m.Wrap(next).ServeHTTP(rec, req)

	out := buf.String()
	if !strings.Contains(out, `"status":404`) {
		t.Fatalf("expected status in log output, got %s", out)
	}
	if !strings.Contains(out, "/api/v1/payments/missing") {
		t.Fatalf("expected path in log output, got %s", out)
	}
}
