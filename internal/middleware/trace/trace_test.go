package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	applog "myy/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Format: "text", Component: applog.ComponentHTTP, Output: &buf})
	m := NewMiddleware(logger, func(*http.Request) string { return "192.0.2.1" })

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/entries", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("request id %q is not a UUID", seen)
	}
	if rec.Header().Get(HeaderRequestID) != seen {
		t.Errorf("response header = %q, want %q", rec.Header().Get(HeaderRequestID), seen)
	}
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "status_code=404") {
		t.Errorf("unexpected log output %q", out)
	}
	if m.GetMetrics().TotalRequests != 1 {
		t.Errorf("TotalRequests = %d", m.GetMetrics().TotalRequests)
	}
}

func TestMiddlewareKeepsValidIncomingID(t *testing.T) {
	m := NewMiddleware(nil, nil)
	id := uuid.NewString()

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		if applog.FromContext(r.Context()).Component() != applog.ComponentTrace {
			t.Errorf("request logger not installed")
		}
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(HeaderRequestID, id)
	h.ServeHTTP(httptest.NewRecorder(), r)
	if seen != id {
		t.Errorf("request id = %q, want %q", seen, id)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(HeaderRequestID, "not-a-uuid")
	h.ServeHTTP(httptest.NewRecorder(), r)
	if seen == "not-a-uuid" {
		t.Error("invalid incoming id should be replaced")
	}
}
