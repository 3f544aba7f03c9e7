package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadiness(t *testing.T) {
	tests := []struct {
		name   string
		pinger Pinger
		status int
	}{
		{name: "healthy", pinger: pingFunc(func(context.Context) error { return nil }), status: http.StatusOK},
		{name: "unreachable", pinger: pingFunc(func(context.Context) error { return errors.New("down") }), status: http.StatusServiceUnavailable},
		{name: "unconfigured", pinger: nil, status: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mux.NewRouter()
			RegisterRoutes(r, tt.pinger, nil)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestLiveness(t *testing.T) {
	r := mux.NewRouter()
	RegisterRoutes(r, nil, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestReadinessUsesErrorWriter(t *testing.T) {
	var gotStatus int
	var gotMessage interface{}
	writer := func(w http.ResponseWriter, _ *http.Request, status int, message interface{}) {
		gotStatus, gotMessage = status, message
		w.WriteHeader(status)
	}
	r := mux.NewRouter()
	RegisterRoutes(r, pingFunc(func(context.Context) error { return errors.New("down") }), writer)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable || gotStatus != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
	if gotMessage != "store unreachable" {
		t.Fatalf("unexpected message %v", gotMessage)
	}
}
