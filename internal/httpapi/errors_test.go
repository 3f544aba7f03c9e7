package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"smartop/fleet-service/internal/auth"
	"smartop/fleet-service/internal/store"
	"smartop/fleet-service/internal/store/memory"
)

func TestStorageErrorsHideCause(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "foreign key", err: fmt.Errorf("%w: 23503 machines_assigned_operator_id_fkey", store.ErrConstraint), status: http.StatusBadRequest},
		{name: "not null", err: fmt.Errorf("%w: 23502 ", store.ErrConstraint), status: http.StatusBadRequest},
		{name: "missing relation", err: fmt.Errorf(`%w: relation "users" does not exist (SQLSTATE 42P01)`, store.ErrStorage), status: http.StatusInternalServerError},
		{name: "unclassified", err: errors.New(`pq: column "secret" does not exist`), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil), tt.err)
			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
			resp := decodeEnvelope(t, rec)
			if tt.status == http.StatusBadRequest || errors.Is(tt.err, store.ErrStorage) {
				if resp.Message != msgStorageFailed {
					t.Fatalf("unexpected message %v", resp.Message)
				}
			}
			body := rec.Body.String()
			for _, leak := range []string{"SQLSTATE", "relation", "fkey", "secret", "23503"} {
				if strings.Contains(body, leak) {
					t.Fatalf("response leaks %q: %s", leak, body)
				}
			}
		})
	}
}

type unreachableStore struct {
	*memory.Store
}

func (unreachableStore) Ping(context.Context) error {
	return errors.New("dial tcp 10.0.0.5:5432: connection refused")
}

func TestReadinessFailureUsesEnvelope(t *testing.T) {
	h := NewHandler(unreachableStore{memory.NewStore()}, auth.NewBcryptHasher(bcrypt.MinCost), auth.NewTokens("test-secret", time.Hour), Options{})

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("expected JSON envelope, got %q", rec.Body.String())
	}
	if resp.StatusCode != http.StatusServiceUnavailable || resp.Message != "store unreachable" || resp.Path != "/readyz" || resp.Method != http.MethodGet {
		t.Fatalf("unexpected envelope %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "5432") {
		t.Fatalf("response leaks connection details: %s", rec.Body.String())
	}
}
