package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// ErrorWriter renders a failed readiness check in the caller's error format.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, message interface{})

// RegisterRoutes adds liveness and, when a pinger is given, storage readiness.
// A nil writeError falls back to plain text.
func RegisterRoutes(r *mux.Router, pinger Pinger, writeError ErrorWriter) {
	if writeError == nil {
		writeError = plainError
	}
	r.HandleFunc("/healthz", liveness).Methods(http.MethodGet)
	r.HandleFunc("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if pinger == nil {
			writeError(w, req, http.StatusServiceUnavailable, "store not configured")
			return
		}
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := pinger.Ping(ctx); err != nil {
			writeError(w, req, http.StatusServiceUnavailable, "store unreachable")
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
}

func liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func plainError(w http.ResponseWriter, _ *http.Request, status int, message interface{}) {
	text, _ := message.(string)
	http.Error(w, text, status)
}
