package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"smartop/fleet-service/internal/auth"
	"smartop/fleet-service/internal/models"
	"smartop/fleet-service/internal/service"
	"smartop/fleet-service/internal/store"
)

// authMiddleware verifies the bearer token and reloads the caller, so a
// deactivated account or a changed role takes effect on the next request.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicEndpoint(r) {
			next.ServeHTTP(w, r)
			return
		}
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, r, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claimed, err := h.tokens.Verify(token)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}
		actor, err := h.users.Identify(r.Context(), claimed)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) || errors.Is(err, service.ErrInvalidCredentials) {
				writeError(w, r, http.StatusUnauthorized, "invalid token")
				return
			}
			respondError(w, r, err)
			return
		}
		tagOrganization(w, actor.OrganizationID)
		next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
	})
}

func actorFrom(r *http.Request) models.Actor {
	actor, _ := auth.ActorFromContext(r.Context())
	return actor
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

func isPublicEndpoint(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/readyz":
		return true
	case "/api/auth/login":
		return r.Method == http.MethodPost
	default:
		return r.Method == http.MethodOptions
	}
}
