package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"smartop/fleet-service/internal/auth"
	"smartop/fleet-service/internal/health"
	"smartop/fleet-service/internal/service"
	"smartop/fleet-service/internal/store"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	store       store.Store
	tokens      *auth.Tokens
	users       *service.UserService
	checklists  *service.ChecklistService
	machines    *service.MachineService
	assignments *service.AssignmentService
	limiter     *RateLimiter
}

type Options struct {
	RateLimit RateLimitConfig
}

func NewHandler(st store.Store, hasher auth.PasswordHasher, tokens *auth.Tokens, options Options) *Handler {
	return &Handler{
		store:       st,
		tokens:      tokens,
		users:       service.NewUserService(st, hasher),
		checklists:  service.NewChecklistService(st),
		machines:    service.NewMachineService(st),
		assignments: service.NewAssignmentService(st),
		limiter:     NewRateLimiter(options.RateLimit),
	}
}

func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusNotFound, "Cannot "+req.Method+" "+req.URL.Path)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.Use(RequestID, Recoverer, LoggingMiddleware, h.authMiddleware, h.limiter.Middleware)

	health.RegisterRoutes(r, h.store, writeError)

	r.HandleFunc("/api/auth/login", h.handleLogin).Methods(http.MethodPost)

	r.HandleFunc("/api/users", h.handleCreateUser).Methods(http.MethodPost)
	r.HandleFunc("/api/users", h.handleListUsers).Methods(http.MethodGet)
	r.HandleFunc("/api/users/location", h.handleUpdateLocation).Methods(http.MethodPost)
	r.HandleFunc("/api/users/operators/locations", h.handleOperatorLocations).Methods(http.MethodGet)
	r.HandleFunc("/api/users/biometric", h.handleToggleBiometric).Methods(http.MethodPost)
	r.HandleFunc("/api/users/password", h.handleChangePassword).Methods(http.MethodPost)
	r.HandleFunc("/api/users/notifications", h.handleNotificationSettings).Methods(http.MethodPatch)
	r.HandleFunc("/api/users/{id}", h.handleGetUser).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{id}", h.handleUpdateUser).Methods(http.MethodPatch)
	r.HandleFunc("/api/users/{id}", h.handleRemoveUser).Methods(http.MethodDelete)

	r.HandleFunc("/api/machines", h.handleCreateMachine).Methods(http.MethodPost)
	r.HandleFunc("/api/machines", h.handleListMachines).Methods(http.MethodGet)
	r.HandleFunc("/api/machines/{id}", h.handleGetMachine).Methods(http.MethodGet)
	r.HandleFunc("/api/machines/{id}/assignment", h.handleAssignMachine).Methods(http.MethodPatch)

	r.HandleFunc("/api/checklists/templates", h.handleCreateTemplate).Methods(http.MethodPost)
	r.HandleFunc("/api/checklists/templates", h.handleListTemplates).Methods(http.MethodGet)
	r.HandleFunc("/api/checklists/templates/{id}", h.handleGetTemplate).Methods(http.MethodGet)
	r.HandleFunc("/api/checklists/submissions", h.handleSubmitChecklist).Methods(http.MethodPost)
	r.HandleFunc("/api/checklists/submissions", h.handleListSubmissions).Methods(http.MethodGet)
	r.HandleFunc("/api/checklists/submissions/pending", h.handleListPending).Methods(http.MethodGet)
	r.HandleFunc("/api/checklists/submissions/{id}", h.handleGetSubmission).Methods(http.MethodGet)
	r.HandleFunc("/api/checklists/submissions/{id}/review", h.handleReviewSubmission).Methods(http.MethodPost)

	r.HandleFunc("/api/jobs", h.handleCreateJob).Methods(http.MethodPost)
	r.HandleFunc("/api/jobs", h.handleListJobs).Methods(http.MethodGet)
	r.HandleFunc("/api/jobs/{id}", h.handleGetJob).Methods(http.MethodGet)
	r.HandleFunc("/api/jobs/{id}/assignments", h.handleLinkJob).Methods(http.MethodPost)
	r.HandleFunc("/api/jobs/{id}/assignments", h.handleUnlinkJob).Methods(http.MethodDelete)

	return r
}

type loginRequest struct {
	OrganizationID string `json:"organizationId"`
	Email          string `json:"email"`
	Password       string `json:"password"`
}

type loginResponse struct {
	AccessToken string      `json:"accessToken"`
	TokenType   string      `json:"tokenType"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	User        interface{} `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, r, err)
		return
	}
	user, err := h.users.Authenticate(r.Context(), req.OrganizationID, req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	token, expiresAt, err := h.tokens.Issue(user)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	})
}

// decodeJSON reads a JSON body into target. Strict decoding rejects unknown
// fields; patch-style endpoints ignore them instead.
func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}, strict bool) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, r, http.StatusBadRequest, "request body is required")
			return false
		}
		writeError(w, r, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

// pathID returns the {id} route variable, rejecting values that are not UUIDs.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, r, http.StatusBadRequest, []string{"id must be a UUID"})
		return "", false
	}
	return id, true
}
