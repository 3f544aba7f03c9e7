package httpapi

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"smartop/fleet-service/internal/models"
	"smartop/fleet-service/internal/policy"
	"smartop/fleet-service/internal/store"
	"smartop/fleet-service/internal/validate"
)

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(w, r, err)
		return
	}
	user, err := h.users.Create(r.Context(), actorFrom(r), input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	query, err := parseUserQuery(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}
	page, err := h.users.List(r.Context(), actorFrom(r), query)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := h.users.Get(r.Context(), actorFrom(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateUserRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	actor := actorFrom(r)
	if policy.UserUpdateScope(actor, id) != policy.UpdateAnyField {
		req.keepSelfProfile()
	}
	patch, err := req.toPatch()
	if err != nil {
		respondError(w, r, err)
		return
	}
	user, err := h.users.Update(r.Context(), actor, id, patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleRemoveUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	message, err := h.users.Remove(r.Context(), actorFrom(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

// handleUpdateLocation always targets the caller's own record.
func (h *Handler) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(w, r, err)
		return
	}
	actor := actorFrom(r)
	location, err := h.users.UpdateLocation(r.Context(), actor, actor.UserID, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, location)
}

func (h *Handler) handleOperatorLocations(w http.ResponseWriter, r *http.Request) {
	operators, err := h.users.OperatorsWithLocation(r.Context(), actorFrom(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, operators)
}

func (h *Handler) handleToggleBiometric(w http.ResponseWriter, r *http.Request) {
	var req biometricRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	if req.Enabled == nil {
		respondError(w, r, validate.Errors{{Field: "enabled", Message: "must be a boolean value"}})
		return
	}
	enabled, err := h.users.ToggleBiometric(r.Context(), actorFrom(r), *req.Enabled)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"biometricEnabled": enabled})
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.users.ChangePassword(r.Context(), actorFrom(r), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

// handleNotificationSettings ignores keys outside the preference allow-list.
func (h *Handler) handleNotificationSettings(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	settings, err := h.users.UpdateNotificationSettings(r.Context(), actorFrom(r), models.NotificationPatch{
		EmailNotifications: req.EmailNotifications,
		PushNotifications:  req.PushNotifications,
		SMSNotifications:   req.SMSNotifications,
		ChecklistReminders: req.ChecklistReminders,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func parseUserQuery(values url.Values) (models.UserQuery, error) {
	query := models.UserQuery{
		Search:    strings.TrimSpace(values.Get("search")),
		Page:      store.DefaultPage,
		Limit:     store.DefaultLimit,
		SortBy:    values.Get("sortBy"),
		SortOrder: "desc",
	}

	var c validate.Checker
	if raw := values.Get("role"); raw != "" {
		role, ok := models.ParseRole(raw)
		if ok {
			query.Role = &role
		} else {
			c.OneOf("role", raw, roleValues()...)
		}
	}
	if raw := values.Get("isActive"); raw != "" {
		switch raw {
		case "true", "false":
			active := raw == "true"
			query.IsActive = &active
		default:
			c.Add("isActive", "must be a boolean value")
		}
	}
	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			c.Add("page", "must be an integer number")
		} else {
			c.Check(page >= 1, "page", "must not be less than 1")
			query.Page = page
		}
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			c.Add("limit", "must be an integer number")
		} else {
			c.Range("limit", float64(limit), 1, store.MaxLimit)
			query.Limit = limit
		}
	}
	if raw := values.Get("sortOrder"); raw != "" {
		order := strings.ToLower(raw)
		c.OneOf("sortOrder", order, "asc", "desc")
		query.SortOrder = order
	}
	if err := c.Err(); err != nil {
		return models.UserQuery{}, err
	}
	return query, nil
}
