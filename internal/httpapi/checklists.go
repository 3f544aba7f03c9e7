package httpapi

import (
	"net/http"

	"smartop/fleet-service/internal/models"
	"smartop/fleet-service/internal/validate"
)

func (h *Handler) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(w, r, err)
		return
	}
	template, err := h.checklists.CreateTemplate(r.Context(), actorFrom(r), input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, template)
}

func (h *Handler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.checklists.ListTemplates(r.Context(), actorFrom(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *Handler) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	template, err := h.checklists.GetTemplate(r.Context(), actorFrom(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, template)
}

func (h *Handler) handleSubmitChecklist(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(w, r, err)
		return
	}
	submission, err := h.checklists.Submit(r.Context(), actorFrom(r), input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, submission)
}

func (h *Handler) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	filter := models.SubmissionFilter{
		Status:     values.Get("status"),
		MachineID:  values.Get("machineId"),
		OperatorID: values.Get("operatorId"),
	}
	var c validate.Checker
	if filter.Status != "" {
		c.OneOf("status", filter.Status, models.SubmissionPending, models.SubmissionApproved, models.SubmissionRejected)
	}
	if filter.MachineID != "" {
		c.UUID("machineId", filter.MachineID)
	}
	if filter.OperatorID != "" {
		c.UUID("operatorId", filter.OperatorID)
	}
	if err := c.Err(); err != nil {
		respondError(w, r, err)
		return
	}
	submissions, err := h.checklists.List(r.Context(), actorFrom(r), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submissions)
}

func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.checklists.ListPending(r.Context(), actorFrom(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submissions)
}

func (h *Handler) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	submission, err := h.checklists.Get(r.Context(), actorFrom(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submission)
}

func (h *Handler) handleReviewSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req reviewRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	decision, err := req.toDecision()
	if err != nil {
		respondError(w, r, err)
		return
	}
	submission, err := h.checklists.Review(r.Context(), actorFrom(r), id, decision, req.Note)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submission)
}
