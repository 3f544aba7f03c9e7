package httpapi

import "net/http"

func (h *Handler) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(w, r, err)
		return
	}
	job, err := h.assignments.CreateJob(r.Context(), actorFrom(r), input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.assignments.ListJobs(r.Context(), actorFrom(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	roster, err := h.assignments.Roster(r.Context(), actorFrom(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

func (h *Handler) handleLinkJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req jobLinkRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	link, err := req.toLink(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	created, err := h.assignments.Link(r.Context(), actorFrom(r), link)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUnlinkJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req jobLinkRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	link, err := req.toLink(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.assignments.Unlink(r.Context(), actorFrom(r), link); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Job assignment removed"})
}
