package httpapi

import (
	"net/http"

	"smartop/fleet-service/internal/models"
	"smartop/fleet-service/internal/validate"
)

func (h *Handler) handleCreateMachine(w http.ResponseWriter, r *http.Request) {
	var req machineRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(w, r, err)
		return
	}
	machine, err := h.machines.Create(r.Context(), actorFrom(r), input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, machine)
}

func (h *Handler) handleListMachines(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	filter := models.MachineFilter{
		Status:     values.Get("status"),
		OperatorID: values.Get("operatorId"),
	}
	var c validate.Checker
	if filter.Status != "" {
		c.OneOf("status", filter.Status, models.MachineStatuses...)
	}
	if filter.OperatorID != "" {
		c.UUID("operatorId", filter.OperatorID)
	}
	if err := c.Err(); err != nil {
		respondError(w, r, err)
		return
	}
	machines, err := h.machines.List(r.Context(), actorFrom(r), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, machines)
}

func (h *Handler) handleGetMachine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	machine, err := h.machines.Get(r.Context(), actorFrom(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, machine)
}

func (h *Handler) handleAssignMachine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req machineAssignmentRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	assignment, err := req.toInput()
	if err != nil {
		respondError(w, r, err)
		return
	}
	machine, err := h.machines.Assign(r.Context(), actorFrom(r), id, assignment)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, machine)
}
