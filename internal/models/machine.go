package models

import "time"

const (
	MachineStatusActive      = "active"
	MachineStatusIdle        = "idle"
	MachineStatusMaintenance = "maintenance"
	MachineStatusOutOfOrder  = "out_of_order"
)

var MachineStatuses = []string{MachineStatusActive, MachineStatusIdle, MachineStatusMaintenance, MachineStatusOutOfOrder}

type Machine struct {
	ID                  string    `json:"id"`
	OrganizationID      string    `json:"organizationId"`
	Name                string    `json:"name"`
	Type                string    `json:"type"`
	Brand               *string   `json:"brand"`
	Model               *string   `json:"model"`
	SerialNumber        *string   `json:"serialNumber"`
	Status              string    `json:"status"`
	AssignedOperatorID  *string   `json:"assignedOperatorId"`
	ChecklistTemplateID *string   `json:"checklistTemplateId"`
	CreatedAt           time.Time `json:"createdAt"`
}

func (m Machine) Summary() MachineSummary {
	return MachineSummary{ID: m.ID, Name: m.Name, Type: m.Type, Status: m.Status}
}

type MachineSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

type NewMachine struct {
	Name         string
	Type         string
	Brand        *string
	Model        *string
	SerialNumber *string
	Status       string
}

// MachineAssignment changes the operator and/or template of a machine.
// A nil pointer leaves the link untouched, an empty string clears it.
type MachineAssignment struct {
	OperatorID          *string
	ChecklistTemplateID *string
}

type MachineFilter struct {
	Status     string
	OperatorID string
}
