package models

import "time"

const (
	JobStatusPlanned   = "planned"
	JobStatusActive    = "active"
	JobStatusCompleted = "completed"
)

var JobStatuses = []string{JobStatusPlanned, JobStatusActive, JobStatusCompleted}

type Job struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Name           string    `json:"name"`
	Site           *string   `json:"site"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

type NewJob struct {
	Name   string
	Site   *string
	Status string
}

// JobAssignment links a job to a machine, an operator, or both.
type JobAssignment struct {
	JobID      string  `json:"jobId"`
	MachineID  *string `json:"machineId"`
	OperatorID *string `json:"operatorId"`
}

type JobRoster struct {
	Job
	Machines  []MachineSummary `json:"machines"`
	Operators []UserSummary    `json:"operators"`
}
