package store

import (
	"context"
	"time"

	"smartop/fleet-service/internal/models"
)

type CreateUserInput struct {
	models.NewUser
	PasswordHash string
	CreatedAt    time.Time
}

type ReviewInput struct {
	SubmissionID string
	Decision     models.ReviewDecision
	ReviewerID   string
	Note         *string
	ReviewedAt   time.Time
}

// Every method takes the caller's Scope; records outside it behave as absent.
type UserStore interface {
	CreateUser(ctx context.Context, scope models.Scope, input CreateUserInput) (models.User, error)
	FindUser(ctx context.Context, scope models.Scope, userID string) (models.User, error)
	FindUserByEmail(ctx context.Context, scope models.Scope, email string) (models.User, error)
	ListUsers(ctx context.Context, scope models.Scope, query models.UserQuery) ([]models.User, int, error)
	UpdateUser(ctx context.Context, scope models.Scope, userID string, patch models.UserPatch) (models.User, error)
	DeactivateUser(ctx context.Context, scope models.Scope, userID string) error
	UpdateLocation(ctx context.Context, scope models.Scope, userID string, location models.LocationUpdate, at time.Time) (models.UserLocation, error)
	SetBiometric(ctx context.Context, scope models.Scope, userID string, enabled bool) error
	SetPasswordHash(ctx context.Context, scope models.Scope, userID, hash string) error
	UpdateNotificationSettings(ctx context.Context, scope models.Scope, userID string, patch models.NotificationPatch) (models.NotificationSettings, error)
	RecordLogin(ctx context.Context, scope models.Scope, userID string, at time.Time) error
	ListOperatorsWithLocation(ctx context.Context, scope models.Scope) ([]models.OperatorLocation, error)
}

type MachineStore interface {
	CreateMachine(ctx context.Context, scope models.Scope, input models.NewMachine) (models.Machine, error)
	FindMachine(ctx context.Context, scope models.Scope, machineID string) (models.Machine, error)
	ListMachines(ctx context.Context, scope models.Scope, filter models.MachineFilter) ([]models.Machine, error)
	AssignMachine(ctx context.Context, scope models.Scope, machineID string, assignment models.MachineAssignment) (models.Machine, error)
}

type ChecklistStore interface {
	CreateTemplate(ctx context.Context, scope models.Scope, input models.NewChecklistTemplate) (models.ChecklistTemplate, error)
	FindTemplate(ctx context.Context, scope models.Scope, templateID string) (models.ChecklistTemplate, error)
	ListTemplates(ctx context.Context, scope models.Scope) ([]models.ChecklistTemplate, error)
	CreateSubmission(ctx context.Context, scope models.Scope, operatorID string, input models.NewSubmission) (models.ChecklistSubmission, error)
	FindSubmission(ctx context.Context, scope models.Scope, submissionID string) (models.ChecklistSubmission, error)
	ListSubmissions(ctx context.Context, scope models.Scope, filter models.SubmissionFilter) ([]models.ChecklistSubmission, error)
	// ReviewSubmission only succeeds while the submission is still pending.
	ReviewSubmission(ctx context.Context, scope models.Scope, input ReviewInput) (models.ChecklistSubmission, error)
}

type JobStore interface {
	CreateJob(ctx context.Context, scope models.Scope, input models.NewJob) (models.Job, error)
	FindJob(ctx context.Context, scope models.Scope, jobID string) (models.Job, error)
	ListJobs(ctx context.Context, scope models.Scope) ([]models.Job, error)
	LinkJob(ctx context.Context, scope models.Scope, link models.JobAssignment) (models.JobAssignment, error)
	UnlinkJob(ctx context.Context, scope models.Scope, link models.JobAssignment) error
	ListJobAssignments(ctx context.Context, scope models.Scope, jobID string) ([]models.JobAssignment, error)
}

type Store interface {
	UserStore
	MachineStore
	ChecklistStore
	JobStore
	Ping(ctx context.Context) error
}
