package service

import (
	"context"
	"errors"

	"smartop/fleet-service/internal/models"
	"smartop/fleet-service/internal/policy"
	"smartop/fleet-service/internal/store"
	"smartop/fleet-service/internal/validate"
)

// AssignmentService manages jobs and their machine/operator links.
type AssignmentService struct {
	store store.Store
}

func NewAssignmentService(st store.Store) *AssignmentService {
	return &AssignmentService{store: st}
}

func (s *AssignmentService) CreateJob(ctx context.Context, actor models.Actor, input models.NewJob) (models.Job, error) {
	if err := policy.CanManageFleet(actor); err != nil {
		return models.Job{}, err
	}
	if input.Status == "" {
		input.Status = models.JobStatusPlanned
	}
	return s.store.CreateJob(ctx, actor.Scope(), input)
}

func (s *AssignmentService) ListJobs(ctx context.Context, actor models.Actor) ([]models.Job, error) {
	return s.store.ListJobs(ctx, actor.Scope())
}

// Roster returns a job with its linked machines and its currently staffed
// operators. Inactive operators stay linked but are not listed.
func (s *AssignmentService) Roster(ctx context.Context, actor models.Actor, jobID string) (models.JobRoster, error) {
	scope := actor.Scope()
	job, err := s.store.FindJob(ctx, scope, jobID)
	if err != nil {
		return models.JobRoster{}, err
	}
	links, err := s.store.ListJobAssignments(ctx, scope, job.ID)
	if err != nil {
		return models.JobRoster{}, err
	}

	roster := models.JobRoster{Job: job, Machines: []models.MachineSummary{}, Operators: []models.UserSummary{}}
	seenMachines := map[string]bool{}
	seenOperators := map[string]bool{}
	for _, link := range links {
		if link.MachineID != nil && !seenMachines[*link.MachineID] {
			seenMachines[*link.MachineID] = true
			machine, err := s.store.FindMachine(ctx, scope, *link.MachineID)
			if err != nil && !errors.Is(err, store.ErrMachineNotFound) {
				return models.JobRoster{}, err
			}
			if err == nil {
				roster.Machines = append(roster.Machines, machine.Summary())
			}
		}
		if link.OperatorID != nil && !seenOperators[*link.OperatorID] {
			seenOperators[*link.OperatorID] = true
			user, err := s.store.FindUser(ctx, scope, *link.OperatorID)
			if err != nil && !errors.Is(err, store.ErrUserNotFound) {
				return models.JobRoster{}, err
			}
			if err == nil && user.IsActive {
				roster.Operators = append(roster.Operators, models.UserSummary{
					ID:        user.ID,
					FirstName: user.FirstName,
					LastName:  user.LastName,
					Email:     user.Email,
					Role:      user.Role,
				})
			}
		}
	}
	return roster, nil
}

func (s *AssignmentService) Link(ctx context.Context, actor models.Actor, link models.JobAssignment) (models.JobAssignment, error) {
	if err := policy.CanManageFleet(actor); err != nil {
		return models.JobAssignment{}, err
	}
	if err := checkLink(link); err != nil {
		return models.JobAssignment{}, err
	}
	return s.store.LinkJob(ctx, actor.Scope(), link)
}

func (s *AssignmentService) Unlink(ctx context.Context, actor models.Actor, link models.JobAssignment) error {
	if err := policy.CanManageFleet(actor); err != nil {
		return err
	}
	if err := checkLink(link); err != nil {
		return err
	}
	return s.store.UnlinkJob(ctx, actor.Scope(), link)
}

func checkLink(link models.JobAssignment) error {
	var c validate.Checker
	c.Check(link.MachineID != nil || link.OperatorID != nil, "machineId", "or operatorId is required")
	return c.Err()
}
