package service

import (
	"context"
	"errors"

	"smartop/fleet-service/internal/models"
	"smartop/fleet-service/internal/policy"
	"smartop/fleet-service/internal/store"
	"smartop/fleet-service/internal/validate"
)

type MachineService struct {
	store store.Store
}

func NewMachineService(st store.Store) *MachineService {
	return &MachineService{store: st}
}

func (s *MachineService) Create(ctx context.Context, actor models.Actor, input models.NewMachine) (models.Machine, error) {
	if err := policy.CanManageFleet(actor); err != nil {
		return models.Machine{}, err
	}
	if input.Status == "" {
		input.Status = models.MachineStatusActive
	}
	return s.store.CreateMachine(ctx, actor.Scope(), input)
}

func (s *MachineService) List(ctx context.Context, actor models.Actor, filter models.MachineFilter) ([]models.Machine, error) {
	return s.store.ListMachines(ctx, actor.Scope(), filter)
}

func (s *MachineService) Get(ctx context.Context, actor models.Actor, machineID string) (models.Machine, error) {
	return s.store.FindMachine(ctx, actor.Scope(), machineID)
}

// Assign links a machine to an operator and/or a checklist template. Only
// active operators of the same organization can be assigned.
func (s *MachineService) Assign(ctx context.Context, actor models.Actor, machineID string, assignment models.MachineAssignment) (models.Machine, error) {
	if err := policy.CanManageFleet(actor); err != nil {
		return models.Machine{}, err
	}
	scope := actor.Scope()
	if _, err := s.store.FindMachine(ctx, scope, machineID); err != nil {
		return models.Machine{}, err
	}

	var c validate.Checker
	if assignment.OperatorID != nil && *assignment.OperatorID != "" {
		operator, err := s.store.FindUser(ctx, scope, *assignment.OperatorID)
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			c.Add("operatorId", "must reference an existing user")
		case err != nil:
			return models.Machine{}, err
		case operator.Role != models.RoleOperator || !operator.IsActive:
			c.Add("operatorId", "must reference an active operator")
		}
	}
	if assignment.ChecklistTemplateID != nil && *assignment.ChecklistTemplateID != "" {
		_, err := s.store.FindTemplate(ctx, scope, *assignment.ChecklistTemplateID)
		switch {
		case errors.Is(err, store.ErrTemplateNotFound):
			c.Add("checklistTemplateId", "must reference an existing checklist template")
		case err != nil:
			return models.Machine{}, err
		}
	}
	if err := c.Err(); err != nil {
		return models.Machine{}, err
	}
	return s.store.AssignMachine(ctx, scope, machineID, assignment)
}
