// Package policy decides which actors may perform which operations.
// Every function switches over all roles; an unknown role is always denied.
package policy

import (
	"errors"

	"smartop/fleet-service/internal/models"
)

var ErrForbidden = errors.New("forbidden")

// DeniedError reports why an operation was refused. It matches ErrForbidden.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string { return e.Reason }

func (e *DeniedError) Unwrap() error { return ErrForbidden }

func Deny(reason string) error {
	return &DeniedError{Reason: reason}
}

type UpdateScope int

const (
	UpdateDenied UpdateScope = iota
	UpdateSelfProfile
	UpdateAnyField
)

func CanCreateUser(actor models.Actor) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleManager, models.RoleOperator:
		return Deny("only admins can create users")
	}
	return Deny("unknown role")
}

func CanDeleteUser(actor models.Actor) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleManager, models.RoleOperator:
		return Deny("only admins can deactivate users")
	}
	return Deny("unknown role")
}

// CanReadUsers covers list and single reads. Organization isolation is
// enforced by the repository scope, not here.
func CanReadUsers(actor models.Actor) error {
	switch actor.Role {
	case models.RoleAdmin, models.RoleManager, models.RoleOperator:
		return nil
	}
	return Deny("unknown role")
}

// UserUpdateScope returns how much of targetID's record the actor may change.
func UserUpdateScope(actor models.Actor, targetID string) UpdateScope {
	switch actor.Role {
	case models.RoleAdmin:
		return UpdateAnyField
	case models.RoleManager, models.RoleOperator:
		if actor.UserID != "" && actor.UserID == targetID {
			return UpdateSelfProfile
		}
		return UpdateDenied
	}
	return UpdateDenied
}

// ScopeUserPatch narrows patch to what the actor may write on targetID.
func ScopeUserPatch(actor models.Actor, targetID string, patch models.UserPatch) (models.UserPatch, error) {
	switch UserUpdateScope(actor, targetID) {
	case UpdateAnyField:
		return patch, nil
	case UpdateSelfProfile:
		return models.UserPatch{SelfProfilePatch: patch.SelfProfilePatch}, nil
	default:
		return models.UserPatch{}, Deny("you can only update your own profile")
	}
}

func CanUpdateLocation(actor models.Actor, targetID string) error {
	switch actor.Role {
	case models.RoleAdmin, models.RoleManager, models.RoleOperator:
		if actor.UserID == "" || actor.UserID != targetID {
			return Deny("you can only update your own location")
		}
		return nil
	}
	return Deny("unknown role")
}

func CanViewOperatorLocations(actor models.Actor) error {
	switch actor.Role {
	case models.RoleAdmin, models.RoleManager:
		return nil
	case models.RoleOperator:
		return Deny("only admins and managers can view operator locations")
	}
	return Deny("unknown role")
}

// CanManageFleet covers writes to machines, checklist templates and jobs.
func CanManageFleet(actor models.Actor) error {
	switch actor.Role {
	case models.RoleAdmin, models.RoleManager:
		return nil
	case models.RoleOperator:
		return Deny("only admins and managers can manage fleet records")
	}
	return Deny("unknown role")
}

func CanSubmitChecklist(actor models.Actor) error {
	switch actor.Role {
	case models.RoleAdmin, models.RoleManager, models.RoleOperator:
		return nil
	}
	return Deny("unknown role")
}

// CanReviewChecklists is checked before the submission is loaded.
func CanReviewChecklists(actor models.Actor) error {
	switch actor.Role {
	case models.RoleAdmin, models.RoleManager:
		return nil
	case models.RoleOperator:
		return Deny("only admins and managers can review checklists")
	}
	return Deny("unknown role")
}

// CanReviewSubmission adds the self-approval rule once the submission is known.
// Managers have organization-wide review authority.
func CanReviewSubmission(actor models.Actor, submission models.ChecklistSubmission) error {
	if err := CanReviewChecklists(actor); err != nil {
		return err
	}
	if submission.OperatorID == actor.UserID {
		return Deny("you cannot review your own submission")
	}
	return nil
}
