// Package service applies the role policy and tenant scope to every
// operation before it reaches the store.
package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"smartop/fleet-service/internal/auth"
	"smartop/fleet-service/internal/logs"
	"smartop/fleet-service/internal/models"
	"smartop/fleet-service/internal/policy"
	"smartop/fleet-service/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const deactivatedMessage = "User deactivated successfully"

type UserService struct {
	store  store.Store
	hasher auth.PasswordHasher
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(st store.Store, hasher auth.PasswordHasher) *UserService {
	return &UserService{store: st, hasher: hasher, now: func() time.Time { return time.Now().UTC() }}
}

func (s *UserService) Create(ctx context.Context, actor models.Actor, input models.NewUser) (models.User, error) {
	if err := policy.CanCreateUser(actor); err != nil {
		return models.User{}, err
	}
	scope := actor.Scope()
	email := normalizeEmail(input.Email)

	if _, err := s.store.FindUserByEmail(ctx, scope, email); err == nil {
		return models.User{}, store.ErrEmailTaken
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return models.User{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return models.User{}, err
	}
	input.Email = email
	if input.Role == "" {
		input.Role = models.RoleOperator
	}
	if input.Licenses == nil {
		input.Licenses = []string{}
	}
	if input.Specialties == nil {
		input.Specialties = []string{}
	}

	user, err := s.store.CreateUser(ctx, scope, store.CreateUserInput{
		NewUser:      input,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return models.User{}, err
	}
	logs.Logger.WithFields(map[string]interface{}{
		"organization": scope.OrganizationID,
		"user_id":      user.ID,
		"role":         user.Role,
		"created_by":   actor.UserID,
	}).Info("user created")
	return user.Sanitized(), nil
}

func (s *UserService) List(ctx context.Context, actor models.Actor, query models.UserQuery) (models.UserPage, error) {
	if err := policy.CanReadUsers(actor); err != nil {
		return models.UserPage{}, err
	}
	query = store.NormalizeUserQuery(query)
	users, total, err := s.store.ListUsers(ctx, actor.Scope(), query)
	if err != nil {
		return models.UserPage{}, err
	}
	data := make([]models.User, 0, len(users))
	for _, user := range users {
		data = append(data, user.Sanitized())
	}
	return models.UserPage{
		Data: data,
		Meta: models.PageMeta{
			Total:      total,
			Page:       query.Page,
			Limit:      query.Limit,
			TotalPages: int(math.Ceil(float64(total) / float64(query.Limit))),
		},
	}, nil
}

func (s *UserService) Get(ctx context.Context, actor models.Actor, userID string) (models.UserDetail, error) {
	if err := policy.CanReadUsers(actor); err != nil {
		return models.UserDetail{}, err
	}
	scope := actor.Scope()
	user, err := s.store.FindUser(ctx, scope, userID)
	if err != nil {
		return models.UserDetail{}, err
	}
	machines, err := s.store.ListMachines(ctx, scope, models.MachineFilter{OperatorID: user.ID})
	if err != nil {
		return models.UserDetail{}, err
	}
	summaries := make([]models.MachineSummary, 0, len(machines))
	for _, machine := range machines {
		summaries = append(summaries, machine.Summary())
	}
	return models.UserDetail{User: user.Sanitized(), AssignedMachines: summaries}, nil
}

// Update loads the target first so that ids from other organizations
// report not found before any policy decision is exposed.
func (s *UserService) Update(ctx context.Context, actor models.Actor, userID string, patch models.UserPatch) (models.User, error) {
	scope := actor.Scope()
	target, err := s.store.FindUser(ctx, scope, userID)
	if err != nil {
		return models.User{}, err
	}
	allowed, err := policy.ScopeUserPatch(actor, target.ID, patch)
	if err != nil {
		return models.User{}, err
	}
	if allowed.Email != nil {
		email := normalizeEmail(*allowed.Email)
		allowed.Email = &email
		if email == target.Email {
			allowed.Email = nil
		}
	}
	if allowed.Empty() {
		return target.Sanitized(), nil
	}
	updated, err := s.store.UpdateUser(ctx, scope, target.ID, allowed)
	if err != nil {
		return models.User{}, err
	}
	return updated.Sanitized(), nil
}

func (s *UserService) Remove(ctx context.Context, actor models.Actor, userID string) (string, error) {
	if err := policy.CanDeleteUser(actor); err != nil {
		return "", err
	}
	if err := s.store.DeactivateUser(ctx, actor.Scope(), userID); err != nil {
		return "", err
	}
	logs.Logger.WithFields(map[string]interface{}{
		"organization": actor.OrganizationID,
		"user_id":      userID,
		"removed_by":   actor.UserID,
	}).Info("user deactivated")
	return deactivatedMessage, nil
}

func (s *UserService) UpdateLocation(ctx context.Context, actor models.Actor, userID string, location models.LocationUpdate) (models.UserLocation, error) {
	if err := policy.CanUpdateLocation(actor, userID); err != nil {
		return models.UserLocation{}, err
	}
	return s.store.UpdateLocation(ctx, actor.Scope(), userID, location, s.now())
}

func (s *UserService) OperatorsWithLocation(ctx context.Context, actor models.Actor) ([]models.OperatorLocation, error) {
	if err := policy.CanViewOperatorLocations(actor); err != nil {
		return nil, err
	}
	return s.store.ListOperatorsWithLocation(ctx, actor.Scope())
}

func (s *UserService) ToggleBiometric(ctx context.Context, actor models.Actor, enabled bool) (bool, error) {
	if err := s.store.SetBiometric(ctx, actor.Scope(), actor.UserID, enabled); err != nil {
		return false, err
	}
	return enabled, nil
}

func (s *UserService) ChangePassword(ctx context.Context, actor models.Actor, currentPassword, newPassword string) error {
	scope := actor.Scope()
	user, err := s.store.FindUser(ctx, scope, actor.UserID)
	if err != nil {
		return err
	}
	if user.PasswordHash == "" {
		return policy.Deny("password login is not enabled for this account")
	}
	if !s.hasher.Verify(user.PasswordHash, currentPassword) {
		return policy.Deny("current password is incorrect")
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.store.SetPasswordHash(ctx, scope, user.ID, hash)
}

func (s *UserService) UpdateNotificationSettings(ctx context.Context, actor models.Actor, patch models.NotificationPatch) (models.NotificationSettings, error) {
	return s.store.UpdateNotificationSettings(ctx, actor.Scope(), actor.UserID, patch)
}

// Authenticate checks credentials within one organization and records the login.
func (s *UserService) Authenticate(ctx context.Context, organizationID, email, password string) (models.User, error) {
	scope := models.Scope{OrganizationID: organizationID}
	user, err := s.store.FindUserByEmail(ctx, scope, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Unknown emails pay the same hashing cost as known ones.
			s.hasher.Verify(s.unknownUserHash(), password)
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if !user.IsActive || !s.hasher.Verify(user.PasswordHash, password) {
		return models.User{}, ErrInvalidCredentials
	}
	loginAt := s.now()
	if err := s.store.RecordLogin(ctx, scope, user.ID, loginAt); err != nil {
		return models.User{}, err
	}
	user.LastLogin = &loginAt
	return user.Sanitized(), nil
}

func (s *UserService) unknownUserHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("unknown-user-placeholder")
		if err != nil {
			logs.Logger.WithError(err).Warn("placeholder password hash unavailable")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// Identify resolves a token subject to a current actor. Deactivated users
// lose access immediately.
func (s *UserService) Identify(ctx context.Context, claimed models.Actor) (models.Actor, error) {
	user, err := s.store.FindUser(ctx, claimed.Scope(), claimed.UserID)
	if err != nil {
		return models.Actor{}, err
	}
	if !user.IsActive {
		return models.Actor{}, ErrInvalidCredentials
	}
	return models.Actor{UserID: user.ID, OrganizationID: user.OrganizationID, Role: user.Role}, nil
}

// EnsureAdmin creates the first admin of an organization when it is missing.
func (s *UserService) EnsureAdmin(ctx context.Context, organizationID, email, password string) (models.User, bool, error) {
	scope := models.Scope{OrganizationID: organizationID}
	existing, err := s.store.FindUserByEmail(ctx, scope, normalizeEmail(email))
	if err == nil {
		return existing.Sanitized(), false, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return models.User{}, false, err
	}
	bootstrap := models.Actor{OrganizationID: organizationID, Role: models.RoleAdmin}
	user, err := s.Create(ctx, bootstrap, models.NewUser{
		Email:     email,
		Password:  password,
		FirstName: "System",
		LastName:  "Admin",
		Role:      models.RoleAdmin,
	})
	if err != nil {
		return models.User{}, false, err
	}
	return user, true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
