// Package memory keeps every record in process memory. It backs the service
// when no database is configured and the service-level tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"smartop/fleet-service/internal/models"
	"smartop/fleet-service/internal/store"

	"github.com/google/uuid"
)

type Store struct {
	mu          sync.RWMutex
	users       map[string]models.User
	machines    map[string]models.Machine
	templates   map[string]models.ChecklistTemplate
	submissions map[string]models.ChecklistSubmission
	jobs        map[string]models.Job
	assignments []models.JobAssignment
	now         func() time.Time
}

var _ store.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		users:       make(map[string]models.User),
		machines:    make(map[string]models.Machine),
		templates:   make(map[string]models.ChecklistTemplate),
		submissions: make(map[string]models.ChecklistSubmission),
		jobs:        make(map[string]models.Job),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) CreateUser(ctx context.Context, scope models.Scope, input store.CreateUserInput) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(input.Email)
	if _, ok := s.userByEmailLocked(scope, email); ok {
		return models.User{}, store.ErrEmailTaken
	}
	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	user := models.User{
		ID:                 uuid.NewString(),
		OrganizationID:     scope.OrganizationID,
		Email:              email,
		PasswordHash:       input.PasswordHash,
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		Role:               input.Role,
		Phone:              copyString(input.Phone),
		JobTitle:           copyString(input.JobTitle),
		AvatarURL:          copyString(input.AvatarURL),
		Licenses:           copyStrings(input.Licenses),
		Specialties:        copyStrings(input.Specialties),
		IsActive:           true,
		EmailNotifications: true,
		PushNotifications:  true,
		ChecklistReminders: true,
		CreatedAt:          createdAt,
		UpdatedAt:          createdAt,
	}
	s.users[user.ID] = user
	return cloneUser(user), nil
}

func (s *Store) FindUser(ctx context.Context, scope models.Scope, userID string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.userLocked(scope, userID)
	if !ok {
		return models.User{}, store.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (s *Store) FindUserByEmail(ctx context.Context, scope models.Scope, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.userByEmailLocked(scope, strings.ToLower(strings.TrimSpace(email)))
	if !ok {
		return models.User{}, store.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (s *Store) ListUsers(ctx context.Context, scope models.Scope, query models.UserQuery) ([]models.User, int, error) {
	query = store.NormalizeUserQuery(query)
	search := strings.ToLower(query.Search)

	s.mu.RLock()
	matched := make([]models.User, 0)
	for _, user := range s.users {
		if user.OrganizationID != scope.OrganizationID {
			continue
		}
		if query.Role != nil && user.Role != *query.Role {
			continue
		}
		if query.IsActive != nil && user.IsActive != *query.IsActive {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(user.FirstName), search) &&
			!strings.Contains(strings.ToLower(user.LastName), search) &&
			!strings.Contains(strings.ToLower(user.Email), search) {
			continue
		}
		matched = append(matched, cloneUser(user))
	}
	s.mu.RUnlock()

	descending := query.SortOrder == "desc"
	sort.Slice(matched, func(i, j int) bool {
		if c := compareUsers(query.SortBy, matched[i], matched[j], descending); c != 0 {
			return c < 0
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	start := (query.Page - 1) * query.Limit
	if start >= total {
		return []models.User{}, total, nil
	}
	end := start + query.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *Store) UpdateUser(ctx context.Context, scope models.Scope, userID string, patch models.UserPatch) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.userLocked(scope, userID)
	if !ok {
		return models.User{}, store.ErrUserNotFound
	}
	if patch.Email != nil {
		email := strings.ToLower(*patch.Email)
		if existing, found := s.userByEmailLocked(scope, email); found && existing.ID != user.ID {
			return models.User{}, store.ErrEmailTaken
		}
		user.Email = email
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Phone != nil {
		user.Phone = nilIfEmpty(patch.Phone)
	}
	if patch.AvatarURL != nil {
		user.AvatarURL = nilIfEmpty(patch.AvatarURL)
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.JobTitle != nil {
		user.JobTitle = nilIfEmpty(patch.JobTitle)
	}
	if patch.Licenses != nil {
		user.Licenses = copyStrings(*patch.Licenses)
	}
	if patch.Specialties != nil {
		user.Specialties = copyStrings(*patch.Specialties)
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	user.UpdatedAt = s.now()
	s.users[user.ID] = user
	return cloneUser(user), nil
}

func (s *Store) DeactivateUser(ctx context.Context, scope models.Scope, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.userLocked(scope, userID)
	if !ok {
		return store.ErrUserNotFound
	}
	user.IsActive = false
	user.UpdatedAt = s.now()
	s.users[user.ID] = user
	return nil
}

func (s *Store) UpdateLocation(ctx context.Context, scope models.Scope, userID string, location models.LocationUpdate, at time.Time) (models.UserLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.userLocked(scope, userID)
	if !ok {
		return models.UserLocation{}, store.ErrUserNotFound
	}
	lat, lng := location.Latitude, location.Longitude
	user.Latitude = &lat
	user.Longitude = &lng
	user.Address = copyString(location.Address)
	updatedAt := at
	user.LocationUpdatedAt = &updatedAt
	user.UpdatedAt = at
	s.users[user.ID] = user
	return models.UserLocation{
		ID:                user.ID,
		Latitude:          copyFloat(user.Latitude),
		Longitude:         copyFloat(user.Longitude),
		Address:           copyString(user.Address),
		LocationUpdatedAt: copyTime(user.LocationUpdatedAt),
	}, nil
}

func (s *Store) SetBiometric(ctx context.Context, scope models.Scope, userID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.userLocked(scope, userID)
	if !ok {
		return store.ErrUserNotFound
	}
	user.BiometricEnabled = enabled
	user.UpdatedAt = s.now()
	s.users[user.ID] = user
	return nil
}

func (s *Store) SetPasswordHash(ctx context.Context, scope models.Scope, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.userLocked(scope, userID)
	if !ok {
		return store.ErrUserNotFound
	}
	user.PasswordHash = hash
	user.UpdatedAt = s.now()
	s.users[user.ID] = user
	return nil
}

func (s *Store) UpdateNotificationSettings(ctx context.Context, scope models.Scope, userID string, patch models.NotificationPatch) (models.NotificationSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.userLocked(scope, userID)
	if !ok {
		return models.NotificationSettings{}, store.ErrUserNotFound
	}
	if patch.EmailNotifications != nil {
		user.EmailNotifications = *patch.EmailNotifications
	}
	if patch.PushNotifications != nil {
		user.PushNotifications = *patch.PushNotifications
	}
	if patch.SMSNotifications != nil {
		user.SMSNotifications = *patch.SMSNotifications
	}
	if patch.ChecklistReminders != nil {
		user.ChecklistReminders = *patch.ChecklistReminders
	}
	user.UpdatedAt = s.now()
	s.users[user.ID] = user
	return user.Settings(), nil
}

func (s *Store) RecordLogin(ctx context.Context, scope models.Scope, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.userLocked(scope, userID)
	if !ok {
		return store.ErrUserNotFound
	}
	loginAt := at
	user.LastLogin = &loginAt
	s.users[user.ID] = user
	return nil
}

func (s *Store) ListOperatorsWithLocation(ctx context.Context, scope models.Scope) ([]models.OperatorLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	operators := make([]models.OperatorLocation, 0)
	for _, user := range s.users {
		if user.OrganizationID != scope.OrganizationID || user.Role != models.RoleOperator || !user.IsActive {
			continue
		}
		if user.Latitude == nil || user.Longitude == nil {
			continue
		}
		operators = append(operators, models.OperatorLocation{
			ID:                user.ID,
			FirstName:         user.FirstName,
			LastName:          user.LastName,
			Phone:             copyString(user.Phone),
			AvatarURL:         copyString(user.AvatarURL),
			Latitude:          *user.Latitude,
			Longitude:         *user.Longitude,
			Address:           copyString(user.Address),
			LocationUpdatedAt: copyTime(user.LocationUpdatedAt),
			AssignedMachines:  s.machineSummariesLocked(scope, user.ID),
		})
	}
	sort.Slice(operators, func(i, j int) bool {
		if operators[i].LastName != operators[j].LastName {
			return operators[i].LastName < operators[j].LastName
		}
		return operators[i].ID < operators[j].ID
	})
	return operators, nil
}

func (s *Store) userLocked(scope models.Scope, userID string) (models.User, bool) {
	user, ok := s.users[userID]
	if !ok || user.OrganizationID != scope.OrganizationID {
		return models.User{}, false
	}
	return user, true
}

func (s *Store) userByEmailLocked(scope models.Scope, email string) (models.User, bool) {
	for _, user := range s.users {
		if user.OrganizationID == scope.OrganizationID && user.Email == email {
			return user, true
		}
	}
	return models.User{}, false
}

// compareUsers orders by one column in the requested direction. Missing
// login times sort last either way and ties are left to the caller, matching
// ORDER BY column dir NULLS LAST, id ASC.
func compareUsers(field string, a, b models.User, descending bool) int {
	var c int
	switch field {
	case "updatedAt":
		c = a.UpdatedAt.Compare(b.UpdatedAt)
	case "firstName":
		c = strings.Compare(a.FirstName, b.FirstName)
	case "lastName":
		c = strings.Compare(a.LastName, b.LastName)
	case "email":
		c = strings.Compare(a.Email, b.Email)
	case "role":
		c = strings.Compare(string(a.Role), string(b.Role))
	case "isActive":
		c = compareBool(a.IsActive, b.IsActive)
	case "lastLogin":
		switch {
		case a.LastLogin == nil && b.LastLogin == nil:
			return 0
		case a.LastLogin == nil:
			return 1
		case b.LastLogin == nil:
			return -1
		}
		c = a.LastLogin.Compare(*b.LastLogin)
	default:
		c = a.CreatedAt.Compare(b.CreatedAt)
	}
	if descending {
		return -c
	}
	return c
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
