package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"smartop/fleet-service/internal/auth"
	"smartop/fleet-service/internal/models"
	"smartop/fleet-service/internal/policy"
	"smartop/fleet-service/internal/store"
	"smartop/fleet-service/internal/store/memory"
)

type testEnv struct {
	store  *memory.Store
	users  *UserService
	hasher auth.PasswordHasher
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	st := memory.NewStore()
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	return testEnv{store: st, users: NewUserService(st, hasher), hasher: hasher}
}

func (e testEnv) admin(t *testing.T, org string) models.Actor {
	t.Helper()
	user, _, err := e.users.EnsureAdmin(context.Background(), org, "admin@"+org+".com", "admin-password")
	if err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	return models.Actor{UserID: user.ID, OrganizationID: org, Role: models.RoleAdmin}
}

func (e testEnv) createUser(t *testing.T, admin models.Actor, email string, role models.Role) (models.User, models.Actor) {
	t.Helper()
	user, err := e.users.Create(context.Background(), admin, models.NewUser{
		Email:     email,
		Password:  "password123",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	})
	if err != nil {
		t.Fatalf("create %s: %v", email, err)
	}
	return user, models.Actor{UserID: user.ID, OrganizationID: user.OrganizationID, Role: user.Role}
}

func strPtr(v string) *string { return &v }

func TestCreateUserScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acme := env.admin(t, "acme")
	beta := env.admin(t, "beta")

	input := models.NewUser{Email: "op@acme.com", Password: "password123", FirstName: "Omar", LastName: "Operator"}
	created, err := env.users.Create(ctx, acme, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.PasswordHash != "" {
		t.Fatalf("expected password hash to be stripped")
	}
	payload, _ := json.Marshal(created)
	if strings.Contains(strings.ToLower(string(payload)), "password") {
		t.Fatalf("expected no password field in %s", payload)
	}
	if created.Role != models.RoleOperator {
		t.Fatalf("expected default role operator, got %s", created.Role)
	}
	if created.Licenses == nil || created.Specialties == nil || len(created.Licenses) != 0 {
		t.Fatalf("expected empty license and specialty lists")
	}

	if _, err := env.users.Create(ctx, acme, input); !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
	input.Email = "OP@acme.com"
	if _, err := env.users.Create(ctx, acme, input); !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("expected case-insensitive email conflict, got %v", err)
	}
	if _, err := env.users.Create(ctx, beta, input); err != nil {
		t.Fatalf("expected same email in another organization to succeed, got %v", err)
	}
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t, "acme")
	_, manager := env.createUser(t, admin, "manager@acme.com", models.RoleManager)
	_, operator := env.createUser(t, admin, "operator@acme.com", models.RoleOperator)

	for _, actor := range []models.Actor{manager, operator} {
		_, err := env.users.Create(context.Background(), actor, models.NewUser{
			Email: "new@acme.com", Password: "password123", FirstName: "New", LastName: "User",
		})
		if !errors.Is(err, policy.ErrForbidden) {
			t.Fatalf("expected forbidden for %s, got %v", actor.Role, err)
		}
	}
}

func TestCreateUserConflictsWithInactiveUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "acme")
	user, _ := env.createUser(t, admin, "gone@acme.com", models.RoleOperator)
	if _, err := env.users.Remove(ctx, admin, user.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	_, err := env.users.Create(ctx, admin, models.NewUser{
		Email: "gone@acme.com", Password: "password123", FirstName: "Back", LastName: "Again",
	})
	if !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("expected email taken for inactive user, got %v", err)
	}
}

func TestGetUserIsTenantScoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acme := env.admin(t, "acme")
	beta := env.admin(t, "beta")
	user, _ := env.createUser(t, acme, "op@acme.com", models.RoleOperator)

	if _, err := env.users.Get(ctx, beta, user.ID); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected not found across organizations, got %v", err)
	}
	if _, err := env.users.Update(ctx, beta, user.ID, models.UserPatch{JobTitle: strPtr("Boss")}); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected not found for cross-tenant update, got %v", err)
	}
	if _, err := env.users.Remove(ctx, beta, user.ID); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected not found for cross-tenant remove, got %v", err)
	}

	detail, err := env.users.Get(ctx, acme, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.ID != user.ID || detail.AssignedMachines == nil {
		t.Fatalf("unexpected detail %+v", detail)
	}
}

func TestGetUserIncludesAssignedMachines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "acme")
	operator, _ := env.createUser(t, admin, "op@acme.com", models.RoleOperator)
	machines := NewMachineService(env.store)

	machine, err := machines.Create(ctx, admin, models.NewMachine{Name: "Excavator 1", Type: "excavator"})
	if err != nil {
		t.Fatalf("create machine: %v", err)
	}
	if _, err := machines.Assign(ctx, admin, machine.ID, models.MachineAssignment{OperatorID: &operator.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	detail, err := env.users.Get(ctx, admin, operator.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.AssignedMachines) != 1 {
		t.Fatalf("expected 1 assigned machine, got %d", len(detail.AssignedMachines))
	}
	got := detail.AssignedMachines[0]
	if got.ID != machine.ID || got.Name != "Excavator 1" || got.Type != "excavator" || got.Status != models.MachineStatusActive {
		t.Fatalf("unexpected machine summary %+v", got)
	}
}

func TestSelfUpdateDropsPrivilegedFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "acme")
	user, operator := env.createUser(t, admin, "op@acme.com", models.RoleOperator)

	role := models.RoleAdmin
	active := false
	licenses := []string{"crane"}
	updated, err := env.users.Update(ctx, operator, user.ID, models.UserPatch{
		SelfProfilePatch: models.SelfProfilePatch{FirstName: strPtr("Ali"), Phone: strPtr("+15550100")},
		Email:            strPtr("other@acme.com"),
		Role:             &role,
		JobTitle:         strPtr("Chief"),
		Licenses:         &licenses,
		IsActive:         &active,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FirstName != "Ali" || updated.Phone == nil || *updated.Phone != "+15550100" {
		t.Fatalf("expected profile fields to change, got %+v", updated)
	}

	stored, err := env.users.Get(ctx, admin, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Role != models.RoleOperator {
		t.Fatalf("expected role unchanged, got %s", stored.Role)
	}
	if stored.Email != "op@acme.com" || stored.JobTitle != nil || len(stored.Licenses) != 0 || !stored.IsActive {
		t.Fatalf("expected privileged fields unchanged, got %+v", stored.User)
	}
	if stored.FirstName != "Ali" {
		t.Fatalf("expected first name persisted, got %s", stored.FirstName)
	}
}

func TestUpdateOtherUserDenied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "acme")
	target, _ := env.createUser(t, admin, "target@acme.com", models.RoleOperator)
	_, operator := env.createUser(t, admin, "op@acme.com", models.RoleOperator)
	_, manager := env.createUser(t, admin, "manager@acme.com", models.RoleManager)

	for _, actor := range []models.Actor{operator, manager} {
		_, err := env.users.Update(ctx, actor, target.ID, models.UserPatch{
			SelfProfilePatch: models.SelfProfilePatch{FirstName: strPtr("Hacked")},
		})
		if !errors.Is(err, policy.ErrForbidden) {
			t.Fatalf("expected forbidden for %s, got %v", actor.Role, err)
		}
	}

	stored, err := env.users.Get(ctx, admin, target.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.FirstName != "Test" {
		t.Fatalf("expected no change, got first name %s", stored.FirstName)
	}
}

func TestAdminUpdatesAnyField(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "acme")
	user, _ := env.createUser(t, admin, "op@acme.com", models.RoleOperator)

	role := models.RoleManager
	specialties := []string{"hydraulics", "welding"}
	updated, err := env.users.Update(ctx, admin, user.ID, models.UserPatch{
		Email:       strPtr("Lead@Acme.com"),
		Role:        &role,
		JobTitle:    strPtr("Site lead"),
		Specialties: &specialties,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Email != "lead@acme.com" || updated.Role != models.RoleManager {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if updated.JobTitle == nil || *updated.JobTitle != "Site lead" || len(updated.Specialties) != 2 {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if updated.OrganizationID != "acme" {
		t.Fatalf("expected organization unchanged, got %s", updated.OrganizationID)
	}
}

func TestAdminUpdateDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "acme")
	env.createUser(t, admin, "taken@acme.com", models.RoleOperator)
	user, _ := env.createUser(t, admin, "op@acme.com", models.RoleOperator)

	_, err := env.users.Update(ctx, admin, user.ID, models.UserPatch{Email: strPtr("taken@acme.com")})
	if !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestRemoveIsSoft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "acme")
	user, operator := env.createUser(t, admin, "op@acme.com", models.RoleOperator)

	if _, err := env.users.Remove(ctx, operator, user.ID); !errors.Is(err, policy.ErrForbidden) {
		t.Fatalf("expected forbidden for operator, got %v", err)
	}

	message, err := env.users.Remove(ctx, admin, user.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if message != "User deactivated successfully" {
		t.Fatalf("unexpected message %q", message)
	}

	stored, err := env.users.Get(ctx, admin, user.ID)
	if err != nil {
		t.Fatalf("expected record to remain, got %v", err)
	}
	if stored.IsActive {
		t.Fatalf("expected user to be inactive")
	}
	if stored.Email != user.Email || stored.FirstName != user.FirstName || stored.Role != user.Role {
		t.Fatalf("expected no other field to change, got %+v", stored.User)
	}

	if _, err := env.users.Remove(ctx, admin, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPasswordVerification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "acme")
	user, operator := env.createUser(t, admin, "op@acme.com", models.RoleOperator)

	if _, err := env.users.Authenticate(ctx, "acme", "op@acme.com", "password123"); err != nil {
		t.Fatalf("expected created password to verify, got %v", err)
	}
	if _, err := env.users.Authenticate(ctx, "acme", "op@acme.com", "password124"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected other plaintext to fail, got %v", err)
	}

	err := env.users.ChangePassword(ctx, operator, "wrong-password", "new-password-1")
	var denied *policy.DeniedError
	if !errors.As(err, &denied) || denied.Reason != "current password is incorrect" {
		t.Fatalf("expected incorrect current password, got %v", err)
	}

	if err := env.users.ChangePassword(ctx, operator, "password123", "new-password-1"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := env.users.Authenticate(ctx, "acme", "op@acme.com", "new-password-1"); err != nil {
		t.Fatalf("expected new password to verify, got %v", err)
	}
	if _, err := env.users.Authenticate(ctx, "acme", "op@acme.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password to fail, got %v", err)
	}

	stored, err := env.store.FindUser(ctx, operator.Scope(), user.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "new-password-1" {
		t.Fatalf("expected password to be stored hashed")
	}
}

func TestChangePasswordWithoutHash(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "acme")
	user, operator := env.createUser(t, admin, "op@acme.com", models.RoleOperator)
	if err := env.store.SetPasswordHash(ctx, operator.Scope(), user.ID, ""); err != nil {
		t.Fatalf("clear hash: %v", err)
	}

	if err := env.users.ChangePassword(ctx, operator, "password123", "new-password-1"); !errors.Is(err, policy.ErrForbidden) {
		t.Fatalf("expected forbidden without stored hash, got %v", err)
	}
}

func TestAuthenticateRejectsInactiveUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "acme")
	user, _ := env.createUser(t, admin, "op@acme.com", models.RoleOperator)

	logged, err := env.users.Authenticate(ctx, "acme", "OP@acme.com", "password123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if logged.LastLogin == nil || logged.PasswordHash != "" {
		t.Fatalf("expected last login set and hash stripped, got %+v", logged)
	}

	if _, err := env.users.Authenticate(ctx, "beta", "op@acme.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected other organization to fail, got %v", err)
	}

	if _, err := env.users.Remove(ctx, admin, user.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := env.users.Authenticate(ctx, "acme", "op@acme.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected inactive user to fail, got %v", err)
	}
	if _, err := env.users.Identify(ctx, models.Actor{UserID: user.ID, OrganizationID: "acme", Role: models.RoleOperator}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected identify to reject inactive user, got %v", err)
	}
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "acme")
	other := env.admin(t, "beta")
	env.createUser(t, other, "hidden@beta.com", models.RoleOperator)

	for _, email := range []string{"anna@acme.com", "bob@acme.com", "carl@acme.com", "dina@acme.com"} {
		env.createUser(t, admin, email, models.RoleOperator)
	}
	manager, _ := env.createUser(t, admin, "mike@acme.com", models.RoleManager)
	if _, err := env.users.Remove(ctx, admin, manager.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	page, err := env.users.List(ctx, admin, models.UserQuery{Limit: 2, Page: 2, SortBy: "email", SortOrder: "asc"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Meta.Total != 6 || page.Meta.TotalPages != 3 || page.Meta.Page != 2 || page.Meta.Limit != 2 {
		t.Fatalf("unexpected meta %+v", page.Meta)
	}
	if len(page.Data) != 2 || page.Data[0].Email != "bob@acme.com" || page.Data[1].Email != "carl@acme.com" {
		t.Fatalf("unexpected page %+v", page.Data)
	}

	role := models.RoleOperator
	page, err = env.users.List(ctx, admin, models.UserQuery{Role: &role})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Meta.Total != 4 || page.Meta.Limit != 20 || page.Meta.Page != 1 {
		t.Fatalf("unexpected role filter meta %+v", page.Meta)
	}

	inactive := false
	page, err = env.users.List(ctx, admin, models.UserQuery{IsActive: &inactive})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Meta.Total != 1 || page.Data[0].ID != manager.ID {
		t.Fatalf("expected only the inactive manager, got %+v", page.Data)
	}

	page, err = env.users.List(ctx, admin, models.UserQuery{Search: "DINA"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Meta.Total != 1 || page.Data[0].Email != "dina@acme.com" {
		t.Fatalf("expected case-insensitive search hit, got %+v", page.Data)
	}
	for _, user := range page.Data {
		if user.PasswordHash != "" {
			t.Fatalf("expected sanitized users in list")
		}
	}

	page, err = env.users.List(ctx, admin, models.UserQuery{Search: "nobody"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Meta.Total != 0 || page.Meta.TotalPages != 0 || page.Data == nil {
		t.Fatalf("unexpected empty page %+v", page)
	}
}

func TestLocationTracking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "acme")
	user, operator := env.createUser(t, admin, "op@acme.com", models.RoleOperator)
	idle, _ := env.createUser(t, admin, "idle@acme.com", models.RoleOperator)
	_, manager := env.createUser(t, admin, "manager@acme.com", models.RoleManager)

	location, err := env.users.UpdateLocation(ctx, operator, user.ID, models.LocationUpdate{
		Latitude: 41.01, Longitude: 28.97, Address: strPtr("Yard 3"),
	})
	if err != nil {
		t.Fatalf("update location: %v", err)
	}
	if location.ID != user.ID || location.Latitude == nil || *location.Latitude != 41.01 || location.LocationUpdatedAt == nil {
		t.Fatalf("unexpected location %+v", location)
	}

	if _, err := env.users.UpdateLocation(ctx, operator, idle.ID, models.LocationUpdate{Latitude: 1, Longitude: 1}); !errors.Is(err, policy.ErrForbidden) {
		t.Fatalf("expected forbidden for another user's location, got %v", err)
	}
	if _, err := env.users.OperatorsWithLocation(ctx, operator); !errors.Is(err, policy.ErrForbidden) {
		t.Fatalf("expected forbidden for operator, got %v", err)
	}

	operators, err := env.users.OperatorsWithLocation(ctx, manager)
	if err != nil {
		t.Fatalf("operators: %v", err)
	}
	if len(operators) != 1 {
		t.Fatalf("expected only the located operator, got %d", len(operators))
	}
	if operators[0].ID != user.ID || operators[0].Latitude != 41.01 || operators[0].Longitude != 28.97 {
		t.Fatalf("unexpected operator %+v", operators[0])
	}
	if operators[0].AssignedMachines == nil {
		t.Fatalf("expected assigned machines to be an empty list")
	}

	if _, err := env.users.Remove(ctx, admin, user.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	operators, err = env.users.OperatorsWithLocation(ctx, admin)
	if err != nil {
		t.Fatalf("operators: %v", err)
	}
	if len(operators) != 0 {
		t.Fatalf("expected inactive operator to be excluded, got %d", len(operators))
	}
}

func TestLocationForMissingUser(t *testing.T) {
	env := newTestEnv(t)
	missing := models.Actor{UserID: "00000000-0000-0000-0000-000000000000", OrganizationID: "acme", Role: models.RoleOperator}

	_, err := env.users.UpdateLocation(context.Background(), missing, missing.UserID, models.LocationUpdate{Latitude: 1, Longitude: 2})
	if !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBiometricAndNotifications(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t, "acme")
	user, operator := env.createUser(t, admin, "op@acme.com", models.RoleOperator)

	enabled, err := env.users.ToggleBiometric(ctx, operator, true)
	if err != nil || !enabled {
		t.Fatalf("expected biometric enabled, got %v %v", enabled, err)
	}

	off := false
	on := true
	settings, err := env.users.UpdateNotificationSettings(ctx, operator, models.NotificationPatch{
		EmailNotifications: &off,
		SMSNotifications:   &on,
	})
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	want := models.NotificationSettings{
		EmailNotifications: false,
		PushNotifications:  true,
		SMSNotifications:   true,
		ChecklistReminders: true,
	}
	if settings != want {
		t.Fatalf("expected %+v, got %+v", want, settings)
	}

	stored, err := env.users.Get(ctx, admin, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.BiometricEnabled || stored.Settings() != want {
		t.Fatalf("expected settings persisted, got %+v", stored.User)
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, created, err := env.users.EnsureAdmin(ctx, "acme", "root@acme.com", "admin-password")
	if err != nil || !created {
		t.Fatalf("expected admin created, got %v %v", created, err)
	}
	second, created, err := env.users.EnsureAdmin(ctx, "acme", "root@acme.com", "admin-password")
	if err != nil || created {
		t.Fatalf("expected existing admin, got %v %v", created, err)
	}
	if first.ID != second.ID || second.Role != models.RoleAdmin {
		t.Fatalf("unexpected admin %+v", second)
	}
}

type countingHasher struct {
	auth.PasswordHasher
	verified []string
}

func (h *countingHasher) Verify(hash, password string) bool {
	h.verified = append(h.verified, hash)
	return h.PasswordHasher.Verify(hash, password)
}

func TestAuthenticateUnknownEmailStillHashes(t *testing.T) {
	st := memory.NewStore()
	hasher := &countingHasher{PasswordHasher: auth.NewBcryptHasher(bcrypt.MinCost)}
	users := NewUserService(st, hasher)
	ctx := context.Background()
	if _, _, err := users.EnsureAdmin(ctx, "acme", "admin@acme.com", "admin-password"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := users.Authenticate(ctx, "acme", "ghost@acme.com", "whatever-password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected invalid credentials, got %v", err)
		}
	}
	if len(hasher.verified) != 2 {
		t.Fatalf("expected a hash verification per unknown email, got %d", len(hasher.verified))
	}
	if hasher.verified[0] == "" || hasher.verified[0] != hasher.verified[1] {
		t.Fatalf("expected one reusable placeholder hash, got %q", hasher.verified)
	}
	if _, err := users.Authenticate(ctx, "beta", "admin@acme.com", "admin-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials across organizations, got %v", err)
	}
	if len(hasher.verified) != 3 {
		t.Fatalf("expected verification for the other organization too, got %d", len(hasher.verified))
	}
}
