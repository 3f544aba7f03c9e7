package memory

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"smartop/fleet-service/internal/models"
	"smartop/fleet-service/internal/store"
)

func seedUser(t *testing.T, st *Store, org, email, first string, role models.Role, createdAt time.Time) models.User {
	t.Helper()
	user, err := st.CreateUser(context.Background(), models.Scope{OrganizationID: org}, store.CreateUserInput{
		NewUser:   models.NewUser{Email: email, FirstName: first, LastName: "Tester", Role: role},
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func TestListUsers(t *testing.T) {
	st := NewStore()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	seedUser(t, st, "acme", "ann@acme.com", "Ann", models.RoleOperator, base)
	seedUser(t, st, "acme", "bob@acme.com", "Bob", models.RoleManager, base.Add(time.Hour))
	seedUser(t, st, "acme", "cara@acme.com", "Cara", models.RoleOperator, base.Add(2*time.Hour))
	seedUser(t, st, "beta", "dan@beta.com", "Dan", models.RoleOperator, base)

	operator := models.RoleOperator
	tests := []struct {
		name  string
		query models.UserQuery
		want  []string
		total int
	}{
		{name: "newest first by default", query: models.UserQuery{}, want: []string{"Cara", "Bob", "Ann"}, total: 3},
		{name: "ascending by first name", query: models.UserQuery{SortBy: "firstName", SortOrder: "asc"}, want: []string{"Ann", "Bob", "Cara"}, total: 3},
		{name: "unknown sort falls back to createdAt", query: models.UserQuery{SortBy: "password"}, want: []string{"Cara", "Bob", "Ann"}, total: 3},
		{name: "role filter", query: models.UserQuery{Role: &operator}, want: []string{"Cara", "Ann"}, total: 2},
		{name: "search is case insensitive", query: models.UserQuery{Search: "BOB@"}, want: []string{"Bob"}, total: 1},
		{name: "second page", query: models.UserQuery{Page: 2, Limit: 2}, want: []string{"Ann"}, total: 3},
		{name: "page past the end", query: models.UserQuery{Page: 5, Limit: 2}, want: []string{}, total: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, total, err := st.ListUsers(context.Background(), models.Scope{OrganizationID: "acme"}, tt.query)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if total != tt.total {
				t.Fatalf("expected total %d, got %d", tt.total, total)
			}
			if len(users) != len(tt.want) {
				t.Fatalf("expected %d users, got %d", len(tt.want), len(users))
			}
			for i, name := range tt.want {
				if users[i].FirstName != name {
					t.Fatalf("position %d: expected %s, got %s", i, name, users[i].FirstName)
				}
			}
		})
	}
}

func TestEmailUniquePerOrganization(t *testing.T) {
	st := NewStore()
	now := time.Now()
	seedUser(t, st, "acme", "same@example.com", "First", models.RoleOperator, now)
	seedUser(t, st, "beta", "same@example.com", "Other", models.RoleOperator, now)

	_, err := st.CreateUser(context.Background(), models.Scope{OrganizationID: "acme"}, store.CreateUserInput{
		NewUser: models.NewUser{Email: "SAME@example.com", FirstName: "Dup", LastName: "Tester", Role: models.RoleOperator},
	})
	if !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestReviewSubmissionOnlyOnce(t *testing.T) {
	st := NewStore()
	ctx := context.Background()
	scope := models.Scope{OrganizationID: "acme"}
	operator := seedUser(t, st, "acme", "op@acme.com", "Ann", models.RoleOperator, time.Now())
	machine, err := st.CreateMachine(ctx, scope, models.NewMachine{Name: "Grader", Type: "grader", Status: models.MachineStatusActive})
	if err != nil {
		t.Fatalf("create machine: %v", err)
	}
	submission, err := st.CreateSubmission(ctx, scope, operator.ID, models.NewSubmission{
		MachineID: machine.ID,
		Entries:   []models.ChecklistEntry{{Label: "Blade", IsOK: true}},
	})
	if err != nil {
		t.Fatalf("create submission: %v", err)
	}

	input := store.ReviewInput{SubmissionID: submission.ID, Decision: models.DecisionRejected, ReviewerID: "reviewer"}
	if _, err := st.ReviewSubmission(ctx, models.Scope{OrganizationID: "beta"}, input); !errors.Is(err, store.ErrSubmissionNotFound) {
		t.Fatalf("expected not found outside organization, got %v", err)
	}
	reviewed, err := st.ReviewSubmission(ctx, scope, input)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.Status != models.SubmissionRejected || reviewed.ReviewedAt == nil {
		t.Fatalf("unexpected review result %+v", reviewed)
	}
	input.Decision = models.DecisionApproved
	if _, err := st.ReviewSubmission(ctx, scope, input); !errors.Is(err, store.ErrSubmissionNotPending) {
		t.Fatalf("expected not pending, got %v", err)
	}
}

func TestListUsersOrderMatchesDatabase(t *testing.T) {
	st := NewStore()
	ctx := context.Background()
	scope := models.Scope{OrganizationID: "acme"}
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	var ids []string
	for _, email := range []string{"a@acme.com", "b@acme.com", "c@acme.com", "d@acme.com"} {
		ids = append(ids, seedUser(t, st, "acme", email, "Same", models.RoleOperator, created).ID)
	}
	sort.Strings(ids)

	for _, order := range []string{"asc", "desc"} {
		users, _, err := st.ListUsers(ctx, scope, models.UserQuery{SortBy: "createdAt", SortOrder: order})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		for i, user := range users {
			if user.ID != ids[i] {
				t.Fatalf("%s: expected ties broken by ascending id, position %d got %s", order, i, user.ID)
			}
		}
	}

	if err := st.RecordLogin(ctx, scope, ids[2], created.Add(time.Hour)); err != nil {
		t.Fatalf("record login: %v", err)
	}
	if err := st.RecordLogin(ctx, scope, ids[3], created.Add(2*time.Hour)); err != nil {
		t.Fatalf("record login: %v", err)
	}
	tests := []struct {
		order string
		want  []string
	}{
		{order: "asc", want: []string{ids[2], ids[3], ids[0], ids[1]}},
		{order: "desc", want: []string{ids[3], ids[2], ids[0], ids[1]}},
	}
	for _, tt := range tests {
		users, _, err := st.ListUsers(ctx, scope, models.UserQuery{SortBy: "lastLogin", SortOrder: tt.order})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		for i, id := range tt.want {
			if users[i].ID != id {
				t.Fatalf("lastLogin %s: position %d expected %s, got %s", tt.order, i, id, users[i].ID)
			}
		}
	}
}
