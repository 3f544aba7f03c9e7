package postgres

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"smartop/fleet-service/internal/store"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "email index", err: &pgconn.PgError{Code: "23505", ConstraintName: usersEmailIndex}, want: store.ErrEmailTaken},
		{name: "other unique", err: &pgconn.PgError{Code: "23505", ConstraintName: "job_assignments_pkey"}, want: store.ErrConflict},
		{name: "foreign key", err: &pgconn.PgError{Code: "23503", ConstraintName: "machines_operator_fkey"}, want: store.ErrConstraint},
		{name: "not null", err: &pgconn.PgError{Code: "23502"}, want: store.ErrConstraint},
		{name: "check", err: &pgconn.PgError{Code: "23514"}, want: store.ErrConstraint},
		{name: "invalid text representation", err: &pgconn.PgError{Code: "22P02"}, want: store.ErrConstraint},
		{name: "value too long", err: &pgconn.PgError{Code: "22001"}, want: store.ErrConstraint},
		{name: "undefined table", err: &pgconn.PgError{Code: "42P01", Message: `relation "users" does not exist`}, want: store.ErrStorage},
		{name: "wrapped driver error", err: fmt.Errorf("query users: %w", &pgconn.PgError{Code: "23503"}), want: store.ErrConstraint},
		{name: "connection failure", err: errors.New("connection refused"), want: store.ErrStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.err)
			if !errors.Is(got, tt.want) {
				t.Fatalf("translate(%v)=%v, want %v", tt.err, got, tt.want)
			}
		})
	}

	if translate(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
	if got := translate(&pgconn.PgError{Code: "42P01"}); errors.Is(got, store.ErrConstraint) {
		t.Fatalf("expected internal fault to stay out of the constraint class")
	}
	if got := translate(pgx.ErrNoRows); !errors.Is(got, store.ErrStorage) || !strings.Contains(got.Error(), "no rows") {
		t.Fatalf("expected unclassified error to keep its cause, got %v", got)
	}
}
