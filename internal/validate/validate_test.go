package validate

import (
	"errors"
	"testing"
)

func TestIsEmail(t *testing.T) {
	cases := []struct {
		value string
		valid bool
	}{
		{"op@acme.com", true},
		{"first.last@sub.example.org", true},
		{"", false},
		{"op", false},
		{"op@acme", false},
		{"Op <op@acme.com>", false},
		{"op @acme.com", false},
	}
	for _, tt := range cases {
		if got := IsEmail(tt.value); got != tt.valid {
			t.Fatalf("IsEmail(%q)=%v, want %v", tt.value, got, tt.valid)
		}
	}
}

func TestCheckerCollectsViolations(t *testing.T) {
	var c Checker
	c.Email("email", "nope")
	c.Length("firstName", "A", 2, 100)
	c.Length("lastName", "Doe", 2, 100)
	c.Range("latitude", 91, -90, 90)
	c.Range("longitude", -180, -180, 180)
	c.OneOf("role", "owner", "admin", "manager", "operator")

	err := c.Err()
	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected Errors, got %T", err)
	}
	want := []string{
		"email must be an email",
		"firstName must be longer than or equal to 2 characters",
		"latitude must not be greater than 90",
		"role must be one of the following values: admin, manager, operator",
	}
	got := errs.Messages()
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("message %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCheckerNoViolations(t *testing.T) {
	var c Checker
	c.Length("password", "secret-pass", 8, 100)
	c.MaxLength("phone", "+15550100", 20)
	c.Strings("licenses", []string{"forklift", "crane"}, 100)
	if err := c.Err(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
