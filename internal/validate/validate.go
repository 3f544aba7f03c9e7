// Package validate collects field-level violations for request payloads.
package validate

import (
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return e.Field + " " + e.Message
}

type Errors []FieldError

func (e Errors) Error() string {
	return strings.Join(e.Messages(), "; ")
}

func (e Errors) Messages() []string {
	messages := make([]string, 0, len(e))
	for _, item := range e {
		messages = append(messages, item.String())
	}
	return messages
}

type Checker struct {
	errs Errors
}

func (c *Checker) Add(field, message string) {
	c.errs = append(c.errs, FieldError{Field: field, Message: message})
}

func (c *Checker) Check(ok bool, field, message string) {
	if !ok {
		c.Add(field, message)
	}
}

func (c *Checker) Required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		c.Add(field, "should not be empty")
		return false
	}
	return true
}

func (c *Checker) Email(field, value string) {
	if !IsEmail(value) {
		c.Add(field, "must be an email")
	}
}

func (c *Checker) Length(field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	switch {
	case n < min:
		c.Add(field, "must be longer than or equal to "+itoa(min)+" characters")
	case max > 0 && n > max:
		c.Add(field, "must be shorter than or equal to "+itoa(max)+" characters")
	}
}

func (c *Checker) MaxLength(field, value string, max int) {
	c.Length(field, value, 0, max)
}

func (c *Checker) OneOf(field, value string, allowed ...string) {
	for _, item := range allowed {
		if item == value {
			return
		}
	}
	c.Add(field, "must be one of the following values: "+strings.Join(allowed, ", "))
}

func (c *Checker) Range(field string, value, min, max float64) {
	if value < min {
		c.Add(field, "must not be less than "+ftoa(min))
	} else if value > max {
		c.Add(field, "must not be greater than "+ftoa(max))
	}
}

func (c *Checker) UUID(field, value string) {
	if _, err := uuid.Parse(value); err != nil {
		c.Add(field, "must be a UUID")
	}
}

func (c *Checker) Strings(field string, values []string, max int) {
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			c.Add(field, "each value should not be empty")
			return
		}
		if max > 0 && utf8.RuneCountInString(value) > max {
			c.Add(field, "each value must be shorter than or equal to "+itoa(max)+" characters")
			return
		}
	}
}

// Err returns the collected violations, or nil when there are none.
func (c *Checker) Err() error {
	if len(c.errs) == 0 {
		return nil
	}
	out := make(Errors, len(c.errs))
	copy(out, c.errs)
	return out
}

func IsEmail(value string) bool {
	if value == "" || strings.ContainsAny(value, " \t\r\n") {
		return false
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return false
	}
	at := strings.LastIndex(value, "@")
	return at > 0 && strings.Contains(value[at+1:], ".")
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
