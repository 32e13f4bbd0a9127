package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Filter is the value of a connection-filter argument. It is always sent as
// a GraphQL variable.
type Filter map[string]any

func (f Filter) op(field, op string, v any) Filter {
	m, ok := f[field].(map[string]any)
	if !ok {
		m = map[string]any{}
		f[field] = m
	}
	m[op] = v
	return f
}

func (f Filter) Eq(field string, v any) Filter      { return f.op(field, "equalTo", v) }
func (f Filter) In(field string, v []string) Filter { return f.op(field, "in", v) }
func (f Filter) Like(field, v string) Filter        { return f.op(field, "includesInsensitive", v) }
func (f Filter) Gte(field string, v any) Filter     { return f.op(field, "greaterThanOrEqualTo", v) }
func (f Filter) Lte(field string, v any) Filter     { return f.op(field, "lessThanOrEqualTo", v) }
func (f Filter) Lt(field string, v any) Filter      { return f.op(field, "lessThan", v) }
func (f Filter) IsNull(field string, v bool) Filter { return f.op(field, "isNull", v) }

// EqIf adds an equalTo clause when v is set.
func (f Filter) EqIf(field, v string) Filter {
	if v != "" {
		f.Eq(field, v)
	}
	return f
}

// Or adds an any-of group.
func (f Filter) Or(alts ...Filter) Filter {
	f["or"] = alts
	return f
}

// Keyword matches name or description.
func (f Filter) Keyword(kw string) Filter {
	kw = strings.TrimSpace(kw)
	if kw == "" {
		return f
	}
	return f.Or(Filter{}.Like("name", kw), Filter{}.Like("desc", kw))
}

// ValidationError is a bad argument detected before any upstream call.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return invalid("%s is required", field)
	}
	return nil
}

// oneOf upper-cases v and checks it against allowed. Empty v yields def.
func oneOf(field, v, def string, allowed ...string) (string, error) {
	if v == "" {
		return def, nil
	}
	up := strings.ToUpper(strings.TrimSpace(v))
	for _, a := range allowed {
		if up == a {
			return a, nil
		}
	}
	return "", invalid("Invalid %s %q. Must be one of: %s", field, v, strings.Join(allowed, ", "))
}

var stateIDs = []string{"ACTIVE", "DELETED", "INACTIVE"}

// stateID validates a stateId argument, defaulting to ACTIVE.
func stateID(v string) (string, error) {
	return oneOf("stateId", v, "ACTIVE", stateIDs...)
}

const (
	defaultFirst = 50
	maxFirst     = 500
)

type Page struct {
	First  int `json:"first,omitempty"`
	Offset int `json:"offset,omitempty"`
}

func (p Page) vars(vars map[string]any) map[string]any {
	first := p.First
	if first <= 0 {
		first = defaultFirst
	}
	if first > maxFirst {
		first = maxFirst
	}
	vars["first"] = first
	if p.Offset > 0 {
		vars["offset"] = p.Offset
	}
	return vars
}

const dateLayout = "2006-01-02"

// parseDate accepts YYYY-MM-DD or RFC 3339.
func parseDate(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Time{}, invalid("Invalid %s %q. Use YYYY-MM-DD", field, v)
}

// dateRange adds gte/lte clauses on field for the optional bounds.
func dateRange(f Filter, field, afterName, after, beforeName, before string) error {
	if after != "" {
		t, err := parseDate(afterName, after)
		if err != nil {
			return err
		}
		f.Gte(field, dayStart(t).Format(time.RFC3339))
	}
	if before != "" {
		t, err := parseDate(beforeName, before)
		if err != nil {
			return err
		}
		f.Lte(field, dayEnd(t).Format(time.RFC3339))
	}
	return nil
}

// dayRange is dateRange for plain date columns.
func dayRange(f Filter, field, afterName, after, beforeName, before string) error {
	if after != "" {
		t, err := parseDate(afterName, after)
		if err != nil {
			return err
		}
		f.Gte(field, t.Format(dateLayout))
	}
	if before != "" {
		t, err := parseDate(beforeName, before)
		if err != nil {
			return err
		}
		f.Lte(field, t.Format(dateLayout))
	}
	return nil
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayEnd(t time.Time) time.Time {
	return dayStart(t).Add(24*time.Hour - time.Millisecond)
}

// dueDate normalizes an optional date argument to YYYY-MM-DD.
func dueDate(field, v string) (string, error) {
	if v == "" {
		return "", nil
	}
	t, err := parseDate(field, v)
	if err != nil {
		return "", err
	}
	return t.Format(dateLayout), nil
}
