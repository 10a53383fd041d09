package rest

import "time"

const DateLayout = "2006-01-02"

// ParseDate parses a yyyy-mm-dd value, reporting bad input as a validation error.
func ParseDate(field string, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, Invalid("invalid %s %q, expected yyyy-mm-dd", field, value)
	}
	return t, nil
}

// ParseOptionalDate is ParseDate for nullable fields; nil and "" map to nil.
func ParseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := ParseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func FormatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
