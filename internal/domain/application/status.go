package application

import (
	"database/sql/driver"
	"fmt"
)

// Status represents the lifecycle state of an application
type Status string

const (
	StatusEntered  Status = "ENTERED"
	StatusAccepted Status = "ACCEPTED"
	StatusApproved Status = "APPROVED"
)

var allStatuses = []Status{
	StatusEntered,
	StatusAccepted,
	StatusApproved,
}

// AllStatuses returns every status in lifecycle order
func AllStatuses() []Status {
	return append([]Status{}, allStatuses...)
}

// String returns the canonical name of the status
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is a known application status
func (s Status) IsValid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus converts a canonical name into a status
func ParseStatus(name string) (Status, error) {
	s := Status(name)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown application status %q", name)
	}
	return s, nil
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value implements driver.Valuer
func (s Status) Value() (driver.Value, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("unknown application status %q", string(s))
	}
	return string(s), nil
}

// Scan implements sql.Scanner
func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	case nil:
		return fmt.Errorf("application status is null")
	default:
		return fmt.Errorf("cannot scan %T into application status", src)
	}
}
