package domain

import "fmt"

// Status is the lifecycle state shared by links and folders.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusDeleted:
		return true
	default:
		return false
	}
}

// Visible reports whether an entity in this status should be listed to users.
// Deleted entities stay in storage until the garbage collector purges them.
func (s Status) Visible() bool {
	return s != StatusDeleted
}

// ParseStatus converts user input into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q: %w", raw, ErrInvalidInput)
	}
	return s, nil
}
