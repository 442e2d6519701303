package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Concrete errors wrap one of these; callers match with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
)

// FolderNotFound reports a folder id that does not exist.
func FolderNotFound(id string) error {
	return fmt.Errorf("folder %s: %w", id, ErrNotFound)
}

// FolderExists reports a folder name (or id) that is already taken.
func FolderExists(nameOrID string) error {
	return fmt.Errorf("folder %q: %w", nameOrID, ErrAlreadyExists)
}

// LinkNotFound reports a link id that does not exist.
func LinkNotFound(id string) error {
	return fmt.Errorf("link %s: %w", id, ErrNotFound)
}

// LinkExists reports a link id collision.
func LinkExists(id string) error {
	return fmt.Errorf("link %s: %w", id, ErrAlreadyExists)
}
