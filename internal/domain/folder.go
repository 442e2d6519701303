package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DefaultFolderColor is applied when a folder is created without a color.
const DefaultFolderColor = "#000000"

// Folder is a named, colored container of links.
//
// Links is the membership list. It is kept in sync with Link.Folder by the
// repository layer; storage itself enforces nothing.
type Folder struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is a random UUID assigned at creation.
	ID string `json:"id"`

	// Name is unique among folders (case-sensitive), enforced at creation.
	Name string `json:"name"`

	// Color is a hex color string, e.g. "#007AFF".
	Color string `json:"color"`

	// Status mirrors Link.Status. Folders are always active today.
	Status Status `json:"status"`

	// ─────────────────────────────
	// Membership
	// ─────────────────────────────

	// Links holds member link IDs in insertion order.
	Links []string `json:"links"`

	// Parent is reserved for nested folders and is not interpreted.
	Parent string `json:"parent,omitempty"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks the fields every persisted folder must satisfy.
func (f Folder) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("folder name is required: %w", ErrInvalidInput)
	}
	if !f.Status.Valid() {
		return fmt.Errorf("unknown folder status %q: %w", f.Status, ErrInvalidInput)
	}
	return nil
}

// Contains reports whether linkID is a member of the folder.
func (f Folder) Contains(linkID string) bool {
	return slices.Contains(f.Links, linkID)
}
