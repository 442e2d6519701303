package domain

import (
	"fmt"
	"strings"
	"time"
)

// LinkType classifies what a saved URL points at.
type LinkType string

const (
	LinkTypeYouTube LinkType = "youtube"
	LinkTypeBlog    LinkType = "blog"
	LinkTypeArticle LinkType = "article"
	LinkTypeVideo   LinkType = "video"
	LinkTypeOther   LinkType = "other"
)

// Valid reports whether t is one of the known link types.
func (t LinkType) Valid() bool {
	switch t {
	case LinkTypeYouTube, LinkTypeBlog, LinkTypeArticle, LinkTypeVideo, LinkTypeOther:
		return true
	default:
		return false
	}
}

// Link is a saved URL with its metadata.
//
// A Link optionally belongs to one Folder. When Folder is set, the folder's
// Links slice must contain this link's ID (see the membership synchronizer
// in the repository package).
type Link struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is a random UUID assigned at creation.
	ID string `json:"id"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	// URL is the saved address. Never blank.
	URL string `json:"url"`

	// Title may be empty while metadata is still being fetched.
	Title string `json:"title"`

	// Type is the coarse content classification.
	Type LinkType `json:"type"`

	// Tags are free-form labels, in the order the user added them.
	Tags []string `json:"tags,omitempty"`

	// Memo is an optional user note.
	Memo string `json:"memo,omitempty"`

	// Thumbnail is an optional image URI.
	Thumbnail string `json:"thumbnail,omitempty"`

	// ─────────────────────────────
	// Organization
	// ─────────────────────────────

	// Folder is the owning folder ID. Empty means unfiled.
	Folder string `json:"folder,omitempty"`

	// Status drives soft-delete: deleted links are hidden and purged later.
	Status Status `json:"status"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is refreshed on every mutating write.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks the fields every persisted link must satisfy.
func (l Link) Validate() error {
	if strings.TrimSpace(l.URL) == "" {
		return fmt.Errorf("link url is required: %w", ErrInvalidInput)
	}
	if !l.Type.Valid() {
		return fmt.Errorf("unknown link type %q: %w", l.Type, ErrInvalidInput)
	}
	if !l.Status.Valid() {
		return fmt.Errorf("unknown link status %q: %w", l.Status, ErrInvalidInput)
	}
	return nil
}

// HasTag reports whether the link carries tag (exact match).
func (l Link) HasTag(tag string) bool {
	for _, t := range l.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
