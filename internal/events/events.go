// Package events publishes link and folder lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Type names a lifecycle transition.
type Type string

const (
	LinkCreated   Type = "link.created"
	LinkUpdated   Type = "link.updated"
	LinkDeleted   Type = "link.deleted"
	FolderCreated Type = "folder.created"
	FolderUpdated Type = "folder.updated"
	FolderDeleted Type = "folder.deleted"
	LinksPurged   Type = "links.purged"
	Imported      Type = "import.completed"
)

// Event is the JSON payload sent for every lifecycle transition.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	EntityID  string    `json:"entityId,omitempty"`
	FolderID  string    `json:"folderId,omitempty"`
	Count     int       `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// New stamps an event with a fresh id and the current time.
func New(t Type, entityID string) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      t,
		EntityID:  entityID,
		Timestamp: time.Now(),
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// conn is the subset of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes events as JSON on subject.<type>.
type NATSPublisher struct {
	conn    conn
	subject string
}

// NewNATSPublisher creates a publisher over an established connection.
func NewNATSPublisher(c conn, subject string) *NATSPublisher {
	return &NATSPublisher{conn: c, subject: subject}
}

// Publish marshals e and sends it. Core NATS publishes are fire-and-forget,
// so ctx is only checked before sending.
func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("nats: marshal event: %w", err)
	}
	subject := p.subject + "." + string(e.Type)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("nats: publish %s: %w", subject, err)
	}
	return nil
}

const defaultConnectTimeout = 5 * time.Second

// Connect dials the NATS server at url.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Timeout(defaultConnectTimeout),
		nats.Name("linkbox"),
	)
	if err != nil {
		return nil, fmt.Errorf("nats: connect: %w", err)
	}
	return nc, nil
}
