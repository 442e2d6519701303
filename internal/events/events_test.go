package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func TestNATSPublisherSubjectAndPayload(t *testing.T) {
	fc := &fakeConn{}
	p := NewNATSPublisher(fc, "linkbox")

	e := New(LinkCreated, "l1")
	e.FolderID = "f1"
	require.NoError(t, p.Publish(context.Background(), e))

	require.Equal(t, []string{"linkbox.link.created"}, fc.subjects)

	var got map[string]any
	require.NoError(t, json.Unmarshal(fc.payloads[0], &got))
	assert.Equal(t, "link.created", got["type"])
	assert.Equal(t, "l1", got["entityId"])
	assert.Equal(t, "f1", got["folderId"])
	assert.NotEmpty(t, got["id"])
	assert.NotContains(t, got, "count")
}

func TestNATSPublisherErrors(t *testing.T) {
	boom := errors.New("boom")
	p := NewNATSPublisher(&fakeConn{err: boom}, "linkbox")
	assert.ErrorIs(t, p.Publish(context.Background(), New(LinkDeleted, "l1")), boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fc := &fakeConn{}
	p = NewNATSPublisher(fc, "linkbox")
	assert.ErrorIs(t, p.Publish(ctx, New(LinkDeleted, "l1")), context.Canceled)
	assert.Empty(t, fc.subjects)
}

func TestNewEventsHaveDistinctIDs(t *testing.T) {
	a, b := New(FolderCreated, "f"), New(FolderCreated, "f")
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), New(Imported, "")))
}
