// Package docstore defines the remote document store contract: whole-value
// writes at a path, plus subscriptions that deliver the current value
// immediately and again on every subsequent change — including changes made
// by the subscribing client itself. Echo suppression is the sync binding's
// job, not the store's.
package docstore

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Snapshot is one observation of a document. A snapshot for a document that
// does not (yet) exist reports Exists() == false and carries no data.
type Snapshot struct {
	path  string
	value json.RawMessage
}

// NewSnapshot builds a snapshot of an existing document.
func NewSnapshot(path string, value json.RawMessage) Snapshot {
	return Snapshot{path: path, value: value}
}

// Path returns the document path this snapshot was taken at.
func (s Snapshot) Path() string { return s.path }

// Exists reports whether the document existed when the snapshot was taken.
func (s Snapshot) Exists() bool { return s.value != nil }

// Data returns the document's value. Nil when the document does not exist.
func (s Snapshot) Data() json.RawMessage { return s.value }

// Store reads and writes whole-document values at a path.
//
// Each path holds one document whose entire logical value is an opaque JSON
// blob; there are no partial-field updates at this layer. merge=true asks
// the backend to leave any fields outside this system's control untouched —
// relevant only when the stored document gains foreign fields.
type Store interface {
	Write(ctx context.Context, path string, value json.RawMessage, merge bool) error

	// Subscribe delivers the current document immediately (if it exists)
	// and every later change on the returned channel. DeSubscribe tears the
	// subscription down and closes the channel.
	Subscribe(path string) (uuid.UUID, <-chan Snapshot, error)
	DeSubscribe(id uuid.UUID) error
}
