// Package mem is the in-memory implementation of the document store. It
// backs unit tests and single-process demo runs; fan-out to subscribers
// uses plain Go channels.
package mem

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"tripkit/docstore/docstore"
)

type subscriber struct {
	path string
	ch   chan docstore.Snapshot
}

// Store is an in-memory docstore.Store.
type Store struct {
	mu   sync.RWMutex
	docs map[string]json.RawMessage
	subs map[uuid.UUID]*subscriber
}

// NewStore creates an empty in-memory document store.
func NewStore() *Store {
	return &Store{
		docs: make(map[string]json.RawMessage),
		subs: make(map[uuid.UUID]*subscriber),
	}
}

// Write stores value at path and fans the new snapshot out to every
// subscriber of that path. The merge flag is accepted for contract parity;
// this store holds nothing but the value itself, so there are no foreign
// fields to preserve.
func (s *Store) Write(_ context.Context, path string, value json.RawMessage, _ bool) error {
	cp := make(json.RawMessage, len(value))
	copy(cp, value)

	s.mu.Lock()
	s.docs[path] = cp
	snap := docstore.NewSnapshot(path, cp)
	for id, sub := range s.subs {
		if sub.path != path {
			continue
		}
		select {
		case sub.ch <- snap:
		default:
			log.Printf("mem: subscriber %s for %q is full, dropping snapshot", id, path)
		}
	}
	s.mu.Unlock()
	return nil
}

// Subscribe registers a subscriber for path. The current document, if any,
// is delivered on the channel before any subsequent change.
func (s *Store) Subscribe(path string) (uuid.UUID, <-chan docstore.Snapshot, error) {
	id := uuid.New()
	sub := &subscriber{path: path, ch: make(chan docstore.Snapshot, 8)}

	s.mu.Lock()
	s.subs[id] = sub
	if doc, ok := s.docs[path]; ok {
		sub.ch <- docstore.NewSnapshot(path, doc)
	}
	s.mu.Unlock()

	return id, sub.ch, nil
}

// DeSubscribe removes a subscriber and closes its channel.
func (s *Store) DeSubscribe(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[id]
	if !ok {
		return fmt.Errorf("mem: subscriber %s not found", id)
	}
	delete(s.subs, id)
	close(sub.ch)
	return nil
}

var _ docstore.Store = (*Store)(nil)
