// Package goch implements the notify.Broker interface with in-process Go
// channels. It is the default for single-instance deployments and the fake
// used by unit tests: a document written by one binding is observed by every
// other binding in the same process.
package goch

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"tripkit/notify/notify"
)

// defaultBuffer is the per-subscriber channel capacity. A subscriber that
// falls further behind than this starts dropping messages (with a log line)
// rather than blocking every publisher.
const defaultBuffer = 8

type subscriber struct {
	path string
	ch   chan notify.DocumentMessage
}

// Broker is a channel-backed notify.Broker.
type Broker struct {
	buffer int

	mu   sync.RWMutex
	subs map[uuid.UUID]*subscriber
}

// NewBroker creates a Broker. bufferSize <= 0 selects the default capacity.
func NewBroker(bufferSize int) *Broker {
	if bufferSize <= 0 {
		bufferSize = defaultBuffer
	}
	return &Broker{
		buffer: bufferSize,
		subs:   make(map[uuid.UUID]*subscriber),
	}
}

// Publish delivers msg to every subscriber of msg.Path. Slow subscribers
// are skipped, never waited for.
func (b *Broker) Publish(msg notify.DocumentMessage) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, sub := range b.subs {
		if sub.path != msg.Path {
			continue
		}
		select {
		case sub.ch <- msg:
		default:
			log.Printf("goch: subscriber %s for %q is full, dropping message", id, msg.Path)
		}
	}
	return nil
}

// Subscribe registers a new subscriber for path.
func (b *Broker) Subscribe(path string) (uuid.UUID, <-chan notify.DocumentMessage, error) {
	id := uuid.New()
	sub := &subscriber{path: path, ch: make(chan notify.DocumentMessage, b.buffer)}

	b.mu.Lock()
	b.subs[id] = sub
	b.mu.Unlock()

	return id, sub.ch, nil
}

// DeSubscribe removes a subscriber and closes its channel.
func (b *Broker) DeSubscribe(id uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[id]
	if !ok {
		return fmt.Errorf("goch: subscriber %s not found", id)
	}
	delete(b.subs, id)
	close(sub.ch)
	return nil
}

var _ notify.Broker = (*Broker)(nil)
