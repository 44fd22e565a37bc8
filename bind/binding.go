package bind

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"tripkit/docstore/docstore"
	"tripkit/libs/diff"
	"tripkit/store"
)

// EchoWindow is the fallback timeout for echo suppression. A pending local
// write is normally cleared when its own remote delivery comes back; if the
// network is so slow that nothing returns within this window, the pending
// entry expires and later deliveries are treated as authoritative again.
const EchoWindow = 10 * time.Second

// Binding presents one logical key as a value plus a setter, regardless of
// whether the key is cloud-synced and regardless of authentication or trip
// selection. Every mutation hits the in-memory value and the local cache
// synchronously; the remote write, when one applies, is fire-and-forget.
type Binding[T any] struct {
	key    string
	res    Resolution
	local  *store.KV
	remote docstore.Store

	mu      sync.Mutex
	value   T
	pending []pendingWrite // serialized local writes awaiting their remote echoes, oldest first

	subID uuid.UUID
	done  chan struct{}
}

// pendingWrite is one local write whose remote echo has not come back yet.
type pendingWrite struct {
	raw json.RawMessage
	at  time.Time
}

// New resolves key against ctx and returns a bound value.
//
// The initial value is def; if the local cache holds a decodable entry it
// replaces def immediately, so the first read never waits on the network.
// For cloud-resolved keys with a non-nil remote store, a subscription is
// established whose deliveries become the authoritative value.
func New[T any](key string, def T, ctx Context, local *store.KV, remote docstore.Store) (*Binding[T], error) {
	b := &Binding[T]{
		key:    key,
		res:    Resolve(key, ctx),
		local:  local,
		remote: remote,
		value:  def,
		done:   make(chan struct{}),
	}

	if raw, ok := local.GetRaw(b.res.LocalKey); ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			b.value = cached
		} else {
			// Corrupt cache entries count as absent; def stands.
			log.Printf("bind: cached %q is undecodable, using default: %v", b.res.LocalKey, err)
		}
	}

	if b.res.Scope != ScopeLocalOnly && remote != nil {
		id, ch, err := remote.Subscribe(b.res.Path)
		if err != nil {
			return nil, err
		}
		b.subID = id
		go b.receive(ch)
	}

	return b, nil
}

// Value returns the current value. Callers must treat it as read-only and
// mutate through Set.
func (b *Binding[T]) Value() T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

// Resolution returns the storage decision this binding was built with.
func (b *Binding[T]) Resolution() Resolution {
	return b.res
}

// Set makes v the current value. The in-memory value and the local cache
// are updated before Set returns, so the writer always reads its own
// writes. When a remote document applies, the write is issued
// asynchronously and its eventual echo is suppressed; a failed remote
// write is logged and dropped, leaving the local copy as the fallback
// source of truth until the next delivery.
func (b *Binding[T]) Set(v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.commit(v, raw)
	b.mu.Unlock()
	return nil
}

// Update applies fn to the current value and commits the result, all inside
// one critical section, so concurrent read-modify-write mutations can never
// lose each other's changes. An error from fn aborts the update and leaves
// the value untouched; fn must not call back into the binding.
func (b *Binding[T]) Update(fn func(T) (T, error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next, err := fn(b.value)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return err
	}
	b.commit(next, raw)
	return nil
}

// commit stores the new value in memory and in the local cache, queues the
// echo-suppression entry and kicks off the remote write. The cache write
// happens under b.mu so the cache can never order against the in-memory
// value. Caller must hold b.mu.
func (b *Binding[T]) commit(v T, raw json.RawMessage) {
	b.value = v
	b.local.SetRaw(b.res.LocalKey, raw)

	if b.res.Scope == ScopeLocalOnly || b.remote == nil {
		return
	}
	b.pending = append(b.pending, pendingWrite{raw: raw, at: time.Now()})
	go func() {
		if err := b.remote.Write(context.Background(), b.res.Path, raw, true); err != nil {
			log.Printf("bind: remote write for %q failed: %v", b.key, err)
		}
	}()
}

// Close tears down the remote subscription, if any. The binding remains
// usable as a local-only value afterwards.
func (b *Binding[T]) Close() {
	select {
	case <-b.done:
		return
	default:
	}
	close(b.done)
	if b.subID != uuid.Nil && b.remote != nil {
		if err := b.remote.DeSubscribe(b.subID); err != nil {
			log.Printf("bind: de-subscribe %q: %v", b.key, err)
		}
	}
}

// receive consumes subscription deliveries until the channel closes or the
// binding is closed.
func (b *Binding[T]) receive(ch <-chan docstore.Snapshot) {
	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return
			}
			b.onDelivery(snap)
		case <-b.done:
			return
		}
	}
}

// onDelivery applies one snapshot. The delivered value becomes the
// authoritative in-memory value and is written into the local cache, so
// the device keeps an offline-capable copy — unless the delivery is the
// echo of one of our own pending writes, in which case nothing changed and
// the matching pending entry is consumed.
func (b *Binding[T]) onDelivery(snap docstore.Snapshot) {
	if !snap.Exists() {
		// Absence is not authoritative; the local value stands.
		return
	}
	data := snap.Data()

	b.mu.Lock()
	for len(b.pending) > 0 && time.Since(b.pending[0].at) >= EchoWindow {
		// The echo never came back; stop waiting for it.
		b.pending = b.pending[1:]
	}
	for i, p := range b.pending {
		if diff.EqualJSON(p.raw, data) {
			// One of our own writes coming back. Entries queued before it
			// are older writes of ours; their echoes must not win either,
			// so they are dropped along with the match.
			b.pending = b.pending[i+1:]
			b.mu.Unlock()
			return
		}
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		b.mu.Unlock()
		log.Printf("bind: undecodable delivery for %q: %v", b.key, err)
		return
	}
	b.value = v
	// Caching the canonical copy locally cannot loop: this path never
	// issues a remote write.
	b.local.SetRaw(b.res.LocalKey, data)
	b.mu.Unlock()
}
