package web

import (
	"sync"

	"tripkit/bind"
	"tripkit/docstore/docstore"
	"tripkit/expense"
	"tripkit/packing"
	"tripkit/registry"
	"tripkit/store"
	"tripkit/trip"
)

// sessionKey identifies one (user, trip) pair. The user ID may be empty
// for unauthenticated callers, which yields local-only bindings.
type sessionKey struct {
	userID string
	tripID string
}

// tripSession bundles the live bindings of one (user, trip) pair. It is
// created on first use and kept for the server's lifetime so subscription
// deliveries keep the state current between requests.
type tripSession struct {
	book     *expense.Book
	packing  *packing.Checklist
	schedule *bind.Binding[[]trip.ScheduleDay]
}

// sessions lazily builds and caches registries and trip sessions. Each
// user gets their own local KV from newLocal: the local cache plays the
// role of a device's private storage, so sharing one across users would
// leak user-scoped values (the packing list, the trip registry) between
// accounts.
type sessions struct {
	newLocal func(userID string) *store.KV
	remote   docstore.Store

	mu         sync.Mutex
	locals     map[string]*store.KV
	registries map[string]*registry.Registry
	trips      map[sessionKey]*tripSession
}

func newSessions(newLocal func(userID string) *store.KV, remote docstore.Store) *sessions {
	return &sessions{
		newLocal:   newLocal,
		remote:     remote,
		locals:     make(map[string]*store.KV),
		registries: make(map[string]*registry.Registry),
		trips:      make(map[sessionKey]*tripSession),
	}
}

// localFor returns the user's KV, creating it on first use.
// Caller must hold s.mu.
func (s *sessions) localFor(userID string) *store.KV {
	kv, ok := s.locals[userID]
	if !ok {
		kv = s.newLocal(userID)
		s.locals[userID] = kv
	}
	return kv
}

// registry returns the user's trip registry, creating it on first use.
func (s *sessions) registry(userID string) (*registry.Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.registries[userID]; ok {
		return r, nil
	}
	r, err := registry.New(bind.Context{UserID: userID}, s.localFor(userID), s.remote)
	if err != nil {
		return nil, err
	}
	s.registries[userID] = r
	return r, nil
}

// trip returns the session for one (user, trip) pair, creating its
// bindings on first use.
func (s *sessions) trip(userID, tripID string) (*tripSession, error) {
	key := sessionKey{userID: userID, tripID: tripID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ts, ok := s.trips[key]; ok {
		return ts, nil
	}

	bctx := bind.Context{UserID: userID, TripID: tripID}
	local := s.localFor(userID)
	book, err := expense.NewBook(bctx, local, s.remote)
	if err != nil {
		return nil, err
	}
	checklist, err := packing.NewChecklist(bctx, local, s.remote)
	if err != nil {
		book.Close()
		return nil, err
	}
	schedule, err := bind.New(bind.KeySchedule, []trip.ScheduleDay{}, bctx, local, s.remote)
	if err != nil {
		book.Close()
		checklist.Close()
		return nil, err
	}

	ts := &tripSession{book: book, packing: checklist, schedule: schedule}
	s.trips[key] = ts
	return ts, nil
}

// close tears down every cached binding.
func (s *sessions) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.registries {
		r.Close()
	}
	for _, ts := range s.trips {
		ts.book.Close()
		ts.packing.Close()
		ts.schedule.Close()
	}
	s.locals = make(map[string]*store.KV)
	s.registries = make(map[string]*registry.Registry)
	s.trips = make(map[sessionKey]*tripSession)
}
