// Package registry manages the list of trips known to one user and the
// device's current-trip selection. The list itself is a synchronized value
// under the user's profile document; the selection is device-local and is
// what namespaces every trip-scoped synchronized value.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"tripkit/bind"
	"tripkit/docstore/docstore"
	"tripkit/store"
	"tripkit/trip"
)

// Registry is the trip list plus the current-trip selection.
type Registry struct {
	bctx   bind.Context
	local  *store.KV
	remote docstore.Store

	trips   *bind.Binding[[]trip.Trip]
	current *bind.Binding[string]
}

// New binds the registry for the given context. With an empty UserID or a
// nil remote store the registry works local-only; otherwise the trip list
// syncs through the user's profile document.
func New(bctx bind.Context, local *store.KV, remote docstore.Store) (*Registry, error) {
	trips, err := bind.New(bind.KeyTrips, []trip.Trip{}, bctx, local, remote)
	if err != nil {
		return nil, fmt.Errorf("registry: bind trips: %w", err)
	}
	current, err := bind.New(bind.KeyCurrentTrip, "", bctx, local, remote)
	if err != nil {
		trips.Close()
		return nil, fmt.Errorf("registry: bind selection: %w", err)
	}
	return &Registry{
		bctx:    bctx,
		local:   local,
		remote:  remote,
		trips:   trips,
		current: current,
	}, nil
}

// Trips returns the registered trips.
func (r *Registry) Trips() []trip.Trip {
	return r.trips.Value()
}

// CurrentTripID returns the selected trip ID, or "" when none is selected.
func (r *Registry) CurrentTripID() string {
	return r.current.Value()
}

// Current returns the selected trip, if any.
func (r *Registry) Current() (trip.Trip, bool) {
	id := r.current.Value()
	if id == "" {
		return trip.Trip{}, false
	}
	for _, t := range r.trips.Value() {
		if t.ID == id {
			return t, true
		}
	}
	return trip.Trip{}, false
}

// Get returns the trip with the given ID.
func (r *Registry) Get(id string) (trip.Trip, error) {
	for _, t := range r.trips.Value() {
		if t.ID == id {
			return t, nil
		}
	}
	return trip.Trip{}, trip.ErrNotFound
}

// Add registers a trip and returns it with its identifier filled in.
//
// A trip arriving without an ID is a fresh creation: it gets a time-based
// identifier, a default theme color if none was picked, join-resolution
// metadata in the collaborator-visible location, and an auto-generated
// schedule skeleton. A trip arriving with an ID is a join — the identifier
// was supplied out-of-band by a collaborator — and is stored as-is;
// joining an ID already present is rejected.
func (r *Registry) Add(t trip.Trip) (trip.Trip, error) {
	if strings.TrimSpace(t.Title) == "" {
		return trip.Trip{}, fmt.Errorf("%w: title is required", trip.ErrValidation)
	}

	joined := t.ID != ""
	if !joined {
		t.ID = NewTripID()
	}
	if t.ThemeColor == "" {
		t.ThemeColor = trip.DefaultThemeColor
	}
	if t.Destinations == nil {
		t.Destinations = []string{}
	}

	err := r.trips.Update(func(trips []trip.Trip) ([]trip.Trip, error) {
		if joined {
			for _, existing := range trips {
				if existing.ID == t.ID {
					return nil, fmt.Errorf("%w: %s", trip.ErrDuplicateTrip, t.ID)
				}
			}
		}
		return append(trips[:len(trips):len(trips)], t), nil
	})
	if err != nil {
		return trip.Trip{}, err
	}

	if !joined {
		r.writeMetadata(t)
		r.generateSchedule(t)
	}
	return t, nil
}

// Update merges the non-nil fields of u into the trip with the given ID.
// The ID itself is immutable.
func (r *Registry) Update(id string, u trip.TripUpdate) (trip.Trip, error) {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return trip.Trip{}, fmt.Errorf("%w: title is required", trip.ErrValidation)
	}

	var merged trip.Trip
	err := r.trips.Update(func(trips []trip.Trip) ([]trip.Trip, error) {
		for i, t := range trips {
			if t.ID != id {
				continue
			}
			if u.Title != nil {
				t.Title = *u.Title
			}
			if u.StartDate != nil {
				t.StartDate = *u.StartDate
			}
			if u.EndDate != nil {
				t.EndDate = *u.EndDate
			}
			if u.ThemeColor != nil {
				t.ThemeColor = *u.ThemeColor
			}
			if u.Destinations != nil {
				t.Destinations = *u.Destinations
			}

			next := make([]trip.Trip, len(trips))
			copy(next, trips)
			next[i] = t
			merged = t
			return next, nil
		}
		return nil, trip.ErrNotFound
	})
	if err != nil {
		return trip.Trip{}, err
	}
	return merged, nil
}

// Delete removes the trip from the registry and clears the selection if it
// pointed at the removed trip. The trip's synchronized documents are left
// in place; a collaborator holding the ID can still use them.
func (r *Registry) Delete(id string) error {
	err := r.trips.Update(func(trips []trip.Trip) ([]trip.Trip, error) {
		next := make([]trip.Trip, 0, len(trips))
		found := false
		for _, t := range trips {
			if t.ID == id {
				found = true
				continue
			}
			next = append(next, t)
		}
		if !found {
			return nil, trip.ErrNotFound
		}
		return next, nil
	})
	if err != nil {
		return err
	}

	err = r.current.Update(func(cur string) (string, error) {
		if cur == id {
			return "", nil
		}
		return cur, nil
	})
	if err != nil {
		return fmt.Errorf("registry: clear selection: %w", err)
	}
	return nil
}

// Select makes id the current trip. Every trip-scoped binding constructed
// after this point resolves under the new namespace; callers owning old
// bindings must close them first so a stale-path delivery cannot overwrite
// fresher state.
func (r *Registry) Select(id string) error {
	if _, err := r.Get(id); err != nil {
		return err
	}
	return r.current.Set(id)
}

// Close tears down the registry's subscriptions.
func (r *Registry) Close() {
	r.trips.Close()
	r.current.Close()
}

// NewTripID returns a fresh time-based trip identifier. Millisecond
// resolution is monotonic enough for identifiers created by a single user
// on a single device, and the resulting decimal string survives copy-paste
// between collaborators.
func NewTripID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// writeMetadata publishes the join-resolution metadata for a newly created
// trip. Requires a remote store and a signed-in user; fire-and-forget like
// every remote write.
func (r *Registry) writeMetadata(t trip.Trip) {
	if r.remote == nil || r.bctx.UserID == "" {
		return
	}
	raw, err := json.Marshal(t)
	if err != nil {
		log.Printf("registry: marshal metadata for %s: %v", t.ID, err)
		return
	}
	go func() {
		if err := r.remote.Write(context.Background(), docstore.TripMetadataPath(t.ID), raw, true); err != nil {
			log.Printf("registry: write metadata for %s: %v", t.ID, err)
		}
	}()
}

// generateSchedule stores an itinerary skeleton for a freshly created
// trip. Malformed dates are logged and generation is skipped; the trip
// itself is already created and stays that way.
func (r *Registry) generateSchedule(t trip.Trip) {
	days, err := GenerateSchedule(t.StartDate, t.EndDate)
	if err != nil {
		log.Printf("registry: skipping schedule generation for %s: %v", t.ID, err)
		return
	}

	// The schedule belongs to the new trip's namespace, which is usually
	// not the selected one yet, so it is written through a binding bound
	// to that trip explicitly.
	sctx := bind.Context{UserID: r.bctx.UserID, TripID: t.ID}
	b, err := bind.New(bind.KeySchedule, []trip.ScheduleDay{}, sctx, r.local, r.remote)
	if err != nil {
		log.Printf("registry: bind schedule for %s: %v", t.ID, err)
		return
	}
	defer b.Close()
	if err := b.Set(days); err != nil {
		log.Printf("registry: store schedule for %s: %v", t.ID, err)
	}
}
