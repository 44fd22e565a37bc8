package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripkit/docstore/mem"
	"tripkit/store"
	"tripkit/trip"
)

func setupSessions(t *testing.T) *sessions {
	t.Helper()
	s := newSessions(func(userID string) *store.KV { return store.NewMemory() }, mem.NewStore())
	t.Cleanup(s.close)
	return s
}

func TestTripSessionsIsolateUserCaches(t *testing.T) {
	s := setupSessions(t)

	a, err := s.trip("u1", "42")
	require.NoError(t, err)
	_, err = a.packing.AddItem("Essentials", "medication")
	require.NoError(t, err)

	// A different user on the same trip must start from the defaults, not
	// from u1's private list.
	b, err := s.trip("u2", "42")
	require.NoError(t, err)
	for _, g := range b.packing.Groups() {
		for _, item := range g.Items {
			assert.NotEqual(t, "medication", item.Name, "u1's packing item leaked into u2's checklist")
		}
	}
}

func TestRegistriesIsolatedPerUser(t *testing.T) {
	s := setupSessions(t)

	r1, err := s.registry("u1")
	require.NoError(t, err)
	_, err = r1.Add(trip.Trip{Title: "Kyoto"})
	require.NoError(t, err)

	r2, err := s.registry("u2")
	require.NoError(t, err)
	assert.Empty(t, r2.Trips(), "u1's trip list leaked into u2's registry")
}

func TestSessionsReuseOneCachePerUser(t *testing.T) {
	calls := make(map[string]int)
	s := newSessions(func(userID string) *store.KV {
		calls[userID]++
		return store.NewMemory()
	}, mem.NewStore())
	t.Cleanup(s.close)

	_, err := s.registry("u1")
	require.NoError(t, err)
	_, err = s.trip("u1", "42")
	require.NoError(t, err)
	_, err = s.trip("u1", "43")
	require.NoError(t, err)
	_, err = s.trip("u2", "42")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"u1": 1, "u2": 1}, calls)
}
