package registry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripkit/bind"
	"tripkit/docstore/docstore"
	"tripkit/docstore/mem"
	"tripkit/registry"
	"tripkit/store"
	"tripkit/trip"
)

func setupLocal(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := registry.New(bind.Context{}, store.NewMemory(), nil)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func TestAddTrip(t *testing.T) {
	r := setupLocal(t)

	// Test 1: Successfully create a trip
	created, err := r.Add(trip.Trip{Title: "Tokyo"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID, "a fresh trip should get an identifier")
	assert.Equal(t, trip.DefaultThemeColor, created.ThemeColor, "a fresh trip should get the default theme color")
	assert.NotNil(t, created.Destinations)

	trips := r.Trips()
	require.Len(t, trips, 1)
	assert.Equal(t, created.ID, trips[0].ID)

	// Test 2: Empty title is rejected
	_, err = r.Add(trip.Trip{Title: "   "})
	assert.ErrorIs(t, err, trip.ErrValidation)
}

func TestAddTripKeepsChosenColor(t *testing.T) {
	r := setupLocal(t)

	created, err := r.Add(trip.Trip{Title: "Seoul", ThemeColor: "#E6A4B4"})
	require.NoError(t, err)
	assert.Equal(t, "#E6A4B4", created.ThemeColor)
}

func TestJoinTrip(t *testing.T) {
	r := setupLocal(t)

	// Joining stores the supplied identifier as-is.
	joined, err := r.Add(trip.Trip{ID: "1748805600000", Title: "Shared Trip"})
	require.NoError(t, err)
	assert.Equal(t, "1748805600000", joined.ID)

	// Joining the same identifier again is rejected.
	_, err = r.Add(trip.Trip{ID: "1748805600000", Title: "Shared Trip"})
	assert.ErrorIs(t, err, trip.ErrDuplicateTrip)
}

func TestUpdateTrip(t *testing.T) {
	r := setupLocal(t)
	created, err := r.Add(trip.Trip{Title: "Old Title", StartDate: "2026-09-01", EndDate: "2026-09-03"})
	require.NoError(t, err)

	// Test 1: Merge only the provided fields
	newTitle := "New Title"
	updated, err := r.Update(created.ID, trip.TripUpdate{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "New Title", updated.Title)
	assert.Equal(t, "2026-09-01", updated.StartDate, "untouched fields must survive")
	assert.Equal(t, created.ID, updated.ID)

	// Test 2: Empty title is rejected
	empty := ""
	_, err = r.Update(created.ID, trip.TripUpdate{Title: &empty})
	assert.ErrorIs(t, err, trip.ErrValidation)

	// Test 3: Unknown trip
	_, err = r.Update("no-such-trip", trip.TripUpdate{Title: &newTitle})
	assert.ErrorIs(t, err, trip.ErrNotFound)
}

func TestDeleteTrip(t *testing.T) {
	r := setupLocal(t)
	created, err := r.Add(trip.Trip{Title: "Doomed"})
	require.NoError(t, err)
	require.NoError(t, r.Select(created.ID))

	// Deleting the selected trip clears the selection.
	require.NoError(t, r.Delete(created.ID))
	assert.Empty(t, r.Trips())
	assert.Empty(t, r.CurrentTripID())

	// Deleting again fails.
	assert.ErrorIs(t, r.Delete(created.ID), trip.ErrNotFound)
}

func TestDeleteOtherTripKeepsSelection(t *testing.T) {
	r := setupLocal(t)
	kept, err := r.Add(trip.Trip{Title: "Kept"})
	require.NoError(t, err)
	doomed, err := r.Add(trip.Trip{Title: "Doomed"})
	require.NoError(t, err)
	require.NoError(t, r.Select(kept.ID))

	require.NoError(t, r.Delete(doomed.ID))
	assert.Equal(t, kept.ID, r.CurrentTripID())
}

func TestSelectTrip(t *testing.T) {
	r := setupLocal(t)
	created, err := r.Add(trip.Trip{Title: "Tokyo"})
	require.NoError(t, err)

	// Test 1: Selecting an unknown trip fails and leaves the selection alone
	assert.ErrorIs(t, r.Select("no-such-trip"), trip.ErrNotFound)
	assert.Empty(t, r.CurrentTripID())

	// Test 2: Successful selection
	require.NoError(t, r.Select(created.ID))
	assert.Equal(t, created.ID, r.CurrentTripID())

	current, ok := r.Current()
	require.True(t, ok)
	assert.Equal(t, created.ID, current.ID)
}

func TestCurrentWithoutSelection(t *testing.T) {
	r := setupLocal(t)
	_, ok := r.Current()
	assert.False(t, ok)
}

func TestAddTripGeneratesSchedule(t *testing.T) {
	local := store.NewMemory()
	r, err := registry.New(bind.Context{}, local, nil)
	require.NoError(t, err)
	defer r.Close()

	created, err := r.Add(trip.Trip{Title: "Kyoto", StartDate: "2026-09-01", EndDate: "2026-09-03"})
	require.NoError(t, err)

	var days []trip.ScheduleDay
	require.True(t, local.Get("trip_"+created.ID+"_schedule", &days),
		"trip creation should store a schedule skeleton")
	require.Len(t, days, 3)
	assert.Equal(t, "Day 1", days[0].Day)
	assert.Equal(t, "9/1", days[0].Date)
	assert.Empty(t, days[0].Events)
}

func TestAddTripSkipsScheduleOnBadDates(t *testing.T) {
	local := store.NewMemory()
	r, err := registry.New(bind.Context{}, local, nil)
	require.NoError(t, err)
	defer r.Close()

	// Creation still succeeds; only schedule generation is skipped.
	created, err := r.Add(trip.Trip{Title: "No Dates"})
	require.NoError(t, err)

	var days []trip.ScheduleDay
	assert.False(t, local.Get("trip_"+created.ID+"_schedule", &days))
}

func TestAddTripWritesJoinMetadata(t *testing.T) {
	local := store.NewMemory()
	remote := mem.NewStore()
	r, err := registry.New(bind.Context{UserID: "u1"}, local, remote)
	require.NoError(t, err)
	defer r.Close()

	created, err := r.Add(trip.Trip{Title: "Osaka"})
	require.NoError(t, err)

	// The metadata write is fire-and-forget; poll the document.
	path := docstore.TripMetadataPath(created.ID)
	_, ch, err := remote.Subscribe(path)
	require.NoError(t, err)
	select {
	case snap := <-ch:
		assert.True(t, snap.Exists())
		assert.Contains(t, string(snap.Data()), `"Osaka"`)
	case <-time.After(time.Second):
		t.Fatal("join metadata was never written")
	}
}

func TestJoinDoesNotOverwriteMetadata(t *testing.T) {
	local := store.NewMemory()
	remote := mem.NewStore()
	r, err := registry.New(bind.Context{UserID: "u1"}, local, remote)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Add(trip.Trip{ID: "1748805600000", Title: "Joined"})
	require.NoError(t, err)

	// A join must not republish metadata or a schedule: the creator owns
	// those documents.
	_, ch, err := remote.Subscribe(docstore.TripMetadataPath("1748805600000"))
	require.NoError(t, err)
	select {
	case <-ch:
		t.Fatal("joining wrote trip metadata")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNewTripID(t *testing.T) {
	id := registry.NewTripID()
	assert.NotEmpty(t, id)
	for _, c := range id {
		assert.True(t, c >= '0' && c <= '9', "trip IDs are decimal strings")
	}
}
