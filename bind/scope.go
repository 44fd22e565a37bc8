// Package bind implements the namespaced sync binding: a uniform
// value/set-value pair over a logical key that is backed by the local
// keyed store alone, or by both the local store and a remote document,
// depending on the key's scope and on whether a user and trip are present.
package bind

// Scope identifies where a logical key's canonical copy lives.
type Scope int

const (
	// ScopeLocalOnly keys never leave the device.
	ScopeLocalOnly Scope = iota
	// ScopeUserProfile keys live in one document per user; the trip
	// registry is the only such key.
	ScopeUserProfile
	// ScopeUserTrip keys are per (user, trip): private trip data.
	ScopeUserTrip
	// ScopeTripShared keys are per trip, shared by every collaborator who
	// has joined it.
	ScopeTripShared
)

// KeySpec declares how one logical key is synchronized. The table of specs
// is evaluated once per key; all path branching lives here rather than at
// call sites.
type KeySpec struct {
	// CloudSynced keys get a remote document when a user is present.
	CloudSynced bool
	// UserScoped cloud keys stay private to the user even within a trip.
	UserScoped bool
	// Registry marks the trip-registry key, stored under the user profile.
	Registry bool
	// Global keys are not namespaced by the current trip in the local
	// store (the registry itself, the trip selection).
	Global bool
}

// The application's synchronized keys.
const (
	KeyTrips       = "all-trips"
	KeyCurrentTrip = "current-trip-id"
	KeySchedule    = "schedule"
	KeyExpenses    = "expenses"
	KeyMembers     = "members"
	KeyPacking     = "packing"
)

// Keys is the declarative key table. Unknown keys default to a local-only,
// trip-namespaced KeySpec.
var Keys = map[string]KeySpec{
	KeyTrips:       {CloudSynced: true, Registry: true, Global: true},
	KeyCurrentTrip: {Global: true},
	KeySchedule:    {CloudSynced: true},
	KeyExpenses:    {CloudSynced: true},
	KeyMembers:     {CloudSynced: true},
	KeyPacking:     {CloudSynced: true, UserScoped: true},
}

// Context carries the identity and trip-selection state a binding resolves
// against. It is passed in explicitly so a binding's resolved paths are a
// pure function of (key, UserID, TripID); nothing is read from ambient
// state. An empty UserID means unauthenticated; an empty TripID means no
// trip is selected.
type Context struct {
	UserID string
	TripID string
}
