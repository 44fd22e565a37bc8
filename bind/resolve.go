package bind

import (
	"tripkit/docstore/docstore"
)

// Resolution is the storage decision for one (key, context) pair: where the
// local cache entry lives and, for cloud-bound keys, which remote document
// holds the canonical copy.
type Resolution struct {
	Scope    Scope
	LocalKey string
	// Path is the remote document path. Empty when Scope is ScopeLocalOnly.
	Path string
}

// Resolve maps a logical key and context to its storage locations.
//
// Local cache keys are namespaced per trip ("trip_{id}_{key}") unless the
// key is global or no trip is selected ("global_{key}").
//
// Remote resolution, in order: a key outside the cloud-synced set, or any
// key without an authenticated user, stays local. The registry key goes to
// the user's profile document. User-scoped keys with a selected trip go to
// the per-user trip document. Other cloud keys with a selected trip go to
// the shared trip document. Without a selected trip, non-registry keys
// stay local.
func Resolve(key string, ctx Context) Resolution {
	spec := Keys[key] // zero value: local-only, trip-namespaced

	res := Resolution{Scope: ScopeLocalOnly}
	if !spec.Global && ctx.TripID != "" {
		res.LocalKey = "trip_" + ctx.TripID + "_" + key
	} else {
		res.LocalKey = "global_" + key
	}

	if !spec.CloudSynced || ctx.UserID == "" {
		return res
	}

	switch {
	case spec.Registry:
		res.Scope = ScopeUserProfile
		res.Path = docstore.UserProfilePath(ctx.UserID, key)
	case spec.UserScoped && ctx.TripID != "":
		res.Scope = ScopeUserTrip
		res.Path = docstore.UserTripPath(ctx.UserID, ctx.TripID, key)
	case ctx.TripID != "":
		res.Scope = ScopeTripShared
		res.Path = docstore.TripSharedPath(ctx.TripID, key)
	}
	return res
}
