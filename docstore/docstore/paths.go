package docstore

import "fmt"

// Document path layout. The split between user-scoped and trip-scoped
// prefixes is what makes a trip ID a capability token: everything under
// trips/{tripId}/ is readable and writable by anyone who knows the ID,
// while users/{userId}/ documents belong to one account.

// UserProfilePath addresses a per-user document, e.g. the trip registry.
func UserProfilePath(userID, key string) string {
	return fmt.Sprintf("users/%s/profile/%s", userID, key)
}

// UserTripPath addresses a per-user, per-trip document (private trip data
// such as a personal packing list).
func UserTripPath(userID, tripID, key string) string {
	return fmt.Sprintf("users/%s/trips/%s/%s", userID, tripID, key)
}

// TripSharedPath addresses a document shared by every collaborator who has
// joined the trip.
func TripSharedPath(tripID, key string) string {
	return fmt.Sprintf("trips/%s/data/%s", tripID, key)
}

// TripMetadataPath addresses the join-resolution metadata written once at
// trip creation, so a collaborator holding the ID can resolve the trip.
func TripMetadataPath(tripID string) string {
	return fmt.Sprintf("trips/%s/metadata/main", tripID)
}
