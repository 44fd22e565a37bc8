package trip

import "errors"

// ErrNotFound is returned when the referenced trip, member, expense or
// packing item does not exist in the current state.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails a business rule (empty title,
// non-positive amount, unknown currency, payer not in the member set).
// The failed mutation leaves state unchanged.
var ErrValidation = errors.New("validation error")

// ErrLastMember is returned when deleting the only remaining member of a
// trip's expense context. At least one member must exist at all times.
var ErrLastMember = errors.New("cannot delete the last remaining member")

// ErrDuplicateTrip is returned when joining a trip whose identifier is
// already present in the registry.
var ErrDuplicateTrip = errors.New("trip already exists in the registry")
