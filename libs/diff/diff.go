// Package diff wraps r3labs/diff for comparing synchronized document values.
// Values arrive as raw JSON from different sources (local cache, remote
// echo, collaborator update), so comparison happens on the decoded shape,
// not on the bytes: key order and whitespace differences must not count as
// changes.
package diff

import (
	"encoding/json"

	odiff "github.com/r3labs/diff/v3"
)

// EqualJSON reports whether two raw JSON documents decode to the same value.
// Undecodable input is never equal to anything, including itself, so a
// corrupt delivery is always treated as a change and re-examined by callers.
func EqualJSON(a, b json.RawMessage) bool {
	var av, bv any
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	changes, err := odiff.Diff(av, bv)
	if err != nil {
		return false
	}
	return len(changes) == 0
}
