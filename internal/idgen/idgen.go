package idgen

import (
	"strconv"

	"github.com/google/uuid"
)

// NewFunc returns a new globally unique identifier. Tests may replace it.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new identifier.
func New() string { return NewFunc() }

// Snapshot returns a deterministic identifier for a definition version so
// that re-publishing the same version addresses the same snapshot record.
func Snapshot(definitionID string, version int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(definitionID+"@"+strconv.Itoa(version))).String()
}
