// Package entropy derives reproducible random streams from seed strings.
// Every stochastic choice in map generation draws from a stream named by
// the seed and a salt, so the same seed always yields the same dungeon.
package entropy

import (
	"hash/fnv"
	"math/rand"

	"github.com/google/uuid"
)

// Salts separating independent streams derived from one seed.
const (
	SaltPlacement int64 = 100 // points of interest
	SaltRepair    int64 = 200 // connectivity repair waypoints
	SaltClutter   int64 = 300 // noise field for extra obstacles
)

// SeedFromString hashes a seed string into a 64-bit source seed (FNV-1a).
func SeedFromString(seed string) int64 {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return int64(h.Sum64())
}

// Stream returns a deterministic generator for (seed, salt).
func Stream(seed string, salt int64) *rand.Rand {
	return rand.New(rand.NewSource(SeedFromString(seed) + salt))
}

// NewSeed mints a fresh seed string for runs started without one.
func NewSeed() string {
	return uuid.NewString()
}
