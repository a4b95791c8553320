package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamDeterministic(t *testing.T) {
	a := Stream("sEEd42", SaltPlacement)
	b := Stream("sEEd42", SaltPlacement)
	for i := 0; i < 32; i++ {
		assert.Equal(t, a.Int63(), b.Int63())
	}
}

func TestStreamsDiffer(t *testing.T) {
	assert.NotEqual(t, SeedFromString("abc"), SeedFromString("abd"))
	assert.NotEqual(t,
		Stream("abc", SaltPlacement).Int63(),
		Stream("abc", SaltRepair).Int63())
}

func TestNewSeed(t *testing.T) {
	a, b := NewSeed(), NewSeed()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
