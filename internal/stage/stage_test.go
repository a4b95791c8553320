package stage

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gist-rs/the-rust-of-us/internal/agents"
	"github.com/gist-rs/the-rust-of-us/internal/world"
)

func TestDefaultStageSpawns(t *testing.T) {
	doc, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "crypt", doc.Name)

	marks := Landmarks{
		"entrance": {X: 1, Y: 6},
		"grave":    {X: 5, Y: 5},
	}
	spawns, err := doc.Spawns(8, 8, marks)
	require.NoError(t, err)
	require.Len(t, spawns, 4)

	hero := spawns[0]
	assert.Equal(t, "hero", hero.Name)
	assert.Equal(t, agents.KindHuman, hero.Kind)
	assert.Equal(t, world.Cell{X: 1, Y: 6}, hero.Cell)
	assert.Equal(t, 20.0, hero.Attack)
	assert.Equal(t, []string{"brave"}, hero.Mindsets)

	assert.Equal(t, agents.KindMonster, spawns[1].Kind)
	assert.Equal(t, world.Cell{X: 4, Y: 2}, spawns[1].Cell)
	assert.Equal(t, agents.FacingLeft, spawns[1].Facing)
	assert.Equal(t, world.Cell{X: 5, Y: 5}, spawns[2].Cell)
	assert.Equal(t, agents.KindNPC, spawns[3].Kind)
}

func TestLoadRejectsBadDocuments(t *testing.T) {
	_, err := Load(strings.NewReader("name: no id\n"))
	assert.True(t, errors.Is(err, ErrInvalid))

	_, err = Load(strings.NewReader("id: x\nplayers: [{type: man, character_id: a, position: a1, colour: red}]\n"))
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestSpawnsRejectsBadCharacters(t *testing.T) {
	cases := []string{
		"id: x\nplayers: [{type: man, character_id: a, position: z9}]\n",
		"id: x\nplayers: [{type: man, character_id: a, position: a1, look_direction: up}]\n",
		"id: x\nplayers: [{type: man, character_id: a, position: a1, act: dance}]\n",
		"id: x\nplayers: [{type: man, character_id: a, position: a1, kind: dragon}]\n",
		"id: x\nenemies: [{type: bat, character_id: b, position: exit}]\n",
	}
	for _, c := range cases {
		doc, err := Load(strings.NewReader(c))
		require.NoError(t, err)
		_, err = doc.Spawns(8, 8, Landmarks{})
		assert.True(t, errors.Is(err, ErrInvalid), "doc %q", c)
	}
}

func TestKindOverride(t *testing.T) {
	doc, err := Load(strings.NewReader("id: x\nenemies: [{type: wolf, character_id: w, kind: animal, position: EXIT}]\n"))
	require.NoError(t, err)
	spawns, err := doc.Spawns(8, 8, Landmarks{"exit": {X: 3, Y: 1}})
	require.NoError(t, err)
	assert.Equal(t, agents.KindAnimal, spawns[0].Kind)
	assert.Equal(t, world.Cell{X: 3, Y: 1}, spawns[0].Cell)
}

func TestSchemas(t *testing.T) {
	data, err := json.Marshal(Schema())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"character_id"`)
	assert.Contains(t, string(data), `"Stage"`)

	data, err = json.Marshal(BrainSchema())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"first_to_score"`)
}
