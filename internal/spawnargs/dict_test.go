package spawnargs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/seed/internal/geom"
)

func TestDict_SetAndLookup(t *testing.T) {
	d := New()
	d.Set("Model", "models/rock.lwo")
	d.Set("model", "models/stone.lwo")

	assert.Equal(t, 1, d.Len())
	assert.Equal(t, "models/stone.lwo", d.GetString("MODEL", ""))
	assert.Equal(t, "fallback", d.GetString("missing", "fallback"))
}

func TestDict_Typed(t *testing.T) {
	d := FromPairs(
		KeyValue{"density", "0.5"},
		KeyValue{"max_entities", "40"},
		KeyValue{"combine", "0"},
		KeyValue{"origin", "1 2 3"},
		KeyValue{"rotate", "0 90 0"},
		KeyValue{"garbage", "abc"},
	)

	assert.InDelta(t, 0.5, d.GetFloat("density", 1), 1e-9)
	assert.Equal(t, 40, d.GetInt("max_entities", 0))
	assert.False(t, d.GetBool("combine", true))
	assert.True(t, d.GetBool("missing", true))
	assert.Equal(t, geom.Vec3{1, 2, 3}, d.GetVector("origin", geom.Vec3{}))
	assert.Equal(t, geom.Angles{Yaw: 90}, d.GetAngles("rotate", geom.Angles{}))
	assert.Zero(t, d.GetFloat("garbage", 7))
}

func TestDict_MatchPrefix(t *testing.T) {
	d := FromPairs(
		KeyValue{"skin", "a"},
		KeyValue{"model", "m"},
		KeyValue{"skin_2", "b"},
		KeyValue{"Skin3", "c"},
	)

	got := d.MatchPrefix("skin")
	assert.Equal(t, []KeyValue{{"skin", "a"}, {"skin_2", "b"}, {"Skin3", "c"}}, got)
}

func TestDict_DeleteAndInherit(t *testing.T) {
	base := FromPairs(KeyValue{"a", "1"}, KeyValue{"b", "2"})
	d := FromPairs(KeyValue{"b", "3"}, KeyValue{"c", "4"})
	d.Inherit(base)

	assert.Equal(t, "3", d.GetString("b", ""))
	assert.Equal(t, "1", d.GetString("a", ""))

	d.Delete("b")
	assert.False(t, d.Has("b"))
	assert.Equal(t, "4", d.GetString("c", ""))
	assert.Equal(t, 2, d.Len())
}

func TestChain(t *testing.T) {
	c := Chain{
		Template:     FromPairs(KeyValue{"seed_spacing", "5"}),
		Distribution: FromPairs(KeyValue{"spacing", "10"}, KeyValue{"floor", "1"}),
	}

	assert.InDelta(t, 5, c.Float("seed_spacing", "spacing", 0), 1e-9)
	assert.True(t, c.Bool("seed_floor", "floor", false))
	assert.Equal(t, "none", c.String("seed_falloff", "falloff", "none"))
}
