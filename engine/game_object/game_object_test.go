package game_object

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGameObjectDefaults(t *testing.T) {
	obj := NewGameObject()
	sx, sy, sz := obj.Scale()
	assert.Equal(t, [3]float32{1, 1, 1}, [3]float32{sx, sy, sz})
	assert.Equal(t, [4]float32{1, 1, 1, 1}, obj.Color())
	assert.False(t, obj.Enabled())
}

func TestGameObjectTransform(t *testing.T) {
	obj := NewGameObject(
		WithID(7),
		WithName("ball"),
		WithEnabled(true),
		WithPosition(1, 2, 3),
		WithScale(2, 2, 2),
	)
	obj.SetRotation(0.1, 0.2, 0.3)
	obj.SetPosition(4, 5, 6)

	pos, scale, rot := obj.TransformData()
	assert.Equal(t, [3]float32{4, 5, 6}, pos)
	assert.Equal(t, [3]float32{2, 2, 2}, scale)
	assert.Equal(t, [3]float32{0.1, 0.2, 0.3}, rot)
	assert.Equal(t, uint64(7), obj.ID())
	assert.Equal(t, "ball", obj.Name())
	assert.True(t, obj.Enabled())
}
