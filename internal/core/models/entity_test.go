package models

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitIDRoundTrip(t *testing.T) {
	id := NewUnitID()
	assert.False(t, id.IsNil())
	assert.Len(t, id.Short(), 8)

	parsed, err := ParseUnitID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseUnitID("not-a-uuid")
	assert.Error(t, err)
}

func TestCapabilities(t *testing.T) {
	c, err := ParseCapabilities([]string{"Selectable", " moveable "})
	require.NoError(t, err)
	assert.True(t, c.Has(CapSelectable))
	assert.True(t, c.Has(CapMoveable))
	assert.Equal(t, "selectable|moveable", c.String())

	only, err := ParseCapabilities([]string{"selectable"})
	require.NoError(t, err)
	assert.False(t, only.Has(CapMoveable))
	assert.False(t, only.Has(CapNone))
	assert.Equal(t, "none", CapNone.String())

	_, err = ParseCapabilities([]string{"flying"})
	assert.ErrorIs(t, err, ErrUnknownCapability)
}

func TestRectFromCornersIsNonNegative(t *testing.T) {
	r := RectFromCorners(mgl64.Vec2{100, 40}, mgl64.Vec2{20, 90})
	assert.Equal(t, mgl64.Vec2{20, 40}, r.Min)
	assert.Equal(t, 80.0, r.Width)
	assert.Equal(t, 50.0, r.Height)
	assert.Equal(t, mgl64.Vec2{100, 90}, r.Max())

	assert.True(t, r.Contains(mgl64.Vec2{20, 40}))
	assert.True(t, r.Contains(mgl64.Vec2{60, 60}))
	assert.False(t, r.Contains(mgl64.Vec2{101, 60}))
}

func TestRectIntersectsCircle(t *testing.T) {
	r := Rect{Min: mgl64.Vec2{0, 0}, Width: 10, Height: 10}
	assert.True(t, r.IntersectsCircle(mgl64.Vec2{5, 5}, 1))
	assert.True(t, r.IntersectsCircle(mgl64.Vec2{12, 5}, 2.5))
	assert.False(t, r.IntersectsCircle(mgl64.Vec2{12, 5}, 1.5))
}

func TestRayAt(t *testing.T) {
	r := NewRay(mgl64.Vec3{0, 10, 0}, mgl64.Vec3{0, -2, 0})
	assert.InDelta(t, 1.0, r.Direction.Len(), 1e-9)
	p := r.At(4)
	assert.InDelta(t, 6.0, p.Y(), 1e-9)
}
