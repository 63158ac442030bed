package models

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half-line in world space. Direction is expected to be normalized.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

func NewRay(origin, direction mgl64.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Rect is an axis-aligned screen rectangle anchored at its minimum corner.
// Width and Height are never negative.
type Rect struct {
	Min    mgl64.Vec2
	Width  float64
	Height float64
}

// RectFromCorners builds a Rect from two arbitrary opposite corners.
func RectFromCorners(a, b mgl64.Vec2) Rect {
	return Rect{
		Min:    mgl64.Vec2{math.Min(a.X(), b.X()), math.Min(a.Y(), b.Y())},
		Width:  math.Abs(b.X() - a.X()),
		Height: math.Abs(b.Y() - a.Y()),
	}
}

func (r Rect) Max() mgl64.Vec2 {
	return mgl64.Vec2{r.Min.X() + r.Width, r.Min.Y() + r.Height}
}

func (r Rect) Contains(p mgl64.Vec2) bool {
	hi := r.Max()
	return p.X() >= r.Min.X() && p.X() <= hi.X() && p.Y() >= r.Min.Y() && p.Y() <= hi.Y()
}

// IntersectsCircle reports whether a circle overlaps the rectangle.
func (r Rect) IntersectsCircle(center mgl64.Vec2, radius float64) bool {
	hi := r.Max()
	cx := mgl64.Clamp(center.X(), r.Min.X(), hi.X())
	cy := mgl64.Clamp(center.Y(), r.Min.Y(), hi.Y())
	dx, dy := center.X()-cx, center.Y()-cy
	return dx*dx+dy*dy <= radius*radius
}
