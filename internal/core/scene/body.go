package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/rtscore/internal/core/models"
)

// Body is the physical footprint of a unit: a sphere that walks in a
// straight line toward its destination. It implements units.Navigator.
type Body struct {
	unit        models.Unit
	position    mgl64.Vec3
	destination mgl64.Vec3
	radius      float64
	speed       float64
	moving      bool
}

func NewBody(position mgl64.Vec3, radius, speed float64) *Body {
	return &Body{position: position, destination: position, radius: radius, speed: speed}
}

// Bind attaches the unit the body belongs to. A body must be bound before
// it is added to a scene.
func (b *Body) Bind(u models.Unit) { b.unit = u }

func (b *Body) Unit() models.Unit       { return b.unit }
func (b *Body) Position() mgl64.Vec3    { return b.position }
func (b *Body) Destination() mgl64.Vec3 { return b.destination }
func (b *Body) Radius() float64         { return b.radius }
func (b *Body) Speed() float64          { return b.speed }
func (b *Body) Moving() bool            { return b.moving }

// SetDestination starts a move. The body keeps its own height above the
// ground; only the horizontal part of destination is used.
func (b *Body) SetDestination(destination mgl64.Vec3) {
	b.destination = mgl64.Vec3{destination.X(), b.position.Y(), destination.Z()}
	b.moving = !b.destination.ApproxEqual(b.position)
}

// Step advances the body by dt seconds and reports whether it moved.
func (b *Body) Step(dt float64) bool {
	if !b.moving || dt <= 0 {
		return false
	}
	to := b.destination.Sub(b.position)
	dist := to.Len()
	travel := b.speed * dt
	if travel >= dist {
		b.position = b.destination
		b.moving = false
		return true
	}
	b.position = b.position.Add(to.Mul(travel / dist))
	return true
}

// intersect returns the distance along r to the nearest point of the
// sphere in front of the ray origin.
func (b *Body) intersect(r models.Ray) (float64, bool) {
	oc := r.Origin.Sub(b.position)
	half := oc.Dot(r.Direction)
	c := oc.Dot(oc) - b.radius*b.radius
	disc := half*half - c
	if disc < 0 {
		return 0, false
	}
	root := math.Sqrt(disc)
	t := -half - root
	if t < 0 {
		t = -half + root
	}
	return t, t >= 0
}
