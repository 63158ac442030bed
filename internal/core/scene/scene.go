// Package scene is an in-memory stand-in for an engine's physics and
// rendering queries: a static camera, spherical unit bodies and a flat
// ground plane.
package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/rtscore/internal/core/models"
	"github.com/zeusync/rtscore/internal/core/observability/log"
)

const parallelEpsilon = 1e-9

type Option func(*Scene)

func WithGroundHeight(h float64) Option {
	return func(s *Scene) { s.groundHeight = h }
}

func WithLogger(l log.Log) Option {
	return func(s *Scene) {
		if l != nil {
			s.logger = l
		}
	}
}

// Scene answers the selection manager's ray and box queries. Bodies are
// kept in insertion order so box queries are deterministic.
type Scene struct {
	camera       Camera
	groundHeight float64
	logger       log.Log

	bodies []*Body
	index  map[models.UnitID]*Body
}

func New(camera Camera, opts ...Option) *Scene {
	s := &Scene{
		camera: camera,
		logger: log.NewNop(),
		index:  make(map[models.UnitID]*Body),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("scene")
	return s
}

func (s *Scene) Camera() Camera        { return s.camera }
func (s *Scene) GroundHeight() float64 { return s.groundHeight }
func (s *Scene) Len() int              { return len(s.bodies) }

// Add places a bound body in the scene.
func (s *Scene) Add(b *Body) error {
	if b == nil || b.unit == nil {
		return ErrUnboundBody
	}
	id := b.unit.ID()
	if _, exists := s.index[id]; exists {
		return fmt.Errorf("add %s: %w", b.unit.Name(), ErrDuplicateBody)
	}
	s.index[id] = b
	s.bodies = append(s.bodies, b)
	s.logger.Debug("body added", log.String("unit", b.unit.Name()), log.Any("position", b.position))
	return nil
}

// Remove takes the body of id out of the scene.
func (s *Scene) Remove(id models.UnitID) bool {
	b, ok := s.index[id]
	if !ok {
		return false
	}
	delete(s.index, id)
	for i, it := range s.bodies {
		if it == b {
			s.bodies = append(s.bodies[:i], s.bodies[i+1:]...)
			break
		}
	}
	return true
}

func (s *Scene) Body(id models.UnitID) (*Body, bool) {
	b, ok := s.index[id]
	return b, ok
}

// Bodies returns the bodies in insertion order.
func (s *Scene) Bodies() []*Body { return append([]*Body(nil), s.bodies...) }

// Step advances every moving body and returns how many moved.
func (s *Scene) Step(dt float64) int {
	moved := 0
	for _, b := range s.bodies {
		if b.Step(dt) {
			moved++
		}
	}
	return moved
}

func (s *Scene) ScreenPointToRay(screen mgl64.Vec2) models.Ray {
	return s.camera.ScreenPointToRay(screen)
}

func (s *Scene) WorldToScreen(world mgl64.Vec3) (mgl64.Vec2, bool) {
	return s.camera.WorldToScreen(world)
}

// RaycastSelectable returns the closest live selectable unit whose body
// the ray hits.
func (s *Scene) RaycastSelectable(ray models.Ray) (models.Unit, bool) {
	var (
		hit  models.Unit
		best = math.Inf(1)
	)
	for _, b := range s.bodies {
		if !b.unit.Alive() || !b.unit.Capabilities().Has(models.CapSelectable) {
			continue
		}
		if t, ok := b.intersect(ray); ok && t < best {
			best, hit = t, b.unit
		}
	}
	return hit, hit != nil
}

// RaycastGround intersects the ray with the ground plane.
func (s *Scene) RaycastGround(ray models.Ray) (mgl64.Vec3, bool) {
	dy := ray.Direction.Y()
	if math.Abs(dy) < parallelEpsilon {
		return mgl64.Vec3{}, false
	}
	t := (s.groundHeight - ray.Origin.Y()) / dy
	if t < 0 {
		return mgl64.Vec3{}, false
	}
	p := ray.At(t)
	if !finite(p) {
		return mgl64.Vec3{}, false
	}
	return mgl64.Vec3{p.X(), s.groundHeight, p.Z()}, true
}

// EntitiesInScreenRect returns the live units whose projected body
// overlaps rect, in insertion order. Bodies off screen are skipped.
func (s *Scene) EntitiesInScreenRect(rect models.Rect) []models.Unit {
	right := s.camera.Right()
	var out []models.Unit
	for _, b := range s.bodies {
		if !b.unit.Alive() {
			continue
		}
		center, ok := s.camera.WorldToScreen(b.position)
		if !ok {
			continue
		}
		radius := 0.0
		if edge, visible := s.camera.WorldToScreen(b.position.Add(right.Mul(b.radius))); visible {
			radius = edge.Sub(center).Len()
		}
		if rect.IntersectsCircle(center, radius) {
			out = append(out, b.unit)
		}
	}
	return out
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
