package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/rtscore/internal/core/models"
)

// Viewport is the window rectangle in pixels. Screen coordinates have their
// origin at the bottom-left corner.
type Viewport struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

func (v Viewport) aspect() float64 {
	if v.Height == 0 {
		return 1
	}
	return float64(v.Width) / float64(v.Height)
}

func (v Viewport) contains(p mgl64.Vec2) bool {
	return p.X() >= float64(v.X) && p.X() <= float64(v.X+v.Width) &&
		p.Y() >= float64(v.Y) && p.Y() <= float64(v.Y+v.Height)
}

// Camera is a static perspective camera. FovY is in degrees.
type Camera struct {
	Eye      mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3
	FovY     float64
	Near     float64
	Far      float64
	Viewport Viewport
}

// DefaultCamera looks down at the origin from behind and above, the usual
// RTS angle.
func DefaultCamera() Camera {
	return Camera{
		Eye:      mgl64.Vec3{0, 30, -20},
		Target:   mgl64.Vec3{0, 0, 0},
		Up:       mgl64.Vec3{0, 1, 0},
		FovY:     60,
		Near:     0.1,
		Far:      500,
		Viewport: Viewport{Width: 1280, Height: 720},
	}
}

func (c Camera) View() mgl64.Mat4 { return mgl64.LookAtV(c.Eye, c.Target, c.Up) }

func (c Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FovY), c.Viewport.aspect(), c.Near, c.Far)
}

// Right is the camera's unit right vector in world space.
func (c Camera) Right() mgl64.Vec3 {
	return c.Target.Sub(c.Eye).Cross(c.Up).Normalize()
}

// ScreenPointToRay unprojects a screen point onto the near and far planes
// and returns the ray through both.
func (c Camera) ScreenPointToRay(screen mgl64.Vec2) models.Ray {
	view, proj := c.View(), c.Projection()
	vp := c.Viewport
	near, errNear := mgl64.UnProject(mgl64.Vec3{screen.X(), screen.Y(), 0}, view, proj, vp.X, vp.Y, vp.Width, vp.Height)
	far, errFar := mgl64.UnProject(mgl64.Vec3{screen.X(), screen.Y(), 1}, view, proj, vp.X, vp.Y, vp.Width, vp.Height)
	if errNear != nil || errFar != nil {
		return models.NewRay(c.Eye, c.Target.Sub(c.Eye))
	}
	return models.NewRay(near, far.Sub(near))
}

// WorldToScreen projects a world point. ok is false when the point is
// behind the camera or outside the viewport.
func (c Camera) WorldToScreen(world mgl64.Vec3) (mgl64.Vec2, bool) {
	view, proj := c.View(), c.Projection()
	clip := proj.Mul4(view).Mul4x1(world.Vec4(1))
	if clip.W() <= 0 {
		return mgl64.Vec2{}, false
	}
	vp := c.Viewport
	win := mgl64.Project(world, view, proj, vp.X, vp.Y, vp.Width, vp.Height)
	screen := mgl64.Vec2{win.X(), win.Y()}
	return screen, vp.contains(screen)
}
