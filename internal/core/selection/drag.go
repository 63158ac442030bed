package selection

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/rtscore/internal/core/models"
)

// State is the left-button gesture state.
type State uint8

const (
	StateIdle State = iota
	StateDragStarted
	StateDragging
	StateDragEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragStarted:
		return "drag-started"
	case StateDragging:
		return "dragging"
	case StateDragEnded:
		return "drag-ended"
	default:
		return "unknown"
	}
}

// DragRegion is the screen rectangle between the press point and the
// current pointer. It only exists while the select button is held.
type DragRegion struct {
	Anchor  mgl64.Vec2
	Current mgl64.Vec2
}

// Delta is the signed offset from Anchor to Current.
func (d DragRegion) Delta() mgl64.Vec2 { return d.Current.Sub(d.Anchor) }

// Rect has non-negative width and height whatever direction the drag went.
func (d DragRegion) Rect() models.Rect { return models.RectFromCorners(d.Anchor, d.Current) }

// Exceeds reports whether the pointer moved more than threshold pixels on
// either axis.
func (d DragRegion) Exceeds(threshold float64) bool {
	delta := d.Delta()
	return math.Abs(delta.X()) > threshold || math.Abs(delta.Y()) > threshold
}
