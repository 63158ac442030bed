package feed

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/rtscore/internal/core/events"
	"github.com/zeusync/rtscore/internal/core/models"
)

const (
	TypeUnitSpawned    = "unit.spawned"
	TypeUnitDespawned  = "unit.despawned"
	TypeUnitSelected   = "unit.selected"
	TypeUnitDeselected = "unit.deselected"
	TypeMoveOrdered    = "unit.move_ordered"
	TypeDragChanged    = "drag.changed"
	TypeDragCleared    = "drag.cleared"
)

// Message is the JSON frame sent to viewers. Only the fields relevant to
// Type are set.
type Message struct {
	Type         string      `json:"type"`
	Time         time.Time   `json:"time"`
	Unit         string      `json:"unit,omitempty"`
	Name         string      `json:"name,omitempty"`
	Capabilities string      `json:"capabilities,omitempty"`
	Destination  *mgl64.Vec3 `json:"destination,omitempty"`
	Rect         *Rect       `json:"rect,omitempty"`
	Selected     *int        `json:"selected,omitempty"`
}

// Rect is a screen rectangle with a bottom-left origin.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func rectOf(r models.Rect) *Rect {
	return &Rect{X: r.Min.X(), Y: r.Min.Y(), Width: r.Width, Height: r.Height}
}

func spawnedMessage(e events.UnitSpawned, at time.Time) Message {
	return Message{
		Type:         TypeUnitSpawned,
		Time:         at,
		Unit:         e.Unit.ID().String(),
		Name:         e.Unit.Name(),
		Capabilities: e.Unit.Capabilities().String(),
	}
}

func despawnedMessage(e events.UnitDespawned, at time.Time) Message {
	return Message{Type: TypeUnitDespawned, Time: at, Unit: e.ID.String(), Name: e.Name}
}

func selectedMessage(e events.UnitSelected, at time.Time) Message {
	return Message{Type: TypeUnitSelected, Time: at, Unit: e.Unit.ID().String(), Name: e.Unit.Owner().Name()}
}

func deselectedMessage(e events.UnitDeselected, at time.Time) Message {
	return Message{Type: TypeUnitDeselected, Time: at, Unit: e.Unit.ID().String(), Name: e.Unit.Owner().Name()}
}

func moveMessage(e events.MoveOrdered, at time.Time) Message {
	dest := e.Destination
	return Message{Type: TypeMoveOrdered, Time: at, Unit: e.ID.String(), Destination: &dest}
}

func dragChangedMessage(e events.DragRegionChanged, at time.Time) Message {
	return Message{Type: TypeDragChanged, Time: at, Rect: rectOf(e.Rect)}
}

func dragClearedMessage(e events.DragRegionCleared, at time.Time) Message {
	selected := e.Selected
	return Message{Type: TypeDragCleared, Time: at, Rect: rectOf(e.Rect), Selected: &selected}
}
