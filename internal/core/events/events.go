// Package events holds the payload types carried on the bus. Each type is its
// own channel; payloads are values and are always fully constructed.
package events

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/rtscore/internal/core/models"
)

// UnitSpawned is published by a unit when it is activated.
type UnitSpawned struct {
	Unit models.Unit
}

// UnitDespawned is published once by a unit when it is deactivated.
type UnitDespawned struct {
	ID   models.UnitID
	Name string
}

// UnitSelected carries the Selectable handle of the unit that became selected.
type UnitSelected struct {
	Unit models.Selectable
}

// UnitDeselected carries the Selectable handle of the unit that lost selection.
type UnitDeselected struct {
	Unit models.Selectable
}

// MoveOrdered is a notification that a unit was handed a destination. It is
// not the command path; the order has already been issued when it fires.
type MoveOrdered struct {
	ID          models.UnitID
	Destination mgl64.Vec3
}

// DragRegionChanged is published every tick while a box selection is in
// progress.
type DragRegionChanged struct {
	Anchor  mgl64.Vec2
	Current mgl64.Vec2
	Rect    models.Rect
}

// DragRegionCleared ends a box selection.
type DragRegionCleared struct {
	Rect     models.Rect
	Selected int
}
