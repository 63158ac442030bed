// Package input defines the per-tick pointer sample the core consumes and a
// small scripted source of samples for demos and scenario tests.
package input

import "github.com/go-gl/mathgl/mgl64"

// ButtonState is the edge/level state of one button for a single tick.
type ButtonState struct {
	Pressed  bool // went down this tick
	Held     bool // is down this tick
	Released bool // went up this tick
}

func Down() ButtonState { return ButtonState{Pressed: true, Held: true} }
func Hold() ButtonState { return ButtonState{Held: true} }
func Up() ButtonState   { return ButtonState{Released: true} }

// PointerSample is what the presentation layer reports once per tick.
// Position is in screen space with the origin at the bottom-left corner.
type PointerSample struct {
	Position mgl64.Vec2
	Left     ButtonState
	Right    ButtonState
}

// Idle is a sample with no buttons involved.
func Idle(pos mgl64.Vec2) PointerSample { return PointerSample{Position: pos} }
