package models

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// UnitID is the stable identity of a unit. Two handles to the same unit
// always carry the same UnitID.
type UnitID uuid.UUID

// NilUnitID is the zero identity; no live unit carries it.
var NilUnitID UnitID

func NewUnitID() UnitID { return UnitID(uuid.New()) }

// ParseUnitID parses the canonical textual form produced by String.
func ParseUnitID(s string) (UnitID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return NilUnitID, fmt.Errorf("parse unit id: %w", err)
	}
	return UnitID(id), nil
}

func (id UnitID) String() string { return uuid.UUID(id).String() }

// Short is the first block of the id, handy in logs.
func (id UnitID) Short() string { return id.String()[:8] }

func (id UnitID) IsNil() bool { return id == NilUnitID }

// Capability is a bit set of the behaviors a unit exposes. It is fixed when
// the unit is created.
type Capability uint8

const (
	CapSelectable Capability = 1 << iota
	CapMoveable

	CapNone Capability = 0
)

var capabilityNames = []struct {
	cap  Capability
	name string
}{
	{CapSelectable, "selectable"},
	{CapMoveable, "moveable"},
}

func (c Capability) Has(other Capability) bool { return other != 0 && c&other == other }

func (c Capability) String() string {
	if c == CapNone {
		return "none"
	}
	names := make([]string, 0, len(capabilityNames))
	for _, cn := range capabilityNames {
		if c.Has(cn.cap) {
			names = append(names, cn.name)
		}
	}
	return strings.Join(names, "|")
}

// ParseCapabilities maps config names ("selectable", "moveable") to a set.
func ParseCapabilities(names []string) (Capability, error) {
	var c Capability
	for _, n := range names {
		found := false
		for _, cn := range capabilityNames {
			if strings.EqualFold(strings.TrimSpace(n), cn.name) {
				c |= cn.cap
				found = true
				break
			}
		}
		if !found {
			return CapNone, fmt.Errorf("%w: %q", ErrUnknownCapability, n)
		}
	}
	return c, nil
}

// Unit is the entity as seen by the core. Capabilities are queried through
// the typed accessors, which return false when the unit lacks the behavior.
type Unit interface {
	ID() UnitID
	Name() string
	Capabilities() Capability
	Alive() bool

	AsSelectable() (Selectable, bool)
	AsMoveable() (Moveable, bool)
}

// Selectable is the handle for units that can be marked selected.
type Selectable interface {
	ID() UnitID
	Owner() Unit
	Select()
	Deselect()
	IsSelected() bool
}

// Moveable is the handle for units that accept a destination.
type Moveable interface {
	ID() UnitID
	Owner() Unit
	MoveTo(destination mgl64.Vec3)
}
