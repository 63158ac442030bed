package units

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/rtscore/internal/core/events"
	"github.com/zeusync/rtscore/internal/core/events/bus"
	"github.com/zeusync/rtscore/internal/core/models"
	"github.com/zeusync/rtscore/internal/core/observability/log"
)

// Navigator is the opaque move agent a Moveable unit delegates to.
type Navigator interface {
	SetDestination(destination mgl64.Vec3)
}

// Indicator is the presentation-side selection marker (decal, outline, ...).
type Indicator interface {
	SetVisible(visible bool)
}

type lifecycle uint8

const (
	created lifecycle = iota
	active
	deactivated
)

var _ models.Unit = (*Unit)(nil)

// Unit is an entity with a fixed capability set. It is not safe for
// concurrent use; the owning world drives it from the tick goroutine.
type Unit struct {
	id        models.UnitID
	name      string
	caps      models.Capability
	bus       *bus.Bus
	navigator Navigator
	indicator Indicator
	logger    log.Log

	state    lifecycle
	selected bool

	selectable selectableHandle
	moveable   moveableHandle
}

// New builds an inactive unit. Call Activate to announce it on the bus.
func New(b *bus.Bus, opts ...Option) (*Unit, error) {
	if b == nil {
		return nil, ErrBusRequired
	}
	o := options{
		id:     models.NewUnitID(),
		caps:   models.CapSelectable | models.CapMoveable,
		logger: log.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.caps == models.CapNone {
		return nil, ErrNoCapabilities
	}
	if o.caps.Has(models.CapMoveable) && o.navigator == nil {
		return nil, ErrNavigatorRequired
	}
	if o.name == "" {
		o.name = "unit-" + o.id.Short()
	}

	u := &Unit{
		id:        o.id,
		name:      o.name,
		caps:      o.caps,
		bus:       b,
		navigator: o.navigator,
		indicator: o.indicator,
		logger:    o.logger.Named("unit").With(log.String("unit", o.name), log.Stringer("id", o.id)),
	}
	u.selectable = selectableHandle{u: u}
	u.moveable = moveableHandle{u: u}
	return u, nil
}

func (u *Unit) ID() models.UnitID               { return u.id }
func (u *Unit) Name() string                    { return u.name }
func (u *Unit) Capabilities() models.Capability { return u.caps }
func (u *Unit) Alive() bool                     { return u.state == active }
func (u *Unit) Selected() bool                  { return u.selected }

func (u *Unit) AsSelectable() (models.Selectable, bool) {
	if !u.caps.Has(models.CapSelectable) {
		return nil, false
	}
	return u.selectable, true
}

func (u *Unit) AsMoveable() (models.Moveable, bool) {
	if !u.caps.Has(models.CapMoveable) {
		return nil, false
	}
	return u.moveable, true
}

// Activate marks the unit alive and publishes UnitSpawned. Only the first
// call has an effect; a deactivated unit cannot be reactivated.
func (u *Unit) Activate() error {
	if u.state != created {
		return nil
	}
	u.state = active
	u.logger.Debug("spawned", log.Stringer("capabilities", u.caps))
	return bus.Publish(u.bus, events.UnitSpawned{Unit: u})
}

// Deactivate deselects the unit if needed, marks it dead and publishes
// UnitDespawned. It runs once; later calls return nil.
func (u *Unit) Deactivate() error {
	if u.state != active {
		if u.state == created {
			u.state = deactivated
		}
		return nil
	}
	var err error
	if u.selected {
		err = u.setSelected(false)
	}
	u.state = deactivated
	u.logger.Debug("despawned")
	return errors.Join(err, bus.Publish(u.bus, events.UnitDespawned{ID: u.id, Name: u.name}))
}

func (u *Unit) setSelected(selected bool) error {
	if u.selected == selected {
		return nil
	}
	if selected && u.state != active {
		return nil
	}
	u.selected = selected
	if u.indicator != nil {
		u.indicator.SetVisible(selected)
	}
	if selected {
		return bus.Publish(u.bus, events.UnitSelected{Unit: u.selectable})
	}
	return bus.Publish(u.bus, events.UnitDeselected{Unit: u.selectable})
}

func (u *Unit) moveTo(destination mgl64.Vec3) {
	if u.state != active {
		return
	}
	u.navigator.SetDestination(destination)
	u.logger.Debug("move ordered", log.Any("destination", destination))
	if err := bus.Publish(u.bus, events.MoveOrdered{ID: u.id, Destination: destination}); err != nil {
		u.logger.Warn("move notification failed", log.Error(err))
	}
}

// selectableHandle and moveableHandle are the capability views handed out
// by the accessors. They compare equal when they wrap the same unit.
type selectableHandle struct{ u *Unit }

func (h selectableHandle) ID() models.UnitID  { return h.u.id }
func (h selectableHandle) Owner() models.Unit { return h.u }
func (h selectableHandle) IsSelected() bool   { return h.u.selected }

func (h selectableHandle) Select() {
	if err := h.u.setSelected(true); err != nil {
		h.u.logger.Warn("select notification failed", log.Error(err))
	}
}

func (h selectableHandle) Deselect() {
	if err := h.u.setSelected(false); err != nil {
		h.u.logger.Warn("deselect notification failed", log.Error(err))
	}
}

type moveableHandle struct{ u *Unit }

func (h moveableHandle) ID() models.UnitID             { return h.u.id }
func (h moveableHandle) Owner() models.Unit            { return h.u }
func (h moveableHandle) MoveTo(destination mgl64.Vec3) { h.u.moveTo(destination) }
