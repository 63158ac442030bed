// Package system wires the selection-and-command core into a tickable
// world: bus, registry, selection manager, command router and the
// reference scene.
package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/rtscore/internal/core/command"
	"github.com/zeusync/rtscore/internal/core/events/bus"
	"github.com/zeusync/rtscore/internal/core/input"
	"github.com/zeusync/rtscore/internal/core/models"
	"github.com/zeusync/rtscore/internal/core/observability/log"
	"github.com/zeusync/rtscore/internal/core/registry"
	"github.com/zeusync/rtscore/internal/core/scene"
	"github.com/zeusync/rtscore/internal/core/selection"
	"github.com/zeusync/rtscore/internal/core/units"
)

const (
	DefaultUnitRadius = 0.5
	DefaultUnitSpeed  = 5.0
)

// UnitDef describes a unit to spawn. Empty Capabilities means selectable
// and moveable.
type UnitDef struct {
	Name         string     `yaml:"name"`
	Capabilities []string   `yaml:"capabilities"`
	Position     mgl64.Vec3 `yaml:"position"`
	Radius       float64    `yaml:"radius"`
	Speed        float64    `yaml:"speed"`
}

// Frame is a snapshot of the world after a tick. Digest hashes Selected, so
// a reorder of the same units changes it.
type Frame struct {
	Number   uint64
	Elapsed  time.Duration
	State    selection.State
	Selected []models.UnitID
	Alive    int
	Moving   int
	Digest   uint64
	Orders   uint64
}

// World owns the core components and the units spawned into it. Like the
// selection manager it is driven from a single goroutine.
type World struct {
	bus       *bus.Bus
	registry  *registry.Registry
	selection *selection.Manager
	router    *command.Router
	scene     *scene.Scene
	logger    log.Log

	units map[models.UnitID]*units.Unit
	order []models.UnitID

	frame   uint64
	elapsed time.Duration

	activated   bool
	deactivated bool
}

func NewWorld(
	b *bus.Bus,
	reg *registry.Registry,
	sel *selection.Manager,
	router *command.Router,
	sc *scene.Scene,
	logger log.Log,
) *World {
	if logger == nil {
		logger = log.NewNop()
	}
	return &World{
		bus:       b,
		registry:  reg,
		selection: sel,
		router:    router,
		scene:     sc,
		logger:    logger.Named("world"),
		units:     make(map[models.UnitID]*units.Unit),
	}
}

func (w *World) Bus() *bus.Bus                 { return w.bus }
func (w *World) Registry() *registry.Registry  { return w.registry }
func (w *World) Selection() *selection.Manager { return w.selection }
func (w *World) Router() *command.Router       { return w.router }
func (w *World) Scene() *scene.Scene           { return w.scene }
func (w *World) Active() bool                  { return w.activated && !w.deactivated }

// Activate starts the registry and the selection manager. Only the first
// call has an effect.
func (w *World) Activate() {
	if w.activated {
		return
	}
	w.activated = true
	w.registry.Activate()
	w.selection.Activate()
	w.logger.Info("world activated")
}

// Deactivate despawns every unit in spawn order and then stops the
// components. It runs once; errors from despawn notifications are joined.
func (w *World) Deactivate() error {
	if !w.activated || w.deactivated {
		return nil
	}
	var errs []error
	for _, id := range append([]models.UnitID(nil), w.order...) {
		if err := w.Despawn(id); err != nil {
			errs = append(errs, err)
		}
	}
	w.deactivated = true
	w.selection.Deactivate()
	w.registry.Deactivate()
	w.logger.Info("world deactivated", log.Uint64("frames", w.frame))
	return errors.Join(errs...)
}

// Spawn creates a unit from def, places its body in the scene and
// activates it.
func (w *World) Spawn(def UnitDef) (*units.Unit, error) {
	if !w.Active() {
		return nil, ErrWorldInactive
	}
	caps := models.CapSelectable | models.CapMoveable
	if len(def.Capabilities) > 0 {
		parsed, err := models.ParseCapabilities(def.Capabilities)
		if err != nil {
			return nil, fmt.Errorf("spawn %q: %w", def.Name, err)
		}
		caps = parsed
	}
	radius, speed := def.Radius, def.Speed
	if radius <= 0 {
		radius = DefaultUnitRadius
	}
	if speed <= 0 {
		speed = DefaultUnitSpeed
	}

	body := scene.NewBody(def.Position, radius, speed)
	opts := []units.Option{
		units.WithName(def.Name),
		units.WithCapabilities(caps),
		units.WithLogger(w.logger),
	}
	if caps.Has(models.CapMoveable) {
		opts = append(opts, units.WithNavigator(body))
	}
	u, err := units.New(w.bus, opts...)
	if err != nil {
		return nil, fmt.Errorf("spawn %q: %w", def.Name, err)
	}
	body.Bind(u)
	if err = w.scene.Add(body); err != nil {
		return nil, fmt.Errorf("spawn %q: %w", def.Name, err)
	}
	w.units[u.ID()] = u
	w.order = append(w.order, u.ID())
	if err = u.Activate(); err != nil {
		w.logger.Warn("spawn notification failed", log.String("unit", u.Name()), log.Error(err))
	}
	w.logger.Info("unit spawned",
		log.String("unit", u.Name()),
		log.Stringer("capabilities", caps),
		log.Any("position", def.Position),
	)
	return u, nil
}

// Despawn deactivates the unit and removes its body from the scene.
func (w *World) Despawn(id models.UnitID) error {
	u, ok := w.units[id]
	if !ok {
		return fmt.Errorf("despawn %s: %w", id.Short(), ErrUnknownUnit)
	}
	delete(w.units, id)
	for i, it := range w.order {
		if it == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	w.scene.Remove(id)
	err := u.Deactivate()
	w.logger.Info("unit despawned", log.String("unit", u.Name()))
	return err
}

func (w *World) Unit(id models.UnitID) (*units.Unit, bool) {
	u, ok := w.units[id]
	return u, ok
}

// Units returns the live units in spawn order.
func (w *World) Units() []*units.Unit {
	out := make([]*units.Unit, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.units[id])
	}
	return out
}

// Tick feeds one pointer sample to the selection manager and then advances
// the scene by dt.
func (w *World) Tick(sample input.PointerSample, dt time.Duration) Frame {
	if !w.Active() {
		return w.Frame()
	}
	w.selection.Tick(sample)
	w.scene.Step(dt.Seconds())
	w.frame++
	w.elapsed += dt
	return w.Frame()
}

func (w *World) Frame() Frame {
	moving := 0
	for _, b := range w.scene.Bodies() {
		if b.Moving() {
			moving++
		}
	}
	selected := w.selection.SelectedIDs()
	return Frame{
		Number:   w.frame,
		Elapsed:  w.elapsed,
		State:    w.selection.State(),
		Selected: selected,
		Alive:    w.registry.AliveCount(),
		Moving:   moving,
		Digest:   registry.Digest(selected),
		Orders:   w.router.Issued(),
	}
}
