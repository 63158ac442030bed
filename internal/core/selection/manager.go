// Package selection turns raw pointer samples into selection changes and
// move commands.
//
// The manager owns the selection set. It calls Select/Deselect on unit
// handles directly and hands move targets to a Dispatcher; the bus only
// carries the resulting notifications.
package selection

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/rtscore/internal/core/events"
	"github.com/zeusync/rtscore/internal/core/events/bus"
	"github.com/zeusync/rtscore/internal/core/input"
	"github.com/zeusync/rtscore/internal/core/models"
	"github.com/zeusync/rtscore/internal/core/observability/log"
)

// Camera turns a screen point into a world ray.
type Camera interface {
	ScreenPointToRay(screen mgl64.Vec2) models.Ray
}

// Picker answers ray queries against selectable bodies and the ground.
type Picker interface {
	RaycastSelectable(ray models.Ray) (models.Unit, bool)
	RaycastGround(ray models.Ray) (mgl64.Vec3, bool)
}

// BoxQuery returns the units whose projected footprint overlaps rect.
type BoxQuery interface {
	EntitiesInScreenRect(rect models.Rect) []models.Unit
}

// Dispatcher routes a move target to a selection.
type Dispatcher interface {
	Dispatch(selection []models.Selectable, target mgl64.Vec3) int
}

// Manager is driven once per tick from a single goroutine and is not safe
// for concurrent use.
type Manager struct {
	bus       *bus.Bus
	camera    Camera
	picker    Picker
	query     BoxQuery
	router    Dispatcher
	logger    log.Log
	threshold float64

	set    *Set
	state  State
	region DragRegion

	despawned   *bus.Subscription
	activated   bool
	deactivated bool
}

func NewManager(b *bus.Bus, camera Camera, picker Picker, query BoxQuery, router Dispatcher, opts ...Option) *Manager {
	m := &Manager{
		bus:       b,
		camera:    camera,
		picker:    picker,
		query:     query,
		router:    router,
		logger:    log.NewNop(),
		threshold: DefaultDragThreshold,
		set:       NewSet(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("selection")
	return m
}

// Activate subscribes to UnitDespawned so destroyed units leave the set.
func (m *Manager) Activate() {
	if m.activated {
		return
	}
	m.activated = true
	m.despawned = bus.Subscribe(m.bus, m.onDespawned)
}

// Deactivate drops the bus subscription. It runs once.
func (m *Manager) Deactivate() {
	if !m.activated || m.deactivated {
		return
	}
	m.deactivated = true
	m.despawned.Cancel()
	m.despawned = nil
}

// Tick consumes one pointer sample.
func (m *Manager) Tick(s input.PointerSample) {
	if m.state == StateDragEnded {
		m.state = StateIdle
	}
	m.handleLeft(s)
	m.handleRight(s)
}

func (m *Manager) State() State { return m.state }

// Region returns the drag region while the select button is held.
func (m *Manager) Region() (DragRegion, bool) {
	if m.state != StateDragStarted && m.state != StateDragging {
		return DragRegion{}, false
	}
	return m.region, true
}

func (m *Manager) Selection() []models.Selectable { return m.set.Items() }
func (m *Manager) SelectedIDs() []models.UnitID   { return m.set.IDs() }
func (m *Manager) Count() int                     { return m.set.Len() }
func (m *Manager) Contains(id models.UnitID) bool { return m.set.Contains(id) }

// Select adds sel to the selection. Members are never added twice, and
// dead units are refused.
func (m *Manager) Select(sel models.Selectable) bool {
	if sel == nil || !sel.Owner().Alive() {
		return false
	}
	if !m.set.Add(sel) {
		return false
	}
	sel.Select()
	return true
}

// Deselect removes sel from the selection.
func (m *Manager) Deselect(sel models.Selectable) bool {
	if sel == nil {
		return false
	}
	removed, ok := m.set.Remove(sel.ID())
	if !ok {
		return false
	}
	removed.Deselect()
	return true
}

// Clear deselects every member in selection order.
func (m *Manager) Clear() {
	items := m.set.Items()
	m.set.Clear()
	for _, it := range items {
		it.Deselect()
	}
}

// Replace makes next the selection, in next's order. Previous members that
// are not in next are deselected first, then new members are selected.
func (m *Manager) Replace(next []models.Selectable) {
	keep := make(map[models.UnitID]struct{}, len(next))
	resolved := make([]models.Selectable, 0, len(next))
	for _, n := range next {
		if n == nil || !n.Owner().Alive() {
			continue
		}
		if _, dup := keep[n.ID()]; dup {
			continue
		}
		keep[n.ID()] = struct{}{}
		resolved = append(resolved, n)
	}

	previous := m.set.Items()
	wasSelected := make(map[models.UnitID]struct{}, len(previous))
	for _, p := range previous {
		wasSelected[p.ID()] = struct{}{}
		if _, ok := keep[p.ID()]; !ok {
			p.Deselect()
		}
	}

	m.set.Clear()
	for _, n := range resolved {
		m.set.Add(n)
		if _, ok := wasSelected[n.ID()]; !ok {
			n.Select()
		}
	}
}

func (m *Manager) handleLeft(s input.PointerSample) {
	if s.Left.Pressed {
		m.beginGesture(s.Position)
	} else if m.gestureActive() && (s.Left.Held || s.Left.Released) {
		m.updateGesture(s.Position)
	}
	if s.Left.Released && m.gestureActive() {
		m.endGesture()
	}
}

func (m *Manager) handleRight(s input.PointerSample) {
	if !s.Right.Released || m.set.Len() == 0 {
		return
	}
	ray := m.camera.ScreenPointToRay(s.Position)
	target, ok := m.picker.RaycastGround(ray)
	if !ok {
		m.logger.Debug("command missed ground", log.Any("screen", s.Position))
		return
	}
	orders := m.router.Dispatch(m.set.Items(), target)
	m.logger.Info("move command", log.Int("selected", m.set.Len()), log.Int("orders", orders),
		log.Any("target", target))
}

func (m *Manager) gestureActive() bool {
	return m.state == StateDragStarted || m.state == StateDragging
}

func (m *Manager) beginGesture(pos mgl64.Vec2) {
	if m.state == StateDragging {
		// the previous release was never reported
		m.notify(bus.Publish(m.bus, events.DragRegionCleared{Rect: m.region.Rect(), Selected: m.set.Len()}))
	}
	m.region = DragRegion{Anchor: pos, Current: pos}
	m.state = StateDragStarted
	m.clickSelect(pos)
}

func (m *Manager) updateGesture(pos mgl64.Vec2) {
	m.region.Current = pos
	if m.state == StateDragStarted && m.region.Exceeds(m.threshold) {
		m.state = StateDragging
		m.logger.Debug("drag started", log.Any("anchor", m.region.Anchor))
	}
	if m.state == StateDragging {
		m.notify(bus.Publish(m.bus, events.DragRegionChanged{
			Anchor:  m.region.Anchor,
			Current: m.region.Current,
			Rect:    m.region.Rect(),
		}))
	}
}

func (m *Manager) endGesture() {
	if m.state == StateDragging {
		rect := m.region.Rect()
		m.resolveBox(rect)
		m.notify(bus.Publish(m.bus, events.DragRegionCleared{Rect: rect, Selected: m.set.Len()}))
	}
	m.state = StateDragEnded
}

func (m *Manager) clickSelect(pos mgl64.Vec2) {
	m.Clear()
	hit, ok := m.picker.RaycastSelectable(m.camera.ScreenPointToRay(pos))
	if !ok {
		m.logger.Debug("click hit nothing", log.Any("screen", pos))
		return
	}
	sel, ok := selectableOf(hit)
	if !ok {
		return
	}
	if m.Select(sel) {
		m.logger.Info("unit selected", log.String("unit", hit.Name()))
	}
}

func (m *Manager) resolveBox(rect models.Rect) {
	candidates := m.query.EntitiesInScreenRect(rect)
	next := make([]models.Selectable, 0, len(candidates))
	for _, c := range candidates {
		if sel, ok := selectableOf(c); ok {
			next = append(next, sel)
		}
	}
	m.Replace(next)
	m.logger.Info("box selection", log.Int("candidates", len(candidates)), log.Int("selected", m.set.Len()))
}

func (m *Manager) onDespawned(e events.UnitDespawned) error {
	if _, ok := m.set.Remove(e.ID); ok {
		m.logger.Debug("selected unit despawned", log.Stringer("unit", e.ID))
	}
	return nil
}

func (m *Manager) notify(err error) {
	if err != nil {
		m.logger.Warn("drag notification failed", log.Error(err))
	}
}

func selectableOf(u models.Unit) (models.Selectable, bool) {
	if u == nil || !u.Alive() {
		return nil, false
	}
	return u.AsSelectable()
}
