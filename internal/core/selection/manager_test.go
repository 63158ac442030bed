package selection

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/rtscore/internal/core/command"
	"github.com/zeusync/rtscore/internal/core/events"
	"github.com/zeusync/rtscore/internal/core/events/bus"
	"github.com/zeusync/rtscore/internal/core/input"
	"github.com/zeusync/rtscore/internal/core/models"
	"github.com/zeusync/rtscore/internal/core/units"
)

// fakeScene encodes the screen point in the ray origin so the picker can
// look hits up by screen position.
type fakeScene struct {
	hits       map[mgl64.Vec2]models.Unit
	box        []models.Unit
	boxQueries []models.Rect
	groundMiss bool
	groundRays int
}

func newFakeScene() *fakeScene {
	return &fakeScene{hits: make(map[mgl64.Vec2]models.Unit)}
}

func (f *fakeScene) ScreenPointToRay(p mgl64.Vec2) models.Ray {
	return models.NewRay(mgl64.Vec3{p.X(), 100, p.Y()}, mgl64.Vec3{0, -1, 0})
}

func (f *fakeScene) RaycastSelectable(r models.Ray) (models.Unit, bool) {
	u, ok := f.hits[mgl64.Vec2{r.Origin.X(), r.Origin.Z()}]
	return u, ok
}

func (f *fakeScene) RaycastGround(r models.Ray) (mgl64.Vec3, bool) {
	f.groundRays++
	if f.groundMiss {
		return mgl64.Vec3{}, false
	}
	return mgl64.Vec3{r.Origin.X(), 0, r.Origin.Z()}, true
}

func (f *fakeScene) EntitiesInScreenRect(rect models.Rect) []models.Unit {
	f.boxQueries = append(f.boxQueries, rect)
	return f.box
}

type navigator struct{ orders []mgl64.Vec3 }

func (n *navigator) SetDestination(d mgl64.Vec3) { n.orders = append(n.orders, d) }

type tally struct {
	selected   []models.UnitID
	deselected []models.UnitID
	changed    []events.DragRegionChanged
	cleared    []events.DragRegionCleared
}

type fixture struct {
	bus     *bus.Bus
	scene   *fakeScene
	manager *Manager
	tally   *tally
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	b := bus.New(nil)
	sc := newFakeScene()
	tl := &tally{}
	bus.Subscribe(b, func(e events.UnitSelected) error { tl.selected = append(tl.selected, e.Unit.ID()); return nil })
	bus.Subscribe(b, func(e events.UnitDeselected) error { tl.deselected = append(tl.deselected, e.Unit.ID()); return nil })
	bus.Subscribe(b, func(e events.DragRegionChanged) error { tl.changed = append(tl.changed, e); return nil })
	bus.Subscribe(b, func(e events.DragRegionCleared) error { tl.cleared = append(tl.cleared, e); return nil })
	m := NewManager(b, sc, sc, sc, command.NewRouter(), opts...)
	m.Activate()
	return &fixture{bus: b, scene: sc, manager: m, tally: tl}
}

func (f *fixture) unit(t *testing.T, caps models.Capability) (*units.Unit, *navigator) {
	t.Helper()
	nav := &navigator{}
	u, err := units.New(f.bus, units.WithCapabilities(caps), units.WithNavigator(nav))
	require.NoError(t, err)
	require.NoError(t, u.Activate())
	return u, nav
}

func (f *fixture) click(p mgl64.Vec2) {
	f.manager.Tick(input.PointerSample{Position: p, Left: input.Down()})
	f.manager.Tick(input.PointerSample{Position: p, Left: input.Up()})
}

func (f *fixture) command(p mgl64.Vec2) {
	f.manager.Tick(input.PointerSample{Position: p, Right: input.Down()})
	f.manager.Tick(input.PointerSample{Position: p, Right: input.Up()})
}

func (f *fixture) drag(from, to mgl64.Vec2) {
	f.manager.Tick(input.PointerSample{Position: from, Left: input.Down()})
	f.manager.Tick(input.PointerSample{Position: from.Add(to.Sub(from).Mul(0.5)), Left: input.Hold()})
	f.manager.Tick(input.PointerSample{Position: to, Left: input.Hold()})
	f.manager.Tick(input.PointerSample{Position: to, Left: input.Up()})
}

const (
	moveable   = models.CapSelectable | models.CapMoveable
	selectOnly = models.CapSelectable
)

func TestClickThenCommand(t *testing.T) {
	f := newFixture(t)
	u1, nav1 := f.unit(t, moveable)
	u2, nav2 := f.unit(t, selectOnly)
	f.scene.hits[mgl64.Vec2{10, 10}] = u1
	f.scene.hits[mgl64.Vec2{20, 20}] = u2

	f.click(mgl64.Vec2{10, 10})
	assert.Equal(t, []models.UnitID{u1.ID()}, f.manager.SelectedIDs())
	assert.Equal(t, StateDragEnded, f.manager.State())

	f.command(mgl64.Vec2{5, 5})
	assert.Equal(t, []mgl64.Vec3{{5, 0, 5}}, nav1.orders)
	assert.Empty(t, nav2.orders)
	assert.Equal(t, StateIdle, f.manager.State())
}

func TestDragSelectThenCommand(t *testing.T) {
	f := newFixture(t)
	u1, nav1 := f.unit(t, moveable)
	u2, nav2 := f.unit(t, selectOnly)
	f.scene.box = []models.Unit{u1, u2}

	f.drag(mgl64.Vec2{0, 0}, mgl64.Vec2{100, 80})
	assert.Equal(t, []models.UnitID{u1.ID(), u2.ID()}, f.manager.SelectedIDs())
	require.Len(t, f.scene.boxQueries, 1)
	assert.Equal(t, models.Rect{Min: mgl64.Vec2{0, 0}, Width: 100, Height: 80}, f.scene.boxQueries[0])

	f.command(mgl64.Vec2{7, 3})
	assert.Equal(t, []mgl64.Vec3{{7, 0, 3}}, nav1.orders)
	assert.Empty(t, nav2.orders)
}

func TestClickEmptySpaceClearsSelection(t *testing.T) {
	f := newFixture(t)
	u1, _ := f.unit(t, moveable)
	f.scene.hits[mgl64.Vec2{10, 10}] = u1
	f.click(mgl64.Vec2{10, 10})
	require.Equal(t, 1, f.manager.Count())

	f.click(mgl64.Vec2{50, 50})
	assert.Zero(t, f.manager.Count())
	assert.Equal(t, []models.UnitID{u1.ID()}, f.tally.deselected)
	assert.False(t, u1.Selected())
}

func TestSelectIsUnique(t *testing.T) {
	f := newFixture(t)
	u1, _ := f.unit(t, moveable)
	s, _ := u1.AsSelectable()

	assert.True(t, f.manager.Select(s))
	for i := 0; i < 3; i++ {
		assert.False(t, f.manager.Select(s))
	}
	assert.Equal(t, 1, f.manager.Count())
	assert.Len(t, f.tally.selected, 1)

	// clicking the same unit again keeps it a single member
	f.scene.hits[mgl64.Vec2{1, 1}] = u1
	f.click(mgl64.Vec2{1, 1})
	f.click(mgl64.Vec2{1, 1})
	assert.Equal(t, []models.UnitID{u1.ID()}, f.manager.SelectedIDs())
}

func TestSelectDeselectSymmetry(t *testing.T) {
	f := newFixture(t)
	u1, _ := f.unit(t, moveable)
	s, _ := u1.AsSelectable()

	f.manager.Select(s)
	assert.True(t, f.manager.Deselect(s))
	assert.False(t, f.manager.Deselect(s))
	assert.False(t, f.manager.Contains(u1.ID()))
	assert.True(t, u1.Alive())
	assert.Len(t, f.tally.deselected, 1)
}

func TestClickOnNonSelectableUnitSelectsNothing(t *testing.T) {
	f := newFixture(t)
	turret, _ := f.unit(t, models.CapMoveable)
	f.scene.hits[mgl64.Vec2{3, 3}] = turret

	f.click(mgl64.Vec2{3, 3})
	assert.Zero(t, f.manager.Count())
	assert.Empty(t, f.tally.selected)
}

func TestSmallMovementStaysAClick(t *testing.T) {
	f := newFixture(t, WithDragThreshold(5))
	u1, _ := f.unit(t, moveable)
	u2, _ := f.unit(t, moveable)
	f.scene.hits[mgl64.Vec2{10, 10}] = u1
	f.scene.box = []models.Unit{u2}

	f.manager.Tick(input.PointerSample{Position: mgl64.Vec2{10, 10}, Left: input.Down()})
	assert.Equal(t, StateDragStarted, f.manager.State())
	f.manager.Tick(input.PointerSample{Position: mgl64.Vec2{13, 12}, Left: input.Hold()})
	assert.Equal(t, StateDragStarted, f.manager.State())
	f.manager.Tick(input.PointerSample{Position: mgl64.Vec2{13, 12}, Left: input.Up()})

	assert.Empty(t, f.scene.boxQueries)
	assert.Empty(t, f.tally.changed)
	assert.Equal(t, []models.UnitID{u1.ID()}, f.manager.SelectedIDs())
}

func TestDragPublishesRegionWithNonNegativeRect(t *testing.T) {
	f := newFixture(t)

	f.manager.Tick(input.PointerSample{Position: mgl64.Vec2{100, 100}, Left: input.Down()})
	f.manager.Tick(input.PointerSample{Position: mgl64.Vec2{40, 70}, Left: input.Hold()})
	assert.Equal(t, StateDragging, f.manager.State())

	region, ok := f.manager.Region()
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec2{-60, -30}, region.Delta())

	require.Len(t, f.tally.changed, 1)
	rect := f.tally.changed[0].Rect
	assert.Equal(t, mgl64.Vec2{40, 70}, rect.Min)
	assert.Equal(t, 60.0, rect.Width)
	assert.Equal(t, 30.0, rect.Height)

	f.manager.Tick(input.PointerSample{Position: mgl64.Vec2{40, 70}, Left: input.Up()})
	require.Len(t, f.tally.cleared, 1)
	_, ok = f.manager.Region()
	assert.False(t, ok)
}

func TestBoxReplaceKeepsOverlapWithoutReselecting(t *testing.T) {
	f := newFixture(t)
	u1, _ := f.unit(t, moveable)
	u2, _ := f.unit(t, moveable)
	u3, _ := f.unit(t, moveable)

	f.scene.box = []models.Unit{u1, u2}
	f.drag(mgl64.Vec2{0, 0}, mgl64.Vec2{50, 50})
	f.tally.selected, f.tally.deselected = nil, nil

	// the press of the next drag clears the set, so Replace starts empty
	f.scene.box = []models.Unit{u3, u2, u2}
	f.drag(mgl64.Vec2{0, 0}, mgl64.Vec2{50, 50})
	assert.Equal(t, []models.UnitID{u3.ID(), u2.ID()}, f.manager.SelectedIDs())

	s1, _ := u1.AsSelectable()
	s2, _ := u2.AsSelectable()
	s3, _ := u3.AsSelectable()
	f.manager.Replace([]models.Selectable{s1, s2})
	assert.Equal(t, []models.UnitID{u1.ID(), u2.ID()}, f.manager.SelectedIDs())
	assert.False(t, s3.IsSelected())
	assert.True(t, s2.IsSelected())
}

func TestReplaceOrderAndEvents(t *testing.T) {
	f := newFixture(t)
	u1, _ := f.unit(t, moveable)
	u2, _ := f.unit(t, moveable)
	u3, _ := f.unit(t, moveable)
	s1, _ := u1.AsSelectable()
	s2, _ := u2.AsSelectable()
	s3, _ := u3.AsSelectable()

	f.manager.Select(s2)
	f.manager.Select(s3)
	f.tally.selected, f.tally.deselected = nil, nil

	f.manager.Replace([]models.Selectable{s1, s2})
	assert.Equal(t, []models.UnitID{u1.ID(), u2.ID()}, f.manager.SelectedIDs())
	assert.Equal(t, []models.UnitID{u3.ID()}, f.tally.deselected)
	assert.Equal(t, []models.UnitID{u1.ID()}, f.tally.selected)
}

func TestBoxFiltersDeadAndNonSelectable(t *testing.T) {
	f := newFixture(t)
	alive, _ := f.unit(t, moveable)
	dead, _ := f.unit(t, moveable)
	turret, _ := f.unit(t, models.CapMoveable)
	require.NoError(t, dead.Deactivate())

	f.scene.box = []models.Unit{dead, turret, alive}
	f.drag(mgl64.Vec2{0, 0}, mgl64.Vec2{30, 30})
	assert.Equal(t, []models.UnitID{alive.ID()}, f.manager.SelectedIDs())
	require.Len(t, f.tally.cleared, 1)
	assert.Equal(t, 1, f.tally.cleared[0].Selected)
}

func TestCommandRequiresSelectionAndGroundHit(t *testing.T) {
	f := newFixture(t)
	f.command(mgl64.Vec2{5, 5})
	assert.Zero(t, f.scene.groundRays, "empty selection never raycasts")

	u1, nav := f.unit(t, moveable)
	s1, _ := u1.AsSelectable()
	f.manager.Select(s1)
	f.scene.groundMiss = true
	f.command(mgl64.Vec2{5, 5})
	assert.Equal(t, 1, f.scene.groundRays)
	assert.Empty(t, nav.orders)
}

func TestRightButtonIgnoresLeftGesture(t *testing.T) {
	f := newFixture(t)
	u1, nav := f.unit(t, moveable)
	s1, _ := u1.AsSelectable()
	f.manager.Select(s1)

	f.manager.Tick(input.PointerSample{Position: mgl64.Vec2{0, 0}, Right: input.Down()})
	f.manager.Tick(input.PointerSample{Position: mgl64.Vec2{9, 9}, Right: input.Up()})
	assert.Equal(t, []mgl64.Vec3{{9, 0, 9}}, nav.orders)
	assert.Equal(t, StateIdle, f.manager.State())
	assert.Equal(t, 1, f.manager.Count())
}

func TestDespawnedMemberLeavesSet(t *testing.T) {
	f := newFixture(t)
	u1, _ := f.unit(t, moveable)
	u2, _ := f.unit(t, moveable)
	s1, _ := u1.AsSelectable()
	s2, _ := u2.AsSelectable()
	f.manager.Select(s1)
	f.manager.Select(s2)

	require.NoError(t, u1.Deactivate())
	assert.Equal(t, []models.UnitID{u2.ID()}, f.manager.SelectedIDs())
	assert.False(t, f.manager.Select(s1), "dead units cannot be selected")
}

func TestDeactivateUnsubscribes(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 1, bus.SubscriberCount[events.UnitDespawned](f.bus))
	f.manager.Deactivate()
	f.manager.Deactivate()
	assert.Zero(t, bus.SubscriberCount[events.UnitDespawned](f.bus))
}

func TestMissedReleaseRestartsGesture(t *testing.T) {
	f := newFixture(t)
	f.manager.Tick(input.PointerSample{Position: mgl64.Vec2{0, 0}, Left: input.Down()})
	f.manager.Tick(input.PointerSample{Position: mgl64.Vec2{40, 40}, Left: input.Hold()})
	require.Equal(t, StateDragging, f.manager.State())

	f.manager.Tick(input.PointerSample{Position: mgl64.Vec2{5, 5}, Left: input.Down()})
	assert.Equal(t, StateDragStarted, f.manager.State())
	assert.Len(t, f.tally.cleared, 1)
	assert.Empty(t, f.scene.boxQueries)
}
