package registry

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/rtscore/internal/core/events"
	"github.com/zeusync/rtscore/internal/core/events/bus"
	"github.com/zeusync/rtscore/internal/core/models"
	"github.com/zeusync/rtscore/internal/core/units"
)

type nopNavigator struct{}

func (nopNavigator) SetDestination(mgl64.Vec3) {}

func spawn(t *testing.T, b *bus.Bus, caps models.Capability) *units.Unit {
	t.Helper()
	u, err := units.New(b, units.WithCapabilities(caps), units.WithNavigator(nopNavigator{}))
	require.NoError(t, err)
	require.NoError(t, u.Activate())
	return u
}

func selectUnit(t *testing.T, u *units.Unit) models.Selectable {
	t.Helper()
	s, ok := u.AsSelectable()
	require.True(t, ok)
	s.Select()
	return s
}

func TestRegistryTracksSpawnAndDespawn(t *testing.T) {
	b := bus.New(nil)
	r := New(b)
	r.Activate()

	u1 := spawn(t, b, models.CapSelectable|models.CapMoveable)
	u2 := spawn(t, b, models.CapSelectable)
	assert.Equal(t, 2, r.AliveCount())
	assert.Equal(t, []models.UnitID{u1.ID(), u2.ID()}, r.Alive())
	assert.True(t, r.IsAlive(u1.ID()))

	found, ok := r.Lookup(u2.ID())
	require.True(t, ok)
	assert.Equal(t, u2.ID(), found.ID())

	require.NoError(t, u1.Deactivate())
	assert.Equal(t, 1, r.AliveCount())
	assert.False(t, r.IsAlive(u1.ID()))
	_, ok = r.Lookup(u1.ID())
	assert.False(t, ok)
}

func TestRegistryIgnoresDuplicateSpawn(t *testing.T) {
	b := bus.New(nil)
	r := New(b)
	r.Activate()

	u := spawn(t, b, models.CapSelectable)
	require.NoError(t, bus.Publish(b, events.UnitSpawned{Unit: u}))
	assert.Equal(t, 1, r.AliveCount())
}

func TestRegistryMirrorsSelection(t *testing.T) {
	b := bus.New(nil)
	r := New(b)
	r.Activate()

	u1 := spawn(t, b, models.CapSelectable|models.CapMoveable)
	u2 := spawn(t, b, models.CapSelectable)
	assert.Zero(t, r.SelectionDigest())

	s1 := selectUnit(t, u1)
	selectUnit(t, u2)
	assert.True(t, r.IsSelected(u1.ID()))
	assert.Equal(t, 2, r.SelectedCount())
	assert.Equal(t, []models.UnitID{u1.ID(), u2.ID()}, r.Selected())
	before := r.SelectionDigest()
	assert.NotZero(t, before)

	// deselect leaves alive membership untouched
	s1.Deselect()
	assert.False(t, r.IsSelected(u1.ID()))
	assert.True(t, r.IsAlive(u1.ID()))
	assert.Equal(t, 2, r.AliveCount())
	assert.NotEqual(t, before, r.SelectionDigest())

	s1.Select()
	assert.Equal(t, []models.UnitID{u2.ID(), u1.ID()}, r.Selected())
}

func TestRegistryDropsSelectionOnDespawn(t *testing.T) {
	b := bus.New(nil)
	r := New(b)
	r.Activate()

	u := spawn(t, b, models.CapSelectable)
	selectUnit(t, u)
	require.NoError(t, u.Deactivate())
	assert.False(t, r.IsSelected(u.ID()))
	assert.Zero(t, r.SelectedCount())
}

func TestRegistryDeactivateUnsubscribes(t *testing.T) {
	b := bus.New(nil)
	r := New(b)
	r.Activate()
	r.Activate()
	assert.Equal(t, 1, bus.SubscriberCount[events.UnitSpawned](b))

	r.Deactivate()
	r.Deactivate()
	assert.Zero(t, bus.SubscriberCount[events.UnitSpawned](b))
	assert.Zero(t, bus.SubscriberCount[events.UnitDespawned](b))
	assert.Zero(t, bus.SubscriberCount[events.UnitSelected](b))
	assert.Zero(t, bus.SubscriberCount[events.UnitDeselected](b))

	spawn(t, b, models.CapSelectable)
	assert.Zero(t, r.AliveCount())
}

func TestDigestIsOrderSensitive(t *testing.T) {
	a, b := models.NewUnitID(), models.NewUnitID()
	assert.Zero(t, Digest(nil))
	assert.Equal(t, Digest([]models.UnitID{a, b}), Digest([]models.UnitID{a, b}))
	assert.NotEqual(t, Digest([]models.UnitID{a, b}), Digest([]models.UnitID{b, a}))
}
