// Package registry keeps a bus-fed view of every live unit and of the current
// selection, for read-only queries from UI and tooling.
package registry

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/rtscore/internal/core/events"
	"github.com/zeusync/rtscore/internal/core/events/bus"
	"github.com/zeusync/rtscore/internal/core/models"
	"github.com/zeusync/rtscore/internal/core/observability/log"
)

// Registry mirrors unit lifecycle and selection state from the bus. Reads are
// safe from any goroutine; writes only happen inside bus handlers.
type Registry struct {
	bus    *bus.Bus
	logger log.Log

	mu            sync.RWMutex
	alive         map[models.UnitID]models.Unit
	aliveOrder    []models.UnitID
	selected      map[models.UnitID]struct{}
	selectedOrder []models.UnitID

	subs        []*bus.Subscription
	activated   bool
	deactivated bool
}

type Option func(*Registry)

func WithLogger(l log.Log) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

func New(b *bus.Bus, opts ...Option) *Registry {
	r := &Registry{
		bus:      b,
		logger:   log.NewNop(),
		alive:    make(map[models.UnitID]models.Unit),
		selected: make(map[models.UnitID]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("registry")
	return r
}

// Activate subscribes to the unit lifecycle and selection channels. Only the
// first call subscribes.
func (r *Registry) Activate() {
	if r.activated {
		return
	}
	r.activated = true
	r.subs = append(r.subs,
		bus.Subscribe(r.bus, r.onSpawned),
		bus.Subscribe(r.bus, r.onDespawned),
		bus.Subscribe(r.bus, r.onSelected),
		bus.Subscribe(r.bus, r.onDeselected),
	)
}

// Deactivate unsubscribes from every channel joined in Activate. It runs once.
func (r *Registry) Deactivate() {
	if !r.activated || r.deactivated {
		return
	}
	r.deactivated = true
	for _, s := range r.subs {
		s.Cancel()
	}
	r.subs = nil
}

func (r *Registry) AliveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.alive)
}

func (r *Registry) IsAlive(id models.UnitID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.alive[id]
	return ok
}

func (r *Registry) IsSelected(id models.UnitID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.selected[id]
	return ok
}

func (r *Registry) SelectedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.selected)
}

// Lookup returns the live unit with the given id.
func (r *Registry) Lookup(id models.UnitID) (models.Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.alive[id]
	return u, ok
}

// Alive returns live unit ids in spawn order.
func (r *Registry) Alive() []models.UnitID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.UnitID(nil), r.aliveOrder...)
}

// Selected returns selected unit ids in the order their UnitSelected events
// arrived. A selection manager that keeps members across a replace may hold
// them in a different order.
func (r *Registry) Selected() []models.UnitID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.UnitID(nil), r.selectedOrder...)
}

// SelectionDigest is Digest over Selected.
func (r *Registry) SelectionDigest() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Digest(r.selectedOrder)
}

// Digest hashes an ordered id list. Equal digests mean the same ids in the
// same order; an empty list hashes to 0.
func Digest(ids []models.UnitID) uint64 {
	if len(ids) == 0 {
		return 0
	}
	d := xxhash.New()
	for _, id := range ids {
		_, _ = d.Write(id[:])
	}
	return d.Sum64()
}

func (r *Registry) onSpawned(e events.UnitSpawned) error {
	id := e.Unit.ID()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.alive[id]; ok {
		return nil
	}
	r.alive[id] = e.Unit
	r.aliveOrder = append(r.aliveOrder, id)
	r.logger.Debug("unit tracked", log.Stringer("unit", id), log.Int("alive", len(r.alive)))
	return nil
}

func (r *Registry) onDespawned(e events.UnitDespawned) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.alive[e.ID]; !ok {
		return nil
	}
	delete(r.alive, e.ID)
	r.aliveOrder = removeID(r.aliveOrder, e.ID)
	if _, ok := r.selected[e.ID]; ok {
		delete(r.selected, e.ID)
		r.selectedOrder = removeID(r.selectedOrder, e.ID)
	}
	r.logger.Debug("unit dropped", log.Stringer("unit", e.ID), log.Int("alive", len(r.alive)))
	return nil
}

func (r *Registry) onSelected(e events.UnitSelected) error {
	id := e.Unit.ID()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.selected[id]; ok {
		return nil
	}
	r.selected[id] = struct{}{}
	r.selectedOrder = append(r.selectedOrder, id)
	return nil
}

func (r *Registry) onDeselected(e events.UnitDeselected) error {
	id := e.Unit.ID()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.selected[id]; !ok {
		return nil
	}
	delete(r.selected, id)
	r.selectedOrder = removeID(r.selectedOrder, id)
	return nil
}

func removeID(ids []models.UnitID, id models.UnitID) []models.UnitID {
	for i, cur := range ids {
		if cur == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
