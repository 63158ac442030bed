package selection

import "github.com/zeusync/rtscore/internal/core/models"

// Set is an ordered, duplicate-free list of selected units. Order is the
// order in which members were added.
type Set struct {
	items []models.Selectable
	index map[models.UnitID]int
}

func NewSet() *Set {
	return &Set{index: make(map[models.UnitID]int)}
}

func (s *Set) Len() int { return len(s.items) }

func (s *Set) Contains(id models.UnitID) bool {
	_, ok := s.index[id]
	return ok
}

// Add appends sel unless a unit with the same id is already a member.
func (s *Set) Add(sel models.Selectable) bool {
	if s.Contains(sel.ID()) {
		return false
	}
	s.index[sel.ID()] = len(s.items)
	s.items = append(s.items, sel)
	return true
}

// Remove drops the member with id, keeping the order of the rest.
func (s *Set) Remove(id models.UnitID) (models.Selectable, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	removed := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID()] = j
	}
	return removed, true
}

// Items returns a copy of the members in selection order.
func (s *Set) Items() []models.Selectable {
	return append([]models.Selectable(nil), s.items...)
}

func (s *Set) IDs() []models.UnitID {
	ids := make([]models.UnitID, len(s.items))
	for i, it := range s.items {
		ids[i] = it.ID()
	}
	return ids
}

func (s *Set) Clear() {
	s.items = nil
	clear(s.index)
}
