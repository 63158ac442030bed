package selection

import "github.com/zeusync/rtscore/internal/core/observability/log"

// DefaultDragThreshold is how far, in pixels, the pointer must travel with
// the select button held before a click turns into a box selection.
const DefaultDragThreshold = 4.0

type Option func(*Manager)

func WithDragThreshold(px float64) Option {
	return func(m *Manager) {
		if px >= 0 {
			m.threshold = px
		}
	}
}

func WithLogger(l log.Log) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}
