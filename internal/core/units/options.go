package units

import (
	"github.com/zeusync/rtscore/internal/core/models"
	"github.com/zeusync/rtscore/internal/core/observability/log"
)

type options struct {
	id        models.UnitID
	name      string
	caps      models.Capability
	navigator Navigator
	indicator Indicator
	logger    log.Log
}

// Option configures a Unit at construction.
type Option func(*options)

// WithID fixes the unit identity instead of generating one.
func WithID(id models.UnitID) Option {
	return func(o *options) {
		if !id.IsNil() {
			o.id = id
		}
	}
}

func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithCapabilities replaces the default Selectable|Moveable set.
func WithCapabilities(caps models.Capability) Option {
	return func(o *options) { o.caps = caps }
}

// WithNavigator sets the move agent. Required for Moveable units.
func WithNavigator(n Navigator) Option {
	return func(o *options) { o.navigator = n }
}

func WithIndicator(i Indicator) Option {
	return func(o *options) { o.indicator = i }
}

func WithLogger(l log.Log) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
