// Package command fans player orders out to the units that can carry them.
package command

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/rtscore/internal/core/models"
	"github.com/zeusync/rtscore/internal/core/observability/log"
)

// Router issues move orders to the Moveable members of a selection. Members
// without the capability are skipped; that is routine, not an error.
type Router struct {
	logger log.Log
	issued uint64
}

type Option func(*Router)

func WithLogger(l log.Log) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRouter(opts ...Option) *Router {
	r := &Router{logger: log.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("command")
	return r
}

// Dispatch sends target to every Moveable member and returns how many
// orders were issued. Orders are independent; their relative order carries
// no meaning.
func (r *Router) Dispatch(selection []models.Selectable, target mgl64.Vec3) int {
	issued := 0
	for _, s := range selection {
		m, ok := s.Owner().AsMoveable()
		if !ok {
			continue
		}
		m.MoveTo(target)
		issued++
	}
	r.issued += uint64(issued)
	r.logger.Debug("move dispatched", log.Int("selected", len(selection)), log.Int("orders", issued),
		log.Any("target", target))
	return issued
}

// Issued is the total number of orders sent since creation.
func (r *Router) Issued() uint64 { return r.issued }
