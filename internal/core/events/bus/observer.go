package bus

import (
	"time"

	"github.com/zeusync/rtscore/internal/core/observability/log"
)

type logObserver struct {
	logger log.Log
}

// NewLogObserver reports every delivery at debug level and failed deliveries
// at warn level.
func NewLogObserver(logger log.Log) Observer {
	return &logObserver{logger: logger.Named("bus.observer")}
}

func (o *logObserver) OnPublish(string) {}

func (o *logObserver) OnDelivered(eventType string, handlers int, err error, elapsed time.Duration) {
	if err != nil {
		o.logger.Warn("delivery failed", log.String("event", eventType), log.Int("handlers", handlers),
			log.Duration("elapsed", elapsed), log.Error(err))
		return
	}
	o.logger.Debug("delivered", log.String("event", eventType), log.Int("handlers", handlers),
		log.Duration("elapsed", elapsed))
}
