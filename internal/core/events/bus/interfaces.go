package bus

import "time"

// Handler is a subscriber callback for events of type T. A returned error is
// collected by Publish; it never stops delivery to the remaining handlers.
type Handler[T any] func(event T) error

// Observer is notified about every Publish. Implementations can export
// metrics or logs. Observers are called on the publishing goroutine and
// should return quickly.
type Observer interface {
	OnPublish(eventType string)
	OnDelivered(eventType string, handlers int, err error, elapsed time.Duration)
}

// Metrics is a snapshot of bus counters.
type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	Panics            uint64
	SubscribersActive uint64
	Channels          uint64
}

// ChannelInfo describes one event channel.
type ChannelInfo struct {
	EventType   string
	Subscribers int
}
