// Package bus is an in-process publish/subscribe bus keyed by the Go type of
// the event payload.
//
// Key characteristics:
//   - One channel per payload type; handlers run in registration order.
//   - Synchronous delivery: Publish calls every handler on the caller's
//     goroutine and returns once all of them have run.
//   - Each Subscribe call is its own registration. Subscribing the same
//     function twice delivers twice; pair every Subscribe with a Cancel.
//   - The subscriber list is snapshotted before dispatch. A subscription
//     cancelled by an earlier handler is skipped; one added during dispatch
//     sees the next Publish only.
//   - Handler errors and panics are isolated per handler and joined into the
//     error returned from Publish.
package bus

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/rtscore/internal/core/observability/log"
)

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	id        string
	eventType reflect.Type
	invoke    func(event any) error
	active    atomic.Bool
	bus       *Bus
}

func (s *Subscription) ID() string { return s.id }

// EventType is the payload type name this subscription listens to.
func (s *Subscription) EventType() string { return typeName(s.eventType) }

func (s *Subscription) IsActive() bool { return s != nil && s.active.Load() }

// Cancel removes the subscription from its bus. Calling it more than once,
// or on a nil subscription, does nothing.
func (s *Subscription) Cancel() {
	if s == nil || !s.active.CompareAndSwap(true, false) {
		return
	}
	s.bus.remove(s)
}

type channel struct {
	eventType reflect.Type
	subs      []*Subscription
}

// Bus is safe for concurrent use. The zero value is not usable; call New.
type Bus struct {
	mu        sync.RWMutex
	channels  map[reflect.Type]*channel
	observers []Observer
	logger    log.Log

	published atomic.Uint64
	delivered atomic.Uint64
	failures  atomic.Uint64
	panics    atomic.Uint64
}

// New creates an empty bus. A nil logger is replaced with a no-op logger.
func New(logger log.Log) *Bus {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Bus{
		channels: make(map[reflect.Type]*channel),
		logger:   logger.Named("bus"),
	}
}

// Subscribe registers handler for events of exactly type T.
func Subscribe[T any](b *Bus, handler Handler[T]) *Subscription {
	et := reflect.TypeFor[T]()
	s := &Subscription{
		id:        uuid.NewString(),
		eventType: et,
		invoke:    func(event any) error { return handler(event.(T)) },
		bus:       b,
	}
	s.active.Store(true)

	b.mu.Lock()
	ch := b.channels[et]
	if ch == nil {
		ch = &channel{eventType: et}
		b.channels[et] = ch
	}
	ch.subs = append(ch.subs, s)
	b.mu.Unlock()

	b.logger.Debug("subscribed", log.String("event", typeName(et)), log.String("subscription", s.id))
	return s
}

// Publish delivers event to every active handler for T. With no subscribers
// it does nothing and returns nil. Nil pointer, map, slice, func, chan or
// interface payloads are rejected with ErrNilEvent.
func Publish[T any](b *Bus, event T) error {
	if isNil(event) {
		return fmt.Errorf("%w: %s", ErrNilEvent, typeName(reflect.TypeFor[T]()))
	}
	return b.deliver(reflect.TypeFor[T](), event)
}

// SubscriberCount returns the number of active handlers for T.
func SubscriberCount[T any](b *Bus) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if ch := b.channels[reflect.TypeFor[T]()]; ch != nil {
		return len(ch.subs)
	}
	return 0
}

// Unsubscribe is the same as sub.Cancel. Unknown or already cancelled
// subscriptions are ignored.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil || sub.bus != b {
		return
	}
	sub.Cancel()
}

func (b *Bus) AddObserver(obs Observer) {
	b.mu.Lock()
	b.observers = append(b.observers, obs)
	b.mu.Unlock()
}

func (b *Bus) RemoveObserver(obs Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, o := range b.observers {
		if o == obs {
			b.observers = append(b.observers[:i:i], b.observers[i+1:]...)
			return
		}
	}
}

// Metrics returns a best-effort snapshot of the bus counters.
func (b *Bus) Metrics() Metrics {
	m := Metrics{
		Published:         b.published.Load(),
		DeliveredHandlers: b.delivered.Load(),
		Errors:            b.failures.Load(),
		Panics:            b.panics.Load(),
	}
	b.mu.RLock()
	for _, ch := range b.channels {
		if len(ch.subs) > 0 {
			m.Channels++
		}
		m.SubscribersActive += uint64(len(ch.subs))
	}
	b.mu.RUnlock()
	return m
}

// Channels lists channels that currently have subscribers, sorted by type name.
func (b *Bus) Channels() []ChannelInfo {
	b.mu.RLock()
	out := make([]ChannelInfo, 0, len(b.channels))
	for _, ch := range b.channels {
		if len(ch.subs) == 0 {
			continue
		}
		out = append(out, ChannelInfo{EventType: typeName(ch.eventType), Subscribers: len(ch.subs)})
	}
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].EventType < out[j].EventType })
	return out
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := b.channels[s.eventType]
	if ch == nil {
		return
	}
	for i, cur := range ch.subs {
		if cur == s {
			// copy so that snapshots held by an in-flight Publish stay intact
			next := make([]*Subscription, 0, len(ch.subs)-1)
			next = append(next, ch.subs[:i]...)
			ch.subs = append(next, ch.subs[i+1:]...)
			break
		}
	}
	b.logger.Debug("unsubscribed", log.String("event", typeName(s.eventType)), log.String("subscription", s.id))
}

func (b *Bus) deliver(et reflect.Type, event any) error {
	start := time.Now()
	name := typeName(et)

	b.mu.RLock()
	var subs []*Subscription
	if ch := b.channels[et]; ch != nil {
		subs = ch.subs
	}
	observers := b.observers
	b.mu.RUnlock()

	for _, obs := range observers {
		obs.OnPublish(name)
	}

	var all error
	handlers := 0
	for _, s := range subs {
		if !s.active.Load() {
			continue
		}
		handlers++
		if err := b.invoke(s, event); err != nil {
			all = errors.Join(all, err)
		}
	}

	b.published.Add(1)
	b.delivered.Add(uint64(handlers))
	if all != nil {
		b.failures.Add(1)
	}

	if len(observers) > 0 {
		elapsed := time.Since(start)
		for _, obs := range observers {
			obs.OnDelivered(name, handlers, all, elapsed)
		}
	}
	return all
}

func (b *Bus) invoke(s *Subscription, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			err = &HandlerPanicError{EventType: typeName(s.eventType), Subscription: s.id, Value: r}
			b.logger.Error("handler panicked", log.String("event", typeName(s.eventType)),
				log.String("subscription", s.id), log.Any("panic", r))
		}
	}()
	if err = s.invoke(event); err != nil {
		b.logger.Warn("handler failed", log.String("event", typeName(s.eventType)),
			log.String("subscription", s.id), log.Error(err))
	}
	return err
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
