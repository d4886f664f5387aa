package events

import (
	"sync"
)

// subscriberQueueSize is the per-subscriber event buffer. Sized to absorb
// scan bursts (a 2D barcode is tens of characters, each producing a key
// notice) without ever blocking the publisher.
const subscriberQueueSize = 256

// Handler consumes events for one subscriber. Handlers run on the
// subscriber's own goroutine and may block without affecting publishers
// or other subscribers.
type Handler func(Event)

// Logger is the minimal logging interface used by the Dispatcher.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Dispatcher fans events out to named subscribers.
//
// Publish is non-blocking and safe for concurrent use. Each subscriber
// receives events in publish order through a bounded queue; events are
// silently dropped (counted, logged at debug) for subscribers whose
// queues are full.
type Dispatcher struct {
	mu     sync.RWMutex
	subs   map[string]*subscriber
	closed bool
	logger Logger
}

type subscriber struct {
	name    string
	ch      chan Event
	done    chan struct{}
	dropped int64
	mu      sync.Mutex
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		subs:   make(map[string]*subscriber),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the dispatcher.
func (d *Dispatcher) SetLogger(logger Logger) {
	d.mu.Lock()
	d.logger = logger
	d.mu.Unlock()
}

// Subscribe registers a named handler and starts its delivery goroutine.
// Subscribing an existing name replaces the previous handler after its
// queue drains.
func (d *Dispatcher) Subscribe(name string, handler Handler) {
	sub := &subscriber{
		name: name,
		ch:   make(chan Event, subscriberQueueSize),
		done: make(chan struct{}),
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	old, existed := d.subs[name]
	d.subs[name] = sub
	d.mu.Unlock()

	if existed {
		close(old.ch)
		<-old.done
	}

	go func() {
		defer close(sub.done)
		for ev := range sub.ch {
			handler(ev)
		}
	}()
}

// Unsubscribe removes a named subscriber and waits for its queue to drain.
func (d *Dispatcher) Unsubscribe(name string) {
	d.mu.Lock()
	sub, ok := d.subs[name]
	delete(d.subs, name)
	d.mu.Unlock()

	if ok {
		close(sub.ch)
		<-sub.done
	}
}

// Publish delivers the event to every subscriber without blocking.
// Subscribers with full queues miss the event; this is the accepted loss
// mode when no consumer is keeping up.
func (d *Dispatcher) Publish(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return
	}

	for _, sub := range d.subs {
		select {
		case sub.ch <- ev:
		default:
			sub.mu.Lock()
			sub.dropped++
			dropped := sub.dropped
			sub.mu.Unlock()
			d.logger.Debug("event dropped for slow subscriber",
				"subscriber", sub.name,
				"event_type", ev.Type,
				"total_dropped", dropped,
			)
		}
	}
}

// DroppedCount returns the number of events dropped for a subscriber.
// Returns zero for unknown names.
func (d *Dispatcher) DroppedCount(name string) int64 {
	d.mu.RLock()
	sub, ok := d.subs[name]
	d.mu.RUnlock()

	if !ok {
		return 0
	}
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return sub.dropped
}

// SubscriberCount returns the number of registered subscribers.
func (d *Dispatcher) SubscriberCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs)
}

// Close stops all subscribers after draining their queues. Publish calls
// after Close are no-ops.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	subs := make([]*subscriber, 0, len(d.subs))
	for _, sub := range d.subs {
		subs = append(subs, sub)
	}
	d.subs = make(map[string]*subscriber)
	d.mu.Unlock()

	for _, sub := range subs {
		close(sub.ch)
		<-sub.done
	}
}
