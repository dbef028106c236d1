package event

import "go.uber.org/zap"

// Subscriber identifies one registration. Self is handed back to the handler
// on delivery; Fn is the callback identity. Both must be comparable (pointers,
// strings) because Unsubscribe matches on the pair.
type Subscriber struct {
	Self any
	Fn   any
}

// Invoker delivers payload to one subscriber. It is supplied by the scripting
// layer, which knows how to call Fn with Self.
type Invoker func(sub Subscriber, payload any) error

// Bus maps event names to subscriber lists. Publish is immediate; Subscribe
// and Unsubscribe are queued and only applied by Flush, so a handler that
// (un)subscribes never alters the delivery it is running inside.
// Game-loop goroutine only.
type Bus struct {
	subscribers map[string][]Subscriber
	deferred    []func()
	invoke      Invoker
	log         *zap.Logger
}

func NewBus(invoke Invoker, log *zap.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string][]Subscriber),
		deferred:    make([]func(), 0, 16),
		invoke:      invoke,
		log:         log,
	}
}

// Publish calls every subscriber currently registered for eventType, in
// registration order. A failing handler is logged; delivery continues.
func (b *Bus) Publish(eventType string, payload any) {
	subs := b.subscribers[eventType]
	for _, sub := range subs {
		if err := b.invoke(sub, payload); err != nil {
			b.log.Error("event handler failed",
				zap.String("event", eventType),
				zap.Error(err),
			)
		}
	}
}

// Subscribe queues a registration applied at the next Flush.
func (b *Bus) Subscribe(eventType string, sub Subscriber) {
	b.deferred = append(b.deferred, func() {
		b.subscribers[eventType] = append(b.subscribers[eventType], sub)
	})
}

// Unsubscribe queues removal of every registration equal to sub.
func (b *Bus) Unsubscribe(eventType string, sub Subscriber) {
	b.deferred = append(b.deferred, func() {
		list := b.subscribers[eventType]
		kept := list[:0]
		for _, s := range list {
			if s != sub {
				kept = append(kept, s)
			}
		}
		b.subscribers[eventType] = kept
	})
}

// Flush applies queued (un)subscriptions in call order.
func (b *Bus) Flush() {
	for _, action := range b.deferred {
		action()
	}
	b.deferred = b.deferred[:0]
}

// Pending returns the number of queued actions.
func (b *Bus) Pending() int { return len(b.deferred) }

// Subscribers returns the live subscriber count for eventType.
func (b *Bus) Subscribers(eventType string) int { return len(b.subscribers[eventType]) }
