package events

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Listener receives storage events.
type Listener func(StorageEvent)

type subscription struct {
	key string
	fn  Listener
}

// Bus is the in-process channel on which the preference store announces
// writes. Delivery happens on the publisher's goroutine, at most once per
// publish, with no replay for listeners that subscribe later.
type Bus struct {
	log logrus.FieldLogger

	mu        sync.RWMutex
	nextID    uint64
	listeners map[uint64]subscription
}

func NewBus(log logrus.FieldLogger) *Bus {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Bus{
		log:       log,
		listeners: make(map[uint64]subscription),
	}
}

// Subscribe registers fn for every document key. The returned function
// removes the registration and may be called more than once.
func (b *Bus) Subscribe(fn Listener) func() {
	return b.SubscribeKey("", fn)
}

// SubscribeKey registers fn for a single document key. An empty key matches
// all keys.
func (b *Bus) SubscribeKey(key string, fn Listener) func() {
	if fn == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[id] = subscription{key: key, fn: fn}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers evt to the listeners registered at the time of the call.
// A panicking listener is logged and does not stop delivery to the others.
func (b *Bus) Publish(evt StorageEvent) {
	b.mu.RLock()
	ids := make([]uint64, 0, len(b.listeners))
	for id, sub := range b.listeners {
		if sub.key == "" || sub.key == evt.Key {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	targets := make([]Listener, 0, len(ids))
	for _, id := range ids {
		targets = append(targets, b.listeners[id].fn)
	}
	b.mu.RUnlock()

	for _, fn := range targets {
		b.deliver(fn, evt)
	}
}

// Len reports the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

func (b *Bus) deliver(fn Listener, evt StorageEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithFields(logrus.Fields{
				"key":   evt.Key,
				"event": evt.ID,
				"panic": r,
			}).Error("storage listener panicked")
		}
	}()
	fn(evt)
}
