// Package events is a small typed pub/sub bus: the repository layer
// publishes per-entity-family change signals, the presentation layer
// subscribes and re-queries. Signals are fire-and-forget and carry no
// payload beyond the topic itself.
package events

import "sync"

// Topic names an entity family whose local data changed.
type Topic string

const (
	FavoritesChanged Topic = "favorites-changed"
	ReviewsChanged   Topic = "reviews-changed"
	ReviewCreated    Topic = "review-created"
	VenuesChanged    Topic = "venues-changed"
	UsersChanged     Topic = "users-changed"
)

// subscriberBuffer bounds each subscriber channel. A full subscriber drops
// signals rather than blocking publishers; subscribers re-query on receive,
// so a dropped duplicate signal loses nothing.
const subscriberBuffer = 8

// Bus fans change signals out to subscribers.
type Bus struct {
	mu   sync.RWMutex
	subs map[Topic][]chan Topic
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]chan Topic)}
}

// Subscribe returns a channel receiving a signal whenever any of the given
// topics is published, plus an unsubscribe func. Transient subscribers must
// call it so their channels do not accumulate for the process lifetime.
func (b *Bus) Subscribe(topics ...Topic) (<-chan Topic, func()) {
	ch := make(chan Topic, subscriberBuffer)

	b.mu.Lock()
	for _, t := range topics {
		b.subs[t] = append(b.subs[t], ch)
	}
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, t := range topics {
			subs := b.subs[t]
			filtered := make([]chan Topic, 0, len(subs))
			for _, c := range subs {
				if c != ch {
					filtered = append(filtered, c)
				}
			}
			b.subs[t] = filtered
		}
	}
	return ch, unsubscribe
}

// Publish delivers topic to all its subscribers without blocking.
func (b *Bus) Publish(topic Topic) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[topic] {
		select {
		case ch <- topic:
		default:
		}
	}
}
