package events

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const defaultBuffer = 32

// Bus is an in-process publish/subscribe hub. Publish never blocks: a
// subscriber whose buffer is full misses the event.
type Bus struct {
	log *zap.Logger
	seq atomic.Int64

	mu     sync.RWMutex
	nextID int
	subs   map[int]*Subscription
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{log: log, subs: make(map[int]*Subscription)}
}

// Subscription receives events on C until Close is called.
type Subscription struct {
	C <-chan Event

	bus    *Bus
	id     int
	ch     chan Event
	filter map[Kind]struct{}
	once   sync.Once
}

// Subscribe registers for the given kinds, or for all kinds when none given.
func (b *Bus) Subscribe(kinds ...Kind) *Subscription {
	ch := make(chan Event, defaultBuffer)
	sub := &Subscription{C: ch, bus: b, ch: ch}
	if len(kinds) > 0 {
		sub.filter = make(map[Kind]struct{}, len(kinds))
		for _, k := range kinds {
			sub.filter[k] = struct{}{}
		}
	}

	b.mu.Lock()
	b.nextID++
	sub.id = b.nextID
	b.subs[sub.id] = sub
	b.mu.Unlock()
	return sub
}

// Close unregisters the subscription and closes C. Safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		close(s.ch)
		s.bus.mu.Unlock()
	})
}

func (s *Subscription) wants(k Kind) bool {
	if s.filter == nil {
		return true
	}
	_, ok := s.filter[k]
	return ok
}

// Publish stamps ev with a sequence number (and a timestamp if missing) and
// fans it out to matching subscribers.
func (b *Bus) Publish(ev Event) {
	ev.Sequence = b.seq.Add(1)
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !sub.wants(ev.Kind) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			b.log.Warn("event dropped, subscriber buffer full",
				zap.String("kind", string(ev.Kind)),
				zap.String("owner", ev.OwnerID),
				zap.Int64("sequence", ev.Sequence))
		}
	}
}
