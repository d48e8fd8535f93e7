package credentials

import (
	"sync"

	"github.com/rs/zerolog/log"
)

const subscriberBuffer = 64

// broadcaster fans change events out to subscribers without ever blocking a writer.
type broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan ChangeEvent
	nextID int
	closed bool
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan ChangeEvent)}
}

func (b *broadcaster) subscribe() (<-chan ChangeEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan ChangeEvent, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

func (b *broadcaster) publish(events ...ChangeEvent) {
	if len(events) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		for _, ev := range events {
			select {
			case ch <- ev:
			default:
				log.Warn().Int("subscriber", id).Str("key", ev.Key).Msg("credential change event dropped, subscriber is not keeping up")
			}
		}
	}
}

func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
