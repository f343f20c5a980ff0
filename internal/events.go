package internal

import (
	"errors"
	"log/slog"
	"sync"
)

const (
	// MaxSubscribers bounds the number of listeners per event source.
	MaxSubscribers = 16
	// DefaultSubscriberBuffer is used when a subscriber asks for no buffer.
	DefaultSubscriberBuffer = 64
)

var ErrTooManySubscribers = errors.New("too many subscribers")

// broadcaster fans events out to a bounded set of buffered channels.
// Publishing never blocks: a subscriber with a full buffer misses the event.
type broadcaster[T any] struct {
	mu      sync.Mutex
	subs    map[int]chan T
	nextID  int
	dropped int
	logger  *slog.Logger
}

func newBroadcaster[T any](logger *slog.Logger) *broadcaster[T] {
	return &broadcaster[T]{
		subs:   make(map[int]chan T),
		logger: logger,
	}
}

// subscribe registers a listener. The returned cancel func closes the channel and is safe to
// call more than once.
func (b *broadcaster[T]) subscribe(buffer int) (<-chan T, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.subs) >= MaxSubscribers {
		return nil, nil, ErrTooManySubscribers
	}
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}

	id := b.nextID
	b.nextID++
	ch := make(chan T, buffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}

	return ch, cancel, nil
}

func (b *broadcaster[T]) publish(events ...T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ev := range events {
		for id, sub := range b.subs {
			select {
			case sub <- ev:
			default:
				b.dropped++
				b.logger.Warn("subscriber buffer full, event dropped", slog.Int("subscriber", id))
			}
		}
	}
}
