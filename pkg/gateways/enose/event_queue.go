package enose

import (
	"sync"

	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"
)

// eventQueue is an unbounded FIFO between the read loop and the consumer.
// push never blocks, so a slow consumer cannot stall the network reader or
// a disconnect. The consumer is expected to read until out is closed.
type eventQueue struct {
	mu      sync.Mutex
	items   []entities.Event
	signal  chan struct{}
	out     chan entities.Event
	done    chan struct{}
	closing sync.Once
}

func newEventQueue() *eventQueue {
	q := &eventQueue{
		signal: make(chan struct{}, 1),
		out:    make(chan entities.Event),
		done:   make(chan struct{}),
	}
	go q.pump()
	return q
}

func (q *eventQueue) push(event entities.Event) {
	q.mu.Lock()
	q.items = append(q.items, event)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *eventQueue) pop() (entities.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return entities.Event{}, false
	}
	event := q.items[0]
	q.items[0] = entities.Event{}
	q.items = q.items[1:]
	return event, true
}

// pump delivers queued events in order. Once closed it hands out what is
// still pending and then closes out.
func (q *eventQueue) pump() {
	defer close(q.out)
	for {
		event, ok := q.pop()
		if !ok {
			select {
			case <-q.signal:
				continue
			case <-q.done:
				q.drain()
				return
			}
		}
		q.out <- event
	}
}

func (q *eventQueue) drain() {
	for {
		event, ok := q.pop()
		if !ok {
			return
		}
		q.out <- event
	}
}

func (q *eventQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *eventQueue) close() {
	q.closing.Do(func() { close(q.done) })
}
