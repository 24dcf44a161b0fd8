package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("tasks: queue closed")

// Message is one queued task invocation.
type Message struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Args       Args      `json:"args"`
	EnqueuedAt time.Time `json:"enqueued_at"`

	ack func() error
}

// Ack acknowledges delivery.  A no-op for queues without acknowledgements.
func (m Message) Ack() error {
	if m.ack == nil {
		return nil
	}
	return m.ack()
}

// Queue is the broker contract Worker and Enqueue depend on.
type Queue interface {
	Publish(ctx context.Context, m Message) error
	Consume(ctx context.Context) (<-chan Message, error)
	Close() error
}

// Enqueue publishes name(args...) with a fresh UUID and returns the message.
func Enqueue(ctx context.Context, q Queue, name string, args ...any) (Message, error) {
	if name == "" {
		return Message{}, errors.New("tasks: empty task name")
	}
	if args == nil {
		args = []any{}
	}
	m := Message{
		ID:         uuid.NewString(),
		Name:       name,
		Args:       Args(args),
		EnqueuedAt: time.Now().UTC(),
	}
	if err := q.Publish(ctx, m); err != nil {
		return Message{}, err
	}
	return m, nil
}

/*────────────────────────────── memory ────────────────────────────────────*/

// MemoryQueue is an in-process buffered queue for tests and single-binary
// deployments.
type MemoryQueue struct {
	ch     chan Message
	done   chan struct{}
	stop   sync.Once
	mu     sync.RWMutex
	closed bool
}

// NewMemoryQueue returns a queue buffering up to size messages.
func NewMemoryQueue(size int) *MemoryQueue {
	if size < 1 {
		size = 1
	}
	return &MemoryQueue{ch: make(chan Message, size), done: make(chan struct{})}
}

// Publish blocks while the buffer is full, until ctx is done or the queue
// is closed.
func (q *MemoryQueue) Publish(ctx context.Context, m Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	select {
	case <-q.done:
		return ErrClosed
	default:
	}
	select {
	case q.ch <- m:
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume returns the shared channel.  It is closed by Close.
func (q *MemoryQueue) Consume(context.Context) (<-chan Message, error) {
	return q.ch, nil
}

// Close stops publishing and closes the consumer channel.  Blocked
// publishers return ErrClosed first.  Idempotent.
func (q *MemoryQueue) Close() error {
	q.stop.Do(func() { close(q.done) })
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	return nil
}

// Len reports buffered messages.
func (q *MemoryQueue) Len() int { return len(q.ch) }

// Brokers accepted by Open.
const (
	BrokerMemory = "memory"
	BrokerAMQP   = "amqp"
)

// Open builds the Queue for broker.  buffer sizes a MemoryQueue; prefetch
// bounds unacked AMQP deliveries.
func Open(broker, amqpURL, queue string, buffer, prefetch int) (Queue, error) {
	switch broker {
	case BrokerMemory, "":
		return NewMemoryQueue(buffer), nil
	case BrokerAMQP:
		q, err := NewAMQPQueue(amqpURL, queue, prefetch)
		if err != nil {
			return nil, err
		}
		return q, nil
	default:
		return nil, fmt.Errorf("tasks: unknown broker %q", broker)
	}
}
