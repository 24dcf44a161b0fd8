// internal/tasks/amqp.go
//
// RabbitMQ-backed Queue.
//
// Context
// -------
// One durable queue on the default exchange; the routing key is the queue
// name.  Bodies are JSON-encoded Message values published as persistent
// deliveries.  Consume turns on manual acknowledgements with a prefetch of
// `prefetch` messages, so a crashed worker hands its unacked deliveries
// back to the broker.
//
// Workflow
// --------
//  1. NewAMQPQueue dials, opens a consumer channel, and declares the queue.
//  2. Publish opens a short-lived channel per call.
//  3. Consume decodes deliveries in a goroutine.  Undecodable bodies are
//     rejected without requeue; decoded ones carry an ack func.
//
// Notes
// -----
// • amqp.Channel is not safe for concurrent publishes, hence the per-call
//   channel in Publish.
// • Oxford commas, two spaces after periods.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// AMQPQueue implements Queue on RabbitMQ.
type AMQPQueue struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	name     string
	prefetch int
}

// NewAMQPQueue connects to url and declares the durable queue name.
func NewAMQPQueue(url, name string, prefetch int) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", name, err)
	}
	if prefetch < 1 {
		prefetch = 1
	}
	return &AMQPQueue{conn: conn, ch: ch, name: name, prefetch: prefetch}, nil
}

// Publish sends m as a persistent JSON delivery.
func (q *AMQPQueue) Publish(_ context.Context, m Message) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode task %s: %w", m.Name, err)
	}
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	return ch.Publish(
		"",     // default exchange
		q.name, // routing key
		false,  // mandatory
		false,  // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    m.ID,
			Timestamp:    m.EnqueuedAt,
			Type:         m.Name,
			Body:         body,
		})
}

// Consume starts delivering messages until ctx is done or the channel
// closes.
func (q *AMQPQueue) Consume(ctx context.Context) (<-chan Message, error) {
	if err := q.ch.Qos(q.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("amqp qos: %w", err)
	}
	deliveries, err := q.ch.Consume(
		q.name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("amqp consume: %w", err)
	}

	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				m, err := decodeDelivery(d)
				if err != nil {
					zap.L().Warn("rejecting undecodable task", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}
				select {
				case out <- m:
				case <-ctx.Done():
					_ = d.Nack(false, true)
					return
				}
			}
		}
	}()
	return out, nil
}

func decodeDelivery(d amqp.Delivery) (Message, error) {
	var m Message
	if err := json.Unmarshal(d.Body, &m); err != nil {
		return Message{}, err
	}
	m.ack = func() error { return d.Ack(false) }
	return m, nil
}

// Close tears down the consumer channel and the connection.
func (q *AMQPQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		zap.L().Debug("amqp channel close", zap.Error(err))
	}
	return q.conn.Close()
}
