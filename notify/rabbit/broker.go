package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"tripkit/config"
	"tripkit/notify/notify"
)

// All document-change events flow through one topic exchange; the routing
// key is the document path with "/" mapped to ".", so a subscriber binds a
// queue per exact path.
var exchangeName = config.AppName + ".documents"

// pathRoutingKey converts a document path into an AMQP topic routing key.
func pathRoutingKey(path string) string {
	return strings.ReplaceAll(path, "/", ".")
}

type rabbitSubscriber struct {
	channel *amqp091.Channel
	out     chan notify.DocumentMessage
}

// Broker is a RabbitMQ-backed notify.Broker. Each subscriber gets its own
// AMQP channel and an exclusive auto-delete queue bound to the document's
// routing key, so every subscriber sees every change for its path.
type Broker struct {
	conn *amqp091.Connection

	mu      sync.Mutex
	channel *amqp091.Channel // publish channel
	subs    map[uuid.UUID]*rabbitSubscriber
}

// NewBroker declares the exchange and returns a Broker using conn.
func NewBroker(conn *amqp091.Connection) (*Broker, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	if err := declareExchange(ch); err != nil {
		ch.Close()
		return nil, err
	}
	return &Broker{
		conn:    conn,
		channel: ch,
		subs:    make(map[uuid.UUID]*rabbitSubscriber),
	}, nil
}

func declareExchange(ch *amqp091.Channel) error {
	err := ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchangeName, err)
	}
	return nil
}

// Publish sends msg to the exchange under its path's routing key.
func (b *Broker) Publish(msg notify.DocumentMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	b.mu.Lock()
	defer b.mu.Unlock()
	err = b.channel.PublishWithContext(ctx,
		exchangeName,
		pathRoutingKey(msg.Path),
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Subscribe binds a fresh exclusive queue for path and relays its
// deliveries onto the returned channel.
func (b *Broker) Subscribe(path string) (uuid.UUID, <-chan notify.DocumentMessage, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		"",    // server-generated name
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return uuid.Nil, nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, pathRoutingKey(path), exchangeName, false, nil); err != nil {
		ch.Close()
		return uuid.Nil, nil, fmt.Errorf("failed to bind queue %s: %w", q.Name, err)
	}

	deliveries, err := ch.Consume(
		q.Name,
		"",    // consumer tag
		true,  // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return uuid.Nil, nil, fmt.Errorf("failed to register a consumer: %w", err)
	}

	id := uuid.New()
	sub := &rabbitSubscriber{
		channel: ch,
		out:     make(chan notify.DocumentMessage, 8),
	}

	b.mu.Lock()
	b.subs[id] = sub
	b.mu.Unlock()

	go func() {
		defer func() {
			b.mu.Lock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
			}
			b.mu.Unlock()
			close(sub.out)
		}()

		// Deliveries end when DeSubscribe closes the AMQP channel.
		for d := range deliveries {
			var msg notify.DocumentMessage
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				log.Printf("rabbit: failed to unmarshal DocumentMessage: %v", err)
				continue
			}

			select {
			case sub.out <- msg:
			case <-time.After(1 * time.Second):
				log.Printf("rabbit: timeout sending to subscriber %s, skipping", id)
			}
		}
	}()

	return id, sub.out, nil
}

// DeSubscribe closes the subscriber's AMQP channel, which ends its delivery
// stream and in turn closes its output channel.
func (b *Broker) DeSubscribe(id uuid.UUID) error {
	b.mu.Lock()
	sub, ok := b.subs[id]
	b.mu.Unlock()

	if !ok {
		return fmt.Errorf("rabbit: subscriber %s not found", id)
	}
	return sub.channel.Close()
}

// Close shuts down the publish channel. Active subscribers keep their own
// channels and must be de-subscribed individually.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.channel.Close()
}

var _ notify.Broker = (*Broker)(nil)
