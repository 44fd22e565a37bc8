package gcppubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/google/uuid"

	"tripkit/config"
	"tripkit/notify/notify"
)

const pathAttribute = "path"

// topicID is shared by every tripkit instance on the project; subscribers
// filter on the document-path attribute server-side.
var topicID = config.AppName + "-documents"

// subscriptionInfo tracks one active Pub/Sub subscription.
type subscriptionInfo struct {
	gcpSubscription *pubsub.Subscription
	cancel          context.CancelFunc
}

// Broker is a GCP Pub/Sub-backed notify.Broker. Each Subscribe creates a
// filtered, short-lived GCP subscription; DeSubscribe cancels its receiver
// and deletes it again.
type Broker struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	ctx    context.Context

	mu   sync.Mutex
	subs map[uuid.UUID]*subscriptionInfo
}

// NewBroker ensures the shared topic exists (creating it if necessary) and
// returns a Broker bound to it.
func NewBroker(ctx context.Context, client *pubsub.Client) (*Broker, error) {
	if client == nil {
		return nil, fmt.Errorf("GCP Pub/Sub client is nil")
	}

	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existence of topic %s: %w", topicID, err)
	}
	if !exists {
		topic, err = client.CreateTopic(ctx, topicID)
		if err != nil {
			return nil, fmt.Errorf("failed to create topic %s: %w", topicID, err)
		}
		log.Printf("Created Pub/Sub topic: %s", topicID)
	}

	return &Broker{
		client: client,
		topic:  topic,
		ctx:    ctx,
		subs:   make(map[uuid.UUID]*subscriptionInfo),
	}, nil
}

// Publish sends msg to the shared topic with the document path as an
// attribute, and waits for the server's acknowledgement.
func (b *Broker) Publish(msg notify.DocumentMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal DocumentMessage: %w", err)
	}

	result := b.topic.Publish(b.ctx, &pubsub.Message{
		Data: body,
		Attributes: map[string]string{
			pathAttribute: msg.Path,
		},
	})
	if _, err := result.Get(b.ctx); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", b.topic.ID(), err)
	}
	return nil
}

// Subscribe creates a new filtered subscription on GCP and starts listening
// for messages about path.
func (b *Broker) Subscribe(path string) (uuid.UUID, <-chan notify.DocumentMessage, error) {
	id := uuid.New()
	gcpSubName := fmt.Sprintf("sub-%s-%s", config.AppName, id.String())

	cfg := pubsub.SubscriptionConfig{
		Topic:            b.topic,
		Filter:           fmt.Sprintf("attributes.%s = %q", pathAttribute, path),
		ExpirationPolicy: 24 * time.Hour,
		AckDeadline:      10 * time.Second,
	}

	gcpSub, err := b.client.CreateSubscription(b.ctx, gcpSubName, cfg)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to create GCP subscription %s: %w", gcpSubName, err)
	}

	out := make(chan notify.DocumentMessage, 5)
	receiveCtx, cancel := context.WithCancel(b.ctx)

	b.mu.Lock()
	b.subs[id] = &subscriptionInfo{gcpSubscription: gcpSub, cancel: cancel}
	b.mu.Unlock()

	go func() {
		defer func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()

			// Delete the subscription from GCP to prevent resource leaks.
			if deleteErr := gcpSub.Delete(context.Background()); deleteErr != nil {
				log.Printf("Error deleting GCP subscription %s: %v", gcpSub.ID(), deleteErr)
			}
			close(out)
		}()

		// Receive blocks until the context is cancelled.
		err := gcpSub.Receive(receiveCtx, func(_ context.Context, pubsubMsg *pubsub.Message) {
			pubsubMsg.Ack()

			var msg notify.DocumentMessage
			if err := json.Unmarshal(pubsubMsg.Data, &msg); err != nil {
				log.Printf("Error unmarshaling DocumentMessage for %s: %v. Body: %s", id, err, string(pubsubMsg.Data))
				return
			}

			select {
			case out <- msg:
			case <-time.After(2 * time.Second):
				log.Printf("Timeout sending DocumentMessage to subscriber %s.", id)
			case <-receiveCtx.Done():
			}
		})
		if err != nil && err != context.Canceled {
			log.Printf("Error in Receive loop for subscription %s: %v", id, err)
		}
	}()

	return id, out, nil
}

// DeSubscribe stops the receiver; the goroutine deletes the underlying GCP
// subscription and closes the output channel on its way out.
func (b *Broker) DeSubscribe(id uuid.UUID) error {
	b.mu.Lock()
	info, ok := b.subs[id]
	if ok {
		info.cancel()
	}
	b.mu.Unlock()

	if !ok {
		return fmt.Errorf("gcppubsub: subscription %s not found", id)
	}
	return nil
}

// Close cancels every active subscription's receiver.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, info := range b.subs {
		info.cancel()
	}
}

var _ notify.Broker = (*Broker)(nil)
