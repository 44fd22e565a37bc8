// Package notify defines the document-change broker abstraction. A broker
// carries "document at path changed to value" messages between writers and
// subscribers; the Postgres document store publishes into it after every
// write so that remote subscriptions observe changes, including the
// writer's own.
//
// Three implementations exist: goch (in-process Go channels), rabbit
// (RabbitMQ) and gcppubsub (GCP Pub/Sub).
package notify

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Mode selects a broker implementation at startup.
type Mode string

const (
	ModeGoChan    Mode = "go_chan"
	ModeRabbitMQ  Mode = "rabbitmq"
	ModeGCPPubSub Mode = "gcp_pub_sub"
)

// DocumentMessage announces that the document at Path now holds Value.
type DocumentMessage struct {
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
}

// GetTopic returns the routing topic for this message: the document path.
func (m DocumentMessage) GetTopic() string {
	return m.Path
}

// Broker fans document-change messages out to path subscribers.
// Subscribe returns a subscriber ID used for DeSubscribe and a channel that
// only carries messages for the requested path. DeSubscribe closes the
// channel.
type Broker interface {
	Publish(msg DocumentMessage) error
	Subscribe(path string) (uuid.UUID, <-chan DocumentMessage, error)
	DeSubscribe(id uuid.UUID) error
}
