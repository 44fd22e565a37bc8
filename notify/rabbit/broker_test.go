package rabbit_test

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"tripkit/notify/notify"
	"tripkit/notify/rabbit"
)

// getTestConnection establishes a real AMQP connection for tests, skipping
// when no broker is configured.
func getTestConnection(t *testing.T) *amqp.Connection {
	t.Helper()
	if os.Getenv("RABBITMQ_URL") == "" {
		t.Skip("RABBITMQ_URL not set; skipping RabbitMQ integration test")
	}
	conn, err := amqp.Dial(rabbit.CreateAmqpURL())
	if err != nil {
		t.Fatalf("PRE-REQUISITE FAILED: Could not connect to RabbitMQ for testing. Ensure it's running and accessible. Error: %v", err)
	}
	return conn
}

// receiveMsgWithTimeout attempts to receive a message from a channel with a
// timeout.
func receiveMsgWithTimeout[T any](tb testing.TB, ch <-chan T, timeout time.Duration) (T, bool) {
	tb.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			var zero T
			return zero, false
		}
		return msg, true
	case <-time.After(timeout):
		var zero T
		return zero, false
	}
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	conn := getTestConnection(t)
	defer conn.Close()

	b, err := rabbit.NewBroker(conn)
	if err != nil {
		t.Fatalf("NewBroker failed: %v", err)
	}
	defer b.Close()

	path := "trips/it-1/data/members"
	id, ch, err := b.Subscribe(path)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer b.DeSubscribe(id)

	// Queue binding is asynchronous on the server side; give it a moment.
	time.Sleep(200 * time.Millisecond)

	msg := notify.DocumentMessage{Path: path, Value: json.RawMessage(`["Ann"]`)}
	if err := b.Publish(msg); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	got, ok := receiveMsgWithTimeout(t, ch, 5*time.Second)
	if !ok {
		t.Fatal("message was never delivered")
	}
	if got.Path != msg.Path || string(got.Value) != string(msg.Value) {
		t.Errorf("got %+v, want %+v", got, msg)
	}
}

func TestPathIsolation(t *testing.T) {
	conn := getTestConnection(t)
	defer conn.Close()

	b, err := rabbit.NewBroker(conn)
	if err != nil {
		t.Fatalf("NewBroker failed: %v", err)
	}
	defer b.Close()

	id, ch, err := b.Subscribe("trips/it-2/data/members")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer b.DeSubscribe(id)

	time.Sleep(200 * time.Millisecond)

	err = b.Publish(notify.DocumentMessage{Path: "trips/it-3/data/members", Value: json.RawMessage(`1`)})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if _, ok := receiveMsgWithTimeout(t, ch, 500*time.Millisecond); ok {
		t.Error("a message for another path must not be delivered")
	}
}

func TestDeSubscribeClosesStream(t *testing.T) {
	conn := getTestConnection(t)
	defer conn.Close()

	b, err := rabbit.NewBroker(conn)
	if err != nil {
		t.Fatalf("NewBroker failed: %v", err)
	}
	defer b.Close()

	id, ch, err := b.Subscribe("trips/it-4/data/members")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := b.DeSubscribe(id); err != nil {
		t.Fatalf("DeSubscribe failed: %v", err)
	}

	if _, ok := receiveMsgWithTimeout(t, ch, 2*time.Second); ok {
		t.Error("channel should close after DeSubscribe, not deliver")
	}
	if err := b.DeSubscribe(id); err == nil {
		t.Error("DeSubscribe of an unknown id should return an error")
	}
}
