package notify_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"tripkit/notify/goch"
	"tripkit/notify/notify"
)

func TestSubscribeProcessor(t *testing.T) {
	b := goch.NewBroker(0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan string, 8)
	notify.SubscribeProcessor(ctx, notify.Broker(b), "trips/1/data/members",
		func(msg notify.DocumentMessage) (string, bool, error) {
			if string(msg.Value) == `"skip"` {
				return "", true, nil
			}
			if string(msg.Value) == `"bad"` {
				return "", false, fmt.Errorf("bad value")
			}
			return msg.Path + "=" + string(msg.Value), false, nil
		}, out)

	// Give the processor time to subscribe.
	time.Sleep(50 * time.Millisecond)

	publish := func(v string) {
		t.Helper()
		err := b.Publish(notify.DocumentMessage{Path: "trips/1/data/members", Value: json.RawMessage(v)})
		if err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}
	publish(`"skip"`) // dropped by transform
	publish(`"bad"`)  // transform error, logged and dropped
	publish(`["Ann"]`)

	select {
	case got := <-out:
		want := `trips/1/data/members=["Ann"]`
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("transformed message was never forwarded")
	}

	// Cancellation closes the output channel.
	cancel()
	select {
	case _, ok := <-out:
		if ok {
			t.Error("expected out to be closed after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("out was not closed after cancel")
	}
}
