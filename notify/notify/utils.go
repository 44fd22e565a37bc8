package notify

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// Subscriber is any service that can be subscribed to by topic and
// unsubscribed from by ID. T is the topic type (a document path, a trip ID)
// and M the message type delivered on the channel.
type Subscriber[T any, M any] interface {
	Subscribe(topic T) (uuid.UUID, <-chan M, error)
	DeSubscribe(id uuid.UUID) error
}

// SubscribeProcessor subscribes to topic on service, transforms every
// incoming message with transform and forwards the results to out until ctx
// is cancelled or the subscription channel closes. transform may skip a
// message by returning skip=true. The subscription is torn down and out is
// closed when the processor exits, so each processor must own its out
// channel exclusively.
func SubscribeProcessor[S Subscriber[T, M], T any, M any, O any](
	ctx context.Context,
	service S,
	topic T,
	transform func(msg M) (O, bool, error),
	out chan<- O,
) {
	go func() {
		id, in, err := service.Subscribe(topic)
		if err != nil {
			log.Printf("notify: subscribe failed: %v", err)
			close(out)
			return
		}

		defer func() {
			if err := service.DeSubscribe(id); err != nil {
				log.Printf("notify: de-subscribe %s: %v", id, err)
			}
			close(out)
		}()

		for {
			select {
			case msg, ok := <-in:
				if !ok {
					return
				}

				o, skip, err := transform(msg)
				if err != nil {
					log.Printf("notify: transform for %s: %v", id, err)
					continue
				}
				if skip {
					continue
				}

				select {
				case out <- o:
				case <-ctx.Done():
					return
				}

			case <-ctx.Done():
				return
			}
		}
	}()
}
