package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tripkit/docstore/docstore"
	"tripkit/notify/notify"
)

// Store is a Postgres-backed docstore.Store. Persistence goes through GORM;
// change notifications go through the configured broker, so every
// subscriber — in this process or another instance — observes each write,
// the writer's own included.
type Store struct {
	db     *gorm.DB
	broker notify.Broker
}

// NewStore builds a Store over an initialized GORM connection and a broker.
func NewStore(db *gorm.DB, broker notify.Broker) *Store {
	return &Store{db: db, broker: broker}
}

// Write upserts the document row, then publishes the change. The merge flag
// is accepted for contract parity: the row holds nothing but the value
// blob, so there are no foreign fields to preserve on this backend.
func (s *Store) Write(ctx context.Context, path string, value json.RawMessage, _ bool) error {
	doc := DocumentModel{Path: path, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("pg: write %q: %w", path, err)
	}

	if err := s.broker.Publish(notify.DocumentMessage{Path: path, Value: value}); err != nil {
		// The row is persisted; only the notification failed. Subscribers
		// catch up on their next initial read.
		log.Printf("pg: publish change for %q: %v", path, err)
	}
	return nil
}

// Subscribe registers with the broker for path, then replays the current
// row (if any) before relaying broker messages. The broker subscription is
// taken out first so no write can fall between the initial read and the
// live stream.
func (s *Store) Subscribe(path string) (uuid.UUID, <-chan docstore.Snapshot, error) {
	id, in, err := s.broker.Subscribe(path)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("pg: subscribe %q: %w", path, err)
	}

	var current *docstore.Snapshot
	var doc DocumentModel
	switch err := s.db.Where("path = ?", path).First(&doc).Error; {
	case err == nil:
		snap := docstore.NewSnapshot(path, doc.Value)
		current = &snap
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No document yet; the first delivery will be a live change.
	default:
		if derr := s.broker.DeSubscribe(id); derr != nil {
			log.Printf("pg: de-subscribe after failed read: %v", derr)
		}
		return uuid.Nil, nil, fmt.Errorf("pg: read %q: %w", path, err)
	}

	out := make(chan docstore.Snapshot, 8)
	go func() {
		defer close(out)
		if current != nil {
			out <- *current
		}
		for msg := range in {
			if msg.Path != path {
				continue
			}
			out <- docstore.NewSnapshot(msg.Path, msg.Value)
		}
	}()

	return id, out, nil
}

// DeSubscribe tears down the broker subscription; the relay goroutine
// drains out and closes the snapshot channel.
func (s *Store) DeSubscribe(id uuid.UUID) error {
	return s.broker.DeSubscribe(id)
}

var _ docstore.Store = (*Store)(nil)
