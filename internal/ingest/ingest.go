// Package ingest applies document events from a Kafka feed to the index.
package ingest

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
)

const (
	OpAdd    = "add"
	OpRemove = "remove"
)

// Event is the JSON payload of one feed message. Status defaults to ACTUAL.
type Event struct {
	Op      string          `json:"op"`
	ID      int             `json:"id"`
	Text    string          `json:"text,omitempty"`
	Status  document.Status `json:"status"`
	Ratings []int           `json:"ratings,omitempty"`
}

// Indexer is the subset of indexer.Engine the feed drives.
type Indexer interface {
	AddDocument(id int, text string, status document.Status, ratings []int) error
	RemoveDocument(id int)
}

// HandleMessage returns a kafka.MessageHandler that applies each event to
// idx. Events that can never succeed (undecodable payloads, unknown ops,
// documents the index rejects as invalid) are logged and acknowledged so the
// feed keeps moving.
func HandleMessage(idx Indexer) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		ctx = logger.WithAttrs(ctx, "component", "ingest", "message_key", string(key))
		log := logger.FromContext(ctx)

		event, err := kafka.DecodeJSON[Event](value)
		if err != nil {
			log.Error("failed to decode ingest event", "error", err)
			return nil
		}

		switch event.Op {
		case OpAdd:
			if err := idx.AddDocument(event.ID, event.Text, event.Status, event.Ratings); err != nil {
				if apperrors.IsInvalidInput(err) {
					log.Warn("document rejected", "doc_id", event.ID, "error", err)
					return nil
				}
				return fmt.Errorf("indexing document %d: %w", event.ID, err)
			}
			log.Info("document indexed", "doc_id", event.ID)
		case OpRemove:
			idx.RemoveDocument(event.ID)
			log.Info("document removed", "doc_id", event.ID)
		default:
			log.Warn("unknown ingest op", "op", event.Op, "doc_id", event.ID)
		}
		return nil
	}
}
