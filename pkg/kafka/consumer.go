// Package kafka consumes the document feed with segmentio/kafka-go. Messages
// are handed to a MessageHandler one at a time and committed afterwards.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
)

// MessageHandler processes one message. A non-nil error triggers a retry.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

const (
	defaultAttempts = 3
	defaultBackoff  = 200 * time.Millisecond
)

type Consumer struct {
	reader   *kafka.Reader
	handler  MessageHandler
	attempts int
	backoff  time.Duration
	logger   *slog.Logger
}

// NewConsumer reads cfg.Topic as member of cfg.ConsumerGroup, starting from
// the oldest retained message when the group has no committed offset.
func NewConsumer(cfg config.KafkaConfig, handler MessageHandler) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			GroupID:     cfg.ConsumerGroup,
			Topic:       cfg.Topic,
			MinBytes:    1,
			MaxBytes:    1 << 20,
			MaxWait:     500 * time.Millisecond,
			StartOffset: kafka.FirstOffset,
		}),
		handler:  handler,
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
		logger:   slog.Default().With("component", "ingest-consumer", "topic", cfg.Topic, "group", cfg.ConsumerGroup),
	}
}

// Run consumes until ctx is done and then closes the reader. A message is
// committed once the handler accepts it or has failed on every attempt, so a
// poison message cannot stall the partition.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			c.logger.Error("fetch failed", "error", err)
			if !sleep(ctx, c.backoff) {
				break
			}
			continue
		}
		c.process(ctx, msg)
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("commit failed", "partition", msg.Partition, "offset", msg.Offset, "error", err)
		}
	}
	c.logger.Info("consumer stopping", "reason", ctx.Err())
	return c.reader.Close()
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	for attempt := 1; ; attempt++ {
		err := c.handler(ctx, msg.Key, msg.Value)
		if err == nil {
			return
		}
		if attempt >= c.attempts || !sleep(ctx, c.backoff*time.Duration(attempt)) {
			c.logger.Error("dropping message",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"attempts", attempt,
				"error", err,
			)
			return
		}
		c.logger.Warn("handler failed, retrying", "offset", msg.Offset, "attempt", attempt, "error", err)
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// DecodeJSON unmarshals a message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}
