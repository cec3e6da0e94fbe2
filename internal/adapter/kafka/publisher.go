package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/subway-facility-dashboard/internal/domain"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher announces completed dataset refreshes on a Kafka topic.
// It implements dataset.RefreshNotifier.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the refresh topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
	return &Publisher{writer: w, logger: logger}
}

// NotifyRefresh publishes summary as a single JSON message.
func (p *Publisher) NotifyRefresh(ctx context.Context, summary domain.RefreshSummary) error {
	msg, err := summaryMessage(summary)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish refresh event: %w", err)
	}
	p.logger.Debug("refresh event published", "topic", p.writer.Topic, "key", string(msg.Key))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// summaryMessage marshals a RefreshSummary into a Kafka message keyed by a
// fresh refresh ID.
func summaryMessage(summary domain.RefreshSummary) (kafkago.Message, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize refresh summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(uuid.NewString()),
		Value: data,
		Time:  summary.FetchedAt,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte("dataset_refresh")},
			{Key: "fetched_at", Value: []byte(summary.FetchedAt.Format(time.RFC3339))},
		},
	}, nil
}
