package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/samims/sitepulse/internal/model"
	"github.com/samims/sitepulse/pkg/tracing"
)

// EventHandler processes one decoded check event.
type EventHandler interface {
	Handle(ctx context.Context, event model.CheckEvent) error
}

// Consumer reads check events from a topic through a consumer group.
type Consumer struct {
	topic         string
	handler       EventHandler
	consumerGroup sarama.ConsumerGroup
	log           *slog.Logger
	tracer        *tracing.Tracer
}

// NewConsumerGroup connects a consumer group for the check event topic.
func NewConsumerGroup(brokers []string, groupID string) (sarama.ConsumerGroup, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Return.Errors = true
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer group: %w", err)
	}
	return group, nil
}

func NewConsumer(topic string, consumerGroup sarama.ConsumerGroup, handler EventHandler, log *slog.Logger) *Consumer {
	return &Consumer{
		topic:         topic,
		consumerGroup: consumerGroup,
		handler:       handler,
		log:           log.With("layer", "kafka", "component", "checkEventConsumer"),
		tracer:        tracing.NewTracer(tracing.GetTracer("check-event-consumer")),
	}
}

// Start blocks consuming until ctx is cancelled or the group is closed.
func (c *Consumer) Start(ctx context.Context) error {
	defer func() {
		if err := c.consumerGroup.Close(); err != nil {
			c.log.Warn("Failed to close consumer group", slog.Any("error", err))
		}
	}()

	c.log.Info("Kafka consumer started", slog.String("topic", c.topic))

	backoff := 1 * time.Second
	for {
		err := c.consumerGroup.Consume(ctx, []string{c.topic}, c)
		if err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			c.log.Error("Error consuming messages", slog.Any("error", err))

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = 1 * time.Second

		if ctx.Err() != nil {
			c.log.Info("Context cancelled, stopping consumer")
			return nil
		}
	}
}

func (c *Consumer) Setup(session sarama.ConsumerGroupSession) error {
	for topic, partitions := range session.Claims() {
		c.log.Info("Partition assignment",
			slog.String("topic", topic),
			slog.Any("partitions", partitions),
		)
	}
	return nil
}

func (c *Consumer) Cleanup(_ sarama.ConsumerGroupSession) error {
	c.log.Info("Kafka session cleanup complete")
	return nil
}

// ConsumeClaim marks undecodable messages as consumed. Messages whose handler
// fails are left unmarked so they are redelivered after a rebalance.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		c.log.Debug("Message received",
			slog.String("topic", message.Topic),
			slog.Int("partition", int(message.Partition)),
			slog.Int64("offset", message.Offset),
		)

		headers := make([]sarama.RecordHeader, 0, len(message.Headers))
		for _, h := range message.Headers {
			if h != nil {
				headers = append(headers, *h)
			}
		}
		ctx := tracing.ExtractTraceContext(session.Context(), headers)
		ctx, span := c.tracer.StartServerSpan(ctx, "KafkaConsume")

		var event model.CheckEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			c.log.Error("Failed to decode check event", slog.Any("error", err))
			c.tracer.RecordError(span, err)
			span.End()
			session.MarkMessage(message, "")
			continue
		}

		if err := c.handler.Handle(ctx, event); err != nil {
			c.log.Error("Check event handling failed",
				slog.String("check_type", string(event.CheckType)),
				slog.Any("error", err))
			c.tracer.RecordError(span, err)
			span.End()
			continue
		}
		span.End()
		session.MarkMessage(message, "")
	}
	return nil
}
