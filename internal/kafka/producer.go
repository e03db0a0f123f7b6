package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samims/sitepulse/internal/model"
	"github.com/samims/sitepulse/pkg/tracing"
)

// EventPublisher emits check events for downstream alerting.
type EventPublisher interface {
	Start(ctx context.Context)
	Publish(ctx context.Context, event model.CheckEvent) error
	Close(ctx context.Context)
}

type producer struct {
	asyncProducer sarama.AsyncProducer
	topic         string
	log           *slog.Logger
	wg            sync.WaitGroup
	closeOnce     sync.Once
	tracer        *tracing.Tracer
}

// NewSaramaConfig is the producer config used in production.
func NewSaramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	return cfg
}

// NewAsyncProducer connects to brokers with NewSaramaConfig.
func NewAsyncProducer(brokers []string) (sarama.AsyncProducer, error) {
	p, err := sarama.NewAsyncProducer(brokers, NewSaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return p, nil
}

// NewProducer wraps an AsyncProducer. Call Start before Publish.
func NewProducer(asyncProducer sarama.AsyncProducer, topic string, log *slog.Logger, tracer *tracing.Tracer) EventPublisher {
	if asyncProducer == nil || log == nil || tracer == nil {
		panic("NewProducer: nil dependencies provided")
	}
	if topic == "" {
		panic("NewProducer: topic must not be empty")
	}
	return &producer{
		asyncProducer: asyncProducer,
		topic:         topic,
		log:           log.With("layer", "kafka", "component", "checkEventProducer"),
		tracer:        tracer,
	}
}

// Start launches the success and error drains. They run until Close.
func (p *producer) Start(_ context.Context) {
	p.log.Info("Starting Kafka producer handlers")
	p.wg.Add(2)
	go p.handleSuccess()
	go p.handleErrors()
}

func (p *producer) handleSuccess() {
	defer p.wg.Done()
	for msg := range p.asyncProducer.Successes() {
		key, _ := msg.Key.Encode()
		p.log.Debug("Check event delivered",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("key", string(key)))
	}
	p.log.Info("Kafka successes channel closed")
}

func (p *producer) handleErrors() {
	defer p.wg.Done()
	for err := range p.asyncProducer.Errors() {
		p.log.Error("Check event delivery failed",
			slog.String("topic", err.Msg.Topic),
			slog.Any("error", err.Err))
	}
	p.log.Info("Kafka errors channel closed")
}

// Publish queues event keyed by check type, with the trace context in the
// message headers.
func (p *producer) Publish(ctx context.Context, event model.CheckEvent) error {
	ctx, span := p.tracer.StartClientSpan(ctx, "KafkaPublish")
	defer span.End()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		p.tracer.RecordError(span, err)
		return fmt.Errorf("failed to marshal check event: %w", err)
	}

	key := string(event.CheckType)
	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(data),
		Timestamp: event.CreatedAt,
		Headers:   tracing.InjectTraceContext(ctx, nil),
	}

	select {
	case p.asyncProducer.Input() <- msg:
		p.log.Debug("Check event queued",
			slog.String("topic", p.topic),
			slog.String("key", key),
			slog.String("status", string(event.Status)))
		span.SetAttributes(
			attribute.String("kafka.topic", p.topic),
			attribute.String("kafka.key", key),
		)
		return nil
	case <-ctx.Done():
		p.log.Warn("Publish cancelled by context", slog.String("check_type", key))
		span.SetStatus(codes.Error, "publish cancelled by context")
		return ctx.Err()
	}
}

// Close flushes pending messages and waits for the drains to finish.
func (p *producer) Close(_ context.Context) {
	p.closeOnce.Do(func() {
		p.log.Info("Closing Kafka producer...")
		p.asyncProducer.AsyncClose()
		p.wg.Wait()
		p.log.Info("Kafka producer closed")
	})
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Start(context.Context) {}

func (NopPublisher) Publish(context.Context, model.CheckEvent) error { return nil }

func (NopPublisher) Close(context.Context) {}
