package kafka

import (
	"context"
	"log/slog"
	"sync"

	"github.com/samims/sitepulse/internal/model"
)

// InlinePublisher hands events straight to a handler in-process. It stands in
// for the producer and consumer pair when no brokers are configured.
type InlinePublisher struct {
	handler EventHandler
	log     *slog.Logger
	wg      sync.WaitGroup
}

func NewInlinePublisher(handler EventHandler, log *slog.Logger) *InlinePublisher {
	return &InlinePublisher{handler: handler, log: log.With("layer", "kafka", "component", "inlinePublisher")}
}

func (p *InlinePublisher) Start(context.Context) {}

// Publish returns immediately; the handler runs detached from the request.
func (p *InlinePublisher) Publish(ctx context.Context, event model.CheckEvent) error {
	ctx = context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.handler.Handle(ctx, event); err != nil {
			p.log.Error("Check event handling failed",
				slog.String("check_type", string(event.CheckType)),
				slog.Any("error", err))
		}
	}()
	return nil
}

// Close waits for in-flight handlers.
func (p *InlinePublisher) Close(context.Context) {
	p.wg.Wait()
}
