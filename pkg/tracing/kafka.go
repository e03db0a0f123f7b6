package tracing

import (
	"context"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel/propagation"
)

// InjectTraceContext copies the trace context of ctx into Kafka record headers
// so consumers of check events can continue the trace.
func InjectTraceContext(ctx context.Context, headers []sarama.RecordHeader) []sarama.RecordHeader {
	carrier := propagation.MapCarrier{}
	propagation.TraceContext{}.Inject(ctx, carrier)

	out := make([]sarama.RecordHeader, len(headers), len(headers)+len(carrier))
	copy(out, headers)
	for k, v := range carrier {
		out = append(out, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	return out
}

// ExtractTraceContext is the inverse of InjectTraceContext.
func ExtractTraceContext(ctx context.Context, headers []sarama.RecordHeader) context.Context {
	carrier := propagation.MapCarrier{}
	for _, h := range headers {
		carrier[string(h.Key)] = string(h.Value)
	}
	return propagation.TraceContext{}.Extract(ctx, carrier)
}
