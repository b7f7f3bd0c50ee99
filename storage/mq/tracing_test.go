package mq

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceRoundTrip(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	headers := amqp.Table{}
	injectTrace(ctx, headers)
	assert.Contains(t, headers, "traceparent")

	got := trace.SpanContextFromContext(extractTrace(context.Background(), headers))
	assert.Equal(t, traceID, got.TraceID())
	assert.Equal(t, spanID, got.SpanID())
}

func TestHeaderCarrier(t *testing.T) {
	h := HeaderCarrier(amqp.Table{"n": int32(1)})
	h.Set("k", "v")

	assert.Equal(t, "v", h.Get("k"))
	assert.Equal(t, "", h.Get("n"))
	assert.ElementsMatch(t, []string{"k", "n"}, h.Keys())
	assert.Equal(t, ctxNil(), extractTrace(ctxNil(), nil))
}

func ctxNil() context.Context { return context.Background() }
