package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPRequest 一次请求的指标维度和数值
type HTTPRequest struct {
	Labels       []attribute.KeyValue
	Duration     float64
	RequestSize  int64
	ResponseSize int64
}

func (m *OTelMetrics) AddActiveRequests(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.HTTPServerActiveRequests.Add(ctx, delta)
}

// RecordHTTPRequest 记录请求数、耗时，以及非空的请求/响应大小
func (m *OTelMetrics) RecordHTTPRequest(ctx context.Context, r HTTPRequest) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(r.Labels...)
	m.HTTPServerRequestTotal.Add(ctx, 1, attrs)
	m.HTTPServerDuration.Record(ctx, r.Duration, attrs)
	if r.RequestSize > 0 {
		m.HTTPServerRequestSize.Record(ctx, r.RequestSize, attrs)
	}
	if r.ResponseSize > 0 {
		m.HTTPServerResponseSize.Record(ctx, r.ResponseSize, attrs)
	}
}

func AddActiveRequests(ctx context.Context, delta int64) {
	GetMetrics().AddActiveRequests(ctx, delta)
}

func RecordHTTPRequest(ctx context.Context, r HTTPRequest) {
	GetMetrics().RecordHTTPRequest(ctx, r)
}
