package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 引导流程相关指标
	StepTransitionTotal metric.Int64Counter
	GuardRedirectTotal  metric.Int64Counter
	SessionStartedTotal metric.Int64Counter
	SignInTotal         metric.Int64Counter
	SignInDuration      metric.Float64Histogram
	OTPSentTotal        metric.Int64Counter
	EventPublishTotal   metric.Int64Counter

	// HTTP 相关指标
	HTTPServerRequestTotal   metric.Int64Counter
	HTTPServerDuration       metric.Float64Histogram
	HTTPServerRequestSize    metric.Int64Histogram
	HTTPServerResponseSize   metric.Int64Histogram
	HTTPServerActiveRequests metric.Int64UpDownCounter
}

var (
	// 全局指标实例，未初始化时所有 Record 方法都是空操作
	metrics *OTelMetrics
)

// InitMetrics 初始化 OpenTelemetry 指标，需在 MeterProvider 设置之后调用
func InitMetrics() error {
	m, err := newOTelMetrics(otel.Meter("reformly"))
	if err != nil {
		return err
	}
	metrics = m
	return nil
}

func newOTelMetrics(meter metric.Meter) (*OTelMetrics, error) {
	var err error
	m := &OTelMetrics{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.StepTransitionTotal, "onboarding_step_transition_total", "Onboarding step transitions", "{transition}"},
		{&m.GuardRedirectTotal, "onboarding_guard_redirect_total", "Access guard redirects to the email step", "{redirect}"},
		{&m.SessionStartedTotal, "onboarding_session_started_total", "Onboarding sessions started", "{session}"},
		{&m.SignInTotal, "onboarding_sign_in_total", "Federated sign-in attempts by outcome", "{attempt}"},
		{&m.OTPSentTotal, "onboarding_otp_sent_total", "Email verification codes sent", "{code}"},
		{&m.EventPublishTotal, "onboarding_event_publish_total", "Funnel events published by status", "{event}"},
		{&m.HTTPServerRequestTotal, "http.server.requests.total", "Total number of HTTP requests", "{request}"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit)); err != nil {
			return nil, err
		}
	}

	m.SignInDuration, err = meter.Float64Histogram(
		"onboarding_sign_in_duration_seconds",
		metric.WithDescription("Federated sign-in sequence duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1, 2, 5, 10, 15),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPServerDuration, err = meter.Float64Histogram(
		"http.server.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPServerRequestSize, err = meter.Int64Histogram(
		"http.server.request.size",
		metric.WithDescription("HTTP request size"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPServerResponseSize, err = meter.Int64Histogram(
		"http.server.response.size",
		metric.WithDescription("HTTP response size"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPServerActiveRequests, err = meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordTransition 记录一次步骤变化
func (m *OTelMetrics) RecordTransition(ctx context.Context, event, from, to string) {
	if m == nil {
		return
	}
	m.StepTransitionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// RecordRedirect 记录守卫重定向
func (m *OTelMetrics) RecordRedirect(ctx context.Context, attempted string) {
	if m == nil {
		return
	}
	m.GuardRedirectTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("attempted", attempted)))
}

func (m *OTelMetrics) RecordSessionStarted(ctx context.Context, entry string) {
	if m == nil {
		return
	}
	m.SessionStartedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("entry_step", entry)))
}

// RecordSignIn 记录联合登录结果，outcome 为 success 或错误码
func (m *OTelMetrics) RecordSignIn(ctx context.Context, outcome string, duration float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.SignInTotal.Add(ctx, 1, attrs)
	m.SignInDuration.Record(ctx, duration, attrs)
}

func (m *OTelMetrics) RecordOTPSent(ctx context.Context, provider, status string) {
	if m == nil {
		return
	}
	m.OTPSentTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
}

func (m *OTelMetrics) RecordEventPublish(ctx context.Context, kind, status string) {
	if m == nil {
		return
	}
	m.EventPublishTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
}
