package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestRecordWithoutInit(t *testing.T) {
	prev := metrics
	metrics = nil
	t.Cleanup(func() { metrics = prev })

	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordTransition(ctx, "next", "welcome", "email")
		RecordRedirect(ctx, "height")
		RecordSessionStarted(ctx, "welcome")
		RecordSignIn(ctx, "success", 0.2)
		RecordOTPSent(ctx, "mock", "success")
		RecordEventPublish(ctx, "step_changed", "failed")
	})
}

func TestNewOTelMetrics(t *testing.T) {
	m, err := newOTelMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	require.NotNil(t, m.SignInDuration)

	assert.NotPanics(t, func() {
		m.RecordSignIn(context.Background(), "SIGN_IN_TIMEOUT", 10)
	})
}
