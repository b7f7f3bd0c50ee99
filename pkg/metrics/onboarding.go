package metrics

import "context"

// 以下为包级便捷函数，调用方无需关心指标是否已初始化

func RecordTransition(ctx context.Context, event, from, to string) {
	GetMetrics().RecordTransition(ctx, event, from, to)
}

func RecordRedirect(ctx context.Context, attempted string) {
	GetMetrics().RecordRedirect(ctx, attempted)
}

func RecordSessionStarted(ctx context.Context, entry string) {
	GetMetrics().RecordSessionStarted(ctx, entry)
}

func RecordSignIn(ctx context.Context, outcome string, duration float64) {
	GetMetrics().RecordSignIn(ctx, outcome, duration)
}

func RecordOTPSent(ctx context.Context, provider, status string) {
	GetMetrics().RecordOTPSent(ctx, provider, status)
}

func RecordEventPublish(ctx context.Context, kind, status string) {
	GetMetrics().RecordEventPublish(ctx, kind, status)
}
