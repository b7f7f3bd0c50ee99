package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/hertz/pkg/app"
	hzconfig "github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/route"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Reformly/config"
	"Reformly/pkg/response"
	"Reformly/storage/redis"
)

func withConfig(t *testing.T) {
	t.Helper()
	prev := config.Cfg
	t.Cleanup(func() { config.Cfg = prev })
}

func okHandler(ctx context.Context, c *app.RequestContext) {
	c.String(http.StatusOK, "ok")
}

func TestCORSMiddleware(t *testing.T) {
	withConfig(t)
	config.Cfg.CORSOrigins = "https://reformly.app, http://localhost:3000"

	e := route.NewEngine(hzconfig.NewOptions(nil))
	e.Use(CORSMiddleware())
	e.GET("/ping", okHandler)
	e.OPTIONS("/ping", okHandler)

	w := ut.PerformRequest(e, http.MethodGet, "/ping", nil, ut.Header{Key: "Origin", Value: "https://reformly.app"})
	resp := w.Result()
	assert.Equal(t, "https://reformly.app", string(resp.Header.Peek("Access-Control-Allow-Origin")))
	assert.Equal(t, "true", string(resp.Header.Peek("Access-Control-Allow-Credentials")))

	w = ut.PerformRequest(e, http.MethodGet, "/ping", nil, ut.Header{Key: "Origin", Value: "https://evil.example"})
	assert.Empty(t, w.Result().Header.Peek("Access-Control-Allow-Origin"))

	w = ut.PerformRequest(e, http.MethodOptions, "/ping", nil, ut.Header{Key: "Origin", Value: "http://localhost:3000"})
	assert.Equal(t, http.StatusNoContent, w.Result().StatusCode())
}

func TestRateLimitMiddleware(t *testing.T) {
	withConfig(t)
	config.Cfg.RateLimitEnabled = true

	mr := miniredis.RunT(t)
	c := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	redis.SetClient(c)
	t.Cleanup(func() { _ = c.Close() })

	e := route.NewEngine(hzconfig.NewOptions(nil))
	e.GET("/limited", RateLimitMiddleware(RateLimitConfig{
		Window:        60,
		MaxRequests:   2,
		KeyPrefix:     "rate:test",
		ByIP:          true,
		BlockDuration: 60,
	}), okHandler)

	for i := 0; i < 2; i++ {
		w := ut.PerformRequest(e, http.MethodGet, "/limited", nil)
		assert.Equal(t, http.StatusOK, w.Result().StatusCode())
	}

	w := ut.PerformRequest(e, http.MethodGet, "/limited", nil)
	resp := w.Result()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode())
	assert.Equal(t, "0", string(resp.Header.Peek("X-RateLimit-Remaining")))

	// 进入封禁期后直接拒绝
	w = ut.PerformRequest(e, http.MethodGet, "/limited", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Result().StatusCode())
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	withConfig(t)
	config.Cfg.RateLimitEnabled = false

	e := route.NewEngine(hzconfig.NewOptions(nil))
	e.GET("/limited", RateLimitMiddleware(RateLimitConfig{Window: 60, MaxRequests: 0, KeyPrefix: "rate:test", ByIP: true}), okHandler)

	w := ut.PerformRequest(e, http.MethodGet, "/limited", nil)
	assert.Equal(t, http.StatusOK, w.Result().StatusCode())
}

func TestRecoverMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		production bool
		wantPanic  bool
	}{
		{"development exposes panic", false, true},
		{"production hides panic", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewRecoverConfig()
			cfg.IsProduction = tt.production

			e := route.NewEngine(hzconfig.NewOptions(nil))
			e.Use(RecoverMiddlewareWithConfig(cfg))
			e.GET("/boom", func(ctx context.Context, c *app.RequestContext) {
				panic("boom")
			})

			w := ut.PerformRequest(e, http.MethodGet, "/boom", nil,
				ut.Header{Key: "Authorization", Value: "Bearer secret"})
			resp := w.Result()
			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())

			var body response.ErrorResponse
			require.NoError(t, json.Unmarshal(resp.Body(), &body))
			assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
			_, hasPanic := body.Error.Details["panic"]
			assert.Equal(t, tt.wantPanic, hasPanic)
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	got := allowedOrigins(" a.com ,, b.com,*")
	assert.Len(t, got, 3)
	assert.Contains(t, got, "*")
}
