package router

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"

	"Reformly/config"
	"Reformly/internal/handler"
	"Reformly/internal/middleware"
	"Reformly/pkg/response"
)

func Register(h *server.Hertz) {
	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	h.GET("/healthz", func(ctx context.Context, c *app.RequestContext) {
		response.Success(ctx, c, map[string]string{"status": "ok"})
	})

	v1 := h.Group("/v1")
	v1.Use(middleware.GeneralRateLimitMiddleware())

	// 浏览器端 cookie 会话才需要 csrf，默认关闭
	if config.Cfg.CSRFEnabled {
		v1.Use(middleware.CSRFMiddlewares()...)
		v1.GET("/csrf-token", middleware.CSRFToken)
	}

	// 引导流程路由，会话 id 即凭证，无需登录
	onboarding := v1.Group("/onboarding")
	{
		onboarding.GET("/plans", handler.ListPlans)
		onboarding.POST("/sessions", middleware.SessionRateLimitMiddleware(), handler.CreateSession)

		sessions := onboarding.Group("/sessions/:id")
		{
			sessions.GET("", handler.GetSession)
			sessions.POST("/next", handler.NextStep)
			sessions.POST("/back", handler.PreviousStep)
			sessions.PATCH("/data", handler.UpdateSessionData)
			sessions.PUT("/plan", handler.SelectPlan)
			sessions.GET("/preview", handler.GetPlanPreview)
			sessions.GET("/suggested-goal", handler.GetSuggestedGoal)
		}

		// 身份验证相关路由
		auth := sessions.Group("", middleware.AuthRateLimitMiddleware())
		{
			auth.POST("/email", handler.SubmitEmail)
			auth.POST("/email/verify", handler.VerifyEmail)
			auth.POST("/google", handler.GoogleSignIn)
		}
	}

	v1.POST("/auth/token/refresh", middleware.AuthRateLimitMiddleware(), handler.RefreshToken)

	// 用户相关路由
	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/me", handler.GetUserProfile)
	}
}
