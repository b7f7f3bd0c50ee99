package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/csrf"
	"github.com/hertz-contrib/sessions"
	"github.com/hertz-contrib/sessions/cookie"

	"Reformly/config"
	"Reformly/pkg/errors"
	"Reformly/pkg/response"
)

const csrfSessionName = "reformly-csrf"

// CSRFMiddlewares cookie 会话 + csrf 校验，需按顺序挂载
func CSRFMiddlewares() []app.HandlerFunc {
	store := cookie.NewStore([]byte(config.Cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   config.Cfg.IsProduction(),
		MaxAge:   int(config.Cfg.SessionTTL().Seconds()),
	})

	return []app.HandlerFunc{
		sessions.New(csrfSessionName, store),
		csrf.New(
			csrf.WithSecret(config.Cfg.CSRFSecret),
			csrf.WithKeyLookUp("header:X-CSRF-Token"),
			csrf.WithErrorFunc(func(ctx context.Context, c *app.RequestContext) {
				response.Error(ctx, c, errors.CSRFInvalid)
				c.Abort()
			}),
		),
	}
}

// CSRFToken 给前端下发 token
func CSRFToken(ctx context.Context, c *app.RequestContext) {
	response.Success(ctx, c, map[string]string{"csrf_token": csrf.GetToken(c)})
}
