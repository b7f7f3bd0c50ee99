package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"Reformly/internal/middleware"
	"Reformly/internal/service"
	"Reformly/pkg/errors"
	"Reformly/pkg/response"
)

// GetUserProfile 获取当前用户资料
// GET /v1/users/me
func GetUserProfile(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	me, err := service.User().Me(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, me)
}
