package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"Reformly/internal/model/dto"
	"Reformly/internal/service"
	"Reformly/pkg/response"
)

// CreateSession 创建引导会话，step 为地址栏里的步骤参数
// POST /v1/onboarding/sessions?step=n
func CreateSession(ctx context.Context, c *app.RequestContext) {
	snap, err := service.Onboarding().Start(ctx, c.Query("step"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, snap)
}

// GetSession 获取会话快照；带 step 参数时视为一次导航
// GET /v1/onboarding/sessions/:id?step=n
func GetSession(ctx context.Context, c *app.RequestContext) {
	navigate := c.QueryArgs().Has("step")
	snap, err := service.Onboarding().Get(ctx, c.Param("id"), c.Query("step"), navigate)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, snap)
}

// NextStep POST /v1/onboarding/sessions/:id/next
func NextStep(ctx context.Context, c *app.RequestContext) {
	snap, err := service.Onboarding().Next(ctx, c.Param("id"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, snap)
}

// PreviousStep POST /v1/onboarding/sessions/:id/back
func PreviousStep(ctx context.Context, c *app.RequestContext) {
	snap, err := service.Onboarding().Back(ctx, c.Param("id"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, snap)
}

// UpdateSessionData 部分更新引导数据
// PATCH /v1/onboarding/sessions/:id/data
func UpdateSessionData(ctx context.Context, c *app.RequestContext) {
	var req dto.UpdateDataRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	snap, err := service.Onboarding().UpdateData(ctx, c.Param("id"), req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, snap)
}

// SelectPlan PUT /v1/onboarding/sessions/:id/plan
func SelectPlan(ctx context.Context, c *app.RequestContext) {
	var req dto.SelectPlanRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	snap, err := service.Onboarding().SelectPlan(ctx, c.Param("id"), req.PlanID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, snap)
}

// GetPlanPreview 个性化方案预览，只在最后一步可用
// GET /v1/onboarding/sessions/:id/preview
func GetPlanPreview(ctx context.Context, c *app.RequestContext) {
	preview, err := service.Onboarding().Preview(ctx, c.Param("id"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, preview)
}

// GetSuggestedGoal GET /v1/onboarding/sessions/:id/suggested-goal?unit=kg
func GetSuggestedGoal(ctx context.Context, c *app.RequestContext) {
	res, err := service.Onboarding().SuggestedGoal(ctx, c.Param("id"), c.Query("unit"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, res)
}
