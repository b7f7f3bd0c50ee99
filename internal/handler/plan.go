package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"Reformly/internal/model/dto"
	"Reformly/internal/plan"
	"Reformly/pkg/response"
)

// ListPlans GET /v1/onboarding/plans
func ListPlans(ctx context.Context, c *app.RequestContext) {
	response.Success(ctx, c, dto.PlanListResponse{
		Plans:         plan.Catalog(),
		DefaultPlanID: plan.DefaultPlanID,
	})
}
