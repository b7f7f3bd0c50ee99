package dto

import (
	"Reformly/internal/onboarding"
	"Reformly/internal/plan"
)

// ========== Onboarding 相关 DTO ==========

// SessionSnapshot 前端渲染当前步骤所需的全部信息
type SessionSnapshot struct {
	SessionID  string               `json:"session_id"`
	Step       int                  `json:"step"`
	StepNumber int                  `json:"step_number"`
	StepName   string               `json:"step_name"`
	TotalSteps int                  `json:"total_steps"`
	Auth       onboarding.AuthState `json:"auth"`
	Data       onboarding.Data      `json:"data"`
	Redirected bool                 `json:"redirected,omitempty"`
	Blocked    bool                 `json:"blocked,omitempty"`
}

// NewSessionSnapshot 由状态和最近一次迁移生成快照
func NewSessionSnapshot(id string, t onboarding.Transition) SessionSnapshot {
	s := t.State
	return SessionSnapshot{
		SessionID:  id,
		Step:       int(s.Step),
		StepNumber: s.Step.Number(),
		StepName:   s.Step.Name(),
		TotalSteps: onboarding.TotalSteps,
		Auth:       s.Auth,
		Data:       s.Data,
		Redirected: t.Redirected,
		Blocked:    t.Blocked,
	}
}

// UpdateDataRequest 部分更新，nil 字段不修改
type UpdateDataRequest struct {
	MainGoal      *string                 `json:"main_goal"`
	Activities    *[]string               `json:"activities"`
	Height        *onboarding.Measurement `json:"height"`
	CurrentWeight *onboarding.Measurement `json:"current_weight"`
	GoalWeight    *onboarding.Measurement `json:"goal_weight"`
	Units         *string                 `json:"units"`
	Name          *string                 `json:"name"`
	Username      *string                 `json:"username"`
	Bio           *string                 `json:"bio"`
}

// SelectPlanRequest 选择订阅方案
type SelectPlanRequest struct {
	PlanID string `json:"plan_id" vd:"len($)>0"`
}

// PlanListResponse 方案目录
type PlanListResponse struct {
	Plans         []plan.Plan `json:"plans"`
	DefaultPlanID string      `json:"default_plan_id"`
}

// SuggestedGoalResponse 目标体重建议
type SuggestedGoalResponse struct {
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Available bool    `json:"available"`
}
