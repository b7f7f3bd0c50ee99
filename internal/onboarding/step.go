package onboarding

import (
	"errors"
	"strconv"
	"strings"
)

// StepIndex 引导流程中的步骤下标（0 开始）。
type StepIndex int

const (
	TotalSteps = 15

	StepWelcome     StepIndex = 0
	StepEmail       StepIndex = 1
	StepOTP         StepIndex = 2
	StepFirstGated  StepIndex = 3
	StepPlanPreview StepIndex = TotalSteps - 1
)

// stepNames 与前端渲染的组件一一对应，只用于展示和埋点
var stepNames = [TotalSteps]string{
	"welcome",
	"email",
	"otp",
	"main_goal",
	"activities",
	"height",
	"current_weight",
	"goal_weight",
	"weight_forecast",
	"name",
	"username",
	"bio",
	"social_proof",
	"plan_building",
	"plan_preview",
}

// Name 返回步骤名称，越界时返回 unknown。
func (s StepIndex) Name() string {
	if !s.Valid() {
		return "unknown"
	}
	return stepNames[s]
}

// Number 返回 1 开始的步骤编号，给前端地址栏使用。
func (s StepIndex) Number() int {
	return int(s) + 1
}

func (s StepIndex) Valid() bool {
	return s >= StepWelcome && s <= StepPlanPreview
}

// Gated 3~13 步需要身份验证。
func (s StepIndex) Gated() bool {
	return s >= StepFirstGated && s < StepPlanPreview
}

// Public 0、1、2 步无需验证。
func (s StepIndex) Public() bool {
	return s >= StepWelcome && s < StepFirstGated
}

// ParseStep 解析导航参数。
// 缺省、非数字、负数都回到 0；超出范围的截断到最后一步，
// 因此 1 开始的 "15" 同样落在下标 14 上。
func ParseStep(raw string) StepIndex {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StepWelcome
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		// 溢出的超大正数按越界处理
		if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
			return StepPlanPreview
		}
		return StepWelcome
	}
	if n < 0 {
		return StepWelcome
	}

	if n > int(StepPlanPreview) {
		return StepPlanPreview
	}

	return StepIndex(n)
}
