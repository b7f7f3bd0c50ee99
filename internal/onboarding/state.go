package onboarding

// Provider 身份来源。
type Provider string

const (
	ProviderNone     Provider = "none"
	ProviderPassword Provider = "password"
	ProviderGoogle   Provider = "google"
)

// AuthState 当前引导会话的身份验证状态。
type AuthState struct {
	IsVerified bool     `json:"is_verified"`
	Provider   Provider `json:"provider"`
	Email      string   `json:"email"`
}

// Granted 是否可以进入受保护的步骤。
// google 登录在构造时即视为已验证，这里两者都检查。
func (a AuthState) Granted() bool {
	return a.IsVerified || a.Provider == ProviderGoogle
}

// Measurement 数值 + 单位（kg / lb / cm / ft）。Value 为 0 表示未填写。
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

func (m Measurement) Set() bool {
	return m.Value > 0
}

type AboutYou struct {
	MainGoal   string   `json:"main_goal"`
	Activities []string `json:"activities"`
}

type Metrics struct {
	Height        Measurement `json:"height"`
	CurrentWeight Measurement `json:"current_weight"`
	GoalWeight    Measurement `json:"goal_weight"`
	Units         string      `json:"units"` // metric / imperial
}

type Profile struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
}

type Subscription struct {
	SelectedPlanID string `json:"selected_plan_id"`
}

// Data 引导过程中逐步填写的用户数据。
type Data struct {
	AboutYou     AboutYou     `json:"about_you"`
	Metrics      Metrics      `json:"metrics"`
	Profile      Profile      `json:"profile"`
	Subscription Subscription `json:"subscription"`
}

// HasResumeData 是否已有可用于恢复支付流程的数据（最后一步的放行条件）。
func (d Data) HasResumeData() bool {
	return d.AboutYou.MainGoal != "" ||
		d.Metrics.Height.Set() ||
		d.Profile.Name != "" ||
		d.Metrics.CurrentWeight.Set()
}

// State 单个引导会话的完整状态，由 Reduce 推进。
type State struct {
	Step StepIndex `json:"step"`
	Auth AuthState `json:"auth"`
	Data Data      `json:"data"`
}

// NewState 创建会话初始状态。
func NewState() State {
	return State{
		Step: StepWelcome,
		Auth: AuthState{Provider: ProviderNone},
	}
}
