package onboarding

// EventKind 触发状态变化的事件类型。
type EventKind string

const (
	EventLoad        EventKind = "load"
	EventNext        EventKind = "next"
	EventBack        EventKind = "back"
	EventAuthChanged EventKind = "auth_changed"
	EventDataChanged EventKind = "data_changed"
	EventSignedIn    EventKind = "signed_in"
	EventRefresh     EventKind = "refresh"
)

// Event 一次离散的输入：导航参数、按钮点击、身份变化或数据写入。
type Event struct {
	Kind      EventKind
	Requested string
	Auth      AuthState
	Data      Data
	Profile   Profile // 仅 EventSignedIn 使用
}

func Load(requested string) Event { return Event{Kind: EventLoad, Requested: requested} }
func Next() Event                 { return Event{Kind: EventNext} }
func Back() Event                 { return Event{Kind: EventBack} }
func AuthChanged(a AuthState) Event {
	return Event{Kind: EventAuthChanged, Auth: a}
}
func DataChanged(d Data) Event {
	return Event{Kind: EventDataChanged, Data: d}
}

// SignedIn 联合登录提交：身份和资料在同一次迁移里生效，守卫只看到完整的新状态。
func SignedIn(a AuthState, p Profile) Event {
	return Event{Kind: EventSignedIn, Auth: a, Profile: p}
}

// Refresh 只重新执行守卫，不触发自动前进。
func Refresh() Event { return Event{Kind: EventRefresh} }

// Transition 记录一次 Reduce 的过程，供日志和指标使用。
type Transition struct {
	Event        EventKind
	From         StepIndex
	To           StepIndex
	Blocked      bool // next 被拒绝，原地不动
	Redirected   bool // 守卫把用户送回邮箱步骤
	AutoAdvanced bool
	State        State
}

func (t Transition) Changed() bool {
	return t.From != t.To
}

// Reduce 纯函数：state + event -> state。
func Reduce(s State, ev Event) State {
	return Apply(s, ev).State
}

// Apply 依次执行：事件本身的迁移 -> 访问守卫 -> 自动前进。
// 自动前进放在守卫之后，同一次变化里不会被守卫的重定向吞掉。
func Apply(s State, ev Event) Transition {
	s.Step = clamp(s.Step)
	s.Auth = normalizeAuth(s.Auth)

	t := Transition{Event: ev.Kind, From: s.Step}
	prev := s.Auth

	switch ev.Kind {
	case EventLoad:
		s.Step = ParseStep(ev.Requested)
	case EventNext:
		s.Step, t.Blocked = goNext(s)
	case EventBack:
		s.Step = goBack(s.Step)
	case EventAuthChanged:
		s.Auth = normalizeAuth(ev.Auth)
	case EventDataChanged:
		s.Data = ev.Data
	case EventSignedIn:
		s.Auth = normalizeAuth(ev.Auth)
		s.Data.Profile = ev.Profile
	}

	if guarded := guard(s); guarded != s.Step {
		s.Step = guarded
		t.Redirected = true
	}

	switch ev.Kind {
	case EventAuthChanged, EventSignedIn, EventLoad:
		if to, ok := autoAdvance(prev, s); ok {
			s.Step = to
			t.AutoAdvanced = true
		}
	}

	t.To = s.Step
	t.State = s
	return t
}

func goNext(s State) (StepIndex, bool) {
	if s.Step >= StepPlanPreview {
		return s.Step, false
	}

	if s.Auth.Granted() {
		return s.Step + 1, false
	}

	// 未验证时离开 OTP 步骤只能依靠验证成功后的自动前进
	if s.Step == StepOTP {
		return s.Step, true
	}

	if s.Step > StepOTP {
		return StepEmail, true
	}

	return s.Step + 1, false
}

func goBack(step StepIndex) StepIndex {
	if step <= StepWelcome {
		return StepWelcome
	}
	return step - 1
}

// guard 访问守卫，幂等：对合法状态不做任何修改。
func guard(s State) StepIndex {
	switch {
	case s.Step.Public():
		return s.Step
	case s.Step == StepPlanPreview:
		if s.Data.HasResumeData() || s.Auth.Granted() {
			return s.Step
		}
		return StepEmail
	case s.Step.Gated() && !s.Auth.Granted():
		return StepEmail
	}
	return s.Step
}

func autoAdvance(prev AuthState, s State) (StepIndex, bool) {
	if !s.Auth.Granted() {
		return s.Step, false
	}

	// 只在 false -> true 的那一次验证事件上触发
	if s.Step == StepOTP && !prev.IsVerified && s.Auth.IsVerified {
		return StepFirstGated, true
	}

	if s.Auth.Provider == ProviderGoogle && s.Step < StepFirstGated {
		return StepFirstGated, true
	}

	return s.Step, false
}

func normalizeAuth(a AuthState) AuthState {
	if a.Provider == "" {
		a.Provider = ProviderNone
	}
	if a.Provider == ProviderGoogle {
		a.IsVerified = true
	}
	return a
}

func clamp(step StepIndex) StepIndex {
	if step < StepWelcome {
		return StepWelcome
	}
	if step > StepPlanPreview {
		return StepPlanPreview
	}
	return step
}
