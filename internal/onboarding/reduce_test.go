package onboarding

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateAt(step StepIndex, auth AuthState) State {
	s := NewState()
	s.Step = step
	s.Auth = auth
	return s
}

var (
	unverified = AuthState{Provider: ProviderNone}
	password   = AuthState{IsVerified: true, Provider: ProviderPassword, Email: "a@b.co"}
	google     = AuthState{IsVerified: true, Provider: ProviderGoogle, Email: "g@b.co"}
)

func TestReduce_LoadClampsNavigation(t *testing.T) {
	s := Reduce(NewState(), Load("15"))
	// 无数据、未验证时最后一步被守卫送回邮箱步骤
	assert.Equal(t, StepEmail, s.Step)

	s = NewState()
	s.Data.AboutYou.MainGoal = "lose-weight"
	s = Reduce(s, Load("15"))
	assert.Equal(t, StepPlanPreview, s.Step)

	s = Reduce(stateAt(StepIndex(5), password), Load("-4"))
	assert.Equal(t, StepWelcome, s.Step)

	s = Reduce(stateAt(StepWelcome, password), Load("nope"))
	assert.Equal(t, StepWelcome, s.Step)
}

func TestReduce_GuardRedirectsGatedSteps(t *testing.T) {
	for step := StepFirstGated; step < StepPlanPreview; step++ {
		tr := Apply(NewState(), Load(step.Name()))
		assert.Equal(t, StepWelcome, tr.To, "non numeric input falls back to welcome")

		tr = Apply(stateAt(StepWelcome, unverified), Load(strconv.Itoa(int(step))))
		assert.Equal(t, StepEmail, tr.To, "step %d", step)
		assert.True(t, tr.Redirected)

		// 带 resume 数据也不能进入 3~13
		s := stateAt(StepWelcome, unverified)
		s.Data.AboutYou.MainGoal = "keep-fit"
		assert.Equal(t, StepEmail, Reduce(s, Load(strconv.Itoa(int(step)))).Step)
	}
}

func TestReduce_GuardAllowsVerified(t *testing.T) {
	for step := StepFirstGated; step <= StepPlanPreview; step++ {
		tr := Apply(stateAt(StepWelcome, password), Load(strconv.Itoa(int(step))))
		assert.Equal(t, step, tr.To)
		assert.False(t, tr.Redirected)
	}
}

func TestReduce_PlanPreviewEscapeHatch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Data)
		want   StepIndex
	}{
		{"empty", func(d *Data) {}, StepEmail},
		{"main goal", func(d *Data) { d.AboutYou.MainGoal = "build-muscle" }, StepPlanPreview},
		{"height", func(d *Data) { d.Metrics.Height = Measurement{Value: 180, Unit: "cm"} }, StepPlanPreview},
		{"name", func(d *Data) { d.Profile.Name = "Ann" }, StepPlanPreview},
		{"current weight", func(d *Data) { d.Metrics.CurrentWeight = Measurement{Value: 70, Unit: "kg"} }, StepPlanPreview},
		{"only bio", func(d *Data) { d.Profile.Bio = "hi" }, StepEmail},
		{"only goal weight", func(d *Data) { d.Metrics.GoalWeight = Measurement{Value: 60, Unit: "kg"} }, StepEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stateAt(StepWelcome, unverified)
			tt.mutate(&s.Data)
			assert.Equal(t, tt.want, Reduce(s, Load("14")).Step)
		})
	}
}

func TestReduce_AutoAdvanceOnVerification(t *testing.T) {
	s := stateAt(StepOTP, unverified)

	tr := Apply(s, AuthChanged(password))
	require.Equal(t, StepFirstGated, tr.To)
	assert.True(t, tr.AutoAdvanced)

	// 之后无关的变化不再触发
	s = tr.State
	s = Reduce(s, Back())
	require.Equal(t, StepOTP, s.Step)

	tr = Apply(s, AuthChanged(password))
	assert.Equal(t, StepOTP, tr.To)
	assert.False(t, tr.AutoAdvanced)

	data := s.Data
	data.Profile.Name = "Ann"
	assert.Equal(t, StepOTP, Reduce(s, DataChanged(data)).Step)
	assert.Equal(t, StepOTP, Reduce(s, Load("2")).Step)
}

func TestReduce_AutoAdvanceOnlyFromOTPStep(t *testing.T) {
	s := Reduce(stateAt(StepEmail, unverified), AuthChanged(password))
	assert.Equal(t, StepEmail, s.Step)

	s = Reduce(stateAt(StepWelcome, unverified), AuthChanged(password))
	assert.Equal(t, StepWelcome, s.Step)
}

func TestReduce_GoogleSkipsEmailSteps(t *testing.T) {
	for _, step := range []StepIndex{StepWelcome, StepEmail, StepOTP} {
		tr := Apply(stateAt(step, unverified), AuthChanged(google))
		assert.Equal(t, StepFirstGated, tr.To, "from %d", step)
		assert.True(t, tr.AutoAdvanced)
	}

	s := Reduce(stateAt(StepIndex(8), google), AuthChanged(AuthState{Provider: ProviderNone}))
	assert.Equal(t, StepEmail, s.Step, "signing out on a gated step")

	s = Reduce(stateAt(StepIndex(8), google), AuthChanged(google))
	assert.Equal(t, StepIndex(8), s.Step)

	// load 同样会把 google 用户推过公开步骤
	s = Reduce(stateAt(StepWelcome, google), Load("0"))
	assert.Equal(t, StepFirstGated, s.Step)
}

func TestReduce_GoogleImpliesVerified(t *testing.T) {
	s := Reduce(NewState(), AuthChanged(AuthState{Provider: ProviderGoogle, Email: "g@b.co"}))
	assert.True(t, s.Auth.IsVerified)
	assert.Equal(t, StepFirstGated, s.Step)
}

func TestReduce_SignedInKeepsOtherData(t *testing.T) {
	s := stateAt(StepIndex(6), unverified)
	s.Data.AboutYou.MainGoal = "keep-fit"
	s.Data.Profile = Profile{Name: "Old", Bio: "old bio"}

	tr := Apply(s, SignedIn(AuthState{Provider: ProviderGoogle, Email: "g@b.co"}, Profile{Name: "New"}))
	assert.Equal(t, StepIndex(6), tr.To)
	assert.True(t, tr.State.Auth.IsVerified)
	assert.Equal(t, Profile{Name: "New"}, tr.State.Data.Profile)
	assert.Equal(t, "keep-fit", tr.State.Data.AboutYou.MainGoal)
}

func TestReduce_RefreshOnlyGuards(t *testing.T) {
	// google 用户回退到第 2 步，单纯读取不应触发自动前进
	tr := Apply(stateAt(StepOTP, google), Refresh())
	assert.Equal(t, StepOTP, tr.To)
	assert.False(t, tr.AutoAdvanced)
	assert.False(t, tr.Changed())

	tr = Apply(stateAt(StepIndex(7), unverified), Refresh())
	assert.Equal(t, StepEmail, tr.To)
	assert.True(t, tr.Redirected)
}

func TestReduce_Back(t *testing.T) {
	assert.Equal(t, StepWelcome, Reduce(stateAt(StepEmail, unverified), Back()).Step)
	assert.Equal(t, StepWelcome, Reduce(stateAt(StepWelcome, unverified), Back()).Step)

	tr := Apply(stateAt(StepEmail, unverified), Back())
	assert.False(t, tr.Redirected)

	// 从 14 回退到受保护步骤时在同一次 reduce 内纠正
	s := stateAt(StepPlanPreview, unverified)
	s.Data.AboutYou.MainGoal = "lose-weight"
	tr = Apply(s, Back())
	assert.Equal(t, StepEmail, tr.To)
	assert.True(t, tr.Redirected)

	assert.Equal(t, StepIndex(12), Reduce(stateAt(StepIndex(13), password), Back()).Step)
}

func TestReduce_Next(t *testing.T) {
	tr := Apply(stateAt(StepPlanPreview, password), Next())
	assert.Equal(t, StepPlanPreview, tr.To)
	assert.False(t, tr.Changed())

	assert.Equal(t, StepIndex(6), Reduce(stateAt(StepIndex(5), google), Next()).Step)
	assert.Equal(t, StepPlanPreview, Reduce(stateAt(StepIndex(13), password), Next()).Step)
	assert.Equal(t, StepFirstGated, Reduce(stateAt(StepOTP, password), Next()).Step)
}

func TestReduce_NextTranscriptUnverified(t *testing.T) {
	s := Reduce(NewState(), Load(""))
	got := []StepIndex{s.Step}

	var blocked []bool
	for i := 0; i < 3; i++ {
		tr := Apply(s, Next())
		s = tr.State
		got = append(got, s.Step)
		blocked = append(blocked, tr.Blocked)
	}

	assert.Equal(t, []StepIndex{0, 1, 2, 2}, got)
	assert.Equal(t, []bool{false, false, true}, blocked)
}

func TestReduce_NextPastOTPWithoutVerificationRedirects(t *testing.T) {
	// 正常流程到不了这个状态，直接构造
	s := State{Step: StepIndex(6), Auth: unverified}
	tr := Apply(s, Next())
	assert.Equal(t, StepEmail, tr.To)
	assert.True(t, tr.Blocked)
}

func TestReduce_IdempotentOnValidState(t *testing.T) {
	valid := []State{
		stateAt(StepWelcome, unverified),
		stateAt(StepEmail, unverified),
		stateAt(StepOTP, unverified),
		stateAt(StepIndex(7), password),
		stateAt(StepPlanPreview, google),
	}

	for _, s := range valid {
		s.Auth = normalizeAuth(s.Auth)
		once := Reduce(s, DataChanged(s.Data))
		assert.Equal(t, s, once)
		assert.Equal(t, once, Reduce(once, DataChanged(once.Data)))
		assert.Equal(t, s.Step, guard(s))
	}
}

func TestReduce_ClampsCorruptStep(t *testing.T) {
	s := Reduce(State{Step: StepIndex(40), Auth: password}, DataChanged(Data{}))
	assert.Equal(t, StepPlanPreview, s.Step)

	s = Reduce(State{Step: StepIndex(-2)}, DataChanged(Data{}))
	assert.Equal(t, StepWelcome, s.Step)
	assert.Equal(t, ProviderNone, s.Auth.Provider)
}
