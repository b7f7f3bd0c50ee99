package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Reformly/internal/cache"
	"Reformly/internal/model"
	"Reformly/internal/model/dto"
	"Reformly/internal/onboarding"
	"Reformly/internal/plan"
	"Reformly/internal/queue"
	"Reformly/pkg/errors"
	"Reformly/pkg/logger"
	"Reformly/pkg/metrics"
	"Reformly/utils"
)

// EventPublisher 漏斗事件出口
type EventPublisher interface {
	Publish(ctx context.Context, msg model.OnboardingEventMessage) error
}

var (
	onboardingService *OnboardingService
	onboardingOnce    sync.Once
)

func Onboarding() *OnboardingService {
	onboardingOnce.Do(func() {
		onboardingService = NewOnboardingService(queue.NewPublisher())
	})
	return onboardingService
}

// OnboardingService 引导会话：读取 -> Reduce -> 保存 -> 埋点
type OnboardingService struct {
	events EventPublisher
	now    func() time.Time
}

func NewOnboardingService(events EventPublisher) *OnboardingService {
	return &OnboardingService{events: events, now: time.Now}
}

// Start 创建会话并应用导航参数
func (s *OnboardingService) Start(ctx context.Context, rawStep string) (dto.SessionSnapshot, error) {
	id := uuid.NewString()
	ev := onboarding.Load(rawStep)
	t := onboarding.Apply(onboarding.NewState(), ev)

	if err := cache.SaveSession(ctx, id, t.State); err != nil {
		return dto.SessionSnapshot{}, fmt.Errorf("failed to save onboarding session: %w", err)
	}

	metrics.RecordSessionStarted(ctx, t.To.Name())
	logger.Logger.Info("Onboarding session started",
		zap.String("session_id", id),
		zap.String("requested", rawStep),
		zap.Int("step", int(t.To)),
	)
	s.publish(ctx, id, model.EventSessionStarted, t, map[string]interface{}{"requested": rawStep})
	s.observe(ctx, id, t, onboarding.ParseStep(rawStep))

	return dto.NewSessionSnapshot(id, t), nil
}

// Get 返回会话快照；navigate 为 true 时按导航参数跳转
func (s *OnboardingService) Get(ctx context.Context, id, rawStep string, navigate bool) (dto.SessionSnapshot, error) {
	st, err := cache.GetSession(ctx, id)
	if err != nil {
		return dto.SessionSnapshot{}, err
	}

	// 不带导航参数的读取只重新执行守卫
	if !navigate {
		return s.dispatchState(ctx, id, st, onboarding.Refresh())
	}

	return s.dispatchState(ctx, id, st, onboarding.Load(rawStep))
}

func (s *OnboardingService) Next(ctx context.Context, id string) (dto.SessionSnapshot, error) {
	return s.dispatch(ctx, id, onboarding.Next())
}

func (s *OnboardingService) Back(ctx context.Context, id string) (dto.SessionSnapshot, error) {
	return s.dispatch(ctx, id, onboarding.Back())
}

// UpdateData 部分更新引导数据，逐字段校验
func (s *OnboardingService) UpdateData(ctx context.Context, id string, req dto.UpdateDataRequest) (dto.SessionSnapshot, error) {
	st, err := cache.GetSession(ctx, id)
	if err != nil {
		return dto.SessionSnapshot{}, err
	}

	data, err := mergeData(st.Data, req)
	if err != nil {
		return dto.SessionSnapshot{}, err
	}

	return s.dispatchState(ctx, id, st, onboarding.DataChanged(data))
}

// SelectPlan 记录选中的订阅方案，支付本身不在这里处理
func (s *OnboardingService) SelectPlan(ctx context.Context, id, planID string) (dto.SessionSnapshot, error) {
	p, ok := plan.Find(planID)
	if !ok {
		return dto.SessionSnapshot{}, errors.PlanNotFound
	}

	st, err := cache.GetSession(ctx, id)
	if err != nil {
		return dto.SessionSnapshot{}, err
	}

	data := st.Data
	data.Subscription.SelectedPlanID = p.ID

	snap, err := s.dispatchState(ctx, id, st, onboarding.DataChanged(data))
	if err != nil {
		return dto.SessionSnapshot{}, err
	}

	s.publish(ctx, id, model.EventPlanSelected, onboarding.Transition{
		From:  st.Step,
		To:    onboarding.StepIndex(snap.Step),
		State: onboarding.State{Auth: snap.Auth},
	}, map[string]interface{}{"plan_id": p.ID, "price_cents": p.PriceCents})

	return snap, nil
}

// Preview 只有到达最后一步才能查看方案预览
func (s *OnboardingService) Preview(ctx context.Context, id string) (plan.Preview, error) {
	st, err := cache.GetSession(ctx, id)
	if err != nil {
		return plan.Preview{}, err
	}

	if st.Step != onboarding.StepPlanPreview {
		return plan.Preview{}, errors.OnboardingStepInvalid
	}

	return plan.BuildPreview(st.Data, s.now()), nil
}

// SuggestedGoal 目标体重页的建议减重量
func (s *OnboardingService) SuggestedGoal(ctx context.Context, id, unit string) (dto.SuggestedGoalResponse, error) {
	st, err := cache.GetSession(ctx, id)
	if err != nil {
		return dto.SuggestedGoalResponse{}, err
	}

	current := st.Data.Metrics.CurrentWeight
	if unit == "" {
		unit = current.Unit
	}
	if unit != plan.UnitKg && unit != plan.UnitLb {
		return dto.SuggestedGoalResponse{}, fmt.Errorf("%w: unit", errors.OnboardingFieldInvalid)
	}

	v, ok := plan.SuggestedLoss(current.Value, current.Unit, unit)
	return dto.SuggestedGoalResponse{Value: v, Unit: unit, Available: ok}, nil
}

func (s *OnboardingService) dispatch(ctx context.Context, id string, ev onboarding.Event) (dto.SessionSnapshot, error) {
	st, err := cache.GetSession(ctx, id)
	if err != nil {
		return dto.SessionSnapshot{}, err
	}
	return s.dispatchState(ctx, id, st, ev)
}

func (s *OnboardingService) dispatchState(ctx context.Context, id string, st onboarding.State, ev onboarding.Event) (dto.SessionSnapshot, error) {
	t := onboarding.Apply(st, ev)
	if err := s.commit(ctx, id, t, attemptedStep(st, ev)); err != nil {
		return dto.SessionSnapshot{}, err
	}
	return dto.NewSessionSnapshot(id, t), nil
}

// commit 保存迁移结果并记录日志、指标和漏斗事件
func (s *OnboardingService) commit(ctx context.Context, id string, t onboarding.Transition, attempted onboarding.StepIndex) error {
	if err := cache.SaveSession(ctx, id, t.State); err != nil {
		return fmt.Errorf("failed to save onboarding session: %w", err)
	}
	s.observe(ctx, id, t, attempted)
	return nil
}

func (s *OnboardingService) observe(ctx context.Context, id string, t onboarding.Transition, attempted onboarding.StepIndex) {
	if t.Blocked {
		logger.Logger.Debug("Onboarding next blocked",
			zap.String("session_id", id),
			zap.Int("step", int(t.From)),
		)
	}

	if t.Redirected {
		metrics.RecordRedirect(ctx, attempted.Name())
		logger.WithTrace(ctx).Info("Onboarding step redirected",
			zap.String("session_id", id),
			zap.String("event", string(t.Event)),
			zap.Int("attempted", int(attempted)),
			zap.Int("to", int(t.To)),
		)
		s.publish(ctx, id, model.EventRedirected, t, map[string]interface{}{"attempted": int(attempted)})
	}

	if t.Changed() {
		metrics.RecordTransition(ctx, string(t.Event), t.From.Name(), t.To.Name())
		logger.WithTrace(ctx).Info("Onboarding step changed",
			zap.String("session_id", id),
			zap.String("event", string(t.Event)),
			zap.Int("from", int(t.From)),
			zap.Int("to", int(t.To)),
			zap.Bool("auto_advanced", t.AutoAdvanced),
		)
		s.publish(ctx, id, model.EventStepChanged, t, map[string]interface{}{
			"event":         string(t.Event),
			"auto_advanced": t.AutoAdvanced,
		})
	}
}

// publish 事件投递失败只记录，不影响用户流程
func (s *OnboardingService) publish(ctx context.Context, id string, kind model.OnboardingEventKind, t onboarding.Transition, payload map[string]interface{}) {
	if s.events == nil {
		return
	}

	msg := queue.NewOnboardingEventMessage(id, kind, t, payload, s.now())
	if err := s.events.Publish(ctx, msg); err != nil {
		logger.Logger.Warn("Onboarding event dropped",
			zap.String("session_id", id),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

// attemptedStep 事件原本要去的步骤，用于记录重定向
func attemptedStep(s onboarding.State, ev onboarding.Event) onboarding.StepIndex {
	switch ev.Kind {
	case onboarding.EventLoad:
		return onboarding.ParseStep(ev.Requested)
	case onboarding.EventNext:
		if s.Step < onboarding.StepPlanPreview {
			return s.Step + 1
		}
	case onboarding.EventBack:
		if s.Step > onboarding.StepWelcome {
			return s.Step - 1
		}
	}
	return s.Step
}

const (
	maxNameLength = 64
	maxBioLength  = 280
	maxHeightCm   = 272
	maxHeightFt   = 9
	maxWeightKg   = 635
	maxWeightLb   = 1400
)

func fieldInvalid(field string) error {
	return fmt.Errorf("%w: %s", errors.OnboardingFieldInvalid, field)
}

// mergeData 把请求中非 nil 的字段合并进现有数据
func mergeData(d onboarding.Data, req dto.UpdateDataRequest) (onboarding.Data, error) {
	if req.MainGoal != nil {
		if *req.MainGoal != "" && !plan.ValidGoal(*req.MainGoal) {
			return d, fieldInvalid("main_goal")
		}
		d.AboutYou.MainGoal = *req.MainGoal
	}

	if req.Activities != nil {
		seen := make(map[string]struct{}, len(*req.Activities))
		activities := make([]string, 0, len(*req.Activities))
		for _, a := range *req.Activities {
			if !plan.ValidActivity(a) {
				return d, fieldInvalid("activities")
			}
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			activities = append(activities, a)
		}
		d.AboutYou.Activities = activities
	}

	if req.Height != nil {
		if err := checkMeasurement(*req.Height, map[string]float64{plan.UnitCm: maxHeightCm, plan.UnitFt: maxHeightFt}); err != nil {
			return d, fieldInvalid("height")
		}
		d.Metrics.Height = *req.Height
	}

	weightLimits := map[string]float64{plan.UnitKg: maxWeightKg, plan.UnitLb: maxWeightLb}
	if req.CurrentWeight != nil {
		if err := checkMeasurement(*req.CurrentWeight, weightLimits); err != nil {
			return d, fieldInvalid("current_weight")
		}
		d.Metrics.CurrentWeight = *req.CurrentWeight
	}
	if req.GoalWeight != nil {
		if err := checkMeasurement(*req.GoalWeight, weightLimits); err != nil {
			return d, fieldInvalid("goal_weight")
		}
		d.Metrics.GoalWeight = *req.GoalWeight
	}

	if req.Units != nil {
		switch *req.Units {
		case "", "metric", "imperial":
			d.Metrics.Units = *req.Units
		default:
			return d, fieldInvalid("units")
		}
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if utf8.RuneCountInString(name) > maxNameLength {
			return d, fieldInvalid("name")
		}
		d.Profile.Name = name
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username != "" && !utils.ValidateUsername(username) {
			return d, fieldInvalid("username")
		}
		d.Profile.Username = username
	}

	if req.Bio != nil {
		if utf8.RuneCountInString(*req.Bio) > maxBioLength {
			return d, fieldInvalid("bio")
		}
		d.Profile.Bio = *req.Bio
	}

	return d, nil
}

// checkMeasurement 数值为 0 表示清空；否则单位必须已知且数值在范围内
func checkMeasurement(m onboarding.Measurement, limits map[string]float64) error {
	if m.Value == 0 {
		return nil
	}
	limit, ok := limits[m.Unit]
	if !ok || m.Value < 0 || m.Value > limit {
		return errors.OnboardingFieldInvalid
	}
	return nil
}
