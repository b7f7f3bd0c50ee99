package plan

import (
	"math"
	"time"

	"Reformly/internal/onboarding"
)

const (
	ProgramWeeks       = 12
	milestoneWeeks     = 6
	defaultGoalWeight  = 59.0
	defaultCurrentLift = 1.1
)

// Point 曲线上的一个采样点，Progress ∈ [0,1]。
type Point struct {
	Week     float64 `json:"week"`
	Progress float64 `json:"progress"`
	Weight   float64 `json:"weight"`
}

// Timeline 关键日期。
type Timeline struct {
	Today      time.Time `json:"today"`
	SixWeeks   time.Time `json:"six_weeks"`
	TwelveWeek time.Time `json:"twelve_weeks"`
	GoalDate   string    `json:"goal_date"`
}

// Forecast 体重变化预测。
type Forecast struct {
	Unit          string   `json:"unit"`
	CurrentWeight float64  `json:"current_weight"`
	GoalWeight    float64  `json:"goal_weight"`
	Losing        bool     `json:"losing"`
	Timeline      Timeline `json:"timeline"`
	Points        []Point  `json:"points"`
}

// NewTimeline 以 now 所在日期为起点，里程碑在第 6 周和第 12 周。
func NewTimeline(now time.Time) Timeline {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	goal := today.AddDate(0, 0, ProgramWeeks*7)
	return Timeline{
		Today:      today,
		SixWeeks:   today.AddDate(0, 0, milestoneWeeks*7),
		TwelveWeek: goal,
		GoalDate:   goal.Format("2 Jan 2006"),
	}
}

// Ease 两段三次曲线：前半段 ease-in，后半段 ease-out，在 0.5 处衔接。
func Ease(progress float64) float64 {
	switch {
	case progress <= 0:
		return 0
	case progress >= 1:
		return 1
	case progress < 0.5:
		t := progress * 2
		return t * t * t * 0.5
	default:
		t := (progress - 0.5) * 2
		return 0.5 + (1-math.Pow(1-t, 3))*0.5
	}
}

// NewForecast 计算从当前体重到目标体重的预测曲线。
// 目标体重缺省为 59；当前体重缺省时取目标的 1.1 倍，单位不同时换算后取整。
// samples 为曲线分段数，<=0 时按周采样。
func NewForecast(current, goal onboarding.Measurement, now time.Time, samples int) Forecast {
	unit := UnitKg
	if goal.Unit == UnitLb {
		unit = UnitLb
	}

	goalWeight := goal.Value
	if goalWeight <= 0 {
		goalWeight = defaultGoalWeight
	}

	currentWeight := current.Value
	switch {
	case currentWeight <= 0:
		currentWeight = goalWeight * defaultCurrentLift
	case current.Unit != goal.Unit && goal.Unit != "":
		currentWeight = math.Round(ConvertWeight(current.Value, current.Unit, goal.Unit))
	}

	if samples <= 0 {
		samples = ProgramWeeks
	}

	f := Forecast{
		Unit:          unit,
		CurrentWeight: currentWeight,
		GoalWeight:    goalWeight,
		Losing:        currentWeight > goalWeight,
		Timeline:      NewTimeline(now),
		Points:        make([]Point, 0, samples+1),
	}

	span := math.Abs(currentWeight - goalWeight)
	for i := 0; i <= samples; i++ {
		p := float64(i) / float64(samples)
		delta := span * Ease(p)

		w := currentWeight + delta
		if f.Losing {
			w = currentWeight - delta
		}

		f.Points = append(f.Points, Point{
			Week:     p * ProgramWeeks,
			Progress: p,
			Weight:   round1(w),
		})
	}

	return f
}
