package plan

import (
	"time"

	"Reformly/internal/onboarding"
)

const (
	defaultDisplayName = "Mex"
	defaultInterest    = "Get lean and strong"
	highlightedCount   = 2
)

// Preview 最后一步展示的个性化方案。
type Preview struct {
	DisplayName    string   `json:"display_name"`
	Title          string   `json:"title"`
	DurationWeeks  int      `json:"duration_weeks"`
	Goal           string   `json:"goal"`
	Interests      []string `json:"interests"`
	Forecast       Forecast `json:"forecast"`
	Plans          []Plan   `json:"plans"`
	SelectedPlanID string   `json:"selected_plan_id"`
}

// BuildPreview 根据引导数据组装方案预览，不修改输入。
func BuildPreview(d onboarding.Data, now time.Time) Preview {
	name := d.Profile.Username
	if name == "" {
		name = defaultDisplayName
	}

	interests := []string{defaultInterest}
	if n := len(d.AboutYou.Activities); n > 0 {
		if n > highlightedCount {
			n = highlightedCount
		}
		interests = append([]string(nil), d.AboutYou.Activities[:n]...)
	}

	selected := d.Subscription.SelectedPlanID
	if _, ok := Find(selected); !ok {
		selected = DefaultPlanID
	}

	return Preview{
		DisplayName:    name,
		Title:          name + ", your personalized plan is ready!",
		DurationWeeks:  ProgramWeeks,
		Goal:           GoalLabel(d.AboutYou.MainGoal),
		Interests:      interests,
		Forecast:       NewForecast(d.Metrics.CurrentWeight, d.Metrics.GoalWeight, now, 0),
		Plans:          Catalog(),
		SelectedPlanID: selected,
	}
}
