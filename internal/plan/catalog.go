package plan

// Plan 订阅方案。价格以美分存储，展示字段给前端直接渲染。
type Plan struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	PriceCents   int64  `json:"price_cents"`
	Price        string `json:"price"`
	PricePerWeek string `json:"price_per_week,omitempty"`
	Badge        string `json:"badge,omitempty"`
}

const (
	PlanWeekly   = "weekly"
	PlanFourWeek = "4-week"
	PlanYearly   = "yearly"

	// DefaultPlanID 未选择时预选 4 周方案
	DefaultPlanID = PlanFourWeek
)

var catalog = []Plan{
	{ID: PlanWeekly, Title: "Weekly Plan", PriceCents: 699, Price: "$6.99"},
	{ID: PlanFourWeek, Title: "4-Week Plan", PriceCents: 1999, Price: "$19.99", PricePerWeek: "$4.99/week", Badge: "MOST POPULAR"},
	{ID: PlanYearly, Title: "Yearly Plan", PriceCents: 11999, Price: "$119.99", PricePerWeek: "$2.30/week", Badge: "BEST VALUE"},
}

// Catalog 返回方案列表的副本。
func Catalog() []Plan {
	out := make([]Plan, len(catalog))
	copy(out, catalog)
	return out
}

// Find 按 id 查找方案。
func Find(id string) (Plan, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

var goalLabels = map[string]string{
	"lose-weight":    "Lose weight",
	"find-self-love": "Find Self-Love",
	"build-muscle":   "Build Muscle",
	"keep-fit":       "Keep fit",
}

const defaultGoalLabel = "Lose weight"

// GoalLabel 未知目标原样展示，空值回退到默认文案。
func GoalLabel(goal string) string {
	if goal == "" {
		return defaultGoalLabel
	}
	if label, ok := goalLabels[goal]; ok {
		return label
	}
	return goal
}

// ValidGoal 是否为已知的目标 id。
func ValidGoal(goal string) bool {
	_, ok := goalLabels[goal]
	return ok
}

var activities = map[string]struct{}{
	"Pilates":         {},
	"General Fitness": {},
	"Yoga":            {},
	"Walking":         {},
	"Stretching":      {},
}

func ValidActivity(name string) bool {
	_, ok := activities[name]
	return ok
}
