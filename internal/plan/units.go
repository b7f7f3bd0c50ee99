package plan

import "math"

const (
	UnitKg = "kg"
	UnitLb = "lb"
	UnitCm = "cm"
	UnitFt = "ft"

	lbToKg = 0.453592
	kgToLb = 2.20462

	suggestedLossRatio = 0.1
)

// ConvertWeight 在 kg 与 lb 之间换算，其它组合原样返回。
func ConvertWeight(value float64, from, to string) float64 {
	switch {
	case from == UnitLb && to == UnitKg:
		return value * lbToKg
	case from == UnitKg && to == UnitLb:
		return value * kgToLb
	}
	return value
}

// SuggestedLoss 建议减重量：当前体重的 10%，换算到展示单位后保留一位小数。
// 当前体重未填写时返回 false。
func SuggestedLoss(current float64, currentUnit, displayUnit string) (float64, bool) {
	if current <= 0 {
		return 0, false
	}
	v := ConvertWeight(current, currentUnit, displayUnit) * suggestedLossRatio
	return round1(v), true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
