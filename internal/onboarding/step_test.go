package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStep(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want StepIndex
	}{
		{"absent", "", StepWelcome},
		{"whitespace", "   ", StepWelcome},
		{"non numeric", "abc", StepWelcome},
		{"float", "2.5", StepWelcome},
		{"negative", "-3", StepWelcome},
		{"huge negative", "-99999999999999999999999", StepWelcome},
		{"zero", "0", StepWelcome},
		{"in range", "7", StepIndex(7)},
		{"padded", " 4 ", StepIndex(4)},
		{"last index", "14", StepPlanPreview},
		{"one based last", "15", StepPlanPreview},
		{"far above", "99", StepPlanPreview},
		{"overflow", "99999999999999999999999", StepPlanPreview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStep(tt.raw))
		})
	}
}

func TestStepIndex_Classes(t *testing.T) {
	for step := StepWelcome; step <= StepPlanPreview; step++ {
		assert.True(t, step.Valid())
		assert.NotEqual(t, "unknown", step.Name())

		switch {
		case step <= StepOTP:
			assert.True(t, step.Public(), step.Name())
			assert.False(t, step.Gated(), step.Name())
		case step == StepPlanPreview:
			assert.False(t, step.Public())
			assert.False(t, step.Gated())
		default:
			assert.False(t, step.Public(), step.Name())
			assert.True(t, step.Gated(), step.Name())
		}
	}

	assert.False(t, StepIndex(-1).Valid())
	assert.False(t, StepIndex(TotalSteps).Valid())
	assert.Equal(t, "unknown", StepIndex(TotalSteps).Name())
	assert.Equal(t, 15, StepPlanPreview.Number())
	assert.Equal(t, "main_goal", StepFirstGated.Name())
}
