package otel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	tests := []struct {
		name      string
		in        Config
		wantRatio float64
	}{
		{"development samples everything", Config{Environment: "development", SampleRatio: 0.2}, 1},
		{"empty environment is development", Config{}, 1},
		{"production default", Config{Environment: "production"}, 0.1},
		{"production clamps", Config{Environment: "production", SampleRatio: 3}, 1},
		{"production keeps ratio", Config{Environment: "production", SampleRatio: 0.25}, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.withDefaults()
			assert.Equal(t, tt.wantRatio, got.SampleRatio)
			assert.Equal(t, 15*time.Second, got.ExportInterval)
		})
	}
}

func TestTrimScheme(t *testing.T) {
	assert.Equal(t, "collector:4317", trimScheme("http://collector:4317"))
	assert.Equal(t, "collector:4317", trimScheme("https://collector:4317"))
	assert.Equal(t, "collector:4317", trimScheme("collector:4317"))
}

func TestServiceAttributes(t *testing.T) {
	attrs := ServiceAttributes(Config{ServiceName: "reformly", Environment: "staging"})

	found := map[string]string{}
	for _, kv := range attrs {
		found[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "reformly", found["service.name"])
	assert.Equal(t, "staging", found["deployment.environment"])
	assert.Equal(t, "reformly", found["service.namespace"])
}
