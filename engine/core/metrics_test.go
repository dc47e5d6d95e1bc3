package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameMetricsAverage(t *testing.T) {
	m := NewFrameMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(0.016)
	}
	assert.InDelta(t, 16.0, m.FrameTime(), 1e-9)
}

func TestFrameMetricsFPS(t *testing.T) {
	m := NewFrameMetrics()
	for i := 0; i < 33; i++ {
		m.Update(0.03125)
	}
	// 32 frames of 31.25ms add up to exactly one second, the 33rd crosses it
	assert.Equal(t, float64(33), m.FPSValue())
}

func TestAssertPanics(t *testing.T) {
	assert.Panics(t, func() { Assert(false, "boom %d", 1) })
	assert.NotPanics(t, func() { Assert(true, "fine") })
}
