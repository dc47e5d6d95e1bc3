package metadata

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultErr(t *testing.T) {
	assert.NoError(t, RESULT_SUCCESS.Err())
	assert.NoError(t, RESULT_SUBOPTIMAL.Err())

	err := fmt.Errorf("allocate: %w", RESULT_ERROR_OUT_OF_POOL_MEMORY.Err())
	assert.True(t, errors.Is(err, RESULT_ERROR_OUT_OF_POOL_MEMORY))
	assert.Contains(t, err.Error(), "ERROR_OUT_OF_POOL_MEMORY")
	assert.Equal(t, "RESULT(-99)", Result(-99).String())
}

func TestParsePresentMode(t *testing.T) {
	m, ok := ParsePresentMode("mailbox")
	assert.True(t, ok)
	assert.Equal(t, PRESENT_MODE_MAILBOX, m)
	assert.Equal(t, "fifo_relaxed", PRESENT_MODE_FIFO_RELAXED.String())

	_, ok = ParsePresentMode("vsync")
	assert.False(t, ok)
}

func TestMaxSampleCount(t *testing.T) {
	supported := SAMPLE_COUNT_1 | SAMPLE_COUNT_2 | SAMPLE_COUNT_4 | SAMPLE_COUNT_8
	assert.Equal(t, SAMPLE_COUNT_4, MaxSampleCount(supported, 4))
	assert.Equal(t, SAMPLE_COUNT_8, MaxSampleCount(supported, 64))
	assert.Equal(t, SAMPLE_COUNT_1, MaxSampleCount(supported, 1))
	assert.Equal(t, SAMPLE_COUNT_1, MaxSampleCount(SAMPLE_COUNT_1, 8))
}
