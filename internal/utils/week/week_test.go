package week

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	// 2025-01-13 is a Monday in ISO week 3.
	d := time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-W03", Label(d))

	// Jan 1st 2027 falls in the last ISO week of 2026.
	d = time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-W53", Label(d))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("2025-W03"))
	assert.True(t, Valid("2025-W10"))
	assert.True(t, Valid("2024-W53"))
	assert.True(t, Valid("2025-W01"))
	assert.False(t, Valid("2025-W00"))
	assert.False(t, Valid("2025-W54"))
	assert.False(t, Valid("2025-3"))
	assert.False(t, Valid("2025W03"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("2025-Wxx"))
}

func TestLabelRoundTripsThroughValid(t *testing.T) {
	for _, d := range []time.Time{
		time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC),
		time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
	} {
		label := Label(d)
		assert.True(t, Valid(label), "Label(%s) = %s should validate", d, label)
	}
}
