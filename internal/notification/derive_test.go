package notification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDeriveAlarmIDDeterministic(t *testing.T) {
	id := uuid.New().String()
	assert.Equal(t, DeriveAlarmID(id), DeriveAlarmID(id))
}

func TestDeriveAlarmIDNonNegative(t *testing.T) {
	for i := 0; i < 1000; i++ {
		alarmID := DeriveAlarmID(uuid.New().String())
		assert.GreaterOrEqual(t, alarmID, int32(0))
	}
}

func TestDeriveAlarmIDSpreadsDistinctInputs(t *testing.T) {
	seen := make(map[int32]bool)
	for i := 0; i < 100; i++ {
		seen[DeriveAlarmID(uuid.New().String())] = true
	}
	// Collisions are tolerated but should be vanishingly rare at this scale.
	assert.Len(t, seen, 100)
}
