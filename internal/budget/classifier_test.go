package budget

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		percentage int64
		want       Tier
	}{
		{-10, TierNormal},
		{0, TierNormal},
		{74, TierNormal},
		{75, TierWarning},
		{89, TierWarning},
		{90, TierDanger},
		{100, TierDanger},
		{250, TierDanger},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d%%", tt.percentage), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.percentage))
		})
	}
}

func TestClassify_Monotonic(t *testing.T) {
	prev := Classify(0)
	for p := int64(1); p <= 200; p++ {
		cur := Classify(p)
		assert.GreaterOrEqual(t, int(cur), int(prev), "tier decreased at %d", p)
		prev = cur
	}
}

func TestTier_StringAndAlert(t *testing.T) {
	assert.Equal(t, "normal", TierNormal.String())
	assert.Equal(t, "warning", TierWarning.String())
	assert.Equal(t, "danger", TierDanger.String())

	assert.False(t, TierNormal.Alert())
	assert.False(t, TierWarning.Alert())
	assert.True(t, TierDanger.Alert())
}
