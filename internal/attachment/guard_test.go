package attachment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitsCheckBoundaries(t *testing.T) {
	limits := DefaultLimits()

	tests := []struct {
		name string
		size int
		want Verdict
	}{
		{"empty", 0, VerdictApproved},
		{"small", 10, VerdictApproved},
		{"warn threshold exactly", 200 * 1024, VerdictApproved},
		{"one byte over warn", 200*1024 + 1, VerdictNeedsConfirmation},
		{"maximum exactly", 256 * 1024, VerdictNeedsConfirmation},
		{"one byte over maximum", 256*1024 + 1, VerdictRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, limits.Check(tt.size))
		})
	}
}

func TestLimitsCheckCustomCeiling(t *testing.T) {
	limits := Limits{WarnKB: 200, MaxKB: 262}

	assert.Equal(t, VerdictNeedsConfirmation, limits.Check(262*1024))
	assert.Equal(t, VerdictRejected, limits.Check(262*1024+1))
}

func TestLimitsValidate(t *testing.T) {
	require.NoError(t, DefaultLimits().Validate())
	require.NoError(t, Limits{WarnKB: 10, MaxKB: 10}.Validate())

	assert.Error(t, Limits{WarnKB: 0, MaxKB: 256}.Validate())
	assert.Error(t, Limits{WarnKB: 200, MaxKB: -1}.Validate())
	assert.Error(t, Limits{WarnKB: 300, MaxKB: 256}.Validate())
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "approved", VerdictApproved.String())
	assert.Equal(t, "needs_confirmation", VerdictNeedsConfirmation.String())
	assert.Equal(t, "rejected", VerdictRejected.String())
	assert.Equal(t, "verdict(9)", Verdict(9).String())
}
