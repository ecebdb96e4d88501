package attachment

import (
	"fmt"
	"math"
)

// Default size thresholds in kilobytes.
const (
	DefaultWarnKB = 200
	DefaultMaxKB  = 256
)

// Verdict is the outcome of a size check.
type Verdict int

const (
	VerdictApproved Verdict = iota
	VerdictNeedsConfirmation
	VerdictRejected
)

func (v Verdict) String() string {
	switch v {
	case VerdictApproved:
		return "approved"
	case VerdictNeedsConfirmation:
		return "needs_confirmation"
	case VerdictRejected:
		return "rejected"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Limits holds the soft-warn and hard-reject thresholds in kilobytes.
type Limits struct {
	WarnKB float64
	MaxKB  float64
}

// DefaultLimits returns the 200KB warn / 256KB max thresholds.
func DefaultLimits() Limits {
	return Limits{WarnKB: DefaultWarnKB, MaxKB: DefaultMaxKB}
}

// Validate checks that both thresholds are positive and ordered.
func (l Limits) Validate() error {
	if l.WarnKB <= 0 || l.MaxKB <= 0 {
		return fmt.Errorf("size limits must be positive (warn=%v, max=%v)", l.WarnKB, l.MaxKB)
	}
	if l.WarnKB > l.MaxKB {
		return fmt.Errorf("warn threshold %vKB exceeds maximum %vKB", l.WarnKB, l.MaxKB)
	}
	return nil
}

// Check classifies a payload of n bytes.
func (l Limits) Check(n int) Verdict {
	kb := SizeKB(n)
	switch {
	case kb > l.MaxKB:
		return VerdictRejected
	case kb > l.WarnKB:
		return VerdictNeedsConfirmation
	default:
		return VerdictApproved
	}
}

// SizeKB converts a byte count to kilobytes.
func SizeKB(n int) float64 {
	return float64(n) / 1024
}

// roundKB rounds to the two decimals written in the Filesize header.
func roundKB(kb float64) float64 {
	return math.Round(kb*100) / 100
}
