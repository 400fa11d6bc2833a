package domain

import (
	"fmt"
	"math"
)

// Fraction projects a playback position onto [0, 1].
// A zero or unknown duration yields 0. Positions that run ahead of the
// duration (common right after a new duration arrives) are clamped to 1.
func Fraction(position, duration float64) float64 {
	if !(duration > 0) || math.IsInf(duration, 0) {
		return 0
	}
	if math.IsNaN(position) {
		return 0
	}
	f := position / duration
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// RingCircumference returns the stroke length of a circular indicator.
func RingCircumference(radius float64) float64 {
	return 2 * math.Pi * radius
}

// RingDashOffset returns the stroke offset that leaves the unplayed part of
// a ring of the given radius empty.
func RingDashOffset(fraction, radius float64) float64 {
	f := Fraction(fraction, 1)
	return RingCircumference(radius) * (1 - f)
}

// FormatDuration renders seconds as m:ss. Invalid input renders as 0:00.
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "0:00"
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
