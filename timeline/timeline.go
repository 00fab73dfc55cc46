// Package timeline maps linear day indices of the archive onto calendar and
// season metadata. Every function is total: out-of-range days are clamped.
package timeline

import "fmt"

// TotalDays is the length of the archive cycle.
const TotalDays = 364

// Clamp limits day to [0, TotalDays-1].
func Clamp(day int) int {
	if day < 0 {
		return 0
	}
	if day >= TotalDays {
		return TotalDays - 1
	}
	return day
}

// Wrap reduces day modulo TotalDays; the result is never negative.
func Wrap(day int) int {
	d := day % TotalDays
	if d < 0 {
		d += TotalDays
	}
	return d
}

// SeasonFactor is the normalised position of day within the cycle, in [0,1).
func SeasonFactor(day int) float32 {
	return float32(Clamp(day)) / TotalDays
}

// SeasonBlend is 0 at mid-cycle and approaches 1 at both ends of the cycle;
// it weighs the winter variant of seasonal colours and cloud shapes.
func SeasonBlend(factor float32) float32 {
	b := factor - 0.5
	if b < 0 {
		b = -b
	}
	return b * 2
}

// LerpDay interpolates between two days along the shorter way round the
// cycle, returning a fractional day in [0, TotalDays).
func LerpDay(from, to int, w float32) float32 {
	a, b := float32(Wrap(from)), float32(Wrap(to))
	delta := b - a
	switch {
	case delta > TotalDays/2:
		delta -= TotalDays
	case delta < -TotalDays/2:
		delta += TotalDays
	}
	d := a + delta*w
	if d < 0 {
		d += TotalDays
	}
	if d >= TotalDays {
		d -= TotalDays
	}
	return d
}

// FromFraction maps a timeline position in [0,1] to a day.
func FromFraction(f float64) int {
	if f != f || f <= 0 {
		return 0
	}
	if f >= 1 {
		return TotalDays - 1
	}
	return Clamp(int(f * TotalDays))
}

// DayLabel is the counter text shown next to the timeline.
func DayLabel(day int) string {
	return fmt.Sprintf("DAY %d / %d", Clamp(day)+1, TotalDays)
}
