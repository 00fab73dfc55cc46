package timeline

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeasonOf_PartitionsCycle(t *testing.T) {
	counts := map[Season]int{}
	prev := Spring
	for d := 0; d < TotalDays; d++ {
		s := SeasonOf(d)
		require.Contains(t, []Season{Spring, Summer, Autumn, Winter}, s, "day %d", d)
		// Ranges are contiguous: the season never goes backwards
		require.GreaterOrEqual(t, int(s), int(prev), "day %d", d)
		require.LessOrEqual(t, int(s)-int(prev), 1, "day %d", d)
		prev = s
		counts[s]++
	}
	total := 0
	for _, n := range counts {
		assert.Equal(t, 91, n)
		total += n
	}
	assert.Equal(t, TotalDays, total)
}

func TestSeasonOf_Boundaries(t *testing.T) {
	assert.Equal(t, Spring, SeasonOf(90))
	assert.Equal(t, Summer, SeasonOf(91))
	assert.Equal(t, Autumn, SeasonOf(182))
	assert.Equal(t, Winter, SeasonOf(273))
	assert.Equal(t, 273, SeasonStart(Winter))
}

func TestOutOfRangeDaysAreClamped(t *testing.T) {
	assert.Equal(t, Spring, SeasonOf(-40))
	assert.Equal(t, Winter, SeasonOf(10_000))
	assert.Equal(t, "JAN", CalendarLabel(-1))
	assert.Equal(t, "DEC", CalendarLabel(999))
	assert.Equal(t, "DAY 1 / 364", DayLabel(-5))
	assert.Equal(t, float32(0), SeasonFactor(-3))
}

func TestWrap(t *testing.T) {
	assert.Equal(t, 0, Wrap(364))
	assert.Equal(t, 363, Wrap(-1))
	assert.Equal(t, 5, Wrap(5+3*364))
}

func TestCalendarLabel(t *testing.T) {
	tests := []struct {
		day  int
		want string
	}{
		{0, "JAN"},
		{30, "JAN"},
		{31, "FEB"},
		{58, "FEB"},
		{59, "MAR"},
		{181, "JUL"},
		{334, "DEC"},
		{363, "DEC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalendarLabel(tt.day), "day %d", tt.day)
	}
	assert.Equal(t, "ČVC", CalendarLabelIn(LocaleCzech, 200))
	assert.Equal(t, "JUL", CalendarLabelIn(Locale("xx"), 200))
}

func TestMarkers(t *testing.T) {
	ms := Markers(LocaleEnglish)
	require.Len(t, ms, 12)
	assert.Equal(t, "JAN", ms[0].Label)
	assert.Equal(t, 0.0, ms[0].Position)
	assert.Equal(t, "DEC", ms[11].Label)
	assert.InDelta(t, 334.0/363.0, ms[11].Position, 1e-9)
}

func TestLerpDay_ShortestArc(t *testing.T) {
	assert.InDelta(t, 15, LerpDay(10, 20, 0.5), 1e-4)
	// 362 -> 2 crosses the wrap point instead of sweeping back through the year
	assert.InDelta(t, 0, LerpDay(362, 2, 0.5), 1e-4)
	assert.InDelta(t, 363, LerpDay(1, 361, 0.5), 1e-4)
	assert.InDelta(t, 20, LerpDay(10, 20, 1), 1e-4)
}

func TestFromFraction(t *testing.T) {
	assert.Equal(t, 0, FromFraction(-0.2))
	assert.Equal(t, 182, FromFraction(0.5))
	assert.Equal(t, 363, FromFraction(1))
	assert.Equal(t, 363, FromFraction(stdmath.Inf(1)))
	assert.Equal(t, 363, FromFraction(1e300))
	assert.Equal(t, 0, FromFraction(stdmath.Inf(-1)))
	assert.Equal(t, 0, FromFraction(stdmath.NaN()))
}
