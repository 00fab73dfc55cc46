package timeline

// Season is one of four contiguous quarters of the cycle.
type Season int

const (
	Spring Season = iota
	Summer
	Autumn
	Winter
)

// daysPerSeason splits the 364-day cycle into four equal quarters.
const daysPerSeason = TotalDays / 4

func (s Season) String() string {
	switch s {
	case Spring:
		return "spring"
	case Summer:
		return "summer"
	case Autumn:
		return "autumn"
	case Winter:
		return "winter"
	default:
		return "unknown"
	}
}

// SeasonOf returns the season containing day. Each range includes its lower
// bound: day 91 is the first day of summer.
func SeasonOf(day int) Season {
	return Season(Clamp(day) / daysPerSeason)
}

// SeasonStart returns the first day of s.
func SeasonStart(s Season) int {
	return int(s) * daysPerSeason
}
