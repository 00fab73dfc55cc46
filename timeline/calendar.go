package timeline

// Locale selects the month abbreviation set.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleCzech   Locale = "cs"
)

// MonthStarts holds the first day-of-year of every month in a non-leap
// Gregorian year, zero-based.
var MonthStarts = [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

var monthNames = map[Locale][12]string{
	LocaleEnglish: {"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"},
	LocaleCzech:   {"LED", "ÚNO", "BŘE", "DUB", "KVĚ", "ČER", "ČVC", "SRP", "ZÁŘ", "ŘÍJ", "LIS", "PRO"},
}

// MonthOf returns the zero-based month containing day.
func MonthOf(day int) int {
	d := Clamp(day)
	m := 0
	for i, start := range MonthStarts {
		if d >= start {
			m = i
		}
	}
	return m
}

// CalendarLabel returns the English month abbreviation for day.
func CalendarLabel(day int) string {
	return CalendarLabelIn(LocaleEnglish, day)
}

// CalendarLabelIn returns the month abbreviation for day in locale,
// falling back to English for unknown locales.
func CalendarLabelIn(locale Locale, day int) string {
	names, ok := monthNames[locale]
	if !ok {
		names = monthNames[LocaleEnglish]
	}
	return names[MonthOf(day)]
}

// Marker is a labelled tick on the timeline.
type Marker struct {
	Day      int
	Label    string
	Position float64 // fraction of the timeline width
}

// Markers returns one marker per month start.
func Markers(locale Locale) []Marker {
	out := make([]Marker, 0, len(MonthStarts))
	for _, start := range MonthStarts {
		out = append(out, Marker{
			Day:      start,
			Label:    CalendarLabelIn(locale, start),
			Position: float64(start) / float64(TotalDays-1),
		})
	}
	return out
}
