// Package photo drives the photographic sky: which captured frame belongs to
// which day, how frames are loaded off the frame loop, and how two frames
// are blended and graded into the final image.
package photo

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"sky-archive/timeline"
)

// ErrAssetLoad marks a frame that could not be read or decoded. It never
// escapes a render call; the loader substitutes a placeholder instead.
var ErrAssetLoad = errors.New("photo: asset load failed")

// Mapping selects how days are assigned to the captured frames.
type Mapping int

const (
	// MappingModulo cycles the frames: day mod count.
	MappingModulo Mapping = iota
	// MappingSeasonal varies the cycle by season.
	MappingSeasonal
)

func (m Mapping) String() string {
	switch m {
	case MappingModulo:
		return "modulo"
	case MappingSeasonal:
		return "seasonal"
	default:
		return fmt.Sprintf("Mapping(%d)", int(m))
	}
}

func ParseMapping(s string) (Mapping, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "modulo":
		return MappingModulo, nil
	case "seasonal":
		return MappingSeasonal, nil
	default:
		return MappingModulo, fmt.Errorf("unknown photo mapping %q", s)
	}
}

// AssetSet describes the frames on disk: Pattern is a printf pattern with a
// single %d that receives First + index.
type AssetSet struct {
	Dir     string
	Pattern string
	Count   int
	First   int
	Mapping Mapping
}

// DefaultAssetSet is the installation's eight frames, images/day_1.jpeg
// through images/day_8.jpeg.
func DefaultAssetSet() AssetSet {
	return AssetSet{
		Dir:     "images",
		Pattern: "day_%d.jpeg",
		Count:   8,
		First:   1,
		Mapping: MappingModulo,
	}
}

func (a AssetSet) Validate() error {
	if a.Count <= 0 {
		return fmt.Errorf("photo: count must be positive, got %d", a.Count)
	}
	if strings.Count(a.Pattern, "%d") != 1 {
		return fmt.Errorf("photo: pattern %q must contain exactly one %%d", a.Pattern)
	}
	return nil
}

// Path is the file holding frame index.
func (a AssetSet) Path(index int) string {
	return filepath.Join(a.Dir, fmt.Sprintf(a.Pattern, a.First+index))
}

// IndexOfFile reverses Path for a file name in Dir.
func (a AssetSet) IndexOfFile(name string) (int, bool) {
	var n int
	base := filepath.Base(name)
	if _, err := fmt.Sscanf(base, a.Pattern, &n); err != nil {
		return 0, false
	}
	if fmt.Sprintf(a.Pattern, n) != base {
		return 0, false
	}
	idx := n - a.First
	if idx < 0 || idx >= a.Count {
		return 0, false
	}
	return idx, true
}

// Index maps a day to a frame using the set's mapping.
func (a AssetSet) Index(day int) int {
	if a.Mapping == MappingSeasonal {
		return SeasonalImageIndex(day, a.Count)
	}
	return ImageIndex(day, a.Count)
}

// ImageIndex is day mod count. The day is wrapped into the cycle first, so
// the mapping repeats every year.
func ImageIndex(day, count int) int {
	if count <= 0 {
		return 0
	}
	return timeline.Wrap(day) % count
}

// SeasonalImageIndex walks the frames forward in spring, backward in
// summer, alternates direction by day parity in autumn, and follows the
// weekday in winter: the first three weekdays take the first three frames
// and the rest cycle through the remainder.
func SeasonalImageIndex(day, count int) int {
	if count <= 0 {
		return 0
	}
	day = timeline.Wrap(day)
	base := day % count
	reversed := count - 1 - base

	switch timeline.SeasonOf(day) {
	case timeline.Spring:
		return base
	case timeline.Summer:
		return reversed
	case timeline.Autumn:
		if day%2 == 0 {
			return base
		}
		return reversed
	default:
		weekday := day % 7
		if weekday < 3 || count <= 3 {
			return weekday % count
		}
		return 3 + (weekday-3)%(count-3)
	}
}
