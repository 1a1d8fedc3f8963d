// Package normalize turns collector output into canonical races: track and
// race keys, decimal odds and the document normalizer.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/yourusername/paddock-parser/internal/models"
)

// UnknownTrack is the track key used when a name carries nothing usable.
const UnknownTrack = "unknown_track"

var (
	trackDisallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	trackSeparators = regexp.MustCompile(`[\s-]+`)
	nonDigits       = regexp.MustCompile(`\D`)
	hhmmPattern     = regexp.MustCompile(`(\d{1,2})[:.](\d{2})`)

	courseSuffix     = regexp.MustCompile(`\s+at\s+.*$`)
	courseQualifier  = regexp.MustCompile(`\s*\([^)]*\)`)
	courseNoiseWords = regexp.MustCompile(`\b(park|raceway|racecourse|track|stadium|greyhound|harness)\b`)
	spaceRuns        = regexp.MustCompile(`\s+`)
)

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// CanonicalTrackKey derives the stable track identifier for a venue name,
// e.g. "Newton Abbot" -> "newton_abbot".
func CanonicalTrackKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = stripDiacritics(key)
	key = trackDisallowed.ReplaceAllString(key, "")
	key = strings.Trim(trackSeparators.ReplaceAllString(key, "_"), "_")
	if key == "" {
		return UnknownTrack
	}
	return key
}

// CanonicalRaceKey joins a track key and the digits of a race time, e.g.
// ("ascot", "14:30") -> "ascot::r1430".
func CanonicalRaceKey(trackKey, raceTime string) (string, error) {
	digits := nonDigits.ReplaceAllString(raceTime, "")
	if digits == "" {
		return "", fmt.Errorf("%w: %q", models.ErrNoRaceTimeDigits, raceTime)
	}
	return fmt.Sprintf("%s::r%s", trackKey, digits), nil
}

// ParseHHMM extracts the first clock time from free text and returns it as
// 24 hour "HH:MM". A literal am/pm in the text adjusts the hour.
func ParseHHMM(text string) (string, bool) {
	m := hhmmPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "pm") && hour != 12:
		hour += 12
	case strings.Contains(lower, "am") && hour == 12:
		hour = 0
	}
	return fmt.Sprintf("%02d:%s", hour, m[2]), true
}

// NormalizeCourseName reduces a venue display name to its core, dropping
// sponsor suffixes ("X at Y"), bracketed qualifiers and venue-type words.
func NormalizeCourseName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = courseSuffix.ReplaceAllString(s, "")
	s = courseQualifier.ReplaceAllString(s, "")
	s = courseNoiseWords.ReplaceAllString(s, "")
	return strings.TrimSpace(spaceRuns.ReplaceAllString(s, " "))
}

// Discipline is the racing code a meeting belongs to.
type Discipline string

const (
	DisciplineThoroughbred Discipline = "thoroughbred"
	DisciplineGreyhound    Discipline = "greyhound"
	DisciplineHarness      Discipline = "harness"
	DisciplineJump         Discipline = "jump"
)

var disciplineWords = []struct {
	discipline Discipline
	words      []string
}{
	{DisciplineGreyhound, []string{"greyhound", "dog"}},
	{DisciplineHarness, []string{"harness", "trot", "standardbred"}},
	{DisciplineJump, []string{"jump", "chase", "hurdle", "national hunt"}},
}

// MapDiscipline classifies a race or meeting description.
func MapDiscipline(text string) Discipline {
	lower := strings.ToLower(text)
	for _, entry := range disciplineWords {
		for _, w := range entry.words {
			if strings.Contains(lower, w) {
				return entry.discipline
			}
		}
	}
	return DisciplineThoroughbred
}
