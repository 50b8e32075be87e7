package skills

import (
	"fmt"
	"strings"
)

// Rating is one step on the five-level proficiency scale. The zero value
// means the skill has not been assessed.
type Rating string

const (
	RatingNone         Rating = ""
	RatingBeginner     Rating = "beginner"
	RatingDeveloping   Rating = "developing"
	RatingIntermediate Rating = "intermediate"
	RatingAdvanced     Rating = "advanced"
	RatingExpert       Rating = "expert"
)

// Scale lists the defined ratings in ascending order.
var Scale = []Rating{
	RatingBeginner,
	RatingDeveloping,
	RatingIntermediate,
	RatingAdvanced,
	RatingExpert,
}

var ratingNumeric = map[Rating]int{
	RatingBeginner:     1,
	RatingDeveloping:   2,
	RatingIntermediate: 3,
	RatingAdvanced:     4,
	RatingExpert:       5,
}

// Numeric maps a rating onto 1..5. An unassessed rating maps to 0 so it
// compares below every defined rating; it is never equal to beginner.
func (r Rating) Numeric() int {
	return ratingNumeric[r]
}

// Known reports whether r is one of the five defined ratings.
func (r Rating) Known() bool {
	_, ok := ratingNumeric[r]
	return ok
}

// CompareRatings returns -1, 0 or 1 ordering a against b through the
// numeric projection.
func CompareRatings(a, b Rating) int {
	an, bn := a.Numeric(), b.Numeric()
	switch {
	case an < bn:
		return -1
	case an > bn:
		return 1
	default:
		return 0
	}
}

// ParseRating normalises raw input to a defined rating. Empty input is the
// unassessed rating; anything else must be on the scale.
func ParseRating(raw string) (Rating, error) {
	normalized := Rating(strings.ToLower(strings.TrimSpace(raw)))
	if normalized == RatingNone {
		return RatingNone, nil
	}
	if !normalized.Known() {
		return RatingNone, fmt.Errorf("unknown proficiency rating %q", raw)
	}
	return normalized, nil
}

// ColorFor is a display hint only; it carries no gap semantics.
func ColorFor(r Rating) string {
	switch r {
	case RatingExpert:
		return "purple"
	case RatingAdvanced:
		return "green"
	case RatingIntermediate:
		return "blue"
	case RatingDeveloping:
		return "yellow"
	case RatingBeginner:
		return "orange"
	default:
		return "gray"
	}
}
