package skills

import "errors"

type GapStatus string

const (
	GapBelow GapStatus = "below"
	GapAt    GapStatus = "at"
	GapAbove GapStatus = "above"
)

// ErrUnknownRequirement is returned when a skill's required rating is not on
// the scale. Callers exclude such skills from gap computation rather than
// treating them as zero-gap.
var ErrUnknownRequirement = errors.New("required rating is not on the proficiency scale")

// ComputeGap returns the signed difference between the current and required
// rating. An unassessed current rating counts as 0, which puts the skill
// below every possible requirement.
func ComputeGap(current, required Rating) (int, GapStatus, error) {
	if !required.Known() {
		return 0, "", ErrUnknownRequirement
	}
	gap := current.Numeric() - required.Numeric()
	return gap, statusOf(gap), nil
}

func statusOf(gap int) GapStatus {
	switch {
	case gap < 0:
		return GapBelow
	case gap > 0:
		return GapAbove
	default:
		return GapAt
	}
}

// BuildGaps computes one SkillGap per requirement against the employee's
// current ratings. Requirements with an off-scale rating are skipped.
func BuildGaps(current map[string]Rating, requirements []Requirement) []SkillGap {
	gaps := make([]SkillGap, 0, len(requirements))
	for _, req := range requirements {
		gap, status, err := ComputeGap(current[req.SkillID], req.Required)
		if err != nil {
			continue
		}
		gaps = append(gaps, SkillGap{
			SkillID:        req.SkillID,
			SkillName:      req.SkillName,
			Category:       req.Category,
			CurrentRating:  current[req.SkillID],
			RequiredRating: req.Required,
			Gap:            gap,
			Status:         status,
		})
	}
	return gaps
}
