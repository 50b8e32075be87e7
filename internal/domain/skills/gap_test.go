package skills

import (
	"errors"
	"testing"
)

func TestComputeGapSignMatchesStatus(t *testing.T) {
	all := append([]Rating{RatingNone}, Scale...)
	for _, current := range all {
		for _, required := range Scale {
			gap, status, err := ComputeGap(current, required)
			if err != nil {
				t.Fatalf("unexpected error for current=%q required=%q: %v", current, required, err)
			}
			switch {
			case gap < 0 && status != GapBelow:
				t.Fatalf("gap %d should be below, got %s", gap, status)
			case gap == 0 && status != GapAt:
				t.Fatalf("gap 0 should be at, got %s", status)
			case gap > 0 && status != GapAbove:
				t.Fatalf("gap %d should be above, got %s", gap, status)
			}
		}
	}
}

func TestComputeGapAbsentRating(t *testing.T) {
	gap, status, err := ComputeGap(RatingNone, RatingBeginner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gap != -1 || status != GapBelow {
		t.Fatalf("absent vs beginner: got gap=%d status=%s, want -1 below", gap, status)
	}
}

func TestComputeGapUnknownRequirement(t *testing.T) {
	if _, _, err := ComputeGap(RatingExpert, Rating("grandmaster")); !errors.Is(err, ErrUnknownRequirement) {
		t.Fatalf("expected ErrUnknownRequirement, got %v", err)
	}
	if _, _, err := ComputeGap(RatingExpert, RatingNone); !errors.Is(err, ErrUnknownRequirement) {
		t.Fatalf("missing requirement should be ErrUnknownRequirement, got %v", err)
	}
}

func TestBuildGapsSkipsUnknownRequirements(t *testing.T) {
	current := map[string]Rating{"s1": RatingIntermediate}
	requirements := []Requirement{
		{SkillID: "s1", SkillName: "Python", Required: RatingAdvanced},
		{SkillID: "s2", SkillName: "Broken", Required: Rating("n/a")},
	}
	gaps := BuildGaps(current, requirements)
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	if gaps[0].SkillID != "s1" || gaps[0].Gap != -1 {
		t.Fatalf("unexpected gap: %+v", gaps[0])
	}
}
