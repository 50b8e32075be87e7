package skills

import (
	"math"
	"testing"
)

func gapFor(t *testing.T, id, name string, current, required Rating) SkillGap {
	t.Helper()
	gap, status, err := ComputeGap(current, required)
	if err != nil {
		t.Fatalf("gap for %s: %v", name, err)
	}
	return SkillGap{SkillID: id, SkillName: name, CurrentRating: current, RequiredRating: required, Gap: gap, Status: status}
}

func TestAggregateBucketSum(t *testing.T) {
	cases := [][]SkillGap{
		nil,
		{},
		{
			gapFor(t, "s1", "Python", RatingBeginner, RatingExpert),
			gapFor(t, "s2", "SQL", RatingNone, RatingAdvanced),
		},
		{
			gapFor(t, "s1", "Python", RatingExpert, RatingBeginner),
			gapFor(t, "s2", "SQL", RatingAdvanced, RatingAdvanced),
			gapFor(t, "s3", "Git", RatingNone, RatingBeginner),
		},
	}
	for i, gaps := range cases {
		analysis := Aggregate(gaps)
		if analysis.SkillsBelow+analysis.SkillsAt+analysis.SkillsAbove != analysis.TotalSkills {
			t.Fatalf("case %d: buckets %d+%d+%d != total %d", i, analysis.SkillsBelow, analysis.SkillsAt, analysis.SkillsAbove, analysis.TotalSkills)
		}
		if analysis.TotalSkills != len(gaps) {
			t.Fatalf("case %d: total %d != len %d", i, analysis.TotalSkills, len(gaps))
		}
	}
}

func TestAggregateAverageExcludesUnassessed(t *testing.T) {
	gaps := []SkillGap{
		gapFor(t, "s1", "Python", RatingIntermediate, RatingAdvanced),
		gapFor(t, "s2", "SQL", RatingExpert, RatingIntermediate),
		gapFor(t, "s3", "Git", RatingNone, RatingBeginner),
	}
	analysis := Aggregate(gaps)
	want := (3.0 + 5.0) / 2.0
	if math.Abs(analysis.AverageRating-want) > 1e-9 {
		t.Fatalf("average %v, want %v (unassessed excluded, not zero)", analysis.AverageRating, want)
	}
}

// Worked scenario: Python -1, SQL +2, Git -1 aggregates to below:2 above:1
// and sorts Python, Git before SQL in original relative order.
func TestAggregateScenario(t *testing.T) {
	gaps := []SkillGap{
		gapFor(t, "s1", "Python", RatingIntermediate, RatingAdvanced),
		gapFor(t, "s2", "SQL", RatingExpert, RatingIntermediate),
		gapFor(t, "s3", "Git", RatingNone, RatingBeginner),
	}
	if gaps[0].Gap != -1 || gaps[1].Gap != 2 || gaps[2].Gap != -1 {
		t.Fatalf("scenario gaps wrong: %d %d %d", gaps[0].Gap, gaps[1].Gap, gaps[2].Gap)
	}

	analysis := Aggregate(gaps)
	if analysis.SkillsBelow != 2 || analysis.SkillsAt != 0 || analysis.SkillsAbove != 1 {
		t.Fatalf("aggregate = below:%d at:%d above:%d, want 2/0/1", analysis.SkillsBelow, analysis.SkillsAt, analysis.SkillsAbove)
	}

	order := []string{analysis.Gaps[0].SkillName, analysis.Gaps[1].SkillName, analysis.Gaps[2].SkillName}
	if order[0] != "Python" || order[1] != "Git" || order[2] != "SQL" {
		t.Fatalf("display order %v, want [Python Git SQL]", order)
	}
}

func TestSortForDisplayLaw(t *testing.T) {
	gaps := []SkillGap{
		gapFor(t, "s1", "A", RatingExpert, RatingBeginner),
		gapFor(t, "s2", "B", RatingNone, RatingExpert),
		gapFor(t, "s3", "C", RatingAdvanced, RatingAdvanced),
		gapFor(t, "s4", "D", RatingIntermediate, RatingAdvanced),
		gapFor(t, "s5", "E", RatingBeginner, RatingIntermediate),
	}
	sorted := SortForDisplay(gaps)

	seenNonNegative := false
	lastNegative := math.MinInt
	for _, gap := range sorted {
		if gap.Gap >= 0 {
			seenNonNegative = true
			continue
		}
		if seenNonNegative {
			t.Fatalf("negative gap %s after non-negative entries", gap.SkillName)
		}
		if gap.Gap < lastNegative {
			t.Fatalf("negative gaps not ascending at %s", gap.SkillName)
		}
		lastNegative = gap.Gap
	}

	// Input order untouched.
	if gaps[0].SkillName != "A" || gaps[4].SkillName != "E" {
		t.Fatal("SortForDisplay must not mutate its input")
	}
}

func TestCoverageThresholds(t *testing.T) {
	cases := []struct {
		covered, total int
		color          string
		percent        int
	}{
		{8, 10, "green", 80},
		{79, 100, "yellow", 79},
		{6, 10, "yellow", 60},
		{59, 100, "orange", 59},
		{4, 10, "orange", 40},
		{39, 100, "red", 39},
		{0, 10, "red", 0},
		{0, 0, "red", 0},
	}
	for _, tc := range cases {
		cov := CoverageOf(tc.covered, tc.total)
		if cov.Color != tc.color {
			t.Fatalf("coverage %d/%d: color %s, want %s", tc.covered, tc.total, cov.Color, tc.color)
		}
		if cov.Percent != tc.percent {
			t.Fatalf("coverage %d/%d: percent %d, want %d", tc.covered, tc.total, cov.Percent, tc.percent)
		}
	}
}

func TestCoverageKeepsFraction(t *testing.T) {
	// 799/1000 rounds to 80 for display but must stay yellow.
	cov := CoverageOf(799, 1000)
	if cov.Percent != 80 {
		t.Fatalf("display percent %d, want 80", cov.Percent)
	}
	if cov.Color != "yellow" {
		t.Fatalf("threshold must use the exact fraction, got %s", cov.Color)
	}
}

func TestReadinessScore(t *testing.T) {
	gaps := []SkillGap{
		gapFor(t, "s1", "Python", RatingIntermediate, RatingAdvanced),
		gapFor(t, "s2", "SQL", RatingExpert, RatingIntermediate),
		gapFor(t, "s3", "Git", RatingNone, RatingBeginner),
	}
	if got := ReadinessScore(gaps); got != 33 {
		t.Fatalf("readiness = %d, want 33", got)
	}
	if got := ReadinessScore(nil); got != 100 {
		t.Fatalf("empty requirement set readiness = %d, want 100", got)
	}
}

func TestAggregateByCategory(t *testing.T) {
	gaps := []SkillGap{
		{SkillID: "s1", Category: "Engineering", Gap: -1, Status: GapBelow},
		{SkillID: "s2", Category: "Engineering", Gap: 0, Status: GapAt},
		{SkillID: "s3", Category: "Data", Gap: 1, Status: GapAbove},
	}
	summaries := AggregateByCategory(gaps)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(summaries))
	}
	if summaries[0].Category != "Data" || summaries[1].Category != "Engineering" {
		t.Fatalf("categories not sorted: %v, %v", summaries[0].Category, summaries[1].Category)
	}
	eng := summaries[1]
	if eng.Below != 1 || eng.At != 1 || eng.Coverage.Percent != 50 {
		t.Fatalf("engineering summary wrong: %+v", eng)
	}
}
