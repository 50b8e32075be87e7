package skills

import (
	"math"
	"sort"
)

// Aggregate rolls a list of skill gaps up into a band analysis. Unassessed
// skills are excluded from the average, not counted as zero. The returned
// gap list is sorted for display: most urgent gaps first.
func Aggregate(gaps []SkillGap) BandAnalysis {
	analysis := BandAnalysis{TotalSkills: len(gaps)}

	ratedSum := 0
	ratedCount := 0
	for _, gap := range gaps {
		switch gap.Status {
		case GapBelow:
			analysis.SkillsBelow++
		case GapAbove:
			analysis.SkillsAbove++
		default:
			analysis.SkillsAt++
		}
		if gap.CurrentRating.Known() {
			ratedSum += gap.CurrentRating.Numeric()
			ratedCount++
		}
	}
	if ratedCount > 0 {
		analysis.AverageRating = float64(ratedSum) / float64(ratedCount)
	}

	analysis.Gaps = SortForDisplay(gaps)
	return analysis
}

// SortForDisplay returns a copy ordered with negative gaps first, ascending
// by gap value. Ties and all non-negative gaps keep their original relative
// order; the stable sort is what keeps equal-gap skills in input order.
func SortForDisplay(gaps []SkillGap) []SkillGap {
	sorted := make([]SkillGap, len(gaps))
	copy(sorted, gaps)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if (a.Gap < 0) != (b.Gap < 0) {
			return a.Gap < 0
		}
		if a.Gap < 0 && b.Gap < 0 {
			return a.Gap < b.Gap
		}
		return false
	})
	return sorted
}

// CoverageOf keeps the exact fraction for threshold checks and rounds only
// the displayed percent.
func CoverageOf(covered, total int) Coverage {
	cov := Coverage{Covered: covered, Total: total}
	if total > 0 {
		cov.Fraction = float64(covered) / float64(total)
	}
	cov.Percent = int(math.Round(cov.Fraction * 100))
	cov.Color = CoverageColor(cov.Fraction)
	return cov
}

// CoverageColor applies the display thresholds with inclusive lower bounds.
func CoverageColor(fraction float64) string {
	pct := fraction * 100
	switch {
	case pct >= 80:
		return "green"
	case pct >= 60:
		return "yellow"
	case pct >= 40:
		return "orange"
	default:
		return "red"
	}
}

// AggregateByCategory groups gaps per capability category. Categories are
// returned in alphabetical order.
func AggregateByCategory(gaps []SkillGap) []CategorySummary {
	byCategory := map[string]*CategorySummary{}
	for _, gap := range gaps {
		summary, ok := byCategory[gap.Category]
		if !ok {
			summary = &CategorySummary{Category: gap.Category}
			byCategory[gap.Category] = summary
		}
		switch gap.Status {
		case GapBelow:
			summary.Below++
		case GapAbove:
			summary.Above++
		default:
			summary.At++
		}
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	out := make([]CategorySummary, 0, len(categories))
	for _, category := range categories {
		summary := byCategory[category]
		covered := summary.At + summary.Above
		summary.Coverage = CoverageOf(covered, summary.Below+summary.At+summary.Above)
		out = append(out, *summary)
	}
	return out
}

// ReadinessScore is the percentage of requirements currently met or
// exceeded, rounded to the nearest integer. An empty requirement set counts
// as fully ready.
func ReadinessScore(gaps []SkillGap) int {
	if len(gaps) == 0 {
		return 100
	}
	met := 0
	for _, gap := range gaps {
		if gap.Gap >= 0 {
			met++
		}
	}
	return int(math.Round(float64(met) / float64(len(gaps)) * 100))
}
