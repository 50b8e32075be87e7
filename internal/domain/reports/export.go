package reports

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"skillboard/internal/domain/skills"
)

// WriteBandAnalysisPDF renders a band gap analysis as a one-page summary.
func WriteBandAnalysisPDF(w io.Writer, analysis skills.BandAnalysis) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Band Analysis: %s", analysis.BandName))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Skills: %d   Below: %d   At: %d   Above: %d", analysis.TotalSkills, analysis.SkillsBelow, analysis.SkillsAt, analysis.SkillsAbove))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Average rating: %.2f", analysis.AverageRating))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 9)
	headers := []string{"Skill", "Current", "Required", "Gap", "Status"}
	widths := []float64{70, 30, 30, 20, 30}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, gap := range analysis.Gaps {
		current := string(gap.CurrentRating)
		if current == "" {
			current = "not assessed"
		}
		pdf.CellFormat(widths[0], 6, gap.SkillName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, current, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, string(gap.RequiredRating), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%+d", gap.Gap), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, string(gap.Status), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}
