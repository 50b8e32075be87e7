package reconciliation

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WriteCSV renders the report as a flat discrepancy list.
func WriteCSV(w io.Writer, report *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"type", "employee_email", "course_code", "course_title", "internal_status", "hrms_status"}); err != nil {
		return err
	}
	for _, d := range report.Discrepancies {
		if err := cw.Write([]string{d.Type, d.EmployeeEmail, d.CourseCode, d.CourseTitle, d.InternalStatus, d.HRMSStatus}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePDF renders the report as a printable summary page plus the
// discrepancy table.
func WritePDF(w io.Writer, report *Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "HRMS Reconciliation Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", report.GeneratedAt.Format("2006-01-02 15:04 MST")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", report.Status))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Internal records: %d   HRMS records: %d   Matched: %d", report.InternalCount, report.HRMSCount, report.MatchedCount))
	pdf.Ln(10)

	if len(report.Discrepancies) == 0 {
		pdf.Cell(0, 6, "No discrepancies found.")
		return pdf.Output(w)
	}

	pdf.SetFont("Helvetica", "B", 9)
	headers := []string{"Type", "Employee", "Course", "Internal", "HRMS"}
	widths := []float64{35, 55, 40, 30, 30}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, d := range report.Discrepancies {
		pdf.CellFormat(widths[0], 6, d.Type, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, d.EmployeeEmail, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, d.CourseCode, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, d.InternalStatus, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, d.HRMSStatus, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}
