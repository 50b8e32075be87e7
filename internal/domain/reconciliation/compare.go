package reconciliation

import (
	"sort"
	"strings"
	"time"
)

type recordKey struct {
	email string
	code  string
}

// statusAliases folds the vendor's vocabulary onto ours before comparison.
var statusAliases = map[string]string{
	"assigned":  "not_started",
	"enrolled":  "in_progress",
	"started":   "in_progress",
	"done":      "completed",
	"finished":  "completed",
	"complete":  "completed",
}

func NormalizeStatus(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if mapped, ok := statusAliases[s]; ok {
		return mapped
	}
	return s
}

func keyOf(email, code string) recordKey {
	return recordKey{
		email: strings.ToLower(strings.TrimSpace(email)),
		code:  strings.ToUpper(strings.TrimSpace(code)),
	}
}

// Compare matches the internal assignment book against the HRMS export.
// A record present only in HRMS is "missing" on our side, one present only
// internally is "extra", and a shared record with differing statuses is an
// allocation mismatch.
func Compare(internal []InternalRecord, external []HRMSRecord, now time.Time) Report {
	report := Report{
		GeneratedAt:   now,
		InternalCount: len(internal),
		HRMSCount:     len(external),
	}

	internalByKey := make(map[recordKey]InternalRecord, len(internal))
	for _, rec := range internal {
		internalByKey[keyOf(rec.EmployeeEmail, rec.CourseCode)] = rec
	}
	externalByKey := make(map[recordKey]HRMSRecord, len(external))
	for _, rec := range external {
		externalByKey[keyOf(rec.EmployeeEmail, rec.CourseCode)] = rec
	}

	overlap := 0
	for key, ext := range externalByKey {
		in, ok := internalByKey[key]
		if !ok {
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				Type:          DiscrepancyMissing,
				EmployeeEmail: ext.EmployeeEmail,
				CourseCode:    ext.CourseCode,
				CourseTitle:   ext.CourseTitle,
				HRMSStatus:    NormalizeStatus(ext.Status),
			})
			continue
		}
		overlap++
		internalStatus := NormalizeStatus(in.Status)
		externalStatus := NormalizeStatus(ext.Status)
		if internalStatus != externalStatus {
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				Type:           DiscrepancyAllocationMismatch,
				EmployeeEmail:  in.EmployeeEmail,
				CourseCode:     in.CourseCode,
				CourseTitle:    in.CourseTitle,
				InternalStatus: internalStatus,
				HRMSStatus:     externalStatus,
			})
		} else {
			report.MatchedCount++
		}
	}
	for key, in := range internalByKey {
		if _, ok := externalByKey[key]; !ok {
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				Type:           DiscrepancyExtra,
				EmployeeEmail:  in.EmployeeEmail,
				CourseCode:     in.CourseCode,
				CourseTitle:    in.CourseTitle,
				InternalStatus: NormalizeStatus(in.Status),
			})
		}
	}

	sort.SliceStable(report.Discrepancies, func(i, j int) bool {
		a, b := report.Discrepancies[i], report.Discrepancies[j]
		if a.EmployeeEmail != b.EmployeeEmail {
			return a.EmployeeEmail < b.EmployeeEmail
		}
		if a.CourseCode != b.CourseCode {
			return a.CourseCode < b.CourseCode
		}
		return a.Type < b.Type
	})

	switch {
	case len(report.Discrepancies) == 0:
		report.Status = ReportMatch
	case overlap == 0:
		report.Status = ReportMismatch
	default:
		report.Status = ReportPartial
	}
	return report
}
