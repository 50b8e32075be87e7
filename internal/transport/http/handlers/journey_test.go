package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"skillboard/internal/app/server"
)

// Exercises the full ladder: catalog and band setup, skill assessment,
// gap review, then a movement request walked through all three
// approval stages until the employee lands on the target band.
func TestAssessmentAndMovementJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	suffix := uniqueSuffix()
	rankBase := uniqueRank()
	currentBandID := createBand(t, client, ts.URL, adminToken, "Journey Band A "+suffix, rankBase)
	targetBandID := createBand(t, client, ts.URL, adminToken, "Journey Band B "+suffix, rankBase+1)

	commSkillID := createSkill(t, client, ts.URL, adminToken, "Journey Communication "+suffix, "Core")
	deliverySkillID := createSkill(t, client, ts.URL, adminToken, "Journey Delivery "+suffix, "Delivery")

	putJSON(t, client, ts.URL+"/api/v1/bands/"+targetBandID+"/requirements", adminToken, []map[string]any{
		{"skillId": commSkillID, "requiredRating": "advanced"},
		{"skillId": deliverySkillID, "requiredRating": "intermediate"},
	})

	managerPassword := "Manager123!"
	managerEmail := fmt.Sprintf("journey-manager-%s@example.com", suffix)
	managerID := createAccount(t, client, ts.URL, adminToken, managerEmail, "manager", managerPassword, "", currentBandID)

	cpPassword := "Partner123!"
	cpEmail := fmt.Sprintf("journey-cp-%s@example.com", suffix)
	createAccount(t, client, ts.URL, adminToken, cpEmail, "capability_partner", cpPassword, "", "")

	employeePassword := "Employee123!"
	employeeEmail := fmt.Sprintf("journey-employee-%s@example.com", suffix)
	employeeID := createAccount(t, client, ts.URL, adminToken, employeeEmail, "employee", employeePassword, managerID, currentBandID)

	putJSON(t, client, ts.URL+"/api/v1/employees/"+employeeID+"/skills/"+commSkillID, adminToken, map[string]any{"rating": "advanced"})
	putJSON(t, client, ts.URL+"/api/v1/employees/"+employeeID+"/skills/"+deliverySkillID, adminToken, map[string]any{"rating": "intermediate"})

	gaps := envelopeDataSlice(t, getJSON(t, client, ts.URL+"/api/v1/employees/"+employeeID+"/gaps/"+targetBandID, adminToken))
	if len(gaps) != 2 {
		t.Fatalf("expected 2 gap rows, got %d", len(gaps))
	}
	for _, gap := range gaps {
		if status, _ := gap["status"].(string); status != "at" {
			t.Fatalf("expected every assessed skill to be at requirement, got %+v", gap)
		}
	}

	employeeToken := login(t, client, ts.URL, employeeEmail, employeePassword)
	submitEnv := postJSON(t, client, ts.URL+"/api/v1/movements", employeeToken, map[string]any{
		"targetBandId":  targetBandID,
		"justification": "Meets every requirement for the next band.",
	})
	request := envelopeDataMap(t, submitEnv)
	requestID, _ := request["id"].(string)
	if requestID == "" {
		t.Fatal("expected movement request id")
	}
	if status, _ := request["status"].(string); status != "pending" {
		t.Fatalf("expected pending request, got %v", request["status"])
	}
	if score, _ := request["readinessScore"].(float64); score != 100 {
		t.Fatalf("expected readiness score 100, got %v", request["readinessScore"])
	}

	managerToken := login(t, client, ts.URL, managerEmail, managerPassword)
	afterManager := envelopeDataMap(t, postJSON(t, client, ts.URL+"/api/v1/movements/"+requestID+"/approve", managerToken, map[string]any{"comments": "Ready."}))
	if status, _ := afterManager["status"].(string); status != "manager_approved" {
		t.Fatalf("expected manager_approved, got %v", afterManager["status"])
	}

	cpToken := login(t, client, ts.URL, cpEmail, cpPassword)
	afterCP := envelopeDataMap(t, postJSON(t, client, ts.URL+"/api/v1/movements/"+requestID+"/approve", cpToken, map[string]any{"comments": "Capability fit confirmed."}))
	if status, _ := afterCP["status"].(string); status != "cp_approved" {
		t.Fatalf("expected cp_approved, got %v", afterCP["status"])
	}

	final := envelopeDataMap(t, postJSON(t, client, ts.URL+"/api/v1/movements/"+requestID+"/approve", adminToken, map[string]any{"comments": "Approved."}))
	if status, _ := final["status"].(string); status != "hr_approved" {
		t.Fatalf("expected hr_approved, got %v", final["status"])
	}
	approvals, _ := final["approvals"].([]any)
	if len(approvals) != 3 {
		t.Fatalf("expected 3 approvals on the decided request, got %d", len(approvals))
	}

	moved := envelopeDataMap(t, getJSON(t, client, ts.URL+"/api/v1/employees/"+employeeID, adminToken))
	if bandID, _ := moved["bandId"].(string); bandID != targetBandID {
		t.Fatalf("expected employee band %s after approval, got %v", targetBandID, moved["bandId"])
	}
}

func TestManagerCannotViewOtherTeamSkills(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	suffix := uniqueSuffix()
	managerPassword := "Manager123!"
	managerEmail := fmt.Sprintf("scope-manager-%s@example.com", suffix)
	createAccount(t, client, ts.URL, adminToken, managerEmail, "manager", managerPassword, "", "")

	otherEmail := fmt.Sprintf("scope-other-%s@example.com", suffix)
	otherID := createAccount(t, client, ts.URL, adminToken, otherEmail, "employee", "Employee123!", "", "")

	managerToken := login(t, client, ts.URL, managerEmail, managerPassword)
	getJSONStatus(t, client, ts.URL+"/api/v1/employees/"+otherID+"/skills", managerToken, http.StatusForbidden)
	getJSONStatus(t, client, ts.URL+"/api/v1/employees/"+otherID, managerToken, http.StatusForbidden)
}
