package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"skillboard/internal/app/server"
	"skillboard/internal/domain/levelmove"
)

func TestMovementApprovalOrderAndRejection(t *testing.T) {
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
	currentBandID := createBand(t, client, ts.URL, adminToken, "Workflow Band A "+suffix, rankBase)
	targetBandID := createBand(t, client, ts.URL, adminToken, "Workflow Band B "+suffix, rankBase+1)

	managerPassword := "Manager123!"
	managerEmail := fmt.Sprintf("workflow-manager-%s@example.com", suffix)
	managerID := createAccount(t, client, ts.URL, adminToken, managerEmail, "manager", managerPassword, "", currentBandID)

	employeePassword := "Employee123!"
	employeeEmail := fmt.Sprintf("workflow-employee-%s@example.com", suffix)
	createAccount(t, client, ts.URL, adminToken, employeeEmail, "employee", employeePassword, managerID, currentBandID)

	employeeToken := login(t, client, ts.URL, employeeEmail, employeePassword)
	submitted := envelopeDataMap(t, postJSON(t, client, ts.URL+"/api/v1/movements", employeeToken, map[string]any{
		"targetBandId":  targetBandID,
		"justification": "Time for the next band.",
	}))
	requestID, _ := submitted["id"].(string)
	if requestID == "" {
		t.Fatal("expected movement request id")
	}

	// Only one open request per employee.
	dupEnv := postJSONStatus(t, client, ts.URL+"/api/v1/movements", employeeToken, map[string]any{
		"targetBandId": targetBandID,
	}, http.StatusConflict)
	if code := envelopeErrorCode(dupEnv); code != "movement_already_open" {
		t.Fatalf("expected movement_already_open, got %q", code)
	}

	// HR cannot jump the queue while the request awaits the manager.
	skipEnv := postJSONStatus(t, client, ts.URL+"/api/v1/movements/"+requestID+"/approve", adminToken, map[string]any{}, http.StatusForbidden)
	if code := envelopeErrorCode(skipEnv); code != "wrong_approver" {
		t.Fatalf("expected wrong_approver, got %q", code)
	}

	managerToken := login(t, client, ts.URL, managerEmail, managerPassword)

	// Rejection always needs a comment.
	noCommentEnv := postJSONStatus(t, client, ts.URL+"/api/v1/movements/"+requestID+"/reject", managerToken, map[string]any{}, http.StatusBadRequest)
	if code := envelopeErrorCode(noCommentEnv); code != "comments_required" {
		t.Fatalf("expected comments_required, got %q", code)
	}

	rejected := envelopeDataMap(t, postJSON(t, client, ts.URL+"/api/v1/movements/"+requestID+"/reject", managerToken, map[string]any{
		"comments": "Not enough delivery evidence yet.",
	}))
	if status, _ := rejected["status"].(string); status != "rejected" {
		t.Fatalf("expected rejected, got %v", rejected["status"])
	}

	// Decided requests are immutable.
	decidedEnv := postJSONStatus(t, client, ts.URL+"/api/v1/movements/"+requestID+"/approve", managerToken, map[string]any{}, http.StatusConflict)
	if code := envelopeErrorCode(decidedEnv); code != "already_decided" {
		t.Fatalf("expected already_decided, got %q", code)
	}

	// A rejection closes the request, so the employee may submit again.
	postJSON(t, client, ts.URL+"/api/v1/movements", employeeToken, map[string]any{
		"targetBandId":  targetBandID,
		"justification": "Addressed the feedback.",
	})
}

func TestMovementSubmitIdempotencyKey(t *testing.T) {
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
	currentBandID := createBand(t, client, ts.URL, adminToken, "Idem Band A "+suffix, rankBase)
	targetBandID := createBand(t, client, ts.URL, adminToken, "Idem Band B "+suffix, rankBase+1)

	employeePassword := "Employee123!"
	employeeEmail := fmt.Sprintf("idem-employee-%s@example.com", suffix)
	createAccount(t, client, ts.URL, adminToken, employeeEmail, "employee", employeePassword, "", currentBandID)
	employeeToken := login(t, client, ts.URL, employeeEmail, employeePassword)

	key := "submit-" + suffix
	headers := map[string]string{"Idempotency-Key": key}
	body := map[string]any{
		"targetBandId":  targetBandID,
		"justification": "Retry-safe submission.",
	}

	first := envelopeDataMap(t, postJSONWithHeaders(t, client, ts.URL+"/api/v1/movements", employeeToken, body, headers, http.StatusCreated))
	firstID, _ := first["id"].(string)
	if firstID == "" {
		t.Fatal("expected movement request id")
	}

	// Same key and payload replays the stored response instead of
	// tripping the open-request guard.
	replay := envelopeDataMap(t, postJSONWithHeaders(t, client, ts.URL+"/api/v1/movements", employeeToken, body, headers, http.StatusOK))
	if replayID, _ := replay["id"].(string); replayID != firstID {
		t.Fatalf("expected replayed request id %s, got %v", firstID, replay["id"])
	}

	// Same key with a different payload is a conflict.
	conflictEnv := postJSONWithHeaders(t, client, ts.URL+"/api/v1/movements", employeeToken, map[string]any{
		"targetBandId":  targetBandID,
		"justification": "Completely different body.",
	}, headers, http.StatusConflict)
	if code := envelopeErrorCode(conflictEnv); code != "idempotency_conflict" {
		t.Fatalf("expected idempotency_conflict, got %q", code)
	}
}

// A decision written against a stale read must not overwrite one that
// already landed. The stale writer is driven through the store directly
// to stand in for the losing side of a race.
func TestStaleDecisionDoesNotOverwrite(t *testing.T) {
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
	currentBandID := createBand(t, client, ts.URL, adminToken, "Stale Band A "+suffix, rankBase)
	targetBandID := createBand(t, client, ts.URL, adminToken, "Stale Band B "+suffix, rankBase+1)

	managerPassword := "Manager123!"
	managerEmail := fmt.Sprintf("stale-manager-%s@example.com", suffix)
	managerID := createAccount(t, client, ts.URL, adminToken, managerEmail, "manager", managerPassword, "", currentBandID)

	employeePassword := "Employee123!"
	employeeEmail := fmt.Sprintf("stale-employee-%s@example.com", suffix)
	createAccount(t, client, ts.URL, adminToken, employeeEmail, "employee", employeePassword, managerID, currentBandID)

	employeeToken := login(t, client, ts.URL, employeeEmail, employeePassword)
	submitted := envelopeDataMap(t, postJSON(t, client, ts.URL+"/api/v1/movements", employeeToken, map[string]any{
		"targetBandId":  targetBandID,
		"justification": "Stale write check.",
	}))
	requestID, _ := submitted["id"].(string)
	if requestID == "" {
		t.Fatal("expected movement request id")
	}

	// The winning decision lands through the API first.
	managerToken := login(t, client, ts.URL, managerEmail, managerPassword)
	rejected := envelopeDataMap(t, postJSON(t, client, ts.URL+"/api/v1/movements/"+requestID+"/reject", managerToken, map[string]any{
		"comments": "Not yet.",
	}))
	if status, _ := rejected["status"].(string); status != "rejected" {
		t.Fatalf("expected rejected, got %v", rejected["status"])
	}

	// The losing side still believes the request is pending.
	tenantID := getTenantID(t, app, cfg.SeedTenantName)
	store := levelmove.NewStore(app.DB)
	now := time.Now().UTC()
	stale := &levelmove.Request{DecidedAt: &now}
	err = store.ApplyDecision(context.Background(), tenantID, requestID, levelmove.StatusPending, levelmove.StatusManagerApproved, stale, levelmove.Approval{
		ActorID:   managerID,
		Role:      "manager",
		Decision:  "approved",
		Timestamp: now,
	})
	if !errors.Is(err, levelmove.ErrTerminalState) {
		t.Fatalf("expected ErrTerminalState, got %v", err)
	}

	got := envelopeDataMap(t, getJSON(t, client, ts.URL+"/api/v1/movements/"+requestID, managerToken))
	if status, _ := got["status"].(string); status != "rejected" {
		t.Fatalf("expected status to stay rejected, got %v", got["status"])
	}
}
