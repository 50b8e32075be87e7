package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"skillboard/internal/app/server"
)

// Without an HRMS endpoint configured, a sync request is refused with a
// distinct error instead of failing deep inside the service.
func TestSyncRefusedWhenHRMSNotConfigured(t *testing.T) {
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

	env := postJSONStatus(t, client, ts.URL+"/api/v1/reconciliation/sync", adminToken, nil, http.StatusConflict)
	if code := envelopeErrorCode(env); code != "hrms_not_configured" {
		t.Fatalf("expected hrms_not_configured, got %q", code)
	}
}
