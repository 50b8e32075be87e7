package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"skillboard/internal/app/server"
)

func TestHighRiskEndpointsReturnValidationErrors(t *testing.T) {
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

	employeeResp := postJSONStatus(t, client, ts.URL+"/api/v1/employees", adminToken, map[string]any{
		"firstName": "Missing",
	}, http.StatusBadRequest)
	assertValidationErrorField(t, employeeResp, "lastName")
	assertValidationErrorField(t, employeeResp, "email")

	bandResp := postJSONStatus(t, client, ts.URL+"/api/v1/bands", adminToken, map[string]any{
		"name": "Broken Band",
		"rank": 0,
	}, http.StatusBadRequest)
	assertValidationErrorField(t, bandResp, "rank")

	skillResp := postJSONStatus(t, client, ts.URL+"/api/v1/skills", adminToken, map[string]any{
		"name": "",
	}, http.StatusBadRequest)
	assertValidationErrorField(t, skillResp, "name")
	assertValidationErrorField(t, skillResp, "category")

	courseResp := postJSONStatus(t, client, ts.URL+"/api/v1/courses", adminToken, map[string]any{
		"provider": "Internal Academy",
	}, http.StatusBadRequest)
	assertValidationErrorField(t, courseResp, "code")
	assertValidationErrorField(t, courseResp, "title")

	assignResp := postJSONStatus(t, client, ts.URL+"/api/v1/assignments", adminToken, map[string]any{}, http.StatusBadRequest)
	assertValidationErrorField(t, assignResp, "employeeId")
	assertValidationErrorField(t, assignResp, "courseId")
}

func assertValidationErrorField(t *testing.T, env envelope, field string) {
	t.Helper()
	if code := envelopeErrorCode(env); code != "validation_error" {
		t.Fatalf("expected validation_error, got %+v", env.Error)
	}
	errMap, ok := env.Error.(map[string]any)
	if !ok {
		t.Fatalf("expected error object, got %T", env.Error)
	}
	details, ok := errMap["details"].(map[string]any)
	if !ok {
		t.Fatalf("expected details object, got %+v", errMap["details"])
	}
	fieldsRaw, ok := details["fields"].([]any)
	if !ok {
		t.Fatalf("expected details.fields array, got %+v", details["fields"])
	}
	for _, item := range fieldsRaw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if value, _ := entry["field"].(string); value == field {
			return
		}
	}
	t.Fatalf("expected validation field %q in %+v", field, fieldsRaw)
}
