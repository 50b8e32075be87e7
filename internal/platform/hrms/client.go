package hrms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"skillboard/internal/domain/reconciliation"
	"skillboard/internal/platform/config"
)

// Client talks to the external HR system's assignment export endpoint.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(cfg config.Config) *Client {
	return &Client{
		baseURL: cfg.HRMSBaseURL,
		token:   cfg.HRMSAPIToken,
		http:    &http.Client{Timeout: cfg.HRMSTimeout},
	}
}

func (c *Client) Configured() bool {
	return c.baseURL != ""
}

type assignmentPayload struct {
	Assignments []struct {
		EmployeeEmail string `json:"employeeEmail"`
		CourseCode    string `json:"courseCode"`
		CourseTitle   string `json:"courseTitle"`
		Status        string `json:"status"`
	} `json:"assignments"`
}

func (c *Client) FetchAssignments(ctx context.Context, tenantID string) ([]reconciliation.HRMSRecord, error) {
	endpoint := fmt.Sprintf("%s/v1/assignments?tenant=%s", c.baseURL, url.QueryEscape(tenantID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hrms fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hrms fetch: unexpected status %d", resp.StatusCode)
	}

	var payload assignmentPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("hrms fetch: decode: %w", err)
	}

	records := make([]reconciliation.HRMSRecord, 0, len(payload.Assignments))
	for _, a := range payload.Assignments {
		records = append(records, reconciliation.HRMSRecord{
			EmployeeEmail: a.EmployeeEmail,
			CourseCode:    a.CourseCode,
			CourseTitle:   a.CourseTitle,
			Status:        a.Status,
		})
	}
	return records, nil
}
