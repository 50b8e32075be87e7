package levelmove

import (
	"errors"
	"testing"
	"time"

	"skillboard/internal/domain/auth"
)

func newRequest() *Request {
	return &Request{
		ID:            "req-1",
		EmployeeID:    "emp-1",
		CurrentBandID: "band-mid",
		TargetBandID:  "band-senior",
		Status:        StatusPending,
	}
}

func TestFullApprovalChain(t *testing.T) {
	req := newRequest()
	now := time.Now()

	steps := []struct {
		role string
		want Status
	}{
		{auth.RoleManager, StatusManagerApproved},
		{auth.RoleCapabilityPartner, StatusCPApproved},
		{auth.RoleHR, StatusHRApproved},
	}
	for i, step := range steps {
		if err := Approve(req, "actor", step.role, "", now); err != nil {
			t.Fatalf("step %d (%s): %v", i, step.role, err)
		}
		if req.Status != step.want {
			t.Fatalf("step %d: status = %s, want %s", i, req.Status, step.want)
		}
		if len(req.Approvals) != i+1 {
			t.Fatalf("step %d: history length = %d, want %d", i, len(req.Approvals), i+1)
		}
	}
	if req.DecidedAt == nil {
		t.Fatal("final approval should set decidedAt")
	}
}

func TestApproveWrongRole(t *testing.T) {
	cases := []struct {
		status Status
		role   string
	}{
		{StatusPending, auth.RoleCapabilityPartner},
		{StatusPending, auth.RoleHR},
		{StatusPending, auth.RoleEmployee},
		{StatusManagerApproved, auth.RoleManager},
		{StatusManagerApproved, auth.RoleHR},
		{StatusCPApproved, auth.RoleManager},
		{StatusCPApproved, auth.RoleCapabilityPartner},
	}
	for _, tc := range cases {
		req := newRequest()
		req.Status = tc.status
		if err := Approve(req, "actor", tc.role, "", time.Now()); !errors.Is(err, ErrWrongApprover) {
			t.Fatalf("status %s role %s: err = %v, want ErrWrongApprover", tc.status, tc.role, err)
		}
		if req.Status != tc.status || len(req.Approvals) != 0 {
			t.Fatalf("status %s role %s: request mutated on rejected transition", tc.status, tc.role)
		}
	}
}

func TestTerminalRequestsRefuseDecisions(t *testing.T) {
	for _, status := range []Status{StatusHRApproved, StatusRejected} {
		req := newRequest()
		req.Status = status
		if err := Approve(req, "actor", auth.RoleHR, "", time.Now()); !errors.Is(err, ErrTerminalState) {
			t.Fatalf("approve on %s: err = %v, want ErrTerminalState", status, err)
		}
		if err := Reject(req, "actor", auth.RoleHR, "no", time.Now()); !errors.Is(err, ErrTerminalState) {
			t.Fatalf("reject on %s: err = %v, want ErrTerminalState", status, err)
		}
	}
}

func TestRejectFromEachStage(t *testing.T) {
	cases := []struct {
		status Status
		role   string
	}{
		{StatusPending, auth.RoleManager},
		{StatusManagerApproved, auth.RoleCapabilityPartner},
		{StatusCPApproved, auth.RoleHR},
	}
	for _, tc := range cases {
		req := newRequest()
		req.Status = tc.status
		if err := Reject(req, "actor", tc.role, "gaps remain", time.Now()); err != nil {
			t.Fatalf("reject from %s: %v", tc.status, err)
		}
		if req.Status != StatusRejected {
			t.Fatalf("reject from %s: status = %s", tc.status, req.Status)
		}
		if req.DecidedAt == nil {
			t.Fatalf("reject from %s: decidedAt not set", tc.status)
		}
		last := req.Approvals[len(req.Approvals)-1]
		if last.Decision != DecisionRejected || last.Comments != "gaps remain" {
			t.Fatalf("reject from %s: bad approval record %+v", tc.status, last)
		}
	}
}

func TestRejectRequiresComments(t *testing.T) {
	req := newRequest()
	if err := Reject(req, "actor", auth.RoleManager, "", time.Now()); !errors.Is(err, ErrCommentsRequired) {
		t.Fatalf("err = %v, want ErrCommentsRequired", err)
	}
	if req.Status != StatusPending {
		t.Fatal("request mutated on invalid rejection")
	}
}

func TestCPRejectionAfterManagerApproval(t *testing.T) {
	req := newRequest()
	now := time.Now()
	if err := Approve(req, "mgr", auth.RoleManager, "strong case", now); err != nil {
		t.Fatalf("manager approve: %v", err)
	}
	if err := Reject(req, "cp", auth.RoleCapabilityPartner, "needs another cycle", now); err != nil {
		t.Fatalf("cp reject: %v", err)
	}
	if req.Status != StatusRejected {
		t.Fatalf("status = %s, want rejected", req.Status)
	}
	if len(req.Approvals) != 2 {
		t.Fatalf("history length = %d, want 2", len(req.Approvals))
	}
	if req.Approvals[0].Decision != DecisionApproved || req.Approvals[1].Decision != DecisionRejected {
		t.Fatalf("history decisions wrong: %+v", req.Approvals)
	}
}

func TestApproverRole(t *testing.T) {
	cases := map[Status]string{
		StatusPending:         auth.RoleManager,
		StatusManagerApproved: auth.RoleCapabilityPartner,
		StatusCPApproved:      auth.RoleHR,
	}
	for status, want := range cases {
		role, err := ApproverRole(status)
		if err != nil || role != want {
			t.Fatalf("ApproverRole(%s) = %s, %v; want %s", status, role, err, want)
		}
	}
	if _, err := ApproverRole(StatusRejected); !errors.Is(err, ErrTerminalState) {
		t.Fatalf("terminal status should have no approver, got %v", err)
	}
}
