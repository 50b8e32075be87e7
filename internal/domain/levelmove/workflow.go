package levelmove

import (
	"errors"
	"time"

	"skillboard/internal/domain/auth"
)

var (
	ErrNotFound         = errors.New("movement request not found")
	ErrAlreadyOpen      = errors.New("employee already has an open movement request")
	ErrTerminalState    = errors.New("movement request already decided")
	ErrWrongApprover    = errors.New("request is not awaiting this role")
	ErrCommentsRequired = errors.New("rejection requires comments")
)

// nextOnApproval encodes the three-stage chain. A status missing from the
// map is terminal.
var nextOnApproval = map[Status]Status{
	StatusPending:         StatusManagerApproved,
	StatusManagerApproved: StatusCPApproved,
	StatusCPApproved:      StatusHRApproved,
}

// approverFor names the single role allowed to decide a request at each
// stage.
var approverFor = map[Status]string{
	StatusPending:         auth.RoleManager,
	StatusManagerApproved: auth.RoleCapabilityPartner,
	StatusCPApproved:      auth.RoleHR,
}

func IsTerminal(status Status) bool {
	return status == StatusHRApproved || status == StatusRejected
}

// ApproverRole returns the role whose decision the request is waiting on.
func ApproverRole(status Status) (string, error) {
	role, ok := approverFor[status]
	if !ok {
		return "", ErrTerminalState
	}
	return role, nil
}

// Approve advances the request one stage and appends the approval record.
// The request is mutated only when the transition is legal.
func Approve(req *Request, actorID, actorRole, comments string, now time.Time) error {
	next, err := transitionCheck(req, actorRole)
	if err != nil {
		return err
	}
	req.Status = next
	if IsTerminal(next) {
		decided := now
		req.DecidedAt = &decided
	}
	req.Approvals = append(req.Approvals, Approval{
		ActorID:   actorID,
		Role:      actorRole,
		Decision:  DecisionApproved,
		Comments:  comments,
		Timestamp: now,
	})
	return nil
}

// Reject terminates the request from any non-terminal stage. Comments are
// mandatory so the employee learns why.
func Reject(req *Request, actorID, actorRole, comments string, now time.Time) error {
	if comments == "" {
		return ErrCommentsRequired
	}
	if _, err := transitionCheck(req, actorRole); err != nil {
		return err
	}
	req.Status = StatusRejected
	decided := now
	req.DecidedAt = &decided
	req.Approvals = append(req.Approvals, Approval{
		ActorID:   actorID,
		Role:      actorRole,
		Decision:  DecisionRejected,
		Comments:  comments,
		Timestamp: now,
	})
	return nil
}

func transitionCheck(req *Request, actorRole string) (Status, error) {
	if IsTerminal(req.Status) {
		return "", ErrTerminalState
	}
	required, ok := approverFor[req.Status]
	if !ok {
		return "", ErrTerminalState
	}
	if actorRole != required {
		return "", ErrWrongApprover
	}
	return nextOnApproval[req.Status], nil
}
