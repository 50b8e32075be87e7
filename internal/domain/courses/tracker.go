package courses

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound           = errors.New("assignment not found")
	ErrAlreadyAssigned    = errors.New("course already assigned to employee")
	ErrBackwardTransition = errors.New("assignment status cannot move backwards")
	ErrDirectCompletion   = errors.New("assignment must be started before completion")
)

var statusOrder = map[Status]int{
	StatusNotStarted: 0,
	StatusInProgress: 1,
	StatusCompleted:  2,
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := statusOrder[s]; !ok {
		return "", fmt.Errorf("unknown assignment status %q", raw)
	}
	return s, nil
}

// Transition moves an assignment forward through its lifecycle. Repeating
// the current status is a no-op, moving backwards is an error, and skipping
// straight to completed needs the direct-complete switch.
func Transition(a *Assignment, next Status, certificateURL string, now time.Time, allowDirectComplete bool) error {
	cur, ok := statusOrder[a.Status]
	if !ok {
		cur = 0
	}
	target, ok := statusOrder[next]
	if !ok {
		return fmt.Errorf("unknown assignment status %q", next)
	}

	if target < cur {
		return ErrBackwardTransition
	}
	if target == cur {
		return nil
	}
	if a.Status == StatusNotStarted && next == StatusCompleted && !allowDirectComplete {
		return ErrDirectCompletion
	}

	if next == StatusCompleted && a.StartedAt == nil && allowDirectComplete {
		started := now
		a.StartedAt = &started
	}
	if next == StatusInProgress && a.StartedAt == nil {
		started := now
		a.StartedAt = &started
	}
	if next == StatusCompleted {
		completed := now
		a.CompletedAt = &completed
		if certificateURL != "" {
			a.CertificateURL = certificateURL
		}
	}
	a.Status = next
	return nil
}

// IsOverdue reports whether the due date has passed without completion.
// Completed assignments are never overdue, whenever they finished.
func IsOverdue(a Assignment, now time.Time) bool {
	if a.Status == StatusCompleted || a.DueDate == nil {
		return false
	}
	return now.After(*a.DueDate)
}
