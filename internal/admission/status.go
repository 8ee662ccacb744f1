// Package admission defines the application workflow statuses.
//
// Canonical status graph:
//
//	SUBMITTED ──► HEAD_ACCEPTED ──► INTERVIEW_SCHEDULED ──► SELECTED
//	    │               │                    │
//	    └───────────────┴──► HEAD_REJECTED   └──► REJECTED
//
// HEAD_REJECTED, SELECTED and REJECTED are terminal. Deletion is not a
// status: the head's delete action removes the record outright.
//
// Transitions are executed as find-and-update operations that do not gate on
// the record's current status, matching the behaviour the dashboards rely
// on (a head can re-decide an already decided record). CanFollow describes
// the canonical graph; callers use it for observability, not enforcement.
package admission

import "fmt"

// Status is the workflow state of an Admission record.
type Status string

const (
	StatusSubmitted          Status = "SUBMITTED"
	StatusHeadAccepted       Status = "HEAD_ACCEPTED"
	StatusHeadRejected       Status = "HEAD_REJECTED"
	StatusInterviewScheduled Status = "INTERVIEW_SCHEDULED"
	StatusSelected           Status = "SELECTED"
	StatusRejected           Status = "REJECTED"
)

var forward = map[Status][]Status{
	StatusSubmitted:          {StatusHeadAccepted, StatusHeadRejected},
	StatusHeadAccepted:       {StatusInterviewScheduled, StatusHeadRejected},
	StatusInterviewScheduled: {StatusSelected, StatusRejected},
}

// ParseStatus converts a raw string to a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusSubmitted, StatusHeadAccepted, StatusHeadRejected,
		StatusInterviewScheduled, StatusSelected, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown admission status %q", s)
}

// IsTerminal reports whether no canonical transition leaves the status.
func IsTerminal(s Status) bool {
	return len(forward[s]) == 0
}

// CanFollow reports whether from → to is an edge of the canonical graph.
func CanFollow(from, to Status) bool {
	for _, next := range forward[from] {
		if next == to {
			return true
		}
	}
	return false
}
