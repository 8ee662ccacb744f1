package admission_test

import (
	"testing"

	"github.com/ttifoundation/admission-backend/internal/admission"
)

func TestParseStatus_ValidValues(t *testing.T) {
	valid := []string{
		"SUBMITTED", "HEAD_ACCEPTED", "HEAD_REJECTED",
		"INTERVIEW_SCHEDULED", "SELECTED", "REJECTED",
	}
	for _, s := range valid {
		got, err := admission.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValue(t *testing.T) {
	for _, s := range []string{"UNKNOWN", "", "submitted", "DELETED"} {
		if _, err := admission.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminals := []admission.Status{
		admission.StatusHeadRejected,
		admission.StatusSelected,
		admission.StatusRejected,
	}
	for _, s := range terminals {
		if !admission.IsTerminal(s) {
			t.Errorf("IsTerminal(%s) should be true", s)
		}
	}
	for _, s := range []admission.Status{
		admission.StatusSubmitted,
		admission.StatusHeadAccepted,
		admission.StatusInterviewScheduled,
	} {
		if admission.IsTerminal(s) {
			t.Errorf("IsTerminal(%s) should be false", s)
		}
	}
}

func TestCanFollow_ForwardEdges(t *testing.T) {
	cases := []struct {
		from admission.Status
		to   admission.Status
	}{
		{admission.StatusSubmitted, admission.StatusHeadAccepted},
		{admission.StatusSubmitted, admission.StatusHeadRejected},
		{admission.StatusHeadAccepted, admission.StatusInterviewScheduled},
		{admission.StatusHeadAccepted, admission.StatusHeadRejected},
		{admission.StatusInterviewScheduled, admission.StatusSelected},
		{admission.StatusInterviewScheduled, admission.StatusRejected},
	}
	for _, c := range cases {
		if !admission.CanFollow(c.from, c.to) {
			t.Errorf("CanFollow(%s → %s) should be true", c.from, c.to)
		}
	}
}

func TestCanFollow_NoBackwardsOrSkips(t *testing.T) {
	cases := []struct {
		from admission.Status
		to   admission.Status
	}{
		{admission.StatusHeadAccepted, admission.StatusSubmitted},
		{admission.StatusInterviewScheduled, admission.StatusHeadAccepted},
		{admission.StatusSubmitted, admission.StatusInterviewScheduled},
		{admission.StatusSubmitted, admission.StatusSelected},
		{admission.StatusHeadAccepted, admission.StatusSelected},
	}
	for _, c := range cases {
		if admission.CanFollow(c.from, c.to) {
			t.Errorf("CanFollow(%s → %s) should be false", c.from, c.to)
		}
	}
}

func TestCanFollow_FromTerminal(t *testing.T) {
	all := []admission.Status{
		admission.StatusSubmitted, admission.StatusHeadAccepted,
		admission.StatusHeadRejected, admission.StatusInterviewScheduled,
		admission.StatusSelected, admission.StatusRejected,
	}
	for _, from := range []admission.Status{
		admission.StatusHeadRejected, admission.StatusSelected, admission.StatusRejected,
	} {
		for _, to := range all {
			if admission.CanFollow(from, to) {
				t.Errorf("CanFollow(%s → %s) should be false (terminal)", from, to)
			}
		}
	}
}
