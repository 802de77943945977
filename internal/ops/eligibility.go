package ops

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/alnah/go-hhapply/internal/hh"
)

// SkipReason says why a negotiation is not replied to. Empty means eligible.
type SkipReason string

// Skip reasons, in the order ShouldReply checks them.
const (
	SkipOtherResume   SkipReason = "other resume"
	SkipDiscarded     SkipReason = "discarded"
	SkipNotInterview  SkipReason = "not an interview"
	SkipNotInvitation SkipReason = "not an invitation"
	SkipNoVacancy     SkipReason = "vacancy removed"
	SkipNoEmployer    SkipReason = "no employer"
	SkipBlacklisted   SkipReason = "employer blacklisted"
)

// ReplyFilter narrows which negotiations are replied to.
type ReplyFilter struct {
	ResumeID        string
	OnlyInvitations bool
	OnlyInterviews  bool
	// Blacklisted holds employer ids never replied to. Nil means none.
	Blacklisted mapset.Set[string]
}

// ShouldReply runs the eligibility chain: resume match, not discarded,
// the invitation/interview filter, vacancy present, employer present,
// employer not blacklisted. The first failing check wins. Later checks
// read fields only guaranteed by earlier ones.
func ShouldReply(n *hh.Negotiation, f ReplyFilter) (bool, SkipReason) {
	if n.Resume == nil || n.Resume.ID != f.ResumeID {
		return false, SkipOtherResume
	}

	state := n.State.ID
	if state == hh.StateDiscard {
		return false, SkipDiscarded
	}
	if f.OnlyInterviews && !strings.HasPrefix(state, "interview") {
		return false, SkipNotInterview
	}
	if f.OnlyInvitations && !strings.HasPrefix(state, "inv") {
		return false, SkipNotInvitation
	}

	if n.Vacancy == nil {
		return false, SkipNoVacancy
	}
	employer := n.Vacancy.Employer
	if employer == nil {
		return false, SkipNoEmployer
	}
	if f.Blacklisted != nil && employer.ID != "" && f.Blacklisted.Contains(employer.ID) {
		return false, SkipBlacklisted
	}
	return true, ""
}
