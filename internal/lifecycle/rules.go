package lifecycle

import "strings"

// transitionRule is one precondition gate for a stage transition. The chain
// is evaluated in order; the first violated rule aborts the transition with
// its cause.
type transitionRule struct {
	violated func(c *Candidate, from, to Stage, req *TransitionRequest) bool
	cause    string
}

// transitionRules is the full precondition chain run after the adjacency
// check. Rules guard themselves on the (from, to) pair, so order only
// matters for which cause wins when several rules would fire.
var transitionRules = []transitionRule{
	{
		violated: func(c *Candidate, from, to Stage, req *TransitionRequest) bool {
			return to == StageTraining && c.BatchID == nil
		},
		cause: "batch is required for TRAINING",
	},

	// Direct marketing fast path: SOURCING → MARKETING skips training and is
	// only open to complete, resume-ready profiles.
	{
		violated: func(c *Candidate, from, to Stage, req *TransitionRequest) bool {
			return from == StageSourcing && to == StageMarketing &&
				c.SubStatus != SubDirectMarketingReady
		},
		cause: "DIRECT_MARKETING_READY is required for direct marketing",
	},
	{
		violated: func(c *Candidate, from, to Stage, req *TransitionRequest) bool {
			return directMarketing(from, to) && isBlank(c.Name)
		},
		cause: "name is required for direct marketing",
	},
	{
		violated: func(c *Candidate, from, to Stage, req *TransitionRequest) bool {
			return directMarketing(from, to) && blankPtr(c.Email) && blankPtr(c.Phone)
		},
		cause: "email or phone is required for direct marketing",
	},
	{
		violated: func(c *Candidate, from, to Stage, req *TransitionRequest) bool {
			return directMarketing(from, to) && blankPtr(c.WorkAuth)
		},
		cause: "workAuth is required for direct marketing",
	},
	{
		violated: func(c *Candidate, from, to Stage, req *TransitionRequest) bool {
			return directMarketing(from, to) && blankPtr(c.TechTags)
		},
		cause: "techTags is required for direct marketing",
	},
	{
		violated: func(c *Candidate, from, to Stage, req *TransitionRequest) bool {
			return directMarketing(from, to) && blankPtr(c.City) && blankPtr(c.State)
		},
		cause: "city or state is required for direct marketing",
	},
	{
		violated: func(c *Candidate, from, to Stage, req *TransitionRequest) bool {
			return directMarketing(from, to) && !c.ResumeReady
		},
		cause: "resumeReady must be true for direct marketing",
	},

	{
		violated: func(c *Candidate, from, to Stage, req *TransitionRequest) bool {
			return from == StageMocking && to == StageMarketing &&
				c.SubStatus != SubMockRealPassed
		},
		cause: "MOCK_REAL_PASSED is required to enter MARKETING",
	},
	{
		violated: func(c *Candidate, from, to Stage, req *TransitionRequest) bool {
			return to == StageMocking && from == StageResume &&
				c.SubStatus != SubResumeReady
		},
		cause: "RESUME_READY is required to enter MOCKING",
	},
	{
		violated: func(c *Candidate, from, to Stage, req *TransitionRequest) bool {
			return to == StageMocking && from != StageResume && !c.ResumeReady
		},
		cause: "resumeReady must be true to enter MOCKING",
	},

	{
		violated: func(c *Candidate, from, to Stage, req *TransitionRequest) bool {
			return to == StagePlaced && req.StartDate == nil
		},
		cause: "startDate is required for PLACED",
	},
	{
		violated: func(c *Candidate, from, to Stage, req *TransitionRequest) bool {
			return to == StageOffered && req.OfferType == nil
		},
		cause: "offerType is required for OFFERED",
	},
	{
		violated: func(c *Candidate, from, to Stage, req *TransitionRequest) bool {
			return to == StageEliminated && req.CloseReason == nil
		},
		cause: "closeReason is required for ELIMINATED",
	},
	{
		violated: func(c *Candidate, from, to Stage, req *TransitionRequest) bool {
			return to == StageWithdrawn && isBlank(req.WithdrawReason)
		},
		cause: "withdrawReason is required for WITHDRAWN",
	},
	{
		violated: func(c *Candidate, from, to Stage, req *TransitionRequest) bool {
			return to == StageOnHold &&
				(isBlank(req.HoldReason) || req.NextFollowUpAt == nil)
		},
		cause: "holdReason and nextFollowUpAt are required for ON_HOLD",
	},

	{
		violated: func(c *Candidate, from, to Stage, req *TransitionRequest) bool {
			return (from == StageEliminated || from == StageWithdrawn) &&
				IsNonTerminal(to) && isBlank(req.ReactivateReason)
		},
		cause: "reactivateReason is required to reactivate a candidate",
	},
	{
		violated: func(c *Candidate, from, to Stage, req *TransitionRequest) bool {
			return from == StageOnHold && c.LastActiveStage != nil &&
				to != *c.LastActiveStage && isBlank(req.Reason)
		},
		cause: "reason is required to jump from ON_HOLD to a new stage",
	},
	{
		violated: func(c *Candidate, from, to Stage, req *TransitionRequest) bool {
			return (from == StageOffered || from == StagePlaced) &&
				to == StageMarketing && isBlank(req.Reason)
		},
		cause: "reason is required to return to MARKETING",
	},
}

// checkTransitionRules runs the full chain and returns the first violation.
func checkTransitionRules(c *Candidate, from, to Stage, req *TransitionRequest) error {
	for _, rule := range transitionRules {
		if rule.violated(c, from, to, req) {
			return invalidTransition(from, to, rule.cause)
		}
	}
	return nil
}

func directMarketing(from, to Stage) bool {
	return from == StageSourcing && to == StageMarketing
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func blankPtr(s *string) bool {
	return s == nil || isBlank(*s)
}
