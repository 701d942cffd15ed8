package lifecycle_test

import (
	"testing"

	"github.com/B1gO/vic-crm/internal/lifecycle"
)

var allStages = []lifecycle.Stage{
	lifecycle.StageSourcing,
	lifecycle.StageTraining,
	lifecycle.StageResume,
	lifecycle.StageMocking,
	lifecycle.StageMarketing,
	lifecycle.StageOffered,
	lifecycle.StagePlaced,
	lifecycle.StageEliminated,
	lifecycle.StageWithdrawn,
	lifecycle.StageOnHold,
}

// ── ParseStage ─────────────────────────────────────────────────────────────

func TestParseStage_ValidValues(t *testing.T) {
	for _, s := range allStages {
		got, err := lifecycle.ParseStage(string(s))
		if err != nil {
			t.Errorf("ParseStage(%q) returned unexpected error: %v", s, err)
		}
		if got != s {
			t.Errorf("ParseStage(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStage_InvalidValue(t *testing.T) {
	for _, s := range []string{"UNKNOWN", "", "sourcing", " SOURCING"} {
		if _, err := lifecycle.ParseStage(s); err == nil {
			t.Errorf("ParseStage(%q) expected error, got nil", s)
		}
	}
}

// ── ParseSubStatus ─────────────────────────────────────────────────────────

func TestParseSubStatus_ValidValues(t *testing.T) {
	valid := []string{
		"SOURCED", "BATCH_ASSIGNED", "DIRECT_MARKETING_READY", "IN_TRAINING",
		"RESUME_PREPARING", "RESUME_READY", "MOCK_THEORY_READY",
		"MOCK_REAL_PASSED", "MARKETING_ACTIVE", "OFFER_PENDING",
		"WAITING_DOCS", "PLACED_CONFIRMED", "CLOSED", "SELF_WITHDRAWN",
	}
	for _, s := range valid {
		got, err := lifecycle.ParseSubStatus(s)
		if err != nil {
			t.Errorf("ParseSubStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseSubStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseSubStatus_InvalidValue(t *testing.T) {
	for _, s := range []string{"", "HIRED", "sourced", "RESUME READY"} {
		if _, err := lifecycle.ParseSubStatus(s); err == nil {
			t.Errorf("ParseSubStatus(%q) expected error, got nil", s)
		}
	}
}

// ── IsTransitionAllowed — forward pipeline edges ──────────────────────────

func TestIsTransitionAllowed_ValidForward(t *testing.T) {
	cases := []struct {
		from lifecycle.Stage
		to   lifecycle.Stage
	}{
		{lifecycle.StageSourcing, lifecycle.StageTraining},
		{lifecycle.StageSourcing, lifecycle.StageMarketing}, // direct marketing edge
		{lifecycle.StageTraining, lifecycle.StageResume},
		{lifecycle.StageResume, lifecycle.StageMocking},
		{lifecycle.StageMocking, lifecycle.StageMarketing},
		{lifecycle.StageMarketing, lifecycle.StageOffered},
		{lifecycle.StageOffered, lifecycle.StagePlaced},
		{lifecycle.StageOffered, lifecycle.StageMarketing}, // offer fell through
		{lifecycle.StagePlaced, lifecycle.StageMarketing},  // placement ended
	}
	for _, c := range cases {
		if !lifecycle.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be true", c.from, c.to)
		}
	}
}

// ── IsTransitionAllowed — side paths are open from every active stage ─────

func TestIsTransitionAllowed_SidePaths(t *testing.T) {
	active := []lifecycle.Stage{
		lifecycle.StageSourcing, lifecycle.StageTraining, lifecycle.StageResume,
		lifecycle.StageMocking, lifecycle.StageMarketing, lifecycle.StageOffered,
	}
	for _, from := range active {
		for _, to := range []lifecycle.Stage{
			lifecycle.StageEliminated, lifecycle.StageWithdrawn, lifecycle.StageOnHold,
		} {
			if !lifecycle.IsTransitionAllowed(from, to) {
				t.Errorf("IsTransitionAllowed(%s → %s) should be true", from, to)
			}
		}
	}
}

// ── IsTransitionAllowed — PLACED can exit but never be paused ─────────────

func TestIsTransitionAllowed_FromPlaced(t *testing.T) {
	allowed := map[lifecycle.Stage]bool{
		lifecycle.StageMarketing:  true,
		lifecycle.StageEliminated: true,
		lifecycle.StageWithdrawn:  true,
	}
	for _, to := range allStages {
		got := lifecycle.IsTransitionAllowed(lifecycle.StagePlaced, to)
		if got != allowed[to] {
			t.Errorf("IsTransitionAllowed(PLACED → %s) = %v, want %v", to, got, allowed[to])
		}
	}
}

// ── IsTransitionAllowed — soft-terminal stages re-enter active stages only ─

func TestIsTransitionAllowed_ReentryTargets(t *testing.T) {
	reentrant := []lifecycle.Stage{
		lifecycle.StageEliminated, lifecycle.StageWithdrawn, lifecycle.StageOnHold,
	}
	activeTargets := map[lifecycle.Stage]bool{
		lifecycle.StageSourcing:  true,
		lifecycle.StageTraining:  true,
		lifecycle.StageResume:    true,
		lifecycle.StageMocking:   true,
		lifecycle.StageMarketing: true,
		lifecycle.StageOffered:   true,
	}
	for _, from := range reentrant {
		for _, to := range allStages {
			got := lifecycle.IsTransitionAllowed(from, to)
			if got != activeTargets[to] {
				t.Errorf("IsTransitionAllowed(%s → %s) = %v, want %v", from, to, got, activeTargets[to])
			}
		}
	}
}

// ── IsTransitionAllowed — skip-level and self transitions are forbidden ───

func TestIsTransitionAllowed_SkipLevel(t *testing.T) {
	cases := []struct {
		from lifecycle.Stage
		to   lifecycle.Stage
	}{
		{lifecycle.StageSourcing, lifecycle.StageResume},   // skip TRAINING
		{lifecycle.StageSourcing, lifecycle.StageMocking},  // skip two
		{lifecycle.StageSourcing, lifecycle.StagePlaced},   // skip all
		{lifecycle.StageTraining, lifecycle.StageMocking},  // skip RESUME
		{lifecycle.StageTraining, lifecycle.StageMarketing},
		{lifecycle.StageResume, lifecycle.StageMarketing},  // skip MOCKING
		{lifecycle.StageMocking, lifecycle.StageOffered},   // skip MARKETING
		{lifecycle.StageMarketing, lifecycle.StagePlaced},  // skip OFFERED
	}
	for _, c := range cases {
		if lifecycle.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false (skip-level)", c.from, c.to)
		}
	}
}

func TestIsTransitionAllowed_Self(t *testing.T) {
	for _, s := range allStages {
		if lifecycle.IsTransitionAllowed(s, s) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false (self)", s, s)
		}
	}
}

// ── Sub-status tables ──────────────────────────────────────────────────────

func TestIsSubStatusAllowed_PerStage(t *testing.T) {
	cases := []struct {
		stage lifecycle.Stage
		sub   lifecycle.SubStatus
		want  bool
	}{
		{lifecycle.StageSourcing, lifecycle.SubSourced, true},
		{lifecycle.StageSourcing, lifecycle.SubDirectMarketingReady, true},
		{lifecycle.StageSourcing, lifecycle.SubInTraining, false},
		{lifecycle.StageTraining, lifecycle.SubInTraining, true},
		{lifecycle.StageTraining, lifecycle.SubSourced, false},
		{lifecycle.StageResume, lifecycle.SubResumeReady, true},
		{lifecycle.StageResume, lifecycle.SubMockTheoryReady, false},
		{lifecycle.StageMocking, lifecycle.SubMockRealPassed, true},
		{lifecycle.StageMocking, lifecycle.SubScreeningScheduled, false},
		{lifecycle.StageMarketing, lifecycle.SubMarketingActive, true},
		{lifecycle.StageOffered, lifecycle.SubOfferAccepted, true},
		{lifecycle.StageOnHold, lifecycle.SubVisaIssue, true},
		{lifecycle.StageOnHold, lifecycle.SubClosed, false},
		{lifecycle.StagePlaced, lifecycle.SubPlacedConfirmed, true},
		{lifecycle.StageEliminated, lifecycle.SubClosed, true},
		{lifecycle.StageWithdrawn, lifecycle.SubSelfWithdrawn, true},
	}
	for _, c := range cases {
		if got := lifecycle.IsSubStatusAllowed(c.stage, c.sub); got != c.want {
			t.Errorf("IsSubStatusAllowed(%s, %s) = %v, want %v", c.stage, c.sub, got, c.want)
		}
	}
}

// Every stage must have a default sub-status, and it must be legal for that
// stage — otherwise a bare transition request could violate the invariant.
func TestDefaultSubStatus_AlwaysAllowed(t *testing.T) {
	for _, stage := range allStages {
		def := lifecycle.DefaultSubStatus(stage)
		if def == "" {
			t.Errorf("DefaultSubStatus(%s) is empty", stage)
			continue
		}
		if !lifecycle.IsSubStatusAllowed(stage, def) {
			t.Errorf("DefaultSubStatus(%s) = %s is not allowed for the stage", stage, def)
		}
	}
}

// ── IsNonTerminal ──────────────────────────────────────────────────────────

func TestIsNonTerminal(t *testing.T) {
	nonTerminal := map[lifecycle.Stage]bool{
		lifecycle.StageSourcing:  true,
		lifecycle.StageTraining:  true,
		lifecycle.StageResume:    true,
		lifecycle.StageMocking:   true,
		lifecycle.StageMarketing: true,
		lifecycle.StageOffered:   true,
	}
	for _, s := range allStages {
		if got := lifecycle.IsNonTerminal(s); got != nonTerminal[s] {
			t.Errorf("IsNonTerminal(%s) = %v, want %v", s, got, nonTerminal[s])
		}
	}
}
