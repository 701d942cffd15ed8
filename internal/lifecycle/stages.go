// Package lifecycle defines the candidate lifecycle state machine for the
// recruitment-to-placement pipeline.
//
// Valid stage graph:
//
//	SOURCING ──► TRAINING ──► RESUME ──► MOCKING ──► MARKETING ──► OFFERED ──► PLACED
//	    │                                     ▲            ▲◄──────────┘◄─────────┘
//	    └─────────────────────────────────────┴── (direct marketing fast path)
//
// Every stage can additionally move to ELIMINATED, WITHDRAWN or ON_HOLD
// (PLACED only to ELIMINATED/WITHDRAWN). Those three re-enter the pipeline via
// explicit reactivation / hold-release into any non-terminal stage.
package lifecycle

import "fmt"

// Stage values mirror the candidate_stage enum in PostgreSQL.
type Stage string

const (
	StageSourcing   Stage = "SOURCING"
	StageTraining   Stage = "TRAINING"
	StageResume     Stage = "RESUME"
	StageMocking    Stage = "MOCKING"
	StageMarketing  Stage = "MARKETING"
	StageOffered    Stage = "OFFERED"
	StagePlaced     Stage = "PLACED"
	StageEliminated Stage = "ELIMINATED"
	StageWithdrawn  Stage = "WITHDRAWN"
	StageOnHold     Stage = "ON_HOLD"
)

// SubStatus values mirror the candidate_sub_status enum in PostgreSQL.
// Each value is only legal within one stage (see subStatusesByStage).
type SubStatus string

const (
	// SOURCING
	SubSourced                SubStatus = "SOURCED"
	SubContacted              SubStatus = "CONTACTED"
	SubScreeningScheduled     SubStatus = "SCREENING_SCHEDULED"
	SubScreeningPassed        SubStatus = "SCREENING_PASSED"
	SubScreeningFailed        SubStatus = "SCREENING_FAILED"
	SubTrainingContractSent   SubStatus = "TRAINING_CONTRACT_SENT"
	SubTrainingContractSigned SubStatus = "TRAINING_CONTRACT_SIGNED"
	SubBatchAssigned          SubStatus = "BATCH_ASSIGNED"
	SubDirectMarketingReady   SubStatus = "DIRECT_MARKETING_READY"

	// TRAINING
	SubInTraining SubStatus = "IN_TRAINING"

	// RESUME
	SubResumePreparing SubStatus = "RESUME_PREPARING"
	SubResumeReady     SubStatus = "RESUME_READY"

	// MOCKING
	SubMockTheoryReady     SubStatus = "MOCK_THEORY_READY"
	SubMockTheoryScheduled SubStatus = "MOCK_THEORY_SCHEDULED"
	SubMockTheoryPassed    SubStatus = "MOCK_THEORY_PASSED"
	SubMockTheoryFailed    SubStatus = "MOCK_THEORY_FAILED"
	SubMockRealScheduled   SubStatus = "MOCK_REAL_SCHEDULED"
	SubMockRealPassed      SubStatus = "MOCK_REAL_PASSED"
	SubMockRealFailed      SubStatus = "MOCK_REAL_FAILED"

	// MARKETING
	SubMarketingActive SubStatus = "MARKETING_ACTIVE"

	// OFFERED
	SubOfferPending  SubStatus = "OFFER_PENDING"
	SubOfferAccepted SubStatus = "OFFER_ACCEPTED"
	SubOfferDeclined SubStatus = "OFFER_DECLINED"

	// ON_HOLD
	SubWaitingDocs   SubStatus = "WAITING_DOCS"
	SubPersonalPause SubStatus = "PERSONAL_PAUSE"
	SubVisaIssue     SubStatus = "VISA_ISSUE"
	SubOther         SubStatus = "OTHER"

	// PLACED / ELIMINATED / WITHDRAWN
	SubPlacedConfirmed SubStatus = "PLACED_CONFIRMED"
	SubClosed          SubStatus = "CLOSED"
	SubSelfWithdrawn   SubStatus = "SELF_WITHDRAWN"
)

// nonTerminalStages are the stages a candidate can be reactivated into from
// ELIMINATED/WITHDRAWN, or released into from ON_HOLD.
var nonTerminalStages = []Stage{
	StageSourcing, StageTraining, StageResume,
	StageMocking, StageMarketing, StageOffered,
}

// stageTransitions lists every allowed (from → to) pair.
var stageTransitions = map[Stage][]Stage{
	StageSourcing:   {StageTraining, StageMarketing, StageEliminated, StageWithdrawn, StageOnHold},
	StageTraining:   {StageResume, StageEliminated, StageWithdrawn, StageOnHold},
	StageResume:     {StageMocking, StageEliminated, StageWithdrawn, StageOnHold},
	StageMocking:    {StageMarketing, StageEliminated, StageWithdrawn, StageOnHold},
	StageMarketing:  {StageOffered, StageEliminated, StageWithdrawn, StageOnHold},
	StageOffered:    {StagePlaced, StageMarketing, StageEliminated, StageWithdrawn, StageOnHold},
	StagePlaced:     {StageMarketing, StageEliminated, StageWithdrawn},
	StageEliminated: nonTerminalStages,
	StageWithdrawn:  nonTerminalStages,
	StageOnHold:     nonTerminalStages,
}

// subStatusesByStage lists the sub-statuses legal within each stage.
var subStatusesByStage = map[Stage][]SubStatus{
	StageSourcing: {
		SubSourced, SubContacted, SubScreeningScheduled, SubScreeningPassed,
		SubScreeningFailed, SubTrainingContractSent, SubTrainingContractSigned,
		SubBatchAssigned, SubDirectMarketingReady,
	},
	StageTraining: {SubInTraining},
	StageResume:   {SubResumePreparing, SubResumeReady},
	StageMocking: {
		SubMockTheoryReady, SubMockTheoryScheduled, SubMockTheoryPassed,
		SubMockTheoryFailed, SubMockRealScheduled, SubMockRealPassed,
		SubMockRealFailed,
	},
	StageMarketing:  {SubMarketingActive},
	StageOffered:    {SubOfferPending, SubOfferAccepted, SubOfferDeclined},
	StageOnHold:     {SubWaitingDocs, SubPersonalPause, SubVisaIssue, SubOther},
	StagePlaced:     {SubPlacedConfirmed},
	StageEliminated: {SubClosed},
	StageWithdrawn:  {SubSelfWithdrawn},
}

// defaultSubStatus is the sub-status applied when a transition request does
// not name one. Exactly one per stage.
var defaultSubStatus = map[Stage]SubStatus{
	StageSourcing:   SubSourced,
	StageTraining:   SubInTraining,
	StageResume:     SubResumePreparing,
	StageMocking:    SubMockTheoryReady,
	StageMarketing:  SubMarketingActive,
	StageOffered:    SubOfferPending,
	StageOnHold:     SubOther,
	StagePlaced:     SubPlacedConfirmed,
	StageEliminated: SubClosed,
	StageWithdrawn:  SubSelfWithdrawn,
}

// knownSubStatuses is built once from subStatusesByStage for parsing.
var knownSubStatuses = func() map[SubStatus]struct{} {
	set := make(map[SubStatus]struct{})
	for _, subs := range subStatusesByStage {
		for _, s := range subs {
			set[s] = struct{}{}
		}
	}
	return set
}()

// ParseStage converts a raw string to a Stage, returning an error for
// unknown values.
func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	if _, ok := stageTransitions[st]; !ok {
		return "", fmt.Errorf("unknown candidate stage %q", s)
	}
	return st, nil
}

// ParseSubStatus converts a raw string to a SubStatus, returning an error
// for unknown values.
func ParseSubStatus(s string) (SubStatus, error) {
	ss := SubStatus(s)
	if _, ok := knownSubStatuses[ss]; !ok {
		return "", fmt.Errorf("unknown candidate sub-status %q", s)
	}
	return ss, nil
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// stage graph.
func IsTransitionAllowed(from, to Stage) bool {
	for _, s := range stageTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsSubStatusAllowed returns true when sub is legal within stage.
func IsSubStatusAllowed(stage Stage, sub SubStatus) bool {
	for _, s := range subStatusesByStage[stage] {
		if s == sub {
			return true
		}
	}
	return false
}

// DefaultSubStatus returns the sub-status a candidate lands on when entering
// stage without an explicit target sub-status.
func DefaultSubStatus(stage Stage) SubStatus {
	return defaultSubStatus[stage]
}

// IsNonTerminal returns true for stages that are part of the active pipeline
// (reactivation and hold-release targets).
func IsNonTerminal(stage Stage) bool {
	for _, s := range nonTerminalStages {
		if s == stage {
			return true
		}
	}
	return false
}
