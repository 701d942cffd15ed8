package lifecycle

import (
	"context"
	"fmt"
	"time"
)

// Engine decides transition legality, computes the resulting candidate state
// and derives the timeline events to append. It mutates nothing itself: the
// caller receives an updated copy plus the events and is responsible for
// committing both atomically.
//
// The only external read is the MockChecker lookup guarding mock-managed
// sub-status edits.
type Engine struct {
	mocks MockChecker
}

// NewEngine returns an Engine backed by the given mock-record checker.
func NewEngine(mocks MockChecker) *Engine {
	return &Engine{mocks: mocks}
}

// Transition moves a candidate to a new stage.
//
// It validates the stage edge against the adjacency table, runs the
// precondition rule chain, resolves and validates the target sub-status,
// applies request metadata to the candidate and derives exactly one timeline
// event. On any failure the input candidate is returned unchanged with no
// events.
func (e *Engine) Transition(c Candidate, req TransitionRequest) (Candidate, []TimelineEvent, error) {
	from := c.Stage
	to := req.ToStage

	if to == "" {
		return c, nil, &ValidationError{Msg: "toStage is required"}
	}
	if !IsTransitionAllowed(from, to) {
		return c, nil, invalidTransition(from, to, "")
	}
	if err := checkTransitionRules(&c, from, to, &req); err != nil {
		return c, nil, err
	}

	next := DefaultSubStatus(to)
	if req.ToSubStatus != nil {
		next = *req.ToSubStatus
	}
	if !IsSubStatusAllowed(to, next) {
		return c, nil, invalidTransition(from, to,
			fmt.Sprintf("sub-status %s is not allowed for stage %s", next, to))
	}

	// Remember where the candidate was paused so ON_HOLD can be released
	// back to the same stage without a reason.
	if to == StageOnHold && from != StageOnHold {
		lastActive := from
		c.LastActiveStage = &lastActive
	}

	c.Stage = to
	c.SubStatus = next
	syncResumeReady(&c, to, next)
	now := time.Now().UTC()
	c.StageUpdatedAt = &now
	applyTransitionMetadata(&c, &req)
	if to == StageEliminated && !isBlank(req.Reason) {
		note := req.Reason
		c.CloseReasonNote = &note
	}

	fromStage, toStage, subStatus := from, to, next
	event := TimelineEvent{
		CandidateID: c.ID,
		EventType:   resolveEventType(from, to),
		Title:       transitionTitle(from, to),
		Description: optional(req.Reason),
		FromStage:   &fromStage,
		ToStage:     &toStage,
		SubStatus:   &subStatus,
		CloseReason: req.CloseReason,
		ActorID:     optionalActor(req.ActorID),
		EventDate:   now,
	}

	return c, []TimelineEvent{event}, nil
}

// UpdateSubStatus changes the sub-status within the current stage.
//
// Setting the current value is a no-op (unchanged candidate, no event).
// Mock-managed sub-statuses require the corresponding scheduled/completed
// mock record to exist; a failed lookup surfaces as an infrastructure error,
// a missing record as an InvalidTransitionError.
func (e *Engine) UpdateSubStatus(ctx context.Context, c Candidate, sub SubStatus, reason, actorID string) (Candidate, []TimelineEvent, error) {
	stage := c.Stage

	if sub == "" {
		return c, nil, &ValidationError{Msg: "subStatus is required"}
	}
	if !IsSubStatusAllowed(stage, sub) {
		return c, nil, invalidTransition(stage, stage,
			fmt.Sprintf("sub-status %s is not allowed for stage %s", sub, stage))
	}
	if c.SubStatus == sub {
		return c, nil, nil
	}

	if gate, ok := mockGates[sub]; ok {
		exists, err := e.checkMock(ctx, c.ID, gate)
		if err != nil {
			return c, nil, fmt.Errorf("mock lookup for %s: %w", sub, err)
		}
		if !exists {
			return c, nil, invalidTransition(stage, stage, gate.cause)
		}
	}

	c.SubStatus = sub
	syncResumeReady(&c, stage, sub)

	stageCopy, subCopy := stage, sub
	event := TimelineEvent{
		CandidateID: c.ID,
		EventType:   EventSubStatusChanged,
		Title:       fmt.Sprintf("Sub-status set to %s", sub),
		Description: optional(reason),
		FromStage:   &stageCopy,
		ToStage:     &stageCopy,
		SubStatus:   &subCopy,
		ActorID:     optionalActor(actorID),
		EventDate:   time.Now().UTC(),
	}

	return c, []TimelineEvent{event}, nil
}

func (e *Engine) checkMock(ctx context.Context, candidateID string, gate mockGate) (bool, error) {
	if gate.completed {
		return e.mocks.HasCompleted(ctx, candidateID, gate.kind)
	}
	return e.mocks.HasScheduled(ctx, candidateID, gate.kind)
}

// NewCandidate normalizes a freshly created candidate: stage and sub-status
// defaults plus the initial stage timestamp.
func NewCandidate(c Candidate) Candidate {
	if c.Stage == "" {
		c.Stage = StageSourcing
	}
	if c.SubStatus == "" {
		c.SubStatus = DefaultSubStatus(c.Stage)
	}
	now := time.Now().UTC()
	c.StageUpdatedAt = &now
	return c
}

// CreationEvents derives the events appended when a candidate record is
// first created: CANDIDATE_CREATED, plus the batch auto-advance when a batch
// is already attached while sourcing.
func CreationEvents(c Candidate, batchLabel string) (Candidate, []TimelineEvent) {
	subStatus := c.SubStatus
	events := []TimelineEvent{{
		CandidateID: c.ID,
		EventType:   EventCandidateCreated,
		Title:       "Candidate Created",
		Description: optional("Candidate record created."),
		SubStatus:   &subStatus,
		EventDate:   time.Now().UTC(),
	}}

	if c.Stage == StageSourcing && c.BatchID != nil && c.SubStatus != SubBatchAssigned {
		var batchEvents []TimelineEvent
		c, batchEvents = BatchAssigned(c, batchLabel)
		events = append(events, batchEvents...)
	}
	return c, events
}

// BatchAssigned advances a sourcing candidate to BATCH_ASSIGNED and derives
// the BATCH event. Used at creation and when a profile update newly attaches
// a batch while still in SOURCING.
func BatchAssigned(c Candidate, batchLabel string) (Candidate, []TimelineEvent) {
	if c.Stage == StageSourcing && c.SubStatus != SubBatchAssigned {
		c.SubStatus = SubBatchAssigned
	}
	stage, subStatus := c.Stage, c.SubStatus
	subType := "batch_assigned"
	event := TimelineEvent{
		CandidateID: c.ID,
		EventType:   EventBatch,
		SubType:     &subType,
		Title:       "Batch Assigned",
		Description: optional(fmt.Sprintf("Assigned to batch %s.", batchLabel)),
		FromStage:   &stage,
		ToStage:     &stage,
		SubStatus:   &subStatus,
		EventDate:   time.Now().UTC(),
	}
	return c, []TimelineEvent{event}
}

// applyTransitionMetadata copies request metadata onto the candidate. Only
// fields present on the request overwrite existing values.
func applyTransitionMetadata(c *Candidate, req *TransitionRequest) {
	if !isBlank(req.HoldReason) {
		hold := req.HoldReason
		c.HoldReason = &hold
	}
	if req.NextFollowUpAt != nil {
		c.NextFollowUpAt = req.NextFollowUpAt
	}
	if req.CloseReason != nil {
		c.CloseReason = req.CloseReason
	}
	if !isBlank(req.WithdrawReason) {
		withdraw := req.WithdrawReason
		c.WithdrawReason = &withdraw
	}
	if !isBlank(req.ReactivateReason) {
		reactivate := req.ReactivateReason
		c.ReactivateReason = &reactivate
	}
	if req.OfferDate != nil {
		c.OfferDate = req.OfferDate
	}
	if req.OfferType != nil {
		c.OfferType = req.OfferType
	}
	if req.StartDate != nil {
		c.StartDate = req.StartDate
	}
}

// syncResumeReady keeps the resumeReady flag aligned with the RESUME stage
// sub-statuses.
func syncResumeReady(c *Candidate, stage Stage, sub SubStatus) {
	if stage != StageResume {
		return
	}
	switch sub {
	case SubResumeReady:
		c.ResumeReady = true
	case SubResumePreparing:
		c.ResumeReady = false
	}
}
