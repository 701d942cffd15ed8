package candidate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/B1gO/vic-crm/internal/lifecycle"
)

// ─── Service ─────────────────────────────────────────────────────────────────

// Service orchestrates the candidate lifecycle: it loads state, invokes the
// lifecycle engine and commits the updated candidate together with the
// emitted timeline events in a single transaction. It has no dependency on
// net/http — it can be used by any transport layer.
type Service struct {
	pool   *pgxpool.Pool
	rdb    *redis.Client
	engine *lifecycle.Engine
}

// NewService returns a configured Service. The engine's mock-gating lookups
// run against the same pool.
func NewService(pool *pgxpool.Pool, rdb *redis.Client) *Service {
	return &Service{
		pool:   pool,
		rdb:    rdb,
		engine: lifecycle.NewEngine(&mockStore{q: pool}),
	}
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// List returns all candidates, optionally filtered by stage.
func (s *Service) List(ctx context.Context, stage *lifecycle.Stage) ([]lifecycle.Candidate, error) {
	return listCandidates(ctx, s.pool, stage)
}

// Get returns a single candidate by id.
func (s *Service) Get(ctx context.Context, id string) (*lifecycle.Candidate, error) {
	return getCandidate(ctx, s.pool, id)
}

// Timeline returns a candidate's event history, newest first.
func (s *Service) Timeline(ctx context.Context, id string) ([]lifecycle.TimelineEvent, error) {
	if _, err := getCandidate(ctx, s.pool, id); err != nil {
		return nil, err
	}
	return listTimeline(ctx, s.pool, id)
}

// ─── Writes ──────────────────────────────────────────────────────────────────

// Create inserts a new candidate with lifecycle defaults and appends the
// creation events. A batch attached at creation while sourcing auto-advances
// the sub-status to BATCH_ASSIGNED.
func (s *Service) Create(ctx context.Context, c lifecycle.Candidate) (*lifecycle.Candidate, error) {
	if c.Name == "" {
		return nil, &lifecycle.ValidationError{Msg: "name is required"}
	}
	if c.Stage != "" {
		if _, err := lifecycle.ParseStage(string(c.Stage)); err != nil {
			return nil, &lifecycle.ValidationError{Msg: err.Error()}
		}
	}
	c = lifecycle.NewCandidate(c)
	if !lifecycle.IsSubStatusAllowed(c.Stage, c.SubStatus) {
		return nil, &lifecycle.ValidationError{Msg: fmt.Sprintf(
			"sub-status %s is not allowed for stage %s", c.SubStatus, c.Stage)}
	}

	label := ""
	if c.BatchID != nil {
		var err error
		if label, err = batchLabel(ctx, s.pool, *c.BatchID); err != nil {
			return nil, err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("create begin: %w", err)
	}
	defer tx.Rollback(ctx)

	saved, err := insertCandidate(ctx, tx, &c)
	if err != nil {
		return nil, err
	}

	updated, events := lifecycle.CreationEvents(*saved, label)
	if updated.SubStatus != saved.SubStatus {
		if saved, err = updateCandidate(ctx, tx, &updated); err != nil {
			return nil, err
		}
	}
	for i := range events {
		if _, err := appendEvent(ctx, tx, &events[i]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("create commit: %w", err)
	}
	return saved, nil
}

// Update replaces a candidate's profile fields. Newly attaching a batch
// while the candidate is still sourcing advances the sub-status to
// BATCH_ASSIGNED and records a BATCH event, mirroring creation.
func (s *Service) Update(ctx context.Context, id string, in lifecycle.Candidate) (*lifecycle.Candidate, error) {
	if in.Name == "" {
		return nil, &lifecycle.ValidationError{Msg: "name is required"}
	}

	label := ""
	if in.BatchID != nil {
		var err error
		if label, err = batchLabel(ctx, s.pool, *in.BatchID); err != nil {
			return nil, err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("update begin: %w", err)
	}
	defer tx.Rollback(ctx)

	existing, err := getCandidateForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	previousBatch := existing.BatchID

	existing.Name = in.Name
	existing.Email = in.Email
	existing.Phone = in.Phone
	existing.WechatID = in.WechatID
	existing.LinkedinURL = in.LinkedinURL
	existing.TechTags = in.TechTags
	existing.WorkAuth = in.WorkAuth
	existing.City = in.City
	existing.State = in.State
	existing.School = in.School
	existing.Major = in.Major
	existing.Notes = in.Notes
	existing.ResumeReady = in.ResumeReady
	existing.RecruiterID = in.RecruiterID
	existing.BatchID = in.BatchID

	saved, err := updateCandidate(ctx, tx, existing)
	if err != nil {
		return nil, err
	}

	if previousBatch == nil && in.BatchID != nil && saved.Stage == lifecycle.StageSourcing {
		updated, events := lifecycle.BatchAssigned(*saved, label)
		if updated.SubStatus != saved.SubStatus {
			if saved, err = updateCandidate(ctx, tx, &updated); err != nil {
				return nil, err
			}
		}
		for i := range events {
			if _, err := appendEvent(ctx, tx, &events[i]); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("update commit: %w", err)
	}
	return saved, nil
}

// Transition moves a candidate to a new stage through the lifecycle engine.
// The candidate row is locked for the duration, so concurrent transitions on
// the same candidate serialize and never both read the same fromStage.
func (s *Service) Transition(ctx context.Context, id string, req lifecycle.TransitionRequest) (*lifecycle.Candidate, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("transition begin: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := getCandidateForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	fromStage := current.Stage

	updated, events, err := s.engine.Transition(*current, req)
	if err != nil {
		return nil, err
	}

	saved, err := updateCandidate(ctx, tx, &updated)
	if err != nil {
		return nil, err
	}
	for i := range events {
		if _, err := appendEvent(ctx, tx, &events[i]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("transition commit: %w", err)
	}

	s.publish(ctx, "EVENT_CANDIDATE_STAGE_CHANGED", map[string]string{
		"type":        "EVENT_CANDIDATE_STAGE_CHANGED",
		"candidateId": id,
		"from":        string(fromStage),
		"to":          string(saved.Stage),
		"subStatus":   string(saved.SubStatus),
	})
	return saved, nil
}

// UpdateSubStatus changes the sub-status within the current stage. Setting
// the current value is a no-op and appends nothing.
func (s *Service) UpdateSubStatus(ctx context.Context, id string, sub lifecycle.SubStatus, reason, actorID string) (*lifecycle.Candidate, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("updateSubStatus begin: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := getCandidateForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	updated, events, err := s.engine.UpdateSubStatus(ctx, *current, sub, reason, actorID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		// No-op: sub-status already set.
		return current, nil
	}

	saved, err := updateCandidate(ctx, tx, &updated)
	if err != nil {
		return nil, err
	}
	for i := range events {
		if _, err := appendEvent(ctx, tx, &events[i]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("updateSubStatus commit: %w", err)
	}

	s.publish(ctx, "EVENT_CANDIDATE_SUBSTATUS_CHANGED", map[string]string{
		"type":        "EVENT_CANDIDATE_SUBSTATUS_CHANGED",
		"candidateId": id,
		"stage":       string(saved.Stage),
		"subStatus":   string(saved.SubStatus),
	})
	return saved, nil
}

// AddTimelineEvent appends a manual event (e.g. a NOTE) to a candidate's
// timeline outside the transition flow.
func (s *Service) AddTimelineEvent(ctx context.Context, id string, e lifecycle.TimelineEvent) (*lifecycle.TimelineEvent, error) {
	if e.EventType == "" {
		return nil, &lifecycle.ValidationError{Msg: "eventType is required"}
	}
	if e.Title == "" {
		return nil, &lifecycle.ValidationError{Msg: "title is required"}
	}
	if _, err := getCandidate(ctx, s.pool, id); err != nil {
		return nil, err
	}
	e.CandidateID = id
	return appendEvent(ctx, s.pool, &e)
}

// publish sends a pub/sub notification for the Gateway SSE stream (non-fatal).
func (s *Service) publish(ctx context.Context, channel string, payload map[string]string) {
	event, _ := json.Marshal(payload)
	if err := s.rdb.Publish(ctx, channel, event).Err(); err != nil {
		slog.Warn("publish "+channel+" failed", "err", err)
	}
}
