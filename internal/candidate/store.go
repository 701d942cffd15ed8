// Package candidate contains the orchestration layer for the candidate
// lifecycle: persistence, the transactional transition flow and the HTTP
// handlers. All business decisions live in the lifecycle package.
package candidate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/B1gO/vic-crm/internal/lifecycle"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so the same SQL
// helpers serve plain reads and transactional writes.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is returned when the referenced candidate does not exist.
var ErrNotFound = fmt.Errorf("candidate not found")

// ErrBatchNotFound is returned when a referenced batch does not exist.
var ErrBatchNotFound = fmt.Errorf("batch not found")

// ─── Candidates ──────────────────────────────────────────────────────────────

const candidateColumns = `
	id, name, email, phone, wechat_id, linkedin_url, tech_tags, work_auth,
	city, state, school, major, notes,
	stage, sub_status, last_active_stage, stage_updated_at,
	hold_reason, next_follow_up_at, close_reason, close_reason_note,
	withdraw_reason, reactivate_reason,
	offer_type, offer_date, start_date,
	COALESCE(batch_id::text, ''), COALESCE(recruiter_id::text, ''),
	resume_ready, created_at, updated_at`

func scanCandidate(row pgx.Row) (*lifecycle.Candidate, error) {
	var (
		c                    lifecycle.Candidate
		lastActive           *string
		closeReason          *string
		offerType            *string
		batchID, recruiterID string
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.WechatID, &c.LinkedinURL,
		&c.TechTags, &c.WorkAuth, &c.City, &c.State, &c.School, &c.Major,
		&c.Notes,
		(*string)(&c.Stage), (*string)(&c.SubStatus), &lastActive, &c.StageUpdatedAt,
		&c.HoldReason, &c.NextFollowUpAt, &closeReason, &c.CloseReasonNote,
		&c.WithdrawReason, &c.ReactivateReason,
		&offerType, &c.OfferDate, &c.StartDate,
		&batchID, &recruiterID,
		&c.ResumeReady, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastActive != nil {
		stage := lifecycle.Stage(*lastActive)
		c.LastActiveStage = &stage
	}
	if closeReason != nil {
		reason := lifecycle.CloseReason(*closeReason)
		c.CloseReason = &reason
	}
	if offerType != nil {
		offer := lifecycle.OfferType(*offerType)
		c.OfferType = &offer
	}
	if batchID != "" {
		c.BatchID = &batchID
	}
	if recruiterID != "" {
		c.RecruiterID = &recruiterID
	}
	return &c, nil
}

// getCandidate loads a candidate by id.
func getCandidate(ctx context.Context, q querier, id string) (*lifecycle.Candidate, error) {
	c, err := scanCandidate(q.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getCandidate: %w", err)
	}
	return c, nil
}

// getCandidateForUpdate loads a candidate inside a transaction, taking a row
// lock so concurrent transitions on the same candidate serialize.
func getCandidateForUpdate(ctx context.Context, tx pgx.Tx, id string) (*lifecycle.Candidate, error) {
	c, err := scanCandidate(tx.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getCandidateForUpdate: %w", err)
	}
	return c, nil
}

// listCandidates returns all candidates, optionally filtered by stage,
// newest stage activity first.
func listCandidates(ctx context.Context, q querier, stage *lifecycle.Stage) ([]lifecycle.Candidate, error) {
	const base = `SELECT ` + candidateColumns + ` FROM candidates`

	var (
		rows pgx.Rows
		err  error
	)
	if stage != nil {
		rows, err = q.Query(ctx, base+` WHERE stage = $1 ORDER BY updated_at DESC`, string(*stage))
	} else {
		rows, err = q.Query(ctx, base+` ORDER BY updated_at DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("listCandidates query: %w", err)
	}
	defer rows.Close()

	candidates := make([]lifecycle.Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("listCandidates scan: %w", err)
		}
		candidates = append(candidates, *c)
	}
	return candidates, rows.Err()
}

// insertCandidate persists a new candidate and returns the stored row.
func insertCandidate(ctx context.Context, q querier, c *lifecycle.Candidate) (*lifecycle.Candidate, error) {
	saved, err := scanCandidate(q.QueryRow(ctx,
		`INSERT INTO candidates (
		   name, email, phone, wechat_id, linkedin_url, tech_tags, work_auth,
		   city, state, school, major, notes,
		   stage, sub_status, stage_updated_at, batch_id, recruiter_id, resume_ready
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		 RETURNING `+candidateColumns,
		c.Name, c.Email, c.Phone, c.WechatID, c.LinkedinURL, c.TechTags,
		c.WorkAuth, c.City, c.State, c.School, c.Major, c.Notes,
		string(c.Stage), string(c.SubStatus), c.StageUpdatedAt,
		c.BatchID, c.RecruiterID, c.ResumeReady,
	))
	if err != nil {
		return nil, fmt.Errorf("insertCandidate: %w", err)
	}
	return saved, nil
}

// updateCandidate writes every mutable column and returns the stored row.
func updateCandidate(ctx context.Context, q querier, c *lifecycle.Candidate) (*lifecycle.Candidate, error) {
	var lastActive, closeReason, offerType *string
	if c.LastActiveStage != nil {
		s := string(*c.LastActiveStage)
		lastActive = &s
	}
	if c.CloseReason != nil {
		s := string(*c.CloseReason)
		closeReason = &s
	}
	if c.OfferType != nil {
		s := string(*c.OfferType)
		offerType = &s
	}

	saved, err := scanCandidate(q.QueryRow(ctx,
		`UPDATE candidates SET
		   name = $2, email = $3, phone = $4, wechat_id = $5, linkedin_url = $6,
		   tech_tags = $7, work_auth = $8, city = $9, state = $10,
		   school = $11, major = $12, notes = $13,
		   stage = $14, sub_status = $15, last_active_stage = $16,
		   stage_updated_at = $17,
		   hold_reason = $18, next_follow_up_at = $19,
		   close_reason = $20, close_reason_note = $21,
		   withdraw_reason = $22, reactivate_reason = $23,
		   offer_type = $24, offer_date = $25, start_date = $26,
		   batch_id = $27, recruiter_id = $28, resume_ready = $29,
		   updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+candidateColumns,
		c.ID,
		c.Name, c.Email, c.Phone, c.WechatID, c.LinkedinURL,
		c.TechTags, c.WorkAuth, c.City, c.State,
		c.School, c.Major, c.Notes,
		string(c.Stage), string(c.SubStatus), lastActive,
		c.StageUpdatedAt,
		c.HoldReason, c.NextFollowUpAt,
		closeReason, c.CloseReasonNote,
		c.WithdrawReason, c.ReactivateReason,
		offerType, c.OfferDate, c.StartDate,
		c.BatchID, c.RecruiterID, c.ResumeReady,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updateCandidate: %w", err)
	}
	return saved, nil
}

// ─── Timeline events ─────────────────────────────────────────────────────────

const eventColumns = `
	id, candidate_id, event_type, sub_type, from_stage, to_stage, sub_status,
	close_reason, title, description, COALESCE(actor_id::text, ''), meta, event_date`

func scanEvent(row pgx.Row) (*lifecycle.TimelineEvent, error) {
	var (
		e                      lifecycle.TimelineEvent
		fromStage, toStage     *string
		subStatus, closeReason *string
		actor                  string
	)
	err := row.Scan(
		&e.ID, &e.CandidateID, (*string)(&e.EventType), &e.SubType,
		&fromStage, &toStage, &subStatus, &closeReason,
		&e.Title, &e.Description, &actor, &e.Meta, &e.EventDate,
	)
	if err != nil {
		return nil, err
	}
	if fromStage != nil {
		s := lifecycle.Stage(*fromStage)
		e.FromStage = &s
	}
	if toStage != nil {
		s := lifecycle.Stage(*toStage)
		e.ToStage = &s
	}
	if subStatus != nil {
		s := lifecycle.SubStatus(*subStatus)
		e.SubStatus = &s
	}
	if closeReason != nil {
		s := lifecycle.CloseReason(*closeReason)
		e.CloseReason = &s
	}
	if actor != "" {
		e.ActorID = &actor
	}
	return &e, nil
}

// appendEvent inserts one immutable timeline entry and returns the stored row.
func appendEvent(ctx context.Context, q querier, e *lifecycle.TimelineEvent) (*lifecycle.TimelineEvent, error) {
	var fromStage, toStage, subStatus, closeReason *string
	if e.FromStage != nil {
		s := string(*e.FromStage)
		fromStage = &s
	}
	if e.ToStage != nil {
		s := string(*e.ToStage)
		toStage = &s
	}
	if e.SubStatus != nil {
		s := string(*e.SubStatus)
		subStatus = &s
	}
	if e.CloseReason != nil {
		s := string(*e.CloseReason)
		closeReason = &s
	}

	saved, err := scanEvent(q.QueryRow(ctx,
		`INSERT INTO timeline_events (
		   candidate_id, event_type, sub_type, from_stage, to_stage, sub_status,
		   close_reason, title, description, actor_id, meta, event_date
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, COALESCE($12, NOW()))
		 RETURNING `+eventColumns,
		e.CandidateID, string(e.EventType), e.SubType, fromStage, toStage,
		subStatus, closeReason, e.Title, e.Description, e.ActorID, e.Meta,
		nullableTime(e.EventDate),
	))
	if err != nil {
		return nil, fmt.Errorf("appendEvent: %w", err)
	}
	return saved, nil
}

// listTimeline returns a candidate's events, newest first.
func listTimeline(ctx context.Context, q querier, candidateID string) ([]lifecycle.TimelineEvent, error) {
	rows, err := q.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM timeline_events
		 WHERE candidate_id = $1
		 ORDER BY event_date DESC, id DESC`,
		candidateID,
	)
	if err != nil {
		return nil, fmt.Errorf("listTimeline query: %w", err)
	}
	defer rows.Close()

	events := make([]lifecycle.TimelineEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("listTimeline scan: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// nullableTime maps the zero time to NULL so the column default applies.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// ─── Batches ─────────────────────────────────────────────────────────────────

// batchLabel resolves a batch id to its display name, falling back to the id.
func batchLabel(ctx context.Context, q querier, batchID string) (string, error) {
	var name *string
	err := q.QueryRow(ctx, `SELECT name FROM batches WHERE id = $1`, batchID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrBatchNotFound
	}
	if err != nil {
		return "", fmt.Errorf("batchLabel: %w", err)
	}
	if name == nil || *name == "" {
		return batchID, nil
	}
	return *name, nil
}

// ─── Mock records ────────────────────────────────────────────────────────────

// mockStore answers the engine's mock-gating lookups against the mocks table.
type mockStore struct {
	q querier
}

func (m *mockStore) HasScheduled(ctx context.Context, candidateID string, kind lifecycle.MockKind) (bool, error) {
	var exists bool
	err := m.q.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM mocks
		   WHERE candidate_id = $1 AND LOWER(stage) = LOWER($2)
		     AND scheduled_at IS NOT NULL
		 )`,
		candidateID, string(kind),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("hasScheduled: %w", err)
	}
	return exists, nil
}

func (m *mockStore) HasCompleted(ctx context.Context, candidateID string, kind lifecycle.MockKind) (bool, error) {
	var exists bool
	err := m.q.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM mocks
		   WHERE candidate_id = $1 AND LOWER(stage) = LOWER($2)
		     AND completed = true AND decision IS NOT NULL
		 )`,
		candidateID, string(kind),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("hasCompleted: %w", err)
	}
	return exists, nil
}
