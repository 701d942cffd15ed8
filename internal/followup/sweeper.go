// Package followup wires up the cron job that periodically flags ON_HOLD
// candidates whose follow-up date has passed.
package followup

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// Sweeper wraps robfig/cron and manages the follow-up sweep loop.
type Sweeper struct {
	cron *cron.Cron
	pool *pgxpool.Pool
	rdb  *redis.Client
	spec string // cron spec, e.g. "@every 1h"
}

// New creates a Sweeper that fires every intervalHours hours.
func New(pool *pgxpool.Pool, rdb *redis.Client, intervalHours int) *Sweeper {
	return &Sweeper{
		cron: cron.New(cron.WithLogger(cron.DefaultLogger)),
		pool: pool,
		rdb:  rdb,
		spec: fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so overdue follow-ups surface without waiting for the first tick.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[followup] Cron started, spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runSweep(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Sweeper) Stop() {
	s.cron.Stop()
	log.Println("[followup] Cron stopped")
}

// runSweep publishes EVENT_FOLLOWUP_DUE for every ON_HOLD candidate whose
// next_follow_up_at has passed. Read-only: reminders never mutate candidate
// state or the timeline.
func (s *Sweeper) runSweep(ctx context.Context) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, COALESCE(hold_reason, ''), next_follow_up_at
		 FROM candidates
		 WHERE stage = 'ON_HOLD' AND next_follow_up_at <= NOW()
		 ORDER BY next_follow_up_at`,
	)
	if err != nil {
		log.Printf("[followup] sweep query error: %v", err)
		return
	}
	defer rows.Close()

	due := 0
	for rows.Next() {
		var (
			id, name, holdReason string
			followUpAt           time.Time
		)
		if err := rows.Scan(&id, &name, &holdReason, &followUpAt); err != nil {
			log.Printf("[followup] sweep scan error: %v", err)
			return
		}

		event, _ := json.Marshal(map[string]string{
			"type":           "EVENT_FOLLOWUP_DUE",
			"candidateId":    id,
			"name":           name,
			"holdReason":     holdReason,
			"nextFollowUpAt": followUpAt.UTC().Format(time.RFC3339),
		})
		if err := s.rdb.Publish(ctx, "EVENT_FOLLOWUP_DUE", event).Err(); err != nil {
			log.Printf("[followup] publish EVENT_FOLLOWUP_DUE failed: %v", err)
			continue
		}
		due++
	}
	if err := rows.Err(); err != nil {
		log.Printf("[followup] sweep rows error: %v", err)
		return
	}

	if due > 0 {
		log.Printf("[followup] Sweep complete: %d follow-up(s) due", due)
	}
}
