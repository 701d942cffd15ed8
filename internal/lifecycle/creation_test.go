package lifecycle_test

import (
	"testing"

	"github.com/B1gO/vic-crm/internal/lifecycle"
)

func TestNewCandidate_Defaults(t *testing.T) {
	c := lifecycle.NewCandidate(lifecycle.Candidate{ID: "cand-1", Name: "Wei Zhang"})

	if c.Stage != lifecycle.StageSourcing {
		t.Errorf("stage = %s, want SOURCING", c.Stage)
	}
	if c.SubStatus != lifecycle.SubSourced {
		t.Errorf("subStatus = %s, want SOURCED", c.SubStatus)
	}
	if c.StageUpdatedAt == nil {
		t.Error("stageUpdatedAt should be set on creation")
	}
}

func TestNewCandidate_KeepsExplicitState(t *testing.T) {
	c := lifecycle.NewCandidate(lifecycle.Candidate{
		ID:        "cand-1",
		Name:      "Wei Zhang",
		Stage:     lifecycle.StageSourcing,
		SubStatus: lifecycle.SubContacted,
	})
	if c.SubStatus != lifecycle.SubContacted {
		t.Errorf("subStatus = %s, want CONTACTED", c.SubStatus)
	}
}

func TestCreationEvents_NoBatch(t *testing.T) {
	c := lifecycle.NewCandidate(lifecycle.Candidate{ID: "cand-1", Name: "Wei Zhang"})

	got, events := lifecycle.CreationEvents(c, "")
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].EventType != lifecycle.EventCandidateCreated {
		t.Errorf("eventType = %s, want %s", events[0].EventType, lifecycle.EventCandidateCreated)
	}
	if events[0].Title != "Candidate Created" {
		t.Errorf("title = %q, want %q", events[0].Title, "Candidate Created")
	}
	if got.SubStatus != lifecycle.SubSourced {
		t.Errorf("subStatus = %s, want SOURCED", got.SubStatus)
	}
}

func TestCreationEvents_BatchAutoAdvance(t *testing.T) {
	c := lifecycle.NewCandidate(lifecycle.Candidate{
		ID:      "cand-1",
		Name:    "Wei Zhang",
		BatchID: str("batch-7"),
	})

	got, events := lifecycle.CreationEvents(c, "Java 2025-Q3")
	if len(events) != 2 {
		t.Fatalf("expected two events, got %d", len(events))
	}
	if got.SubStatus != lifecycle.SubBatchAssigned {
		t.Errorf("subStatus = %s, want BATCH_ASSIGNED", got.SubStatus)
	}
	batch := events[1]
	if batch.EventType != lifecycle.EventBatch {
		t.Errorf("eventType = %s, want %s", batch.EventType, lifecycle.EventBatch)
	}
	if batch.Title != "Batch Assigned" {
		t.Errorf("title = %q, want %q", batch.Title, "Batch Assigned")
	}
	if batch.SubType == nil || *batch.SubType != "batch_assigned" {
		t.Error("batch event should carry the batch_assigned subType")
	}
	if batch.Description == nil || *batch.Description != "Assigned to batch Java 2025-Q3." {
		t.Errorf("description = %v, want batch label mention", batch.Description)
	}
}

func TestBatchAssigned_OutsideSourcingKeepsSubStatus(t *testing.T) {
	c := testCandidate(lifecycle.StageTraining, lifecycle.SubInTraining)

	got, events := lifecycle.BatchAssigned(c, "Java 2025-Q3")
	if got.SubStatus != lifecycle.SubInTraining {
		t.Errorf("subStatus = %s, want IN_TRAINING (unchanged outside SOURCING)", got.SubStatus)
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
}
