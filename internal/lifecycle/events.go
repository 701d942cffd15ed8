package lifecycle

import (
	"encoding/json"
	"time"
)

// EventType tags a timeline event category.
type EventType string

const (
	EventCandidateCreated EventType = "CANDIDATE_CREATED"
	EventStageChanged     EventType = "STAGE_CHANGED"
	EventSubStatusChanged EventType = "SUBSTATUS_CHANGED"
	EventOnHold           EventType = "ON_HOLD"
	EventEliminated       EventType = "ELIMINATED"
	EventWithdrawn        EventType = "WITHDRAWN"
	EventReactivated      EventType = "REACTIVATED"
	EventOffered          EventType = "OFFERED"
	EventPlaced           EventType = "PLACED"
	EventBatch            EventType = "BATCH"
	EventNote             EventType = "NOTE"
)

// TimelineEvent is one immutable entry in a candidate's audit trail.
// Events are appended by the lifecycle service and never updated or deleted.
type TimelineEvent struct {
	ID          string          `json:"id"`
	CandidateID string          `json:"candidateId"`
	EventType   EventType       `json:"eventType"`
	SubType     *string         `json:"subType"`
	FromStage   *Stage          `json:"fromStage"`
	ToStage     *Stage          `json:"toStage"`
	SubStatus   *SubStatus      `json:"subStatus"`
	CloseReason *CloseReason    `json:"closeReason"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	ActorID     *string         `json:"actorId"`
	Meta        json.RawMessage `json:"meta"`
	EventDate   time.Time       `json:"eventDate"`
}

// stageTitles maps the entered stage to the generic transition headline.
// Terminal-ish targets and reactivations override these (see transitionTitle).
var stageTitles = map[Stage]string{
	StageTraining:  "Joined Training",
	StageResume:    "Entered Resume Prep",
	StageMocking:   "Entered Mocking",
	StageMarketing: "Entered Marketing",
	StageOffered:   "Offer Received",
	StagePlaced:    "Placed Successfully",
}

// resolveEventType derives the event category for a stage transition.
// Precedence: hold/close/withdraw/offer/place by target, then reactivation
// by source, then the generic stage change.
func resolveEventType(from, to Stage) EventType {
	switch to {
	case StageOnHold:
		return EventOnHold
	case StageEliminated:
		return EventEliminated
	case StageWithdrawn:
		return EventWithdrawn
	case StageOffered:
		return EventOffered
	case StagePlaced:
		return EventPlaced
	}
	if from == StageEliminated || from == StageWithdrawn {
		return EventReactivated
	}
	return EventStageChanged
}

// transitionTitle derives the human headline for a stage transition.
func transitionTitle(from, to Stage) string {
	switch to {
	case StageOnHold:
		return "Placed On Hold"
	case StageEliminated:
		return "Closed"
	case StageWithdrawn:
		return "Withdrawn"
	}
	if from == StageEliminated || from == StageWithdrawn {
		return "Reactivated"
	}
	if title, ok := stageTitles[to]; ok {
		return title
	}
	return string(to)
}

// optional turns a non-blank string into a nullable description.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// optionalActor turns a non-blank actor id into a nullable reference.
func optionalActor(actorID string) *string {
	return optional(actorID)
}
