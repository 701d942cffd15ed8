package lifecycle

import "time"

// CloseReason classifies why a candidate was eliminated.
type CloseReason string

const (
	// Voluntary exits
	CloseReturnedHome     CloseReason = "RETURNED_HOME"
	CloseFoundFulltime    CloseReason = "FOUND_FULLTIME"
	CloseOtherOpportunity CloseReason = "OTHER_OPPORTUNITY"

	// Performance / behavior
	CloseNoHomework    CloseReason = "NO_HOMEWORK"
	CloseBehaviorIssue CloseReason = "BEHAVIOR_ISSUE"
	CloseNoResponse    CloseReason = "NO_RESPONSE"
)

// OfferType classifies the engagement model of an accepted offer.
type OfferType string

const (
	OfferFulltime       OfferType = "FULLTIME"
	OfferContract       OfferType = "CONTRACT"
	OfferContractToHire OfferType = "CONTRACT_TO_HIRE"
	OfferInternship     OfferType = "INTERNSHIP"
)

// Candidate is the mutable profile plus current lifecycle state. It is the
// JSON shape returned to the Gateway and the row shape in PostgreSQL.
type Candidate struct {
	ID string `json:"id"`

	// Profile
	Name         string  `json:"name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	WechatID     *string `json:"wechatId"`
	LinkedinURL  *string `json:"linkedinUrl"`
	TechTags     *string `json:"techTags"`
	WorkAuth     *string `json:"workAuth"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	School       *string `json:"school"`
	Major        *string `json:"major"`
	Notes        *string `json:"notes"`

	// Lifecycle state
	Stage           Stage      `json:"stage"`
	SubStatus       SubStatus  `json:"subStatus"`
	LastActiveStage *Stage     `json:"lastActiveStage"` // only meaningful while Stage == ON_HOLD
	StageUpdatedAt  *time.Time `json:"stageUpdatedAt"`

	// Hold / close / reactivate metadata
	HoldReason       *string      `json:"holdReason"`
	NextFollowUpAt   *time.Time   `json:"nextFollowUpAt"`
	CloseReason      *CloseReason `json:"closeReason"`
	CloseReasonNote  *string      `json:"closeReasonNote"`
	WithdrawReason   *string      `json:"withdrawReason"`
	ReactivateReason *string      `json:"reactivateReason"`

	// Offer and placement
	OfferType *OfferType `json:"offerType"`
	OfferDate *time.Time `json:"offerDate"`
	StartDate *time.Time `json:"startDate"`

	// References
	BatchID     *string `json:"batchId"` // nil until assigned after screening
	RecruiterID *string `json:"recruiterId"`

	// Readiness
	ResumeReady bool `json:"resumeReady"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TransitionRequest carries a requested stage change. Consumed once, never
// persisted.
type TransitionRequest struct {
	ToStage          Stage        `json:"toStage"`
	ToSubStatus      *SubStatus   `json:"toSubStatus"` // default applied if absent
	Reason           string       `json:"reason"`
	CloseReason      *CloseReason `json:"closeReason"`
	WithdrawReason   string       `json:"withdrawReason"`
	HoldReason       string       `json:"holdReason"`
	NextFollowUpAt   *time.Time   `json:"nextFollowUpAt"`
	ReactivateReason string       `json:"reactivateReason"`
	OfferType        *OfferType   `json:"offerType"`
	OfferDate        *time.Time   `json:"offerDate"`
	StartDate        *time.Time   `json:"startDate"`
	ActorID          string       `json:"actorId"`
}
