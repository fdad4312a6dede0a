package domain

import "time"

// ActivityType classifies what an agent did with a business.
type ActivityType string

const (
	ActivityVisit    ActivityType = "visit"
	ActivityCall     ActivityType = "call"
	ActivityEmail    ActivityType = "email"
	ActivityMeeting  ActivityType = "meeting"
	ActivityDemo     ActivityType = "demo"
	ActivityProposal ActivityType = "proposal"
	ActivityClosing  ActivityType = "closing"
	ActivityOther    ActivityType = "other"
)

// ActivityStatus is the lifecycle state of an activity.
type ActivityStatus string

const (
	ActivityPending   ActivityStatus = "pending"
	ActivityCompleted ActivityStatus = "completed"
	ActivityCancelled ActivityStatus = "cancelled"
)

// Activity records one unit of commercial work performed by an agent,
// optionally tied to a business. Listings are always filtered by the caller's
// visibility set.
type Activity struct {
	ID          int64          `json:"id"`
	AgentID     int64          `json:"agent_id"`
	BusinessID  int64          `json:"business_id,omitempty"`
	Type        ActivityType   `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Outcome     string         `json:"outcome,omitempty"`
	Status      ActivityStatus `json:"status"`
	Date        string         `json:"date"` // YYYY-MM-DD
	DurationMin int            `json:"duration_min"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// Joined in by list queries.
	AgentName    string `json:"agent_name,omitempty"`
	BusinessName string `json:"business_name,omitempty"`
}
