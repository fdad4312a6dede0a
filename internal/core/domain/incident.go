package domain

import "time"

// IncidentPriority orders incidents for triage.
type IncidentPriority string

const (
	PriorityLow      IncidentPriority = "low"
	PriorityMedium   IncidentPriority = "medium"
	PriorityHigh     IncidentPriority = "high"
	PriorityCritical IncidentPriority = "critical"
)

// IncidentStatus is the lifecycle state of an incident.
type IncidentStatus string

const (
	IncidentOpen       IncidentStatus = "open"
	IncidentInProgress IncidentStatus = "in_progress"
	IncidentResolved   IncidentStatus = "resolved"
	IncidentClosed     IncidentStatus = "closed"
)

// Open reports whether the incident still needs work.
func (s IncidentStatus) Open() bool {
	return s != IncidentResolved && s != IncidentClosed
}

// Incident tracks a problem reported against a business.
type Incident struct {
	ID          int64            `json:"id"`
	BusinessID  int64            `json:"business_id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Priority    IncidentPriority `json:"priority"`
	Status      IncidentStatus   `json:"status"`
	Category    string           `json:"category,omitempty"`
	AssignedTo  string           `json:"assigned_to,omitempty"`
	Deadline    string           `json:"deadline,omitempty"` // YYYY-MM-DD, optional
	Resolution  string           `json:"resolution,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	// BusinessName is joined in by list queries, not persisted on the incident.
	BusinessName string `json:"business_name,omitempty"`
}

// Comment is a note appended to an incident thread.
type Comment struct {
	ID         int64     `json:"id"`
	IncidentID int64     `json:"incident_id"`
	Author     string    `json:"author"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
