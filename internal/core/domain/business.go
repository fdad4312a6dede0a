package domain

import "time"

// Business is a customer account the sales force works.
type Business struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Sector    string    `json:"sector,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Aggregates filled in by list queries, not persisted.
	TotalIncidents int64 `json:"total_incidents,omitempty"`
	OpenIncidents  int64 `json:"open_incidents,omitempty"`
}
