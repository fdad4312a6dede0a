package domain

import "time"

// ResetToken is a single-use, time-bound credential authorizing exactly one
// password change. It is consumable iff it has not been used and has not
// expired; the used flag flips to true atomically with the password update it
// authorizes.
type ResetToken struct {
	Token     string    `json:"-"`
	AgentID   int64     `json:"agent_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// Consumable reports whether the token may still authorize a password change.
func (t ResetToken) Consumable(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
