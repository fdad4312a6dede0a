package domain

import "time"

// Session is a server-held proof of a successful login, referenced by an
// opaque token carried in a cookie. A session is valid while it exists and
// the current time has not passed ExpiresAt.
type Session struct {
	Token     string    `json:"-"`
	AgentID   int64     `json:"agent_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given instant.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
