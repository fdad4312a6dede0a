package domain

import "errors"

// Authentication and authorization failures. The gateway collapses these into
// uniform user-facing messages so a caller cannot tell which check failed.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("inactive account")
	ErrNoSession          = errors.New("no session")
	ErrExpiredSession     = errors.New("expired session")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrWeakPassword       = errors.New("password too short")
	ErrForbidden          = errors.New("access forbidden")
)

// Entity lookup failures.
var (
	ErrAgentNotFound    = errors.New("agent not found")
	ErrBusinessNotFound = errors.New("business not found")
	ErrIncidentNotFound = errors.New("incident not found")
	ErrActivityNotFound = errors.New("activity not found")
	ErrCommentNotFound  = errors.New("comment not found")
)

// ErrStorageUnavailable marks a transient backend fault, distinct from
// not-found. It propagates to the client as a 5xx.
var ErrStorageUnavailable = errors.New("storage unavailable")
