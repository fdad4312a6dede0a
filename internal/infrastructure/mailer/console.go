package mailer

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/trackercrm/tracker-api/internal/core/ports"
)

// ConsoleSender logs outbound mail instead of delivering it. Selected at
// startup when the SMTP configuration is missing or still holds placeholders,
// so password recovery keeps working in development: the reset link shows up
// in the logs.
type ConsoleSender struct {
	log zerolog.Logger
}

func NewConsoleSender(log zerolog.Logger) *ConsoleSender {
	return &ConsoleSender{log: log}
}

func (s *ConsoleSender) Send(_ context.Context, msg ports.Email) error {
	s.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("mail delivery disabled, printing message")
	s.log.Info().Msg(msg.TextBody)
	return nil
}
