package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/trackercrm/tracker-api/internal/api/metrics"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

const defaultSweepInterval = time.Hour

// Sweeper periodically purges expired sessions and reset tokens. Expiry is
// enforced lazily on every lookup; the sweeper only keeps the collections from
// accumulating dead rows.
type Sweeper struct {
	sessions ports.SessionRepository
	resets   ports.ResetTokenRepository
	interval time.Duration
	log      zerolog.Logger
}

func NewSweeper(sessions ports.SessionRepository, resets ports.ResetTokenRepository, interval time.Duration, log zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Sweeper{sessions: sessions, resets: resets, interval: interval, log: log}
}

// Start runs the sweep loop until ctx is cancelled. One sweep happens
// immediately on start.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		s.sweep(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *Sweeper) sweep(ctx context.Context) {
	sessions, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("session sweep failed")
	} else if sessions > 0 {
		metrics.SessionsRevokedTotal.WithLabelValues("expired").Add(float64(sessions))
	}
	resets, err := s.resets.DeleteExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("reset token sweep failed")
	}
	if sessions > 0 || resets > 0 {
		s.log.Info().Int64("sessions", sessions).Int64("reset_tokens", resets).Msg("expired credentials swept")
	}
}
