package scheduler

import (
	"context"
	"time"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/wb-go/wbf/logger"
)

type seatAuditor interface {
	AuditSeats(ctx context.Context) ([]*domain.Listing, error)
}

// Scheduler periodically brings listings whose seat count drifted out of
// [0, total] back into range.
type Scheduler struct {
	auditor  seatAuditor
	interval time.Duration
	logger   logger.Logger
}

func New(
	auditor seatAuditor,
	interval time.Duration,
	logger logger.Logger,
) *Scheduler {
	return &Scheduler{
		auditor:  auditor,
		interval: interval,
		logger:   logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("seat audit scheduler started",
		logger.Duration("interval", s.interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("seat audit scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	repaired, err := s.auditor.AuditSeats(ctx)
	if err != nil {
		s.logger.Error("seat audit failed",
			logger.String("error", err.Error()),
		)
		return
	}

	for _, l := range repaired {
		s.logger.Warn("listing seats repaired",
			logger.String("listing_id", l.ID),
			logger.Int("available_seats", l.AvailableSeats),
			logger.Int("total_seats", l.TotalSeats),
		)
	}
}
