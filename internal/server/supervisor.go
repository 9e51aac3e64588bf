package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// scanInterval is the supervisor cadence
const scanInterval = 1 * time.Second

// Supervisor periodically sweeps the live games for expired turns.
// Expiry itself runs on the owning lane, so the supervisor never
// touches game state directly.
type Supervisor struct {
	service *Service
	clock   quartz.Clock
	log     *log.Logger
}

func NewSupervisor(service *Service, clock quartz.Clock, logger *log.Logger) *Supervisor {
	return &Supervisor{
		service: service,
		clock:   clock,
		log:     logger.WithPrefix("supervisor"),
	}
}

// Run scans until the context is cancelled
func (s *Supervisor) Run(ctx context.Context) error {
	s.log.Info("timer supervisor started", "interval", scanInterval)
	ticker := s.clock.TickerFunc(ctx, scanInterval, func() error {
		s.Scan()
		return nil
	}, "supervisor")

	err := ticker.Wait()
	if err == context.Canceled || err == context.DeadlineExceeded {
		return nil
	}
	return err
}

// Scan posts an expiry check to every live lane
func (s *Supervisor) Scan() {
	now := s.clock.Now()
	for _, l := range s.service.Lanes() {
		l := l
		l.post(func() { l.expireTurn(now) })
	}
}
