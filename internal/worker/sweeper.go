package worker

import (
	"time"

	"github.com/amankumarsingh77/vidhost/internal/metrics"
	"github.com/amankumarsingh77/vidhost/pkg/logger"
	"github.com/robfig/cron/v3"
)

type staleSweeper interface {
	SweepStale(maxAge time.Duration) (int, error)
}

// Sweeper periodically removes staged files left behind by crashed uploads.
type Sweeper struct {
	cron     *cron.Cron
	stager   staleSweeper
	maxAge   time.Duration
	schedule string
	logger   logger.Logger
}

func NewSweeper(stager staleSweeper, schedule string, maxAge time.Duration, log logger.Logger) *Sweeper {
	return &Sweeper{
		cron:     cron.New(cron.WithSeconds()),
		stager:   stager,
		maxAge:   maxAge,
		schedule: schedule,
		logger:   log,
	}
}

func (s *Sweeper) Sweep() int {
	removed, err := s.stager.SweepStale(s.maxAge)
	if removed > 0 {
		metrics.StagingSwept.Add(float64(removed))
		s.logger.Infow("swept stale staged files", "removed", removed)
	}
	if err != nil {
		s.logger.Warnw("staging sweep incomplete", "error", err)
	}
	return removed
}

func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.Sweep() }); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
