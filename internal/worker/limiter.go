package worker

import (
	"context"
	"errors"
	"time"

	"github.com/amankumarsingh77/vidhost/internal/config"
	"github.com/amankumarsingh77/vidhost/internal/media"
	"github.com/amankumarsingh77/vidhost/internal/metrics"
	"github.com/amankumarsingh77/vidhost/internal/videos"
	"github.com/amankumarsingh77/vidhost/pkg/logger"
	"github.com/amankumarsingh77/vidhost/pkg/utils"
	"golang.org/x/sync/semaphore"
)

const defaultCPUCheckInterval = 2 * time.Second

// Limiter bounds how many transcodes run at once and holds new ones back while
// the host is busy. It has the same shape as the transcoder it wraps.
type Limiter struct {
	next     videos.Transcoder
	sem      *semaphore.Weighted
	maxCPU   float64
	interval time.Duration
	cpuCheck func(max float64) (bool, float64)
	logger   logger.Logger
}

func NewLimiter(next videos.Transcoder, cfg config.WorkerConfig, log logger.Logger) *Limiter {
	l := &Limiter{
		next:     next,
		maxCPU:   cfg.MaxCPUUsage,
		interval: cfg.CPUCheckInterval,
		cpuCheck: utils.CheckCPUUsage,
		logger:   log,
	}
	if cfg.MaxConcurrentTranscodes > 0 {
		l.sem = semaphore.NewWeighted(int64(cfg.MaxConcurrentTranscodes))
	}
	if l.interval <= 0 {
		l.interval = defaultCPUCheckInterval
	}
	return l
}

func admissionError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return media.Fail(media.KindTimeout, err, "waiting for transcode slot")
	}
	return media.Fail(media.KindCanceled, err, "waiting for transcode slot")
}

func (l *Limiter) acquire(ctx context.Context) error {
	if l.sem == nil {
		return nil
	}
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return admissionError(ctx, err)
	}
	return nil
}

func (l *Limiter) release() {
	if l.sem != nil {
		l.sem.Release(1)
	}
}

// waitForCPU polls until usage drops to the ceiling. A zero ceiling disables the gate.
func (l *Limiter) waitForCPU(ctx context.Context) error {
	if l.maxCPU <= 0 {
		return nil
	}
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		ok, usage := l.cpuCheck(l.maxCPU)
		if ok {
			return nil
		}
		l.logger.Infof("CPU usage is high: %.1f%%, holding transcode", usage)
		select {
		case <-ctx.Done():
			return admissionError(ctx, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Transcode waits for a slot and then starts the job. The slot is held until the job ends.
func (l *Limiter) Transcode(ctx context.Context, spec media.TranscodeSpec) (*media.Job, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	if err := l.waitForCPU(ctx); err != nil {
		l.release()
		return nil, err
	}

	job, err := l.next.Transcode(ctx, spec)
	if err != nil {
		l.release()
		return nil, err
	}

	metrics.TranscodesInFlight.Inc()
	go func() {
		<-job.Done()
		metrics.TranscodesInFlight.Dec()
		l.release()
	}()
	return job, nil
}
