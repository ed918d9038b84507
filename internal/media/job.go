package media

import (
	"sync"
	"sync/atomic"

	"github.com/amankumarsingh77/vidhost/internal/models"
)

// Reporter forwards a percent-complete value. Values that do not advance are dropped.
type Reporter func(percent int)

// Job is an awaitable unit of work with a finite progress stream.
type Job struct {
	progress chan int
	done     chan struct{}
	state    atomic.Int32
	err      error

	mu     sync.Mutex
	last   int
	closed bool
}

// NewJob runs fn in its own goroutine. Progress holds at most one value per
// percentage point so it never blocks fn, whether or not anyone reads it.
func NewJob(fn func(report Reporter) error) *Job {
	j := &Job{
		progress: make(chan int, 101),
		done:     make(chan struct{}),
		last:     -1,
	}
	j.state.Store(int32(models.JobPending))
	go j.run(fn)
	return j
}

func (j *Job) run(fn func(report Reporter) error) {
	j.state.Store(int32(models.JobRunning))
	err := fn(j.report)
	if err == nil {
		j.report(100)
	}

	j.mu.Lock()
	j.closed = true
	close(j.progress)
	j.mu.Unlock()

	j.err = err
	if err != nil {
		j.state.Store(int32(models.JobFailed))
	} else {
		j.state.Store(int32(models.JobSucceeded))
	}
	close(j.done)
}

func (j *Job) report(percent int) {
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed || percent <= j.last {
		return
	}
	j.last = percent
	j.progress <- percent
}

// Progress yields strictly increasing percentages and is closed when the job ends.
func (j *Job) Progress() <-chan int {
	return j.progress
}

func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job ends and returns its terminal error.
func (j *Job) Wait() error {
	<-j.done
	return j.err
}

func (j *Job) State() models.JobState {
	return models.JobState(j.state.Load())
}
