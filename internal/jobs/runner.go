// Package jobs provides a bounded background runner for fire-and-forget
// work such as dividend synchronization. Unlike a detached goroutine per
// request, the runner caps concurrency and keeps an observable record of
// every submitted job.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Job states.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Status is the observable completion record of one submitted job.
type Status struct {
	Name        string     `json:"name"`
	State       string     `json:"state"`
	SubmittedAt time.Time  `json:"submittedAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Runner executes submitted jobs on a bounded worker pool. Failures are
// logged and recorded in the job status; they never propagate to the
// submitting request.
type Runner struct {
	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
	logger *logrus.Logger

	// pending tracks submissions not yet handed to the group, so Shutdown
	// can wait for them before calling group.Wait.
	pending sync.WaitGroup

	mu     sync.Mutex
	status map[string]*Status
}

// NewRunner creates a Runner with at most workers concurrent jobs.
func NewRunner(workers int, logger *logrus.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	return &Runner{
		group:  group,
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
		status: make(map[string]*Status),
	}
}

// Submit schedules fn under the given name and returns immediately.
// A later submission with the same name replaces the visible status
// record. Returns false when the runner is shutting down.
func (r *Runner) Submit(name string, fn func(ctx context.Context) error) bool {
	select {
	case <-r.ctx.Done():
		return false
	default:
	}

	st := &Status{
		Name:        name,
		State:       StatusPending,
		SubmittedAt: time.Now().UTC(),
	}
	r.mu.Lock()
	r.status[name] = st
	r.mu.Unlock()

	// group.Go blocks while the pool is saturated; hand off so Submit
	// returns immediately even then.
	r.pending.Add(1)
	go r.enqueue(name, fn)

	return true
}

func (r *Runner) enqueue(name string, fn func(ctx context.Context) error) {
	defer r.pending.Done()

	r.group.Go(func() error {
		started := time.Now().UTC()
		r.setState(name, func(s *Status) {
			s.State = StatusRunning
			s.StartedAt = &started
		})

		err := fn(r.ctx)

		finished := time.Now().UTC()
		r.setState(name, func(s *Status) {
			s.FinishedAt = &finished
			if err != nil {
				s.State = StatusFailed
				s.Error = err.Error()
			} else {
				s.State = StatusSucceeded
			}
		})

		if err != nil {
			r.logger.WithField("job", name).WithError(err).Warn("background job failed")
		}

		// Job errors are reported through the status record only; returning
		// nil keeps one failure from cancelling the pool.
		return nil
	})
}

// JobStatus returns the status record of a named job.
func (r *Runner) JobStatus(name string) (Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.status[name]
	if !ok {
		return Status{}, false
	}
	return *st, true
}

// Statuses returns a snapshot of all job status records.
func (r *Runner) Statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Status, 0, len(r.status))
	for _, st := range r.status {
		out = append(out, *st)
	}
	return out
}

// Shutdown stops accepting jobs and waits for submitted ones to finish.
// Jobs still running observe a cancelled context.
func (r *Runner) Shutdown() {
	r.cancel()
	r.pending.Wait()
	_ = r.group.Wait()
}

func (r *Runner) setState(name string, update func(*Status)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.status[name]; ok {
		update(st)
	}
}
