package export

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// State is the lifecycle state of a session's export
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// defaultGrace is how long past its deadline an export may run before the
// job is forcibly marked failed
const defaultGrace = 5 * time.Second

// Runner performs a synchronous export
type Runner interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// Status is a snapshot of a job
type Status struct {
	State      State     `json:"state"`
	Result     *Result   `json:"result,omitempty"`
	Err        error     `json:"-"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Job tracks the single export a session may have in flight. A second Start
// while one is running is rejected, never queued.
type Job struct {
	mu      sync.Mutex
	runner  Runner
	timeout time.Duration
	grace   time.Duration
	status  Status
	gen     uint64
	done    chan struct{}
}

// NewJob creates a job that runs exports through runner, each bounded by timeout
func NewJob(runner Runner, timeout time.Duration) *Job {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Job{
		runner:  runner,
		timeout: timeout,
		grace:   defaultGrace,
		status:  Status{State: StateNotStarted},
	}
}

// Start launches an export in the background. It returns ErrExportInProgress
// if the previous export has not finished. The export outlives ctx's
// cancellation but not the job timeout.
func (j *Job) Start(ctx context.Context, req Request) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status.State == StateInProgress {
		return ErrExportInProgress
	}

	j.gen++
	gen := j.gen
	j.status = Status{State: StateInProgress, StartedAt: time.Now()}
	j.done = make(chan struct{})

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), j.timeout)
	fallback := time.AfterFunc(j.timeout+j.grace, func() {
		j.finish(gen, nil, &TimeoutError{Message: fmt.Sprintf("export did not finish within %s", j.timeout)})
	})

	go func() {
		defer cancel()
		res, err := j.runner.Run(runCtx, req)
		fallback.Stop()
		j.finish(gen, res, err)
	}()
	return nil
}

// finish records the outcome of export gen. Outcomes of an export that was
// already reset or superseded are discarded.
func (j *Job) finish(gen uint64, res *Result, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if gen != j.gen || j.status.State != StateInProgress {
		log.Printf("[export] discarding late outcome of export #%d", gen)
		return
	}

	j.status.FinishedAt = time.Now()
	if err != nil {
		j.status.State = StateFailed
		j.status.Err = err
		j.status.Error = err.Error()
	} else {
		j.status.State = StateSucceeded
		j.status.Result = res
	}
	close(j.done)
}

// Status returns the current state of the job
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Wait blocks until the in-flight export finishes or ctx is done, and returns
// the resulting status. It returns immediately when nothing is in flight.
func (j *Job) Wait(ctx context.Context) (Status, error) {
	j.mu.Lock()
	if j.status.State != StateInProgress {
		st := j.status
		j.mu.Unlock()
		return st, nil
	}
	done := j.done
	j.mu.Unlock()

	select {
	case <-done:
		return j.Status(), nil
	case <-ctx.Done():
		return j.Status(), ctx.Err()
	}
}
