package export

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedRunner blocks each run until released
type gatedRunner struct {
	release chan struct{}
	runs    atomic.Int32
	err     error
}

func newGatedRunner() *gatedRunner {
	return &gatedRunner{release: make(chan struct{})}
}

func (g *gatedRunner) Run(ctx context.Context, _ Request) (*Result, error) {
	g.runs.Add(1)
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, &TimeoutError{Message: "runner", Cause: ctx.Err()}
	}
	if g.err != nil {
		return nil, g.err
	}
	return &Result{Bytes: []byte("%PDF-1.4"), PageCount: 1}, nil
}

// stuckRunner ignores its context and never returns until released
type stuckRunner struct {
	release chan struct{}
}

func (s *stuckRunner) Run(context.Context, Request) (*Result, error) {
	<-s.release
	return &Result{PageCount: 1}, nil
}

func TestJob_InitialState(t *testing.T) {
	j := NewJob(newGatedRunner(), time.Second)
	assert.Equal(t, StateNotStarted, j.Status().State)

	st, err := j.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateNotStarted, st.State)
}

func TestJob_SecondStartIsRejected(t *testing.T) {
	runner := newGatedRunner()
	j := NewJob(runner, 5*time.Second)

	require.NoError(t, j.Start(context.Background(), Request{}))
	err := j.Start(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrExportInProgress)
	assert.Equal(t, StateInProgress, j.Status().State)

	close(runner.release)
	st, err := j.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, st.State)
	assert.Equal(t, int32(1), runner.runs.Load(), "exactly one export ran")
	require.NotNil(t, st.Result)
	assert.Equal(t, 1, st.Result.PageCount)
}

func TestJob_CanRestartAfterFinishing(t *testing.T) {
	runner := newGatedRunner()
	close(runner.release)
	j := NewJob(runner, time.Second)

	require.NoError(t, j.Start(context.Background(), Request{}))
	_, err := j.Wait(context.Background())
	require.NoError(t, err)

	require.NoError(t, j.Start(context.Background(), Request{}))
	st, err := j.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, st.State)
	assert.Equal(t, int32(2), runner.runs.Load())
}

func TestJob_FailureIsRecorded(t *testing.T) {
	runner := newGatedRunner()
	runner.err = &FailureError{Message: "boom"}
	close(runner.release)
	j := NewJob(runner, time.Second)

	require.NoError(t, j.Start(context.Background(), Request{}))
	st, err := j.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateFailed, st.State)
	var failure *FailureError
	assert.ErrorAs(t, st.Err, &failure)
	assert.Contains(t, st.Error, "boom")
}

func TestJob_SurvivesCallerCancellation(t *testing.T) {
	runner := newGatedRunner()
	j := NewJob(runner, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, j.Start(ctx, Request{}))
	cancel()

	close(runner.release)
	st, err := j.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, st.State)
}

func TestJob_TimeoutFailsTheJob(t *testing.T) {
	j := NewJob(newGatedRunner(), 20*time.Millisecond)

	require.NoError(t, j.Start(context.Background(), Request{}))
	st, err := j.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateFailed, st.State)
	var timeout *TimeoutError
	assert.ErrorAs(t, st.Err, &timeout)
}

func TestJob_StuckExportIsResetAndLateResultDiscarded(t *testing.T) {
	runner := &stuckRunner{release: make(chan struct{})}
	j := NewJob(runner, 10*time.Millisecond)
	j.grace = 10 * time.Millisecond

	require.NoError(t, j.Start(context.Background(), Request{}))
	st, err := j.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateFailed, st.State)
	var timeout *TimeoutError
	assert.True(t, errors.As(st.Err, &timeout))

	// the stuck export finally returns; its success must not overwrite the reset
	close(runner.release)
	assert.Never(t, func() bool { return j.Status().State != StateFailed }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestJob_WaitHonoursContext(t *testing.T) {
	runner := newGatedRunner()
	j := NewJob(runner, 5*time.Second)
	require.NoError(t, j.Start(context.Background(), Request{}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	st, err := j.Wait(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateInProgress, st.State)
	close(runner.release)
}
