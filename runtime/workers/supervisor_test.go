package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type workerFunc func(ctx context.Context) error

func (f workerFunc) Run(ctx context.Context) error { return f(ctx) }

func TestSupervisor_RestartOnPanic(t *testing.T) {
	req := require.New(t)
	log := slog.Default()

	var calls int64
	panicking := workerFunc(func(ctx context.Context) error {
		atomic.AddInt64(&calls, 1)
		panic("boom")
	})

	sup := NewSupervisor(log, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	go sup.Add(panicking).Run(ctx)

	// Waiting for panics and restarts
	time.Sleep(400 * time.Millisecond)

	req.GreaterOrEqual(atomic.LoadInt64(&calls), int64(2))
}

func TestSupervisor_StopOnSuccess(t *testing.T) {
	req := require.New(t)
	log := slog.Default()

	var calls int64
	// Given a worker running only once
	succeeding := workerFunc(func(ctx context.Context) error {
		atomic.AddInt64(&calls, 1)
		return nil
	})

	sup := NewSupervisor(log, 50*time.Millisecond)

	// Given a channel to notify when Run() terminated
	done := make(chan struct{})

	go func() {
		sup.Add(succeeding).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
		// Then supervisor detected a success, returned nil and stopped
		req.Equal(int64(1), atomic.LoadInt64(&calls))
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have stopped after worker success")
	}
}

func TestSupervisor_Stop_Cancels_Workers(t *testing.T) {
	req := require.New(t)
	log := slog.Default()

	blocking := workerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	sup := NewSupervisor(log, 50*time.Millisecond)
	done := make(chan struct{})

	go func() {
		sup.Add(blocking).Run(context.Background())
		close(done)
	}()

	// Let the worker start before stopping
	time.Sleep(50 * time.Millisecond)
	sup.Stop()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have stopped after Stop()")
	}
}
