package internal

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPeriodicTaskStop(t *testing.T) {
	var calls atomic.Int32
	task := NewPeriodicTask("count", 5*time.Millisecond, func() { calls.Add(1) }, nil)
	task.Start(context.Background())

	waitFor(t, func() bool { return calls.Load() >= 2 })

	task.Stop()
	task.Stop()
	<-task.Done()

	stoppedAt := calls.Load()
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != stoppedAt {
		t.Errorf("task ran after Stop: %d calls, want %d", calls.Load(), stoppedAt)
	}
}

func TestPeriodicTaskRecoversPanics(t *testing.T) {
	var calls atomic.Int32
	task := NewPeriodicTask("panic", 5*time.Millisecond, func() {
		if calls.Add(1) == 1 {
			panic("first call fails")
		}
	}, nil)
	task.Start(context.Background())
	defer task.Stop()

	waitFor(t, func() bool { return calls.Load() >= 3 })
}

func TestPeriodicTaskContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	task := NewPeriodicTask("ctx", time.Hour, func() {}, nil)

	errc := make(chan error, 1)
	go func() { errc <- task.Run(ctx) }()

	cancel()
	if err := <-errc; err != nil {
		t.Errorf("Run() = %v", err)
	}
	task.Stop()
}

func TestPeriodicTaskRunsOnce(t *testing.T) {
	task := NewPeriodicTask("once", time.Hour, func() {}, nil)
	task.Start(context.Background())
	waitFor(t, task.started.Load)

	if err := task.Run(context.Background()); !errors.Is(err, ErrTaskStarted) {
		t.Errorf("second Run() = %v, want %v", err, ErrTaskStarted)
	}

	task.Stop()
	<-task.Done()
	if err := task.Run(context.Background()); !errors.Is(err, ErrTaskStarted) {
		t.Errorf("Run() after stop = %v, want %v", err, ErrTaskStarted)
	}
}
