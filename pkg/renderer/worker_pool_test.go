package renderer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_RunsEveryTaskOnce(t *testing.T) {
	tests := []struct {
		name       string
		numWorkers int
		maxPending int
		numTasks   int
	}{
		{"single worker", 1, 0, 50},
		{"four workers", 4, 0, 1000},
		{"more workers than tasks", 16, 0, 5},
		{"tight back-pressure", 3, 1, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewWorkerPool(WorkerPoolConfig{NumWorkers: tt.numWorkers, MaxPending: tt.maxPending}, NewDiscardLogger())
			pool.Start()

			runs := make([]atomic.Int32, tt.numTasks)
			for i := 0; i < tt.numTasks; i++ {
				i := i
				if err := pool.Submit(context.Background(), func() { runs[i].Add(1) }); err != nil {
					t.Fatalf("Submit %d failed: %v", i, err)
				}
			}

			if err := pool.Shutdown(); err != nil {
				t.Fatalf("Unexpected shutdown error: %v", err)
			}

			for i := range runs {
				if n := runs[i].Load(); n != 1 {
					t.Errorf("Task %d ran %d times, expected exactly once", i, n)
				}
			}
			if got := pool.Completed(); got != int64(tt.numTasks) {
				t.Errorf("Expected %d completed tasks, got %d", tt.numTasks, got)
			}
		})
	}
}

func TestWorkerPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{NumWorkers: 2}, NewDiscardLogger())
	pool.Start()

	if err := pool.Shutdown(); err != nil {
		t.Fatalf("Unexpected shutdown error: %v", err)
	}

	ran := false
	err := pool.Submit(context.Background(), func() { ran = true })
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Expected ErrPoolClosed, got %v", err)
	}
	if ran {
		t.Error("Task submitted after shutdown must not run")
	}
}

func TestWorkerPool_ShutdownIsIdempotent(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{NumWorkers: 2}, NewDiscardLogger())
	pool.Start()

	for i := 0; i < 3; i++ {
		if err := pool.Shutdown(); err != nil {
			t.Fatalf("Shutdown %d returned %v", i, err)
		}
	}
}

func TestWorkerPool_ShutdownDrainsUnstartedPool(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{NumWorkers: 2, MaxPending: 10}, NewDiscardLogger())

	var count atomic.Int32
	for i := 0; i < 10; i++ {
		if err := pool.Submit(context.Background(), func() { count.Add(1) }); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	if err := pool.Shutdown(); err != nil {
		t.Fatalf("Unexpected shutdown error: %v", err)
	}
	if count.Load() != 10 {
		t.Errorf("Expected all 10 queued tasks to run during shutdown, got %d", count.Load())
	}
}

func TestWorkerPool_PanicIsContained(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{NumWorkers: 2}, NewDiscardLogger())
	pool.Start()

	var count atomic.Int32
	for i := 0; i < 20; i++ {
		i := i
		err := pool.Submit(context.Background(), func() {
			if i == 7 {
				panic("boom")
			}
			count.Add(1)
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	err := pool.Shutdown()
	if err == nil {
		t.Fatal("Expected shutdown to report the panicked task")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("Expected error to carry the panic value, got %v", err)
	}
	if count.Load() != 19 {
		t.Errorf("Expected the other 19 tasks to run, got %d", count.Load())
	}
	if pool.Completed() != 20 {
		t.Errorf("Expected 20 completed tasks including the failure, got %d", pool.Completed())
	}
}

func TestWorkerPool_SubmitHonoursContext(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{NumWorkers: 1, MaxPending: 1}, NewDiscardLogger())
	pool.Start()

	release := make(chan struct{})
	started := make(chan struct{})
	if err := pool.Submit(context.Background(), func() {
		close(started)
		<-release
	}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	<-started

	// The only slot is taken, so the next submit must wait until the deadline
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.Submit(ctx, func() {})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}

	close(release)
	if err := pool.Shutdown(); err != nil {
		t.Fatalf("Unexpected shutdown error: %v", err)
	}
	if pool.Completed() != 1 {
		t.Errorf("Expected only the first task to complete, got %d", pool.Completed())
	}
}

func TestWorkerPool_ConcurrencyBoundedByWorkers(t *testing.T) {
	const numWorkers = 3
	pool := NewWorkerPool(WorkerPoolConfig{NumWorkers: numWorkers}, NewDiscardLogger())
	pool.Start()

	var mu sync.Mutex
	running, peak := 0, 0
	for i := 0; i < 60; i++ {
		err := pool.Submit(context.Background(), func() {
			mu.Lock()
			running++
			peak = max(peak, running)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	if err := pool.Shutdown(); err != nil {
		t.Fatalf("Unexpected shutdown error: %v", err)
	}
	if peak > numWorkers {
		t.Errorf("Observed %d concurrent tasks with only %d workers", peak, numWorkers)
	}
}

func TestWorkerPool_NilTask(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{NumWorkers: 1}, NewDiscardLogger())
	defer pool.Shutdown()

	if err := pool.Submit(context.Background(), nil); err == nil {
		t.Error("Expected an error for a nil task")
	}
}

func TestDefaultWorkerCount(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		t.Setenv(WorkersEnvVar, "3")
		if got := DefaultWorkerCount(); got != 3 {
			t.Errorf("Expected 3 workers from %s, got %d", WorkersEnvVar, got)
		}
	})

	for _, value := range []string{"abc", "0", "-2", "100000"} {
		t.Run("ignored "+value, func(t *testing.T) {
			t.Setenv(WorkersEnvVar, value)
			if got := DefaultWorkerCount(); got < 1 {
				t.Errorf("Expected at least one worker, got %d", got)
			}
		})
	}

	t.Run("pool uses default", func(t *testing.T) {
		t.Setenv(WorkersEnvVar, "5")
		pool := NewWorkerPool(WorkerPoolConfig{}, NewDiscardLogger())
		defer pool.Shutdown()
		if pool.NumWorkers() != 5 {
			t.Errorf("Expected 5 workers, got %d", pool.NumWorkers())
		}
	})
}
