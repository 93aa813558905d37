package renderer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/shirou/gopsutil/cpu"
	"golang.org/x/sync/semaphore"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
)

// Task is a unit of work executed by exactly one worker
type Task func()

// ErrPoolClosed is returned when submitting to a pool that has been shut down
var ErrPoolClosed = errors.New("worker pool is closed")

// WorkersEnvVar overrides the default worker count when set to a positive integer
const WorkersEnvVar = "PATHTRACER_WORKERS"

const maxEnvWorkers = 128

// DefaultWorkerCount returns the number of workers to use when none is configured:
// the PATHTRACER_WORKERS override, else the logical CPU count.
func DefaultWorkerCount() int {
	if envWorkers := os.Getenv(WorkersEnvVar); envWorkers != "" {
		if n, err := strconv.Atoi(envWorkers); err == nil && n > 0 && n <= maxEnvWorkers {
			return n
		}
	}

	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}

	return max(1, runtime.NumCPU())
}

// WorkerPoolConfig contains worker pool sizing
type WorkerPoolConfig struct {
	NumWorkers int // Number of worker goroutines (0 = DefaultWorkerCount)
	MaxPending int // Upper bound on queued plus running tasks (0 = 4 per worker)
}

// WorkerPool executes submitted tasks on a fixed set of worker goroutines.
// Submit blocks once MaxPending tasks are outstanding. Shutdown stops intake,
// lets the workers drain every task already queued and waits for them to exit.
type WorkerPool struct {
	taskQueue  chan Task
	numWorkers int
	pending    *semaphore.Weighted
	logger     core.Logger
	wg         sync.WaitGroup

	mu     sync.RWMutex // guards closed and sends on taskQueue
	closed bool

	startOnce sync.Once
	stopOnce  sync.Once
	stopErr   error

	completed atomic.Int64

	failuresMu sync.Mutex
	failures   []error
}

// NewWorkerPool creates a worker pool. Workers do not run until Start is called.
func NewWorkerPool(config WorkerPoolConfig, logger core.Logger) *WorkerPool {
	if config.NumWorkers <= 0 {
		config.NumWorkers = DefaultWorkerCount()
	}
	if config.MaxPending <= 0 {
		config.MaxPending = 4 * config.NumWorkers
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}

	return &WorkerPool{
		// The semaphore caps outstanding tasks at MaxPending, so sends never block
		taskQueue:  make(chan Task, config.MaxPending),
		numWorkers: config.NumWorkers,
		pending:    semaphore.NewWeighted(int64(config.MaxPending)),
		logger:     logger,
	}
}

// Start launches the workers. Calling it more than once has no effect.
func (wp *WorkerPool) Start() {
	wp.startOnce.Do(func() {
		for i := 0; i < wp.numWorkers; i++ {
			wp.wg.Add(1)
			go wp.run(i)
		}
	})
}

// Submit queues a task for execution, blocking while the pool is saturated.
// It returns ErrPoolClosed after Shutdown and ctx.Err() if ctx ends first.
func (wp *WorkerPool) Submit(ctx context.Context, task Task) error {
	if task == nil {
		return errors.New("worker pool: nil task")
	}
	if wp.isClosed() {
		return ErrPoolClosed
	}

	if err := wp.pending.Acquire(ctx, 1); err != nil {
		return err
	}

	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		wp.pending.Release(1)
		return ErrPoolClosed
	}
	wp.taskQueue <- task
	return nil
}

// Shutdown stops accepting tasks, waits for every queued task to finish and
// returns the joined errors of tasks that panicked. Safe to call repeatedly.
func (wp *WorkerPool) Shutdown() error {
	wp.stopOnce.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue) // wakes every idle worker
		wp.mu.Unlock()

		// Queued tasks still run if the pool was never started
		wp.Start()
		wp.wg.Wait()

		wp.failuresMu.Lock()
		wp.stopErr = errors.Join(wp.failures...)
		wp.failuresMu.Unlock()
	})
	return wp.stopErr
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// Completed returns the number of tasks that have finished, including failed ones
func (wp *WorkerPool) Completed() int64 {
	return wp.completed.Load()
}

func (wp *WorkerPool) isClosed() bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	return wp.closed
}

// run is the main worker loop
func (wp *WorkerPool) run(id int) {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		wp.execute(id, task)
		wp.pending.Release(1)
	}
}

// execute runs one task, converting a panic into a recorded failure so the worker survives
func (wp *WorkerPool) execute(id int, task Task) {
	defer wp.completed.Add(1)
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("worker %d: task panicked: %v", id, r)
			wp.logger.Printf("%v\n", err)

			wp.failuresMu.Lock()
			wp.failures = append(wp.failures, err)
			wp.failuresMu.Unlock()
		}
	}()

	task()
}
