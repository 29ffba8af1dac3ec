package analyzer

import (
	"runtime"
	"sync"
)

// WorkerPool fans batch image analysis out across a fixed set of goroutines.
// A multi-file upload submits one job per decoded image. The pool carries no
// per-batch state; callers that need to wait for their jobs track completion
// themselves, so concurrent batches never share a WaitGroup.
type WorkerPool struct {
	workers  int
	jobQueue chan func()
	once     sync.Once
	closed   sync.Once
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &WorkerPool{
		workers:  workers,
		jobQueue: make(chan func(), workers*2),
	}
}

// Start initializes and starts all workers in the pool
func (wp *WorkerPool) Start() {
	wp.once.Do(func() {
		for i := 0; i < wp.workers; i++ {
			go wp.worker()
		}
	})
}

// worker processes jobs from the job queue
func (wp *WorkerPool) worker() {
	for job := range wp.jobQueue {
		job()
	}
}

// Submit adds a job to the worker pool queue. The job itself must signal
// completion to whoever is waiting on it.
func (wp *WorkerPool) Submit(job func()) {
	wp.jobQueue <- job
}

// Close shuts down the worker pool
func (wp *WorkerPool) Close() {
	wp.closed.Do(func() {
		close(wp.jobQueue)
	})
}
