package analyzer

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestWorkerPool_RunsAllJobs(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Start()
	defer pool.Close()

	var counter int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			atomic.AddInt64(&counter, 1)
		})
	}
	wg.Wait()

	if got := atomic.LoadInt64(&counter); got != 100 {
		t.Errorf("Expected 100 jobs executed, got %d", got)
	}
}

func TestWorkerPool_ConcurrentSubmitters(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	defer pool.Close()

	// Several goroutines each submit and wait on their own jobs through the
	// shared pool; per-submitter completion tracking must not interfere.
	var counter int64
	var submitters sync.WaitGroup
	for g := 0; g < 8; g++ {
		submitters.Add(1)
		go func() {
			defer submitters.Done()
			for round := 0; round < 20; round++ {
				var wg sync.WaitGroup
				for i := 0; i < 5; i++ {
					wg.Add(1)
					pool.Submit(func() {
						defer wg.Done()
						atomic.AddInt64(&counter, 1)
					})
				}
				wg.Wait()
			}
		}()
	}
	submitters.Wait()

	if got := atomic.LoadInt64(&counter); got != 8*20*5 {
		t.Errorf("Expected %d jobs executed, got %d", 8*20*5, got)
	}
}

func TestWorkerPool_DefaultWorkerCount(t *testing.T) {
	pool := NewWorkerPool(0)
	if pool.workers < 1 {
		t.Errorf("Expected at least one worker, got %d", pool.workers)
	}
	pool.Close()
}

func TestWorkerPool_CloseIsIdempotent(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Start()
	pool.Close()
	pool.Close() // must not panic
}
