package worker

import (
	"errors"
	"sync"

	"github.com/baharkarakas/skillstack-backend/internal/metrics"
)

var ErrStopped = errors.New("worker pool stopped")

type task func()

type Pool struct {
	wg   sync.WaitGroup
	jobs chan task

	// mu guards stopped and the close of jobs against in-flight sends.
	mu      sync.RWMutex
	stopped bool
}

func NewPool(n int) *Pool {
	if n <= 0 {
		n = 1
	}
	p := &Pool{jobs: make(chan task, 1024)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				metrics.WorkerQueueDepth.Dec()
				job()
			}
		}()
	}
	return p
}

// Submit enqueues f, blocking while the queue is full. It returns ErrStopped
// once Stop has been called; f is then never run.
func (p *Pool) Submit(f task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	metrics.WorkerQueueDepth.Inc()
	p.jobs <- f
	return nil
}

// Stop drains queued jobs and waits for the workers to exit.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.jobs)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
