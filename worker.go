package storefront

import (
	"context"
	"sync"

	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"
)

type EventProcessor interface {
	ProcessEvent(ctx context.Context, event *stripe.Event) error
}

type task struct {
	ctx   context.Context
	event *stripe.Event
}

// WorkerPool processes events on a fixed number of goroutines.
type WorkerPool struct {
	tasks     chan task
	wg        sync.WaitGroup
	logger    *zap.Logger
	processor EventProcessor

	mu     sync.RWMutex
	closed bool
}

func NewWorkerPool(size int, processor EventProcessor, logger *zap.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	wp := &WorkerPool{
		tasks:     make(chan task, 1000),
		logger:    logger,
		processor: processor,
	}

	wp.wg.Add(size)
	for i := 0; i < size; i++ {
		go wp.worker()
	}

	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for t := range wp.tasks {
		if err := wp.processor.ProcessEvent(t.ctx, t.event); err != nil {
			wp.logger.Error("Failed to process event",
				zap.Error(err),
				zap.String("event_type", string(t.event.Type)),
				zap.String("event_id", t.event.ID))
		}
	}
}

// Submit queues event. It blocks while the queue is full and returns false once
// the pool has been shut down.
func (wp *WorkerPool) Submit(ctx context.Context, event *stripe.Event) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return false
	}
	wp.tasks <- task{ctx: ctx, event: event}
	return true
}

// Shutdown stops accepting events and waits for queued ones to finish.
func (wp *WorkerPool) Shutdown() {
	wp.mu.Lock()
	if !wp.closed {
		wp.closed = true
		close(wp.tasks)
	}
	wp.mu.Unlock()
	wp.wg.Wait()
}
