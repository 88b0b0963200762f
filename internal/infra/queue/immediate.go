package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/yanqian/ai-summarizer/internal/domain/summarizer"
)

// ErrQueueClosed is returned by Enqueue once the queue has started draining.
var ErrQueueClosed = errors.New("queue closed")

// HandlerQueue supports setting a handler for job delivery.
type HandlerQueue interface {
	summarizer.JobQueue
	SetHandler(handler Handler)
}

// Handler executes jobs synchronously or in the background.
type Handler func(ctx context.Context, name string, payload map[string]any)

// ImmediateQueue runs the handler on its own goroutine at enqueue time and tracks
// those goroutines so shutdown can wait for them.
type ImmediateQueue struct {
	mu       sync.Mutex
	handler  Handler
	closed   bool
	inFlight sync.WaitGroup
}

// NewImmediateQueue constructs the queue.
func NewImmediateQueue(handler Handler) *ImmediateQueue {
	return &ImmediateQueue{handler: handler}
}

// SetHandler replaces the handler used for queued jobs.
func (q *ImmediateQueue) SetHandler(handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handler = handler
}

// Enqueue invokes the handler asynchronously. The job outlives the caller's
// context, so only its values are carried over.
func (q *ImmediateQueue) Enqueue(ctx context.Context, name string, payload any) error {
	typed, ok := payload.(map[string]any)
	if !ok {
		typed = map[string]any{}
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	if q.handler == nil {
		return nil
	}
	handler := q.handler
	q.inFlight.Add(1)
	go func() {
		defer q.inFlight.Done()
		handler(context.WithoutCancel(ctx), name, typed)
	}()
	return nil
}

// Drain rejects new jobs and waits for running ones until ctx is done.
func (q *ImmediateQueue) Drain(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.inFlight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ HandlerQueue = (*ImmediateQueue)(nil)
