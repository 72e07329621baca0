package service

import (
	"bitwise74/shop-api/internal/metrics"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

const sendTimeout = 30 * time.Second

// Dispatcher hands notifications off without waiting for delivery. Failures
// are logged and never reach the caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification)
}

// MailQueue is the in-process dispatcher. A fixed pool of workers drains a
// bounded channel and tries every message exactly once.
type MailQueue struct {
	jobs    chan Notification
	mailer  Mailer
	workers int
	pending atomic.Int32

	mu     sync.RWMutex
	closed bool
	wg     conc.WaitGroup
}

// NewMailQueue initializes a new queue that holds at most size
// undelivered messages
func NewMailQueue(m Mailer, workers, size int) *MailQueue {
	zap.L().Debug("Initializing mail queue", zap.Int("workers", workers), zap.Int("size", size))

	return &MailQueue{
		jobs:    make(chan Notification, size),
		mailer:  m,
		workers: workers,
	}
}

func (q *MailQueue) Start() {
	for range q.workers {
		q.wg.Go(q.worker)
	}
}

func (q *MailQueue) worker() {
	for n := range q.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err := q.mailer.Send(ctx, n)
		cancel()

		q.pending.Add(-1)

		if err != nil {
			metrics.RecordNotification("failed")
			zap.L().Error("Failed to send notification",
				zap.String("to", n.To),
				zap.String("subject", n.Subject),
				zap.Error(err))
			continue
		}

		metrics.RecordNotification("sent")
		zap.L().Debug("Notification sent", zap.String("to", n.To), zap.String("subject", n.Subject))
	}
}

// Dispatch never blocks. When the queue is full or closed the message is dropped.
func (q *MailQueue) Dispatch(_ context.Context, n Notification) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordNotification("dropped")
		zap.L().Error("Mail queue closed, notification dropped", zap.String("to", n.To))
		return
	}

	select {
	case q.jobs <- n:
		q.pending.Add(1)
		zap.L().Debug("Notification enqueued", zap.Int32("pending", q.pending.Load()), zap.String("to", n.To))
	default:
		metrics.RecordNotification("dropped")
		zap.L().Error("Mail queue full, notification dropped", zap.String("to", n.To))
	}
}

// Close stops accepting messages and waits for the workers to drain the queue
func (q *MailQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
}
