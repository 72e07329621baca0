package service

import (
	"bitwise74/shop-api/internal/metrics"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeSendMail = "mail:send"

// TaskQueue dispatches notifications through redis backed asynq tasks.
// MaxRetry above zero turns delivery into at-least-once.
type TaskQueue struct {
	client   *asynq.Client
	maxRetry int
}

func NewTaskQueue(opt asynq.RedisClientOpt, maxRetry int) *TaskQueue {
	return &TaskQueue{
		client:   asynq.NewClient(opt),
		maxRetry: maxRetry,
	}
}

func NewSendMailTask(n Notification, maxRetry int) (*asynq.Task, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TypeSendMail, payload, asynq.MaxRetry(maxRetry), asynq.Timeout(sendTimeout)), nil
}

func (q *TaskQueue) Dispatch(ctx context.Context, n Notification) {
	task, err := NewSendMailTask(n, q.maxRetry)
	if err != nil {
		zap.L().Error("Failed to build mail task", zap.Error(err))
		return
	}

	// The request may finish before redis answers
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		metrics.RecordNotification("dropped")
		zap.L().Error("Failed to enqueue mail task", zap.Error(err), zap.String("to", n.To))
		return
	}

	metrics.RecordNotification("enqueued")
	zap.L().Debug("Mail task enqueued", zap.String("task_id", info.ID), zap.String("queue", info.Queue))
}

func (q *TaskQueue) Close() error {
	return q.client.Close()
}

// MailWorker consumes mail tasks enqueued by TaskQueue
type MailWorker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewMailWorker(opt asynq.RedisClientOpt, concurrency int, m Mailer) *MailWorker {
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Logger:      zap.S(),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSendMail, SendMailHandler(m))

	return &MailWorker{server: srv, mux: mux}
}

// Start begins processing in the background
func (w *MailWorker) Start() error {
	return w.server.Start(w.mux)
}

func (w *MailWorker) Shutdown() {
	w.server.Shutdown()
}

// SendMailHandler returns the asynq handler that delivers one mail task
func SendMailHandler(m Mailer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var n Notification
		if err := json.Unmarshal(t.Payload(), &n); err != nil {
			return fmt.Errorf("malformed mail task, %v: %w", err, asynq.SkipRetry)
		}

		if err := m.Send(ctx, n); err != nil {
			metrics.RecordNotification("failed")
			zap.L().Error("Failed to send notification", zap.String("to", n.To), zap.Error(err))
			return err
		}

		metrics.RecordNotification("sent")
		return nil
	}
}
