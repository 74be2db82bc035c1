package ports

import "context"

// TaskEnqueuer enqueues async work (change-event webhooks).
type TaskEnqueuer interface {
	EnqueueWebhook(ctx context.Context, event ChangeEvent) error
}
