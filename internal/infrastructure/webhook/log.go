package webhook

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/taskboard/internal/application/ports"
)

// LogEmitter stands in for HTTPEmitter when WEBHOOK_URL is unset: queued change
// events are written to the log instead of being posted.
type LogEmitter struct {
	log zerolog.Logger
}

func NewLogEmitter(log zerolog.Logger) *LogEmitter {
	return &LogEmitter{log: log}
}

func (e *LogEmitter) Emit(ctx context.Context, event ports.ChangeEvent) error {
	e.log.Debug().
		Str("event", event.Event).
		Str("user_id", event.UserID).
		Str("project_id", event.ProjectID).
		Strs("task_ids", event.TaskIDs).
		Str("request_id", event.RequestID).
		Time("occurred_at", event.OccurredAt).
		Msg("change event not delivered: no webhook configured")
	return nil
}

var _ ports.WebhookEmitter = (*LogEmitter)(nil)
