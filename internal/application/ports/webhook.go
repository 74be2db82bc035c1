package ports

import (
	"context"
	"time"
)

// Change event types emitted after a successful mutation.
const (
	EventUserProvisioned = "user.provisioned"
	EventProjectCreated  = "project.created"
	EventTaskAdded       = "task.added"
	EventTaskUpdated     = "task.updated"
	EventTasksDeleted    = "tasks.deleted"
	EventProjectDeleted  = "project.deleted"
)

// ChangeEvent describes one mutation of a User aggregate.
type ChangeEvent struct {
	Event      string    `json:"event"`
	UserID     string    `json:"user_id,omitempty"`
	ProjectID  string    `json:"project_id,omitempty"`
	TaskIDs    []string  `json:"task_ids,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// WebhookEmitter delivers change events to an external endpoint.
type WebhookEmitter interface {
	Emit(ctx context.Context, event ChangeEvent) error
}
