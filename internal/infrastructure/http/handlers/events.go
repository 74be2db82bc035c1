package handlers

import (
	"net/http"
	"strings"
	"time"

	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/taskboard/internal/application/ports"
)

// emitChange logs a change event and enqueues it for webhook delivery.
// Enqueue failures are logged only; the mutation has already been stored.
func emitChange(log zerolog.Logger, r *http.Request, enq ports.TaskEnqueuer, event ports.ChangeEvent) {
	event.RequestID = chimid.GetReqID(r.Context())
	event.OccurredAt = time.Now().UTC()
	ev := log.Info().
		Str("event", event.Event).
		Str("user_id", event.UserID).
		Str("project_id", event.ProjectID).
		Str("ip", getClientIP(r)).
		Str("request_id", event.RequestID)
	if len(event.TaskIDs) > 0 {
		ev.Strs("task_ids", event.TaskIDs)
	}
	ev.Msg("change_event")
	if enq == nil {
		return
	}
	if err := enq.EnqueueWebhook(r.Context(), event); err != nil {
		log.Warn().Err(err).Str("event", event.Event).Msg("enqueue change event failed")
	}
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	return r.RemoteAddr
}
