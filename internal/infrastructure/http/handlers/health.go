package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amirhosseinghanipour/taskboard/internal/application/ports"
)

const (
	storeCheckTimeout = 2 * time.Second
	redisCheckTimeout = time.Second
)

// HealthHandler serves /health. It pings the board store under its driver name
// and, when wired, the Redis instance behind the event queue and rate limiter.
type HealthHandler struct {
	store     ports.UserProjectStore
	storeName string
	redis     *redis.Client
}

// NewHealthHandler reports the store under storeName ("mongo", "memory"). redisClient may be nil.
func NewHealthHandler(store ports.UserProjectStore, storeName string, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{store: store, storeName: storeName, redis: redisClient}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		h.storeName: runCheck(r.Context(), storeCheckTimeout, h.store.Ping),
	}
	if h.redis != nil {
		checks["redis"] = runCheck(r.Context(), redisCheckTimeout, func(ctx context.Context) error {
			return h.redis.Ping(ctx).Err()
		})
	}
	for _, state := range checks {
		if state != "ok" {
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Checks: checks})
			return
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Checks: checks})
}

func runCheck(ctx context.Context, timeout time.Duration, ping func(context.Context) error) string {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := ping(ctx); err != nil {
		return "down: " + err.Error()
	}
	return "ok"
}
