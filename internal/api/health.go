package api

import (
	"net/http"
	"os"
	"time"

	"github.com/wardroom/messbook/internal/api/respond"
	"github.com/wardroom/messbook/internal/ledger"
	"github.com/wardroom/messbook/internal/store"
)

// HealthHandler reports whether the data root and the intent journal are
// usable.
type HealthHandler struct {
	store   *store.Store
	journal *ledger.Journal
}

func NewHealthHandler(st *store.Store, j *ledger.Journal) *HealthHandler {
	return &HealthHandler{store: st, journal: j}
}

// CheckHealth handles GET /api/health.
// Always returns 200; the body reports healthy/unhealthy.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if fi, err := os.Stat(h.store.Root()); err != nil || !fi.IsDir() {
		status = "unhealthy"
	}
	if h.journal != nil {
		if err := h.journal.Ping(r.Context()); err != nil {
			status = "unhealthy"
		}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
