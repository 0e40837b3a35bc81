package api

import (
	"net/http"

	"github.com/wardroom/messbook/internal/api/respond"
	"github.com/wardroom/messbook/internal/ledger"
	"github.com/wardroom/messbook/internal/model"
)

// IntentHandler exposes the ledger intent journal so an operator can find
// and reconcile partial ledger writes.
type IntentHandler struct {
	journal *ledger.Journal
}

func NewIntentHandler(j *ledger.Journal) *IntentHandler { return &IntentHandler{journal: j} }

// List GET /api/intents returns intents that never completed.
func (h *IntentHandler) List(w http.ResponseWriter, r *http.Request) {
	intents, err := h.journal.Unresolved(r.Context())
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, model.KindStorageIO, "journal unavailable")
		return
	}
	if intents == nil {
		intents = []ledger.Intent{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"intents": intents,
		"count":   len(intents),
	})
}
