package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wardroom/messbook/internal/api/respond"
	"github.com/wardroom/messbook/internal/api/validate"
	"github.com/wardroom/messbook/internal/codec"
	"github.com/wardroom/messbook/internal/metrics"
	"github.com/wardroom/messbook/internal/model"
	"github.com/wardroom/messbook/internal/services"
)

// CollectionHandler is the HTTP transport over the collection façade.
type CollectionHandler struct {
	svc *services.CollectionService
}

func NewCollectionHandler(svc *services.CollectionService) *CollectionHandler {
	return &CollectionHandler{svc: svc}
}

// reserved query parameters that are not field filters.
var reservedParams = map[string]bool{"collection": true, "from": true, "to": true}

// List GET /api/collections?collection=<name>[&from=&to=&<field>=<v>...]
func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := r.URL.Query().Get("collection")
	if err := validate.CollectionName(name); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	filter := services.Filter{
		Equals: map[string]string{},
		From:   r.URL.Query().Get("from"),
		To:     r.URL.Query().Get("to"),
	}
	for key, vals := range r.URL.Query() {
		if reservedParams[key] || len(vals) == 0 {
			continue
		}
		filter.Equals[key] = vals[0]
	}
	records, err := h.svc.List(r.Context(), name, filter)
	metrics.ObserveOp("list", start, err)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	data := make([]map[string]interface{}, len(records))
	for i, rec := range records {
		data[i] = rec.Fields()
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": data})
}

// Create POST /api/collections with body {"collection": ..., "fields": {...}}
func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req struct {
		Collection string                 `json:"collection"`
		Fields     map[string]interface{} `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if err := validate.CollectionName(req.Collection); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.Fields(req.Fields); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	rec, err := h.svc.Add(r.Context(), req.Collection, codec.RecordFromAny(req.Fields))
	metrics.ObserveOp("add", start, err)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"id":     rec[model.FieldID].AsString(),
		"record": rec.Fields(),
	})
}

// Update PUT /api/collections with body {"collection","id","fields"}
func (h *CollectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req struct {
		Collection string                 `json:"collection"`
		ID         string                 `json:"id"`
		Fields     map[string]interface{} `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if err := validate.CollectionName(req.Collection); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.RecordID(req.ID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.Fields(req.Fields); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	_, err := h.svc.Update(r.Context(), req.Collection, req.ID, codec.RecordFromAny(req.Fields))
	metrics.ObserveOp("update", start, err)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// Delete DELETE /api/collections?collection=<name>&id=<id>
func (h *CollectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := r.URL.Query().Get("collection")
	id := r.URL.Query().Get("id")
	if err := validate.CollectionName(name); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.RecordID(id); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	err := h.svc.Remove(r.Context(), name, id)
	metrics.ObserveOp("delete", start, err)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}
