// Package api wires the HTTP transport over the collection façade.
package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wardroom/messbook/internal/api/recovery"
	"github.com/wardroom/messbook/internal/ledger"
	"github.com/wardroom/messbook/internal/services"
	"github.com/wardroom/messbook/internal/store"
)

// NewRouter creates the HTTP router with all API routes. journal may be nil
// when the intent journal is disabled.
func NewRouter(svc *services.CollectionService, st *store.Store, journal *ledger.Journal) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery.Middleware)

	collections := NewCollectionHandler(svc)
	router.HandleFunc("/api/collections", collections.List).Methods("GET")
	router.HandleFunc("/api/collections", collections.Create).Methods("POST")
	router.HandleFunc("/api/collections", collections.Update).Methods("PUT")
	router.HandleFunc("/api/collections", collections.Delete).Methods("DELETE")

	if journal != nil {
		intents := NewIntentHandler(journal)
		router.HandleFunc("/api/intents", intents.List).Methods("GET")
	}

	health := NewHealthHandler(st, journal)
	router.HandleFunc("/api/health", health.CheckHealth).Methods("GET")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}
