// Package messservice wires the mess bookkeeping service together and runs
// the HTTP server.
package messservice

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/wardroom/messbook/internal/api"
	"github.com/wardroom/messbook/internal/config"
	"github.com/wardroom/messbook/internal/ledger"
	"github.com/wardroom/messbook/internal/logger"
	"github.com/wardroom/messbook/internal/services"
	"github.com/wardroom/messbook/internal/store"
)

// Run starts the mess service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("mess-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("data_root", cfg.DataRoot).
		Str("journal_path", cfg.JournalPath).
		Int("http_port", cfg.HTTPPort).
		Msg("Mess service starting")

	// Cancellable root context bound to SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(cfg.DataRoot)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Data root unavailable")
		return err
	}

	var journal *ledger.Journal
	if !cfg.JournalDisabled() {
		journal, err = ledger.OpenJournal(cfg.JournalPath)
		if err != nil {
			log.Error().Stack().Err(err).Msg("Intent journal unavailable")
			return err
		}
		defer func() { _ = journal.Close() }()

		// Surface anything left over from a previous run before serving.
		if intents, err := journal.Unresolved(ctx); err == nil && len(intents) > 0 {
			log.Warn().Int("count", len(intents)).Msg("unresolved ledger intents found; run `messctl intents` to reconcile")
		}
	}

	coord := ledger.NewCoordinator(st, journal, log)
	svc := services.NewCollectionService(st, coord)
	router := api.NewRouter(svc, st, journal)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}
