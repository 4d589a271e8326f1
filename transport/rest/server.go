package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/othello-session/internal/input"
	"github.com/rocketscienceinc/othello-session/pkg/handlers"
)

const shutdownTimeout = 5 * time.Second

// NewRouter wires the game API. ws serves the snapshot stream and may be nil.
func NewRouter(logger *slog.Logger, manager sessionManager, geometry input.Mapper, sessionTTL time.Duration, ws http.Handler) http.Handler {
	h := &gameHandlers{
		logger:   logger.With("component", "rest"),
		manager:  manager,
		geometry: geometry,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ping", handlers.PingHandler)

	r.Route("/othello", func(r chi.Router) {
		r.Use(handlers.SessionCookie(logger, sessionTTL))

		r.Get("/state", h.state)
		r.Get("/history", h.history)
		r.Get("/board.png", h.boardImage)
		r.Post("/new", h.newGame)
		r.Post("/side", h.side)
		r.Post("/click", h.click)
		r.Post("/move", h.move)
		r.Post("/ai", h.retryAI)

		if ws != nil {
			r.Get("/ws", ws.ServeHTTP)
		}
	})

	return r
}

// Start serves handler on port until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
