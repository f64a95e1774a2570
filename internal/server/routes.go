package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/ratingquiz/internal/handler/health"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	broker := NewBroker()
	sessions := deps.Sessions

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Rating Duel API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, deps.Checks).Routes())

	r.Route("/api", func(r chi.Router) {
		r.Get("/difficulties", handleDifficulties())
		r.Post("/sessions", handleCreateSession(logger, sessions))

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", handleGetSession(logger, sessions))
			r.Delete("/", handleDeleteSession(logger, sessions))
			r.Post("/answer", handleAnswer(logger, sessions, broker))
			r.Post("/restart", handleRestart(logger, sessions, broker))
			r.Put("/settings", handleSettings(logger, sessions, broker))
			r.Get("/history", handleHistory(logger, sessions))
			r.Get("/events", handleEvents(logger, sessions, broker))
			r.Get("/play", handlePlay(logger, sessions, broker))
		})

		// Admin routes exist only when a token hash is configured.
		if deps.AdminTokenHash != "" && deps.Catalog != nil {
			r.With(adminAuthMiddleware(deps.AdminTokenHash)).
				Post("/admin/dataset/reload", handleReloadDataset(logger, deps.Catalog))
		}
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
