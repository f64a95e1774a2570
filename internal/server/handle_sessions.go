package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/ratingquiz/internal/ratingquiz"
)

type DifficultiesResponse struct {
	Profiles    []ratingquiz.DifficultyProfile `json:"profiles"`
	RoundCounts []int                          `json:"roundCounts"`
	Default     ratingquiz.Settings            `json:"default"`
}

func handleDifficulties() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, DifficultiesResponse{
			Profiles:    ratingquiz.Profiles,
			RoundCounts: ratingquiz.RoundCounts,
			Default:     ratingquiz.DefaultSettings(),
		})
	}
}

// CreateSessionRequest selects the first game's settings. Empty fields fall
// back to the defaults.
type CreateSessionRequest struct {
	Difficulty string `json:"difficulty"`
	Rounds     int    `json:"rounds"`
}

func handleCreateSession(logger *slog.Logger, sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSessionRequest
		if r.ContentLength != 0 {
			if err := readJSON(r, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}

		settings := ratingquiz.DefaultSettings()
		if req.Difficulty != "" {
			settings.Difficulty = req.Difficulty
		}
		if req.Rounds != 0 {
			settings.Rounds = req.Rounds
		}
		profile, err := settings.Profile()
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		settings.Difficulty = profile.Label

		var view SessionView
		id, err := sessions.Create(r.Context(), settings, func(s *ratingquiz.Session) {
			view = renderView(s)
		})
		if err != nil {
			writeGameError(w, logger, err)
			return
		}

		logger.Info("session created", "session_id", id, "difficulty", settings.Difficulty, "rounds", settings.Rounds)
		w.Header().Set("Location", "/api/sessions/"+id)
		writeJSON(w, http.StatusCreated, view)
	}
}

func handleGetSession(logger *slog.Logger, sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var view SessionView
		err := sessions.Do(r.Context(), chi.URLParam(r, "sessionID"), func(s *ratingquiz.Session) error {
			view = renderView(s)
			return nil
		})
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func handleDeleteSession(logger *slog.Logger, sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
			writeGameError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleRestart(logger *slog.Logger, sessions *Sessions, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")

		var view SessionView
		err := sessions.Do(r.Context(), id, func(s *ratingquiz.Session) error {
			var vp viewPresenter
			if err := s.OnRestart(ratingquiz.Presenters{&vp, broker.Presenter(id)}, sessions.Entities()); err != nil {
				return err
			}
			view = vp.View(s)
			return nil
		})
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// SettingsRequest changes one or both selections. Nil fields are left as
// they are.
type SettingsRequest struct {
	Difficulty *string `json:"difficulty,omitempty"`
	Rounds     *int    `json:"rounds,omitempty"`
}

func handleSettings(logger *slog.Logger, sessions *Sessions, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")

		var req SettingsRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Difficulty == nil && req.Rounds == nil {
			writeError(w, http.StatusBadRequest, "difficulty or rounds is required")
			return
		}

		var view SessionView
		err := sessions.Do(r.Context(), id, func(s *ratingquiz.Session) error {
			next := s.Settings()
			if req.Difficulty != nil {
				next.Difficulty = *req.Difficulty
			}
			if req.Rounds != nil {
				next.Rounds = *req.Rounds
			}

			var vp viewPresenter
			if err := s.OnSettingsChanged(ratingquiz.Presenters{&vp, broker.Presenter(id)}, sessions.Entities(), next); err != nil {
				return err
			}
			view = vp.View(s)
			return nil
		})
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func handleHistory(logger *slog.Logger, sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = n
		}

		results, err := sessions.History(r.Context(), chi.URLParam(r, "sessionID"), limit)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		if results == nil {
			results = []GameResult{}
		}
		writeJSON(w, http.StatusOK, results)
	}
}
