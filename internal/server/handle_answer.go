package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/ratingquiz/internal/ratingquiz"
)

type AnswerRequest struct {
	Choice string `json:"choice"`
}

type AnswerResponse struct {
	Correct     bool        `json:"correct"`
	CorrectName string      `json:"correctName"`
	Session     SessionView `json:"session"`
}

func handleAnswer(logger *slog.Logger, sessions *Sessions, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")

		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Choice = strings.TrimSpace(req.Choice)
		if req.Choice == "" {
			writeError(w, http.StatusBadRequest, "choice is required")
			return
		}

		var (
			out     ratingquiz.Outcome
			view    SessionView
			profile ratingquiz.DifficultyProfile
		)
		err := sessions.Do(r.Context(), id, func(s *ratingquiz.Session) error {
			var vp viewPresenter
			o, err := s.OnSubmit(ratingquiz.Presenters{&vp, broker.Presenter(id)}, req.Choice)
			if err != nil {
				return err
			}
			out, view, profile = o, vp.View(s), s.Profile()
			return nil
		})
		if err != nil {
			writeGameError(w, logger, err)
			return
		}

		if out.State.Completed {
			if err := sessions.RecordCompletion(r.Context(), id, profile, out.State); err != nil {
				logger.Error("recording completed game", "session_id", id, "error", err)
			}
			logger.Info("game completed", "session_id", id,
				"score", out.State.Score, "total", out.State.TotalRounds, "difficulty", profile.Label)
		}

		writeJSON(w, http.StatusOK, AnswerResponse{
			Correct:     out.Correct,
			CorrectName: out.Answer.Name,
			Session:     view,
		})
	}
}
