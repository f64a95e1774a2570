package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/playperu/ratingquiz/internal/ratingquiz"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeGameError maps session and game errors to HTTP statuses. Anything
// unrecognized is logged and reported as an internal error.
func writeGameError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, ratingquiz.ErrInsufficientPool):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ratingquiz.ErrGameCompleted):
		writeError(w, http.StatusConflict, "game is completed; restart to play again")
	case errors.Is(err, ratingquiz.ErrInvalidChoice),
		errors.Is(err, ratingquiz.ErrUnknownDifficulty),
		errors.Is(err, ratingquiz.ErrInvalidRounds):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
