package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/playperu/ratingquiz/internal/dataset"
)

type ReloadResponse struct {
	Path     string `json:"path"`
	Entities int    `json:"entities"`
}

// handleReloadDataset re-reads the dataset file. Running games keep drawing
// from the pool they started with; the reloaded entities apply from their
// next restart.
func handleReloadDataset(logger *slog.Logger, catalog *dataset.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := catalog.Reload()
		if errors.Is(err, dataset.ErrSourceNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			logger.Error("reloading dataset", "path", catalog.Path(), "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		logger.Info("dataset reloaded", "path", catalog.Path(), "entities", catalog.Len())
		writeJSON(w, http.StatusOK, ReloadResponse{Path: catalog.Path(), Entities: catalog.Len()})
	}
}
