package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/ratingquiz/internal/ratingquiz"
)

// handleEvents streams a session's render events as server-sent events,
// starting with the current screen.
func handleEvents(logger *slog.Logger, sessions *Sessions, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		// Subscribe before rendering so no event published in between is lost.
		ch := broker.Subscribe(id)
		defer broker.Unsubscribe(id, ch)

		var initial []Event
		err := sessions.Do(r.Context(), id, func(s *ratingquiz.Session) error {
			s.Render(eventPresenter(func(e Event) { initial = append(initial, e) }))
			return nil
		})
		if err != nil {
			writeGameError(w, logger, err)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		for _, e := range initial {
			writeSSE(w, e)
		}
		flusher.Flush()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, e Event) {
	data, _ := json.Marshal(e)
	fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
}
