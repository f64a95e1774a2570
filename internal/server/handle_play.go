package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/ratingquiz/internal/ratingquiz"
)

// PlayInput is one front-end event received over the play socket.
type PlayInput struct {
	Type       string `json:"type"` // submit, restart, difficulty, rounds, render
	Choice     string `json:"choice,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Rounds     int    `json:"rounds,omitempty"`
}

// PlayError is sent back when an input event fails.
type PlayError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

var errUnknownInput = errors.New("unknown input type")

// handlePlay drives a session over a WebSocket: the client sends PlayInput
// messages and receives render Events. Events caused by other clients of the
// same session arrive through the broker.
func handlePlay(logger *slog.Logger, sessions *Sessions, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")

		// Resolve the session before upgrading so unknown ids get a 404.
		if err := sessions.Do(r.Context(), id, func(*ratingquiz.Session) error { return nil }); err != nil {
			writeGameError(w, logger, err)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Minute)
		defer cancel()

		// Writes from the read loop and the broker relay are serialized
		// through out.
		out := make(chan any, 16)
		ch := broker.Subscribe(id)
		defer broker.Unsubscribe(id, ch)

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case data := <-ch:
					select {
					case out <- rawEvent(data):
					case <-ctx.Done():
						return
					}
				}
			}
		}()

		go func() {
			defer cancel()
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-out:
					if err := writePlay(ctx, conn, msg); err != nil {
						logger.Debug("websocket write failed", "error", err)
						return
					}
				}
			}
		}()

		// Renders caused by this socket reach it through its own broker
		// subscription, like those of any other client on the session.
		shared := broker.Presenter(id)
		direct := eventPresenter(func(e Event) {
			select {
			case out <- e:
			case <-ctx.Done():
			}
		})

		if err := sessions.Do(ctx, id, func(s *ratingquiz.Session) error {
			s.Render(direct)
			return nil
		}); err != nil {
			logger.Error("initial render failed", "session_id", id, "error", err)
			return
		}

		for {
			var in PlayInput
			if err := wsjson.Read(ctx, conn, &in); err != nil {
				logger.Debug("websocket read ended", "error", err)
				return
			}

			if err := applyInput(ctx, sessions, id, in, shared, direct); err != nil {
				if !isGameError(err) {
					logger.Error("play input failed", "session_id", id, "type", in.Type, "error", err)
				}
				select {
				case out <- PlayError{Type: "error", Error: err.Error()}:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// applyInput runs one input event. State changes render to shared so every
// subscriber sees them; a plain re-render goes to direct only.
func applyInput(ctx context.Context, sessions *Sessions, id string, in PlayInput, shared, direct ratingquiz.Presenter) error {
	var (
		completed bool
		profile   ratingquiz.DifficultyProfile
		state     ratingquiz.GameState
	)
	err := sessions.Do(ctx, id, func(s *ratingquiz.Session) error {
		var err error
		switch in.Type {
		case "submit":
			var out ratingquiz.Outcome
			out, err = s.OnSubmit(shared, in.Choice)
			completed = err == nil && out.State.Completed
		case "restart":
			err = s.OnRestart(shared, sessions.Entities())
		case "difficulty":
			err = s.OnDifficultyChanged(shared, sessions.Entities(), in.Difficulty)
		case "rounds":
			err = s.OnRoundCountChanged(shared, sessions.Entities(), in.Rounds)
		case "render":
			s.Render(direct)
		default:
			err = fmt.Errorf("%w: %q", errUnknownInput, in.Type)
		}
		profile, state = s.Profile(), s.State()
		return err
	})
	if err != nil {
		return err
	}
	if completed {
		return sessions.RecordCompletion(ctx, id, profile, state)
	}
	return nil
}

func isGameError(err error) bool {
	return errors.Is(err, errUnknownInput) ||
		errors.Is(err, ratingquiz.ErrInsufficientPool) ||
		errors.Is(err, ratingquiz.ErrGameCompleted) ||
		errors.Is(err, ratingquiz.ErrInvalidChoice) ||
		errors.Is(err, ratingquiz.ErrUnknownDifficulty) ||
		errors.Is(err, ratingquiz.ErrInvalidRounds)
}

// rawEvent is an already encoded Event relayed from the broker.
type rawEvent []byte

func writePlay(ctx context.Context, conn *websocket.Conn, msg any) error {
	if raw, ok := msg.(rawEvent); ok {
		return conn.Write(ctx, websocket.MessageText, raw)
	}
	return wsjson.Write(ctx, conn, msg)
}
