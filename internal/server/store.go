package server

import (
	"context"
	"errors"
	"time"

	"github.com/playperu/ratingquiz/internal/ratingquiz"
)

var ErrNotFound = errors.New("not found")

// historyLimit caps how many completed games are kept and listed per session.
const historyLimit = 100

// GameResult is one completed game in a session's history.
type GameResult struct {
	Difficulty  string    `json:"difficulty"`
	Score       int       `json:"score"`
	TotalRounds int       `json:"totalRounds"`
	CompletedAt time.Time `json:"completedAt"`
}

// Store persists session snapshots and their completed-game history.
type Store interface {
	SaveSession(ctx context.Context, snap ratingquiz.SessionSnapshot) error
	LoadSession(ctx context.Context, id string) (ratingquiz.SessionSnapshot, error)
	DeleteSession(ctx context.Context, id string) error

	RecordResult(ctx context.Context, sessionID string, res GameResult) error
	ListResults(ctx context.Context, sessionID string, limit int) ([]GameResult, error)
}
