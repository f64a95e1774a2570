package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/playperu/ratingquiz/internal/ratingquiz"
)

const timeLayout = "2006-01-02T15:04:05.000Z"

// SQLiteStore keeps session snapshots as JSONB documents. The schema comes
// from the migrations package.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) SaveSession(ctx context.Context, snap ratingquiz.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, data, updated_at) VALUES (?, jsonb(?), ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		snap.ID, string(data), nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", snap.ID, err)
	}
	return nil
}

func (s *SQLiteStore) LoadSession(ctx context.Context, id string) (ratingquiz.SessionSnapshot, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM sessions WHERE id = ?`, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ratingquiz.SessionSnapshot{}, ErrNotFound
	}
	if err != nil {
		return ratingquiz.SessionSnapshot{}, err
	}

	var snap ratingquiz.SessionSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return ratingquiz.SessionSnapshot{}, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return snap, nil
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) RecordResult(ctx context.Context, sessionID string, res GameResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO game_results (session_id, difficulty, score, total_rounds, completed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, res.Difficulty, res.Score, res.TotalRounds, res.CompletedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("recording result for %s: %w", sessionID, err)
	}

	// Keep only the newest historyLimit rows for the session.
	_, err = tx.ExecContext(ctx,
		`DELETE FROM game_results WHERE session_id = ? AND id NOT IN (
			SELECT id FROM game_results WHERE session_id = ? ORDER BY id DESC LIMIT ?
		)`,
		sessionID, sessionID, historyLimit,
	)
	if err != nil {
		return fmt.Errorf("trimming history for %s: %w", sessionID, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListResults(ctx context.Context, sessionID string, limit int) ([]GameResult, error) {
	if limit <= 0 || limit > historyLimit {
		limit = historyLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT difficulty, score, total_rounds, completed_at
		 FROM game_results WHERE session_id = ?
		 ORDER BY id DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []GameResult
	for rows.Next() {
		var res GameResult
		var completedAt string
		if err := rows.Scan(&res.Difficulty, &res.Score, &res.TotalRounds, &completedAt); err != nil {
			return nil, err
		}
		res.CompletedAt, _ = time.Parse(timeLayout, completedAt)
		results = append(results, res)
	}
	return results, rows.Err()
}

// Check pings the database for the health endpoint.
func (s *SQLiteStore) Check(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func nowUTC() string {
	return time.Now().UTC().Format(timeLayout)
}
