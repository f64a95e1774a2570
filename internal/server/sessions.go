package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/ratingquiz/internal/dataset"
	"github.com/playperu/ratingquiz/internal/ratingquiz"
)

// Sessions runs operations on game sessions held in a Store. Every operation
// loads the session from the store, so expiry and deletion in the store are
// authoritative. Operations on one session are serialized.
type Sessions struct {
	store   Store
	catalog *dataset.Catalog
	sampler *ratingquiz.Sampler

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock is held while an operation runs on a session. refs counts the
// holders and waiters so the entry can be dropped when the last one leaves.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewSessions(store Store, catalog *dataset.Catalog, sampler *ratingquiz.Sampler) *Sessions {
	return &Sessions{
		store:   store,
		catalog: catalog,
		sampler: sampler,
		locks:   make(map[string]*sessionLock),
	}
}

func (r *Sessions) Entities() []ratingquiz.Entity {
	return r.catalog.Entities()
}

// Create starts a new session and persists it. fn runs before the session
// becomes visible to other requests.
func (r *Sessions) Create(ctx context.Context, settings ratingquiz.Settings, fn func(s *ratingquiz.Session)) (string, error) {
	id := uuid.NewString()
	s, err := ratingquiz.NewSession(id, r.catalog.Entities(), settings, r.sampler)
	if err != nil {
		return "", err
	}
	if fn != nil {
		fn(s)
	}
	if err := r.store.SaveSession(ctx, s.Snapshot()); err != nil {
		return "", err
	}
	return id, nil
}

// Do loads the session, runs fn with exclusive access to it and saves it
// afterwards, whether or not fn failed. A session missing from the store
// yields ErrNotFound and is not written back.
func (r *Sessions) Do(ctx context.Context, id string, fn func(s *ratingquiz.Session) error) error {
	unlock := r.lock(id)
	defer unlock()

	snap, err := r.store.LoadSession(ctx, id)
	if err != nil {
		return err
	}
	s, err := ratingquiz.RestoreSession(snap, r.catalog.Entities(), r.sampler)
	if err != nil {
		return err
	}

	fnErr := fn(s)
	if err := r.store.SaveSession(ctx, s.Snapshot()); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	return fnErr
}

// Delete removes the session from the store. It waits for an operation in
// progress on the same session.
func (r *Sessions) Delete(ctx context.Context, id string) error {
	unlock := r.lock(id)
	defer unlock()
	return r.store.DeleteSession(ctx, id)
}

// RecordCompletion appends a completed game to the session's history.
func (r *Sessions) RecordCompletion(ctx context.Context, id string, profile ratingquiz.DifficultyProfile, st ratingquiz.GameState) error {
	return r.store.RecordResult(ctx, id, GameResult{
		Difficulty:  profile.Label,
		Score:       st.Score,
		TotalRounds: st.TotalRounds,
		CompletedAt: time.Now(),
	})
}

func (r *Sessions) History(ctx context.Context, id string, limit int) ([]GameResult, error) {
	if _, err := r.store.LoadSession(ctx, id); err != nil {
		return nil, err
	}
	return r.store.ListResults(ctx, id, limit)
}

func (r *Sessions) lock(id string) (unlock func()) {
	r.mu.Lock()
	l, ok := r.locks[id]
	if !ok {
		l = &sessionLock{}
		r.locks[id] = l
	}
	l.refs++
	r.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, id)
		}
		r.mu.Unlock()
	}
}

