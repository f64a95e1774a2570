// Package ratingquiz defines the core game: entities with ratings, the
// difficulty profiles, the pair sampler and the per-session state machine.
// Nothing in here performs I/O; front ends drive it through Presenter.
package ratingquiz

import "errors"

var (
	ErrInsufficientPool  = errors.New("not enough entities to draw a pair")
	ErrGameCompleted     = errors.New("game already completed")
	ErrInvalidChoice     = errors.New("choice is not part of the current round")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrInvalidRounds     = errors.New("invalid round count")
)

// Entity is a named, rated item loaded from the dataset.
type Entity struct {
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

// Filter returns the entities rated at or above minRating, in input order.
func Filter(entities []Entity, minRating float64) []Entity {
	pool := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if e.Rating >= minRating {
			pool = append(pool, e)
		}
	}
	return pool
}

// RoundPair is the two entities shown in one round.
type RoundPair struct {
	A Entity `json:"a"`
	B Entity `json:"b"`
}

// Correct returns the higher rated entity. Equal ratings resolve to B.
func (p RoundPair) Correct() Entity {
	if p.A.Rating > p.B.Rating {
		return p.A
	}
	return p.B
}

// Has reports whether name is one of the two entities.
func (p RoundPair) Has(name string) bool {
	return name == p.A.Name || name == p.B.Name
}

// Presenter receives render calls from a Session.
type Presenter interface {
	RenderRound(round, total int, a, b string)
	RenderFeedback(correct bool, correctName string)
	RenderSummary(score, total int)
}

// Presenters fans every render call out to each presenter in order.
type Presenters []Presenter

func (ps Presenters) RenderRound(round, total int, a, b string) {
	for _, p := range ps {
		p.RenderRound(round, total, a, b)
	}
}

func (ps Presenters) RenderFeedback(correct bool, correctName string) {
	for _, p := range ps {
		p.RenderFeedback(correct, correctName)
	}
}

func (ps Presenters) RenderSummary(score, total int) {
	for _, p := range ps {
		p.RenderSummary(score, total)
	}
}
