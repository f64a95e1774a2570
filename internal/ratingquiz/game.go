package ratingquiz

import (
	"errors"
	"fmt"
)

type GameState struct {
	CurrentRound int  `json:"currentRound"`
	Score        int  `json:"score"`
	TotalRounds  int  `json:"totalRounds"`
	Completed    bool `json:"completed"`
}

// Outcome describes one scored submission.
type Outcome struct {
	Pair    RoundPair `json:"pair"`
	Choice  string    `json:"choice"`
	Correct bool      `json:"correct"`
	Answer  Entity    `json:"answer"`
	State   GameState `json:"state"`
}

// Game is the round/score state machine for one play-through.
type Game struct {
	profile DifficultyProfile
	pool    []Entity
	sampler *Sampler
	state   GameState
	pair    RoundPair
}

// NewGame filters entities by the profile's minimum rating and draws the
// first pair.
func NewGame(entities []Entity, profile DifficultyProfile, rounds int, sampler *Sampler) (*Game, error) {
	if rounds <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRounds, rounds)
	}
	g := &Game{
		profile: profile,
		pool:    Filter(entities, profile.MinRating),
		sampler: sampler,
		state:   GameState{TotalRounds: rounds},
	}
	pair, err := g.draw()
	if err != nil {
		return nil, err
	}
	g.pair = pair
	return g, nil
}

func (g *Game) State() GameState            { return g.state }
func (g *Game) Profile() DifficultyProfile { return g.profile }
func (g *Game) Pool() []Entity             { return g.pool }

// Pair returns the pair awaiting an answer. ok is false once the game is
// completed.
func (g *Game) Pair() (pair RoundPair, ok bool) {
	if g.state.Completed {
		return RoundPair{}, false
	}
	return g.pair, true
}

// Submit scores choice against the current pair and advances one round.
// A completed game rejects every submission with ErrGameCompleted and is
// left untouched.
func (g *Game) Submit(choice string) (Outcome, error) {
	if g.state.Completed {
		return Outcome{}, ErrGameCompleted
	}
	if !g.pair.Has(choice) {
		return Outcome{}, fmt.Errorf("%w: %q", ErrInvalidChoice, choice)
	}

	answer := g.pair.Correct()
	out := Outcome{
		Pair:    g.pair,
		Choice:  choice,
		Correct: choice == answer.Name,
		Answer:  answer,
	}

	next := g.state
	if out.Correct {
		next.Score++
	}
	next.CurrentRound++

	// The next pair is drawn before anything changes, so a failed draw
	// leaves the round open.
	var pair RoundPair
	if next.CurrentRound >= next.TotalRounds {
		next.Completed = true
	} else {
		var err error
		if pair, err = g.draw(); err != nil {
			return Outcome{}, err
		}
	}

	g.state, g.pair = next, pair
	out.State = next
	return out, nil
}

// Restart resets the game under a freshly read configuration. When no pair
// can be drawn for the new configuration the game is left as it was.
func (g *Game) Restart(entities []Entity, profile DifficultyProfile, rounds int) error {
	next, err := NewGame(entities, profile, rounds, g.sampler)
	if err != nil {
		return err
	}
	*g = *next
	return nil
}

func (g *Game) draw() (RoundPair, error) {
	pair, err := g.sampler.Sample(g.pool, g.profile.MaxGap)
	if err != nil {
		return RoundPair{}, fmt.Errorf("%s difficulty, %d eligible entities: %w",
			g.profile.Label, len(g.pool), err)
	}
	return pair, nil
}

// GameSnapshot is the serializable form of a Game. The pool is not stored;
// it is recomputed from the dataset on restore.
type GameSnapshot struct {
	Difficulty string     `json:"difficulty"`
	State      GameState  `json:"state"`
	Pair       *RoundPair `json:"pair,omitempty"`
}

func (g *Game) Snapshot() GameSnapshot {
	snap := GameSnapshot{Difficulty: g.profile.Label, State: g.state}
	if pair, ok := g.Pair(); ok {
		snap.Pair = &pair
	}
	return snap
}

var errCorruptSnapshot = errors.New("corrupt game snapshot")

// RestoreGame rebuilds a Game from snap. A missing pair on an unfinished
// game is redrawn.
func RestoreGame(entities []Entity, snap GameSnapshot, sampler *Sampler) (*Game, error) {
	profile, err := Resolve(snap.Difficulty)
	if err != nil {
		return nil, err
	}
	st := snap.State
	if st.TotalRounds <= 0 || st.CurrentRound < 0 || st.Score < 0 ||
		st.Score > st.CurrentRound || st.CurrentRound > st.TotalRounds {
		return nil, fmt.Errorf("%w: %+v", errCorruptSnapshot, st)
	}
	if st.CurrentRound == st.TotalRounds {
		st.Completed = true
	}

	g := &Game{
		profile: profile,
		pool:    Filter(entities, profile.MinRating),
		sampler: sampler,
		state:   st,
	}
	switch {
	case st.Completed:
	case snap.Pair != nil:
		g.pair = *snap.Pair
	default:
		pair, err := g.draw()
		if err != nil {
			return nil, err
		}
		g.pair = pair
	}
	return g, nil
}
