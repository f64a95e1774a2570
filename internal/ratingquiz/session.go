package ratingquiz

import "fmt"

// Session binds a Game to the player's selections and translates front-end
// events into game transitions and render calls. A Session is not safe for
// concurrent use; callers serialize access.
type Session struct {
	id       string
	settings Settings
	game     *Game
}

// NewSession starts the first game of a session.
func NewSession(id string, entities []Entity, settings Settings, sampler *Sampler) (*Session, error) {
	profile, err := settings.Profile()
	if err != nil {
		return nil, err
	}
	game, err := NewGame(entities, profile, settings.Rounds, sampler)
	if err != nil {
		return nil, err
	}
	return &Session{id: id, settings: settings, game: game}, nil
}

func (s *Session) ID() string                 { return s.id }
func (s *Session) Settings() Settings         { return s.settings }
func (s *Session) State() GameState           { return s.game.State() }
func (s *Session) Profile() DifficultyProfile { return s.game.Profile() }
func (s *Session) Pair() (RoundPair, bool)    { return s.game.Pair() }

// Pending reports whether the selections differ from the running game's
// configuration and will apply at the next restart.
func (s *Session) Pending() bool {
	p, err := Resolve(s.settings.Difficulty)
	if err != nil {
		return true
	}
	return p.Label != s.game.Profile().Label || s.settings.Rounds != s.game.State().TotalRounds
}

// Render draws the current screen: the open round, or the summary once the
// game is completed.
func (s *Session) Render(p Presenter) {
	st := s.game.State()
	if pair, ok := s.game.Pair(); ok {
		p.RenderRound(st.CurrentRound+1, st.TotalRounds, pair.A.Name, pair.B.Name)
		return
	}
	p.RenderSummary(st.Score, st.TotalRounds)
}

// OnSubmit scores the chosen entity, renders feedback and then the next
// screen.
func (s *Session) OnSubmit(p Presenter, choice string) (Outcome, error) {
	out, err := s.game.Submit(choice)
	if err != nil {
		return out, err
	}
	p.RenderFeedback(out.Correct, out.Answer.Name)
	s.Render(p)
	return out, nil
}

// OnRestart starts a new game with the current selections.
func (s *Session) OnRestart(p Presenter, entities []Entity) error {
	profile, err := s.settings.Profile()
	if err != nil {
		return err
	}
	if err := s.game.Restart(entities, profile, s.settings.Rounds); err != nil {
		return err
	}
	s.Render(p)
	return nil
}

// OnDifficultyChanged records a new difficulty selection. It takes effect
// immediately while the running game has no answers, else at the next
// restart.
func (s *Session) OnDifficultyChanged(p Presenter, entities []Entity, label string) error {
	next := s.settings
	next.Difficulty = label
	return s.OnSettingsChanged(p, entities, next)
}

// OnRoundCountChanged records a new round count with the same timing rules
// as OnDifficultyChanged.
func (s *Session) OnRoundCountChanged(p Presenter, entities []Entity, rounds int) error {
	next := s.settings
	next.Rounds = rounds
	return s.OnSettingsChanged(p, entities, next)
}

// OnSettingsChanged replaces both selections at once. Invalid settings, or
// settings for which no pair can be drawn, leave the session unchanged.
func (s *Session) OnSettingsChanged(p Presenter, entities []Entity, next Settings) error {
	profile, err := next.Profile()
	if err != nil {
		return err
	}
	next.Difficulty = profile.Label
	return s.apply(p, entities, next)
}

func (s *Session) apply(p Presenter, entities []Entity, next Settings) error {
	if !s.untouched() {
		s.settings = next
		s.Render(p)
		return nil
	}

	prev := s.settings
	s.settings = next
	if err := s.OnRestart(p, entities); err != nil {
		s.settings = prev
		return err
	}
	return nil
}

func (s *Session) untouched() bool {
	st := s.game.State()
	return st.CurrentRound == 0 && !st.Completed
}

// SessionSnapshot is the persisted form of a Session.
type SessionSnapshot struct {
	ID       string       `json:"id"`
	Settings Settings     `json:"settings"`
	Game     GameSnapshot `json:"game"`
}

func (s *Session) Snapshot() SessionSnapshot {
	return SessionSnapshot{ID: s.id, Settings: s.settings, Game: s.game.Snapshot()}
}

// RestoreSession rebuilds a Session from snap against the current dataset.
func RestoreSession(snap SessionSnapshot, entities []Entity, sampler *Sampler) (*Session, error) {
	game, err := RestoreGame(entities, snap.Game, sampler)
	if err != nil {
		return nil, fmt.Errorf("restoring session %s: %w", snap.ID, err)
	}
	return &Session{id: snap.ID, settings: snap.Settings, game: game}, nil
}
