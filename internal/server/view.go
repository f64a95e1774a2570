package server

import (
	"fmt"

	"github.com/playperu/ratingquiz/internal/ratingquiz"
)

type RoundView struct {
	Number  int      `json:"number"`
	Total   int      `json:"total"`
	Options []string `json:"options"`
}

type FeedbackView struct {
	Correct     bool   `json:"correct"`
	CorrectName string `json:"correctName"`
}

type SummaryView struct {
	Score int    `json:"score"`
	Total int    `json:"total"`
	Text  string `json:"text"`
}

// SessionView is the JSON rendering of a session screen.
type SessionView struct {
	ID         string                       `json:"id"`
	Settings   ratingquiz.Settings          `json:"settings"`
	Pending    bool                         `json:"pendingSettings"`
	Difficulty ratingquiz.DifficultyProfile `json:"difficulty"`
	State      ratingquiz.GameState         `json:"state"`
	Round      *RoundView                   `json:"round,omitempty"`
	Feedback   *FeedbackView                `json:"feedback,omitempty"`
	Summary    *SummaryView                 `json:"summary,omitempty"`
}

// viewPresenter collects render calls into a SessionView.
type viewPresenter struct {
	view SessionView
}

func (p *viewPresenter) RenderRound(round, total int, a, b string) {
	p.view.Round = &RoundView{Number: round, Total: total, Options: []string{a, b}}
	p.view.Summary = nil
}

func (p *viewPresenter) RenderFeedback(correct bool, correctName string) {
	p.view.Feedback = &FeedbackView{Correct: correct, CorrectName: correctName}
}

func (p *viewPresenter) RenderSummary(score, total int) {
	p.view.Summary = &SummaryView{Score: score, Total: total, Text: fmt.Sprintf("%d / %d", score, total)}
	p.view.Round = nil
}

// View fills the session fields around what was rendered.
func (p *viewPresenter) View(s *ratingquiz.Session) SessionView {
	v := p.view
	v.ID = s.ID()
	v.Settings = s.Settings()
	v.Pending = s.Pending()
	v.Difficulty = s.Profile()
	v.State = s.State()
	return v
}

// renderView renders the current screen of s.
func renderView(s *ratingquiz.Session) SessionView {
	var p viewPresenter
	s.Render(&p)
	return p.View(s)
}
