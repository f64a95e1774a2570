package server

import (
	"encoding/json"
	"sync"
)

// Event is a render call as published to live subscribers of a session.
// Fields not carried by an event type are omitted; Correct and Score are
// pointers so that false and zero are still sent when they apply.
type Event struct {
	Type        string   `json:"type"`
	Round       int      `json:"round,omitempty"`
	Total       int      `json:"total,omitempty"`
	Options     []string `json:"options,omitempty"`
	Correct     *bool    `json:"correct,omitempty"`
	CorrectName string   `json:"correctName,omitempty"`
	Score       *int     `json:"score,omitempty"`
}

const (
	EventRound    = "round"
	EventFeedback = "feedback"
	EventSummary  = "summary"
)

// Broker is an in-process pub/sub for session events, keyed by session ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the given session.
func (b *Broker) Subscribe(sessionID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan []byte]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the session's subscribers.
func (b *Broker) Unsubscribe(sessionID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[sessionID], ch)
	if len(b.subs[sessionID]) == 0 {
		delete(b.subs, sessionID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given session.
func (b *Broker) Publish(sessionID string, event Event) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[sessionID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

// Presenter returns a presenter that publishes to the session's subscribers.
func (b *Broker) Presenter(sessionID string) eventPresenter {
	return eventPresenter(func(e Event) { b.Publish(sessionID, e) })
}

// eventPresenter turns render calls into Events.
type eventPresenter func(Event)

func (p eventPresenter) RenderRound(round, total int, a, b string) {
	p(Event{Type: EventRound, Round: round, Total: total, Options: []string{a, b}})
}

func (p eventPresenter) RenderFeedback(correct bool, correctName string) {
	p(Event{Type: EventFeedback, Correct: &correct, CorrectName: correctName})
}

func (p eventPresenter) RenderSummary(score, total int) {
	p(Event{Type: EventSummary, Score: &score, Total: total})
}
