package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/playperu/ratingquiz/internal/database"
	"github.com/playperu/ratingquiz/internal/dataset"
	"github.com/playperu/ratingquiz/internal/handler/health"
	"github.com/playperu/ratingquiz/internal/migrations"
	"github.com/playperu/ratingquiz/internal/ratingquiz"
)

// testEntities are all rated within 2 of each other and at or above 0, so
// Medium never rejects a pair on the gap.
var testEntities = []ratingquiz.Entity{
	{Name: "Houston", Rating: 12.0},
	{Name: "Purdue", Rating: 12.5},
	{Name: "UConn", Rating: 13.0},
	{Name: "Arizona", Rating: 13.5},
	{Name: "Tennessee", Rating: 14.0},
	{Name: "Low Major", Rating: -20.0},
}

func ratingOf(name string) float64 {
	for _, e := range testEntities {
		if e.Name == name {
			return e.Rating
		}
	}
	return 0
}

// higher picks the correct option, ties going to the second.
func higher(options []string) string {
	if ratingOf(options[0]) > ratingOf(options[1]) {
		return options[0]
	}
	return options[1]
}

func lower(options []string) string {
	if higher(options) == options[0] {
		return options[1]
	}
	return options[0]
}

func setupStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return NewSQLiteStore(db)
}

func testDeps(t *testing.T) Deps {
	t.Helper()
	store := setupStore(t)
	catalog := dataset.NewCatalog(testEntities)
	return Deps{
		Sessions: NewSessions(store, catalog, ratingquiz.NewSampler(ratingquiz.DefaultMaxAttempts)),
		Catalog:  catalog,
		Checks:   map[string]health.Checker{"sqlite": store, "dataset": catalog},
	}
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewHandler(slog.Default(), testDeps(t))
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, h http.Handler, req CreateSessionRequest) SessionView {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/api/sessions", req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var view SessionView
	json.NewDecoder(w.Body).Decode(&view)
	if view.ID == "" {
		t.Fatal("create: expected a session id")
	}
	return view
}

func answer(t *testing.T, h http.Handler, id, choice string) AnswerResponse {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/api/sessions/"+id+"/answer", AnswerRequest{Choice: choice})
	if w.Code != http.StatusOK {
		t.Fatalf("answer: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp AnswerResponse
	json.NewDecoder(w.Body).Decode(&resp)
	return resp
}

func TestDifficulties(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/difficulties", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp DifficultiesResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Profiles) != 4 {
		t.Errorf("expected 4 profiles, got %d", len(resp.Profiles))
	}
	if len(resp.RoundCounts) != 5 || resp.RoundCounts[0] != 5 || resp.RoundCounts[4] != 20 {
		t.Errorf("unexpected round counts %v", resp.RoundCounts)
	}
}

func TestCreateSessionDefaults(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var view SessionView
	json.NewDecoder(w.Body).Decode(&view)
	if view.Settings.Difficulty != "Medium" || view.Settings.Rounds != 5 {
		t.Errorf("settings = %+v, want Medium/5", view.Settings)
	}
	if view.Round == nil || view.Round.Number != 1 || view.Round.Total != 5 {
		t.Fatalf("round = %+v, want 1 of 5", view.Round)
	}
	for _, opt := range view.Round.Options {
		if opt == "Low Major" {
			t.Error("entity below Medium's minimum rating was drawn")
		}
	}
	if w.Header().Get("Location") != "/api/sessions/"+view.ID {
		t.Errorf("location = %q", w.Header().Get("Location"))
	}
}

func TestCreateSessionValidation(t *testing.T) {
	r := testRouter(t)

	tests := []struct {
		name string
		req  CreateSessionRequest
		want int
	}{
		{"unknown difficulty", CreateSessionRequest{Difficulty: "Nightmare"}, http.StatusBadRequest},
		{"bad rounds", CreateSessionRequest{Rounds: 7}, http.StatusBadRequest},
		{"display label", CreateSessionRequest{Difficulty: "Easy (diff < 8.5)"}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/sessions", tt.req)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestInsufficientPool(t *testing.T) {
	deps := testDeps(t)
	deps.Catalog = dataset.NewCatalog([]ratingquiz.Entity{{Name: "Alone", Rating: 20}})
	deps.Sessions = NewSessions(setupStore(t), deps.Catalog, ratingquiz.NewSampler(10))
	r := NewHandler(slog.Default(), deps)

	w := doJSON(t, r, http.MethodPost, "/api/sessions", CreateSessionRequest{Difficulty: "Medium", Rounds: 5})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPlayFiveCorrect(t *testing.T) {
	r := testRouter(t)
	view := createSession(t, r, CreateSessionRequest{Difficulty: "Medium (diff < 4.5)", Rounds: 5})

	for i := 0; i < 5; i++ {
		if view.Round == nil {
			t.Fatalf("round %d: expected an open round", i+1)
		}
		if view.Round.Number != i+1 {
			t.Errorf("round number = %d, want %d", view.Round.Number, i+1)
		}
		resp := answer(t, r, view.ID, higher(view.Round.Options))
		if !resp.Correct {
			t.Fatalf("round %d: expected correct", i+1)
		}
		if resp.Session.Feedback == nil || !resp.Session.Feedback.Correct {
			t.Errorf("round %d: feedback = %+v", i+1, resp.Session.Feedback)
		}
		view = resp.Session
	}

	if view.Summary == nil {
		t.Fatal("expected a summary after the last round")
	}
	if view.Summary.Text != "5 / 5" {
		t.Errorf("summary = %q, want 5 / 5", view.Summary.Text)
	}
	if !view.State.Completed {
		t.Error("expected completed state")
	}

	// Submitting after completion is rejected and changes nothing.
	w := doJSON(t, r, http.MethodPost, "/api/sessions/"+view.ID+"/answer", AnswerRequest{Choice: "Houston"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/sessions/"+view.ID, nil)
	var after SessionView
	json.NewDecoder(w.Body).Decode(&after)
	if after.State != view.State {
		t.Errorf("state changed after completion: %+v -> %+v", view.State, after.State)
	}

	// History holds the completed game.
	w = doJSON(t, r, http.MethodGet, "/api/sessions/"+view.ID+"/history", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", w.Code)
	}
	var history []GameResult
	json.NewDecoder(w.Body).Decode(&history)
	if len(history) != 1 || history[0].Score != 5 || history[0].TotalRounds != 5 || history[0].Difficulty != "Medium" {
		t.Errorf("history = %+v", history)
	}
}

func TestWrongAnswer(t *testing.T) {
	r := testRouter(t)
	view := createSession(t, r, CreateSessionRequest{})

	want := higher(view.Round.Options)
	resp := answer(t, r, view.ID, lower(view.Round.Options))
	if resp.Correct {
		t.Error("expected incorrect")
	}
	if resp.CorrectName != want {
		t.Errorf("correctName = %q, want %q", resp.CorrectName, want)
	}
	if resp.Session.State.CurrentRound != 1 || resp.Session.State.Score != 0 {
		t.Errorf("state = %+v", resp.Session.State)
	}
}

func TestAnswerValidation(t *testing.T) {
	r := testRouter(t)
	view := createSession(t, r, CreateSessionRequest{})

	w := doJSON(t, r, http.MethodPost, "/api/sessions/"+view.ID+"/answer", AnswerRequest{Choice: "  "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank choice: expected 400, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/sessions/"+view.ID+"/answer", AnswerRequest{Choice: "Low Major"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("choice outside pair: expected 400, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/sessions/nope/answer", AnswerRequest{Choice: "Houston"})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown session: expected 404, got %d", w.Code)
	}
}

func TestRestartResets(t *testing.T) {
	r := testRouter(t)
	view := createSession(t, r, CreateSessionRequest{Rounds: 8})

	for i := 0; i < 3; i++ {
		view = answer(t, r, view.ID, higher(view.Round.Options)).Session
	}

	w := doJSON(t, r, http.MethodPost, "/api/sessions/"+view.ID+"/restart", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("restart: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var restarted SessionView
	json.NewDecoder(w.Body).Decode(&restarted)

	want := ratingquiz.GameState{CurrentRound: 0, Score: 0, TotalRounds: 8, Completed: false}
	if restarted.State != want {
		t.Errorf("state = %+v, want %+v", restarted.State, want)
	}
	if restarted.Round == nil || restarted.Round.Number != 1 {
		t.Errorf("round = %+v, want round 1", restarted.Round)
	}
}

func TestSettingsMidGameApplyOnRestart(t *testing.T) {
	r := testRouter(t)
	view := createSession(t, r, CreateSessionRequest{})
	view = answer(t, r, view.ID, higher(view.Round.Options)).Session

	rounds := 10
	label := "Hard"
	w := doJSON(t, r, http.MethodPut, "/api/sessions/"+view.ID+"/settings", SettingsRequest{Difficulty: &label, Rounds: &rounds})
	if w.Code != http.StatusOK {
		t.Fatalf("settings: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var changed SessionView
	json.NewDecoder(w.Body).Decode(&changed)
	if !changed.Pending {
		t.Error("expected pending settings")
	}
	if changed.State.TotalRounds != 5 || changed.Difficulty.Label != "Medium" {
		t.Errorf("running game changed: %+v %+v", changed.State, changed.Difficulty)
	}

	w = doJSON(t, r, http.MethodPost, "/api/sessions/"+view.ID+"/restart", nil)
	var restarted SessionView
	json.NewDecoder(w.Body).Decode(&restarted)
	if restarted.State.TotalRounds != 10 || restarted.Difficulty.Label != "Hard" || restarted.Pending {
		t.Errorf("after restart: %+v %+v pending=%v", restarted.State, restarted.Difficulty, restarted.Pending)
	}
}

func TestSettingsValidation(t *testing.T) {
	r := testRouter(t)
	view := createSession(t, r, CreateSessionRequest{})

	w := doJSON(t, r, http.MethodPut, "/api/sessions/"+view.ID+"/settings", SettingsRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty: expected 400, got %d", w.Code)
	}

	rounds := 3
	w = doJSON(t, r, http.MethodPut, "/api/sessions/"+view.ID+"/settings", SettingsRequest{Rounds: &rounds})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad rounds: expected 400, got %d", w.Code)
	}
}

func TestSettingsRejectedChangeLeavesSessionUnchanged(t *testing.T) {
	r := testRouter(t)
	view := createSession(t, r, CreateSessionRequest{})

	label, rounds := "Hard", 7
	w := doJSON(t, r, http.MethodPut, "/api/sessions/"+view.ID+"/settings", SettingsRequest{Difficulty: &label, Rounds: &rounds})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/sessions/"+view.ID, nil)
	var after SessionView
	json.NewDecoder(w.Body).Decode(&after)
	if after.Settings != view.Settings {
		t.Errorf("settings = %+v, want %+v", after.Settings, view.Settings)
	}
	if after.Difficulty.Label != "Medium" || after.State != view.State {
		t.Errorf("game changed: %+v %+v", after.Difficulty, after.State)
	}
	if after.Round == nil || after.Round.Options[0] != view.Round.Options[0] || after.Round.Options[1] != view.Round.Options[1] {
		t.Errorf("round = %+v, want %+v", after.Round, view.Round)
	}
}

func TestSettingsBothFieldsBeforeFirstAnswer(t *testing.T) {
	r := testRouter(t)
	view := createSession(t, r, CreateSessionRequest{})

	label, rounds := "Hard", 15
	w := doJSON(t, r, http.MethodPut, "/api/sessions/"+view.ID+"/settings", SettingsRequest{Difficulty: &label, Rounds: &rounds})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var changed SessionView
	json.NewDecoder(w.Body).Decode(&changed)
	if changed.Pending || changed.Difficulty.Label != "Hard" || changed.State.TotalRounds != 15 {
		t.Errorf("after change: %+v %+v pending=%v", changed.Difficulty, changed.State, changed.Pending)
	}
}

func TestDeleteSession(t *testing.T) {
	r := testRouter(t)
	view := createSession(t, r, CreateSessionRequest{})

	w := doJSON(t, r, http.MethodDelete, "/api/sessions/"+view.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/sessions/"+view.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", w.Code)
	}
}

func TestSessionRestoredFromStore(t *testing.T) {
	deps := testDeps(t)
	r := NewHandler(slog.Default(), deps)
	view := createSession(t, r, CreateSessionRequest{})
	view = answer(t, r, view.ID, higher(view.Round.Options)).Session

	// A fresh registry over the same store stands in for a restart.
	deps.Sessions = NewSessions(deps.Sessions.store, deps.Catalog, ratingquiz.NewSampler(ratingquiz.DefaultMaxAttempts))
	r = NewHandler(slog.Default(), deps)

	w := doJSON(t, r, http.MethodGet, "/api/sessions/"+view.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var restored SessionView
	json.NewDecoder(w.Body).Decode(&restored)
	if restored.State != view.State {
		t.Errorf("state = %+v, want %+v", restored.State, view.State)
	}
	if restored.Round == nil || restored.Round.Options[0] != view.Round.Options[0] || restored.Round.Options[1] != view.Round.Options[1] {
		t.Errorf("round = %+v, want %+v", restored.Round, view.Round)
	}
}

func TestHealthz(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body map[string]struct{ Status string }
	json.NewDecoder(w.Body).Decode(&body)
	if body["sqlite"].Status != "ok" || body["dataset"].Status != "ok" {
		t.Errorf("body = %+v", body)
	}
}
