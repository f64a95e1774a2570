package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// HealthResponse documents the /healthz body: one status per checker.
type HealthResponse map[string]struct {
	Status string `json:"status"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Rating Duel API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Pick the higher rated of two entities, round after round.")

	type sessionPath struct {
		SessionID string `path:"sessionID"`
	}
	type answerInput struct {
		SessionID string `path:"sessionID"`
		Choice    string `json:"choice"`
	}
	type settingsInput struct {
		SessionID  string  `path:"sessionID"`
		Difficulty *string `json:"difficulty,omitempty"`
		Rounds     *int    `json:"rounds,omitempty"`
	}
	type historyInput struct {
		SessionID string `path:"sessionID"`
		Limit     int    `query:"limit"`
	}

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of the session store and dataset.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/difficulties
	getDifficulties, _ := r.NewOperationContext(http.MethodGet, "/api/difficulties")
	getDifficulties.SetSummary("List difficulties")
	getDifficulties.SetDescription("Returns the difficulty profiles and the selectable round counts.")
	getDifficulties.AddRespStructure(DifficultiesResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getDifficulties)

	// POST /api/sessions
	postSession, _ := r.NewOperationContext(http.MethodPost, "/api/sessions")
	postSession.SetSummary("Start a session")
	postSession.SetDescription("Creates a session and draws its first round.")
	postSession.AddReqStructure(CreateSessionRequest{})
	postSession.AddRespStructure(SessionView{}, openapi.WithHTTPStatus(http.StatusCreated))
	postSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(postSession)

	// GET /api/sessions/{sessionID}
	getSession, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}")
	getSession.SetSummary("Get session")
	getSession.SetDescription("Returns the current screen: the open round or the final summary.")
	getSession.AddReqStructure(sessionPath{})
	getSession.AddRespStructure(SessionView{}, openapi.WithHTTPStatus(http.StatusOK))
	getSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getSession)

	// DELETE /api/sessions/{sessionID}
	deleteSession, _ := r.NewOperationContext(http.MethodDelete, "/api/sessions/{sessionID}")
	deleteSession.SetSummary("Delete session")
	deleteSession.AddReqStructure(sessionPath{})
	deleteSession.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteSession)

	// POST /api/sessions/{sessionID}/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{sessionID}/answer")
	postAnswer.SetSummary("Submit answer")
	postAnswer.SetDescription("Scores the chosen entity for the open round and advances.")
	postAnswer.AddReqStructure(answerInput{})
	postAnswer.AddRespStructure(AnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAnswer)

	// POST /api/sessions/{sessionID}/restart
	postRestart, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{sessionID}/restart")
	postRestart.SetSummary("Restart game")
	postRestart.SetDescription("Starts a new game with the session's current selections.")
	postRestart.AddReqStructure(sessionPath{})
	postRestart.AddRespStructure(SessionView{}, openapi.WithHTTPStatus(http.StatusOK))
	postRestart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postRestart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(postRestart)

	// PUT /api/sessions/{sessionID}/settings
	putSettings, _ := r.NewOperationContext(http.MethodPut, "/api/sessions/{sessionID}/settings")
	putSettings.SetSummary("Change settings")
	putSettings.SetDescription("Changes difficulty and/or round count. Applies at once before the first answer, otherwise at the next restart.")
	putSettings.AddReqStructure(settingsInput{})
	putSettings.AddRespStructure(SessionView{}, openapi.WithHTTPStatus(http.StatusOK))
	putSettings.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	putSettings.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	putSettings.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(putSettings)

	// GET /api/sessions/{sessionID}/history
	getHistory, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}/history")
	getHistory.SetSummary("Completed games")
	getHistory.SetDescription("Returns the session's completed games, newest first.")
	getHistory.AddReqStructure(historyInput{})
	getHistory.AddRespStructure([]GameResult{}, openapi.WithHTTPStatus(http.StatusOK))
	getHistory.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getHistory)

	// GET /api/sessions/{sessionID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of round, feedback and summary events.")
	getEvents.AddReqStructure(sessionPath{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/sessions/{sessionID}/play
	getPlay, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}/play")
	getPlay.SetSummary("WebSocket play channel")
	getPlay.SetDescription("Upgrades to a WebSocket. Send {type: submit|restart|difficulty|rounds|render}; receive render events.")
	getPlay.AddReqStructure(sessionPath{})
	getPlay.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getPlay)

	// POST /api/admin/dataset/reload
	postReload, _ := r.NewOperationContext(http.MethodPost, "/api/admin/dataset/reload")
	postReload.SetSummary("Reload dataset")
	postReload.SetDescription("Re-reads the dataset file. Requires the admin Bearer token.")
	postReload.AddRespStructure(ReloadResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postReload.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postReload.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postReload)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
