package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// Checker verifies that a dependency is usable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

type Handler struct {
	checks  map[string]Checker
	logger  *slog.Logger
	timeout time.Duration
}

func NewHandler(logger *slog.Logger, checks map[string]Checker) *Handler {
	return &Handler{checks: checks, logger: logger, timeout: 3 * time.Second}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.check)
	return r
}

type result struct {
	Status string `json:"status"`
}

// check runs every checker concurrently under a shared deadline.
func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]result, len(h.checks))
		status  = http.StatusOK
	)

	var g errgroup.Group
	for name, c := range h.checks {
		g.Go(func() error {
			err := c.Check(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				h.logger.Error("health check failed", "name", name, "error", err)
				results[name] = result{Status: "error"}
				status = http.StatusServiceUnavailable
				return nil
			}
			results[name] = result{Status: "ok"}
			return nil
		})
	}
	g.Wait()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(results)
}
