package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

const (
	ActionGetAnimeData  = "GET_ANIME_DATA"
	ActionAnimeData     = "ANIME_DATA"
	ActionSearchThreads = "SEARCH_THREADS"

	errUnknownAction = "unknown action"
)

// Request is the {action, payload} envelope shared by every surface.
type Request struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// HandlerFunc answers one action. Handlers report failures inside their
// response value; the envelope itself never fails.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) any

type Router struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	logger   *slog.Logger
}

func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{handlers: make(map[string]HandlerFunc), logger: logger}
}

func (r *Router) Handle(action string, handler HandlerFunc) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return fmt.Errorf("action is required")
	}
	if handler == nil {
		return fmt.Errorf("%s: handler is required", action)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[action]; exists {
		return fmt.Errorf("%s: handler already registered", action)
	}
	r.handlers[action] = handler
	return nil
}

func (r *Router) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	actions := make([]string, 0, len(r.handlers))
	for action := range r.handlers {
		actions = append(actions, action)
	}
	return actions
}

func (r *Router) Dispatch(ctx context.Context, req Request) (response any) {
	r.mu.RLock()
	handler, ok := r.handlers[req.Action]
	r.mu.RUnlock()
	if !ok {
		r.logger.Warn("unknown message action", "action", req.Action)
		return ErrorResponse{Error: errUnknownAction}
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			r.logger.Error("message handler panicked", "action", req.Action, "panic", recovered)
			response = ErrorResponse{Error: "internal error"}
		}
	}()

	return handler(ctx, req.Payload)
}
