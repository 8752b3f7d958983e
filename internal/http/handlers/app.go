package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"postpilot/internal/domain"
	"postpilot/internal/generate"
	"postpilot/internal/infra"
	"postpilot/internal/queue"
	"postpilot/internal/storage"
)

// App bundles the collaborators handlers need.
type App struct {
	Orchestrator *generate.Orchestrator
	Queue        *queue.Service
	Rehoster     *storage.Rehoster
	Logger       infra.Logger
}

func NewApp(orchestrator *generate.Orchestrator, queueSvc *queue.Service, rehoster *storage.Rehoster, logger infra.Logger) *App {
	return &App{
		Orchestrator: orchestrator,
		Queue:        queueSvc,
		Rehoster:     rehoster,
		Logger:       logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": kind, "message": message},
	})
}

// fail maps domain errors onto HTTP statuses and writes the error envelope.
func (a *App) fail(w http.ResponseWriter, err error) {
	var provErr *domain.ProviderError
	var genErr *domain.GenerationError
	var malformed *domain.MalformedResponseError
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		a.error(w, http.StatusBadRequest, "missing_credential", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		a.error(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, domain.ErrPollTimeout):
		a.error(w, http.StatusGatewayTimeout, "poll_timeout", err.Error())
	case errors.As(err, &provErr):
		a.error(w, http.StatusBadGateway, "provider_error", provErr.Error())
	case errors.As(err, &genErr):
		a.error(w, http.StatusBadGateway, "generation_failed", genErr.Error())
	case errors.As(err, &malformed):
		a.error(w, http.StatusBadGateway, "malformed_response", malformed.Error())
	default:
		a.Logger.Error().Err(err).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "unexpected error")
	}
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}
