package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"agent-console/config"
	"agent-console/internal/app"
	"agent-console/models"
	"agent-console/observability"
	"agent-console/services"
	"agent-console/templates"
)

// Handler handles HTTP API requests
type Handler struct {
	app      *app.App
	cfg      *config.Config
	breakers *services.CircuitBreakerRegistry
	limiter  *RateLimiter
}

// NewHandler creates a new Handler
func NewHandler(application *app.App, cfg *config.Config, breakers *services.CircuitBreakerRegistry) *Handler {
	return &Handler{
		app:      application,
		cfg:      cfg,
		breakers: breakers,
		limiter:  NewRateLimiter(cfg.RateLimit),
	}
}

// Limiter returns the submission rate limiter shared by the HTTP and socket paths
func (h *Handler) Limiter() *RateLimiter {
	return h.limiter
}

// HandleIndex serves the console page using templ
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	page := templates.PageData{
		Title:         h.cfg.UI.Title,
		Periods:       h.app.Periods(),
		DefaultPeriod: h.app.Periods().Default(),
	}
	h.htmlResponse(w, templates.Index(page), r)
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
	}

	if h.breakers != nil {
		status["circuit_breakers"] = h.breakers.Status()
		if h.breakers.Degraded() {
			status["status"] = "degraded"
		}
	}

	h.jsonResponse(w, status)
}

// PeriodsResponse lists the selectable periods
type PeriodsResponse struct {
	Periods []models.TimePeriod `json:"periods"`
	Default string              `json:"default"`
}

// HandleGetPeriods returns the period catalog
func (h *Handler) HandleGetPeriods(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, PeriodsResponse{
		Periods: h.app.Periods(),
		Default: h.app.Periods().Default(),
	})
}

// HandleGetAgentStatus proxies the backend's agent status listing
func (h *Handler) HandleGetAgentStatus(w http.ResponseWriter, r *http.Request) {
	agents, err := h.app.AgentStatus(r.Context())
	if err != nil {
		observability.WithError(r.Context(), err).Warn("agent status unavailable")
		h.jsonError(w, "agent status unavailable", http.StatusBadGateway)
		return
	}
	h.jsonResponse(w, agents)
}

// HandleAnalyzeStock runs one analysis on a buffered console and returns the
// rendered console region (HTMX) or the console snapshot (JSON)
func (h *Handler) HandleAnalyzeStock(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAnalyzeRequest(r)
	if err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	console := h.app.NewBufferedConsole()
	err = console.Submit(r.Context(), req.Symbol, req.Period)
	switch {
	case errors.Is(err, app.ErrEmptySymbol):
		if isHTMXRequest(r) {
			h.htmlNotice(w, app.EmptySymbolNotice, r)
			return
		}
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil && !errors.Is(err, app.ErrAnalysisFailed):
		observability.WithError(r.Context(), err).Error("analysis submission failed")
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	snapshot := console.Snapshot()
	if isHTMXRequest(r) {
		state, err := snapshot.ConsoleState()
		if err != nil {
			h.htmlError(w, err.Error(), r)
			return
		}
		h.htmlResponse(w, templates.Console(state), r)
		return
	}

	h.jsonResponse(w, snapshot)
}

// decodeAnalyzeRequest accepts a JSON body or form values
func decodeAnalyzeRequest(r *http.Request) (models.AnalysisRequest, error) {
	var req models.AnalysisRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return req, err
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Symbol = r.FormValue("symbol")
	req.Period = r.FormValue("period")
	return req, nil
}

// Helper functions

// isHTMXRequest checks if the request is from HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// templComponent matches the templ.Component interface
type templComponent interface {
	Render(ctx context.Context, w io.Writer) error
}

// htmlResponse renders a templ component as HTML
func (h *Handler) htmlResponse(w http.ResponseWriter, component templComponent, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		observability.WithError(r.Context(), err).Error("failed to render component")
	}
}

// htmlError renders an error state as HTML
func (h *Handler) htmlError(w http.ResponseWriter, message string, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	templates.ErrorAlert(message).Render(r.Context(), w)
}

// htmlNotice answers an htmx submission that never reached the backend. htmx
// drops 4xx bodies, so the alert goes out as a 200 retargeted at the console's
// notice slot and leaves the rest of the console as it was.
func (h *Handler) htmlNotice(w http.ResponseWriter, message string, r *http.Request) {
	w.Header().Set("HX-Retarget", "#"+templates.IDConsoleNotice)
	w.Header().Set("HX-Reswap", "innerHTML")
	h.htmlResponse(w, templates.ErrorAlert(message), r)
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
