package app

import (
	"context"
	"fmt"

	"agent-console/config"
	"agent-console/models"
	"agent-console/progress"
)

// BackendInterface defines the backend operations needed by App
type BackendInterface interface {
	Analyzer
	AgentStatus(ctx context.Context) (map[string]models.AgentInfo, error)
}

// App holds the dependencies shared by every console
type App struct {
	cfg       *config.Config
	backend   BackendInterface
	periods   models.Periods
	simulator *progress.Simulator
}

// New creates a new App. An empty period catalog falls back to the defaults.
func New(cfg *config.Config, backend BackendInterface, periods models.Periods) *App {
	if len(periods) == 0 {
		periods = models.DefaultPeriods
	}
	p := cfg.Progress
	return &App{
		cfg:       cfg,
		backend:   backend,
		periods:   periods,
		simulator: progress.NewSimulator(progress.NewConfig(p.TickInterval(), p.CollectAfterTicks, p.AnalyzeAfterTicks, p.BoundTicks)),
	}
}

// Config returns the application configuration
func (a *App) Config() *config.Config {
	return a.cfg
}

// Periods returns the period catalog offered by the page
func (a *App) Periods() models.Periods {
	return a.periods
}

// NewLiveConsole creates a console whose view receives simulated progress
// while a request runs.
func (a *App) NewLiveConsole(view View) *Console {
	return NewConsole(view, a.backend, a.simulator, a.periods)
}

// NewBufferedConsole creates a console for callers that only read the final
// snapshot, so no interim progress is simulated.
func (a *App) NewBufferedConsole() *Console {
	return NewConsole(DiscardView{}, a.backend, progress.Static{}, a.periods)
}

// AgentStatus returns the backend's agent listing
func (a *App) AgentStatus(ctx context.Context) (map[string]models.AgentInfo, error) {
	if a.backend == nil {
		return nil, fmt.Errorf("backend not initialized")
	}
	return a.backend.AgentStatus(ctx)
}
