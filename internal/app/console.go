package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"agent-console/chart"
	"agent-console/models"
	"agent-console/observability"
	"agent-console/progress"
	"agent-console/templates"

	"github.com/a-h/templ"
	"github.com/google/uuid"
)

var (
	// ErrEmptySymbol rejects a submission before any request is made.
	ErrEmptySymbol = errors.New("stock symbol is required")
	// ErrSubmissionInFlight rejects a submission while another one is running.
	ErrSubmissionInFlight = errors.New("an analysis is already in progress")
	// ErrAnalysisFailed wraps failures that were rendered to the console.
	ErrAnalysisFailed = errors.New("analysis failed")
)

const (
	EmptySymbolNotice   = "Please enter a stock symbol"
	inFlightNotice      = "An analysis is already running, please wait for it to finish"
	networkErrorMessage = "Network response was not ok"
)

// Submission outcomes, used as metric labels.
const (
	outcomeSuccess      = "success"
	outcomeFailed       = "failed"
	outcomeNetworkError = "network_error"
)

// Stage update sources, used as metric labels.
const (
	sourceReset     = "reset"
	sourceSimulated = "simulated"
	sourcePipeline  = "pipeline"
)

// Analyzer runs one analysis against the backend.
type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error)
}

// Console is the UI state of one page. It drives its view through every
// submission and keeps its own copy of what the view shows.
type Console struct {
	id       string
	view     View
	analyzer Analyzer
	source   progress.Source
	periods  models.Periods
	log      *slog.Logger

	mu    sync.Mutex
	state uiState

	busy atomic.Bool
}

// NewConsole creates an idle console. A nil source shows only the initial
// Processing stage while the request runs.
func NewConsole(view View, analyzer Analyzer, source progress.Source, periods models.Periods) *Console {
	if source == nil {
		source = progress.Static{}
	}
	if len(periods) == 0 {
		periods = models.DefaultPeriods
	}
	id := uuid.New().String()
	c := &Console{
		id:       id,
		view:     view,
		analyzer: analyzer,
		source:   source,
		periods:  periods,
		log:      observability.WithConsole(id),
	}
	c.state.submit = SubmitState{Enabled: true, Label: templates.LabelAnalyze}
	for _, st := range models.Stages {
		c.state.stages[st] = models.Idle()
	}
	c.state.chartTitle = templates.DefaultChartTitle
	return c
}

// ID identifies the console in logs.
func (c *Console) ID() string {
	return c.id
}

// Busy reports whether a submission is running.
func (c *Console) Busy() bool {
	return c.busy.Load()
}

// Snapshot returns a copy of the current UI state.
func (c *Console) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.snapshot(c.id)
}

// Submit runs one analysis for symbol over period. Rejected submissions
// return ErrEmptySymbol or ErrSubmissionInFlight after showing a notice.
// Backend and application failures are rendered to the view and returned
// wrapped in ErrAnalysisFailed. The submit control is re-enabled on every
// path that disabled it.
func (c *Console) Submit(ctx context.Context, symbol, period string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		c.view.Notice(EmptySymbolNotice)
		return ErrEmptySymbol
	}
	if !c.busy.CompareAndSwap(false, true) {
		c.view.Notice(inFlightNotice)
		return ErrSubmissionInFlight
	}
	defer c.busy.Store(false)

	period = c.periods.Resolve(period)
	log := c.log.With("symbol", symbol, "period", period)
	timer := observability.GetMetrics().NewTimer()

	c.Reset()
	c.mu.Lock()
	c.state.symbol = symbol
	c.state.period = period
	c.mu.Unlock()

	c.setSubmit(false, templates.LabelAnalyzing)
	c.showLoading(ctx, symbol)
	stopper := c.source.Start(simulatedBoard{c})

	log.Info("analysis submitted")
	result, err := c.analyzer.Analyze(ctx, models.AnalysisRequest{Symbol: symbol, Period: period})
	stopper.Stop()
	c.setSubmit(true, templates.LabelAnalyze)

	if err != nil {
		log.Warn("analysis request failed", "error", err)
		c.showError(ctx, networkErrorMessage)
		timer.ObserveSubmission(outcomeNetworkError)
		return fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	if !result.Success {
		msg := result.FailureMessage()
		log.Warn("analysis reported failure", "error", msg)
		c.showError(ctx, msg)
		timer.ObserveSubmission(outcomeFailed)
		return fmt.Errorf("%w: %s", ErrAnalysisFailed, msg)
	}

	c.applyPipeline(result.PipelineStatus)
	c.displayResults(ctx, result)

	observability.GetMetrics().RecordRecommendation(string(result.Recommendation), string(result.Confidence))
	timer.ObserveSubmission(outcomeSuccess)
	log.Info("analysis rendered",
		"recommendation", result.Recommendation,
		"confidence", result.Confidence,
		"duration_ms", timer.Duration().Milliseconds())
	return nil
}

// Reset returns every stage to Idle, hides the results and restores the
// default chart title.
func (c *Console) Reset() {
	for _, st := range models.Stages {
		c.setStage(st, models.Idle(), sourceReset)
	}

	c.mu.Lock()
	c.state.chartTitle = templates.DefaultChartTitle
	c.state.chartMessage = ""
	c.state.figure = nil
	c.state.recommendation = ""
	c.state.analysis = ""
	c.state.insights = ""
	c.state.err = ""
	c.mu.Unlock()

	c.view.HideResults()
	c.view.SetChartTitle(templates.DefaultChartTitle)
}

// applyPipeline overrides the simulated stages with the backend's report.
// Stages the backend did not report keep their current display.
func (c *Console) applyPipeline(p *models.PipelineStatus) {
	for _, st := range models.Stages {
		report := p.For(st)
		if report == nil {
			continue
		}
		d := models.DisplayFromPipeline(report.Status)
		if d.Status == models.StageStatusError {
			observability.WithStage(st.String()).Warn("pipeline reported stage error",
				"console_id", c.id,
				"agent", report.Name)
		}
		c.setStage(st, d, sourcePipeline)
	}
}

func (c *Console) displayResults(ctx context.Context, result *models.AnalysisResult) {
	title := result.ChartTitle()
	c.mu.Lock()
	c.state.chartTitle = title
	c.mu.Unlock()
	c.view.SetChartTitle(title)

	banner := c.render(ctx, templates.RecommendationBanner(result.Recommendation, result.Confidence))
	c.mu.Lock()
	c.state.recommendation = banner
	c.mu.Unlock()
	c.view.ShowRecommendation(banner)

	if result.Analysis != "" {
		narrative := c.render(ctx, templates.Narrative(result.Analysis))
		c.mu.Lock()
		c.state.analysis = narrative
		c.mu.Unlock()
		c.view.ShowAnalysis(narrative)
	}

	if result.VisualizationInsights != "" {
		insights := c.render(ctx, templates.Insights(result.VisualizationInsights))
		c.mu.Lock()
		c.state.insights = insights
		c.mu.Unlock()
		c.view.ShowInsights(insights)
	}

	c.plot(ctx, result.ChartConfig)
}

func (c *Console) plot(ctx context.Context, cfg *models.ChartConfig) {
	fig, err := chart.Build(cfg)
	if err != nil {
		if cfg != nil && cfg.Data != nil {
			c.log.Warn("chart data rejected", "error", err)
		}
		notice := c.render(ctx, templates.WarningAlert(templates.NoChartDataMessage))
		c.mu.Lock()
		c.state.chartMessage = notice
		c.mu.Unlock()
		c.view.ShowChartNotice(notice)
		return
	}

	c.mu.Lock()
	c.state.chartMessage = ""
	c.state.figure = fig
	c.mu.Unlock()
	c.view.Plot(chart.ContainerID, fig)
}

func (c *Console) showLoading(ctx context.Context, symbol string) {
	markup := c.render(ctx, templates.Loading(symbol))
	c.mu.Lock()
	c.state.chartMessage = markup
	c.mu.Unlock()
	c.view.ShowLoading(markup)
}

func (c *Console) showError(ctx context.Context, message string) {
	markup := c.render(ctx, templates.ErrorAlert(message))
	c.mu.Lock()
	c.state.chartMessage = markup
	c.state.err = message
	c.mu.Unlock()
	c.view.ShowError(markup)
}

func (c *Console) setSubmit(enabled bool, label string) {
	c.mu.Lock()
	c.state.submit = SubmitState{Enabled: enabled, Label: label}
	c.mu.Unlock()
	c.view.SetSubmit(enabled, label)
}

func (c *Console) stageDisplay(st models.Stage) models.StageDisplay {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.stages[st]
}

// setStage updates the tracked display and the view under one lock so the
// view sees stage updates in the order they were made.
func (c *Console) setStage(st models.Stage, d models.StageDisplay, source string) {
	c.mu.Lock()
	c.state.stages[st] = d
	c.view.SetStage(st, d)
	c.mu.Unlock()
	observability.GetMetrics().RecordStageTransition(st.String(), string(d.Status), source)
}

func (c *Console) render(ctx context.Context, comp templ.Component) string {
	markup, err := templates.RenderString(ctx, comp)
	if err != nil {
		c.log.Error("failed to render component", "error", err)
		return ""
	}
	return markup
}

// simulatedBoard is the stage board handed to the progress source.
type simulatedBoard struct {
	c *Console
}

func (b simulatedBoard) StageDisplay(st models.Stage) models.StageDisplay {
	return b.c.stageDisplay(st)
}

func (b simulatedBoard) SetStage(st models.Stage, d models.StageDisplay) {
	b.c.setStage(st, d, sourceSimulated)
}
