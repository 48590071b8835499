package app

import (
	"agent-console/chart"
	"agent-console/models"
)

// View binds a console to the page that displays it. HTML arguments are
// markup already rendered by the templates package. Stage updates arrive
// from the progress goroutine, so implementations must be safe for
// concurrent use.
type View interface {
	SetStage(stage models.Stage, display models.StageDisplay)
	SetSubmit(enabled bool, label string)
	SetChartTitle(title string)
	// ShowLoading, ShowError and ShowChartNotice all replace the chart
	// placeholder content and show the placeholder in place of the plot.
	ShowLoading(html string)
	ShowError(html string)
	ShowChartNotice(html string)
	ShowRecommendation(html string)
	ShowAnalysis(html string)
	ShowInsights(html string)
	// HideResults hides the result cards and the plot.
	HideResults()
	Plot(containerID string, fig *chart.Figure)
	// Notice is a blocking message for the user, outside the page layout.
	Notice(message string)
}

// DiscardView drops every update. Consoles whose state is read back through
// Snapshot use it.
type DiscardView struct{}

func (DiscardView) SetStage(models.Stage, models.StageDisplay) {}
func (DiscardView) SetSubmit(bool, string)                     {}
func (DiscardView) SetChartTitle(string)                       {}
func (DiscardView) ShowLoading(string)                         {}
func (DiscardView) ShowError(string)                           {}
func (DiscardView) ShowChartNotice(string)                     {}
func (DiscardView) ShowRecommendation(string)                  {}
func (DiscardView) ShowAnalysis(string)                        {}
func (DiscardView) ShowInsights(string)                        {}
func (DiscardView) HideResults()                               {}
func (DiscardView) Plot(string, *chart.Figure)                 {}
func (DiscardView) Notice(string)                              {}

var _ View = DiscardView{}
