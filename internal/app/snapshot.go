package app

import (
	"encoding/json"

	"agent-console/chart"
	"agent-console/models"
	"agent-console/templates"
)

// SubmitState is the state of the submit control.
type SubmitState struct {
	Enabled bool   `json:"enabled"`
	Label   string `json:"label"`
}

// Snapshot is the console's UI state at one instant.
type Snapshot struct {
	ID             string                         `json:"id"`
	Symbol         string                         `json:"symbol,omitempty"`
	Period         string                         `json:"period,omitempty"`
	Stages         map[string]models.StageDisplay `json:"stages"`
	Submit         SubmitState                    `json:"submit"`
	ChartTitle     string                         `json:"chart_title"`
	ChartMessage   string                         `json:"chart_message,omitempty"`
	Figure         *chart.Figure                  `json:"figure,omitempty"`
	Recommendation string                         `json:"recommendation,omitempty"`
	Analysis       string                         `json:"analysis,omitempty"`
	Insights       string                         `json:"insights,omitempty"`
	Error          string                         `json:"error,omitempty"`
}

// uiState is what the console tracks alongside its view.
type uiState struct {
	symbol         string
	period         string
	stages         [len(models.Stages)]models.StageDisplay
	submit         SubmitState
	chartTitle     string
	chartMessage   string
	figure         *chart.Figure
	recommendation string
	analysis       string
	insights       string
	err            string
}

func (s *uiState) snapshot(id string) Snapshot {
	stages := make(map[string]models.StageDisplay, len(s.stages))
	for _, st := range models.Stages {
		stages[st.String()] = s.stages[st]
	}
	return Snapshot{
		ID:             id,
		Symbol:         s.symbol,
		Period:         s.period,
		Stages:         stages,
		Submit:         s.submit,
		ChartTitle:     s.chartTitle,
		ChartMessage:   s.chartMessage,
		Figure:         s.figure,
		Recommendation: s.recommendation,
		Analysis:       s.analysis,
		Insights:       s.insights,
		Error:          s.err,
	}
}

// ConsoleState converts the snapshot into the console region's render input.
func (s Snapshot) ConsoleState() (templates.ConsoleState, error) {
	state := templates.ConsoleState{
		ChartTitle:     s.ChartTitle,
		ChartMessage:   s.ChartMessage,
		Recommendation: s.Recommendation,
		Analysis:       s.Analysis,
		Insights:       s.Insights,
	}
	for _, st := range models.Stages {
		state.Stages[st] = s.Stages[st.String()]
	}
	if s.Figure != nil {
		b, err := json.Marshal(s.Figure)
		if err != nil {
			return state, err
		}
		state.FigureJSON = string(b)
	}
	return state, nil
}
