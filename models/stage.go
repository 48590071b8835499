package models

import (
	"unicode"
	"unicode/utf8"
)

// Stage is one of the three conceptual pipeline phases shown on the console.
type Stage int

const (
	StageDataCollection Stage = iota
	StageAnalysis
	StageVisualization
)

// Stages lists every stage in pipeline order.
var Stages = [...]Stage{StageDataCollection, StageAnalysis, StageVisualization}

func (s Stage) String() string {
	switch s {
	case StageDataCollection:
		return "data_collection"
	case StageAnalysis:
		return "analysis"
	case StageVisualization:
		return "visualization"
	default:
		return "unknown"
	}
}

// ElementID is the id of the stage card in the page.
func (s Stage) ElementID() string {
	switch s {
	case StageDataCollection:
		return "agent1Status"
	case StageAnalysis:
		return "agent2Status"
	case StageVisualization:
		return "agent3Status"
	default:
		return ""
	}
}

// Title is the agent name shown on the stage card.
func (s Stage) Title() string {
	switch s {
	case StageDataCollection:
		return "Data Collector Agent"
	case StageAnalysis:
		return "Analysis Agent"
	case StageVisualization:
		return "Visualization Agent"
	default:
		return ""
	}
}

type StageStatus string

const (
	StageStatusIdle       StageStatus = "idle"
	StageStatusProcessing StageStatus = "processing"
	StageStatusRunning    StageStatus = "running"
	StageStatusCompleted  StageStatus = "completed"
	StageStatusError      StageStatus = "error"
	// StageStatusOther covers raw backend values outside the known set.
	StageStatusOther StageStatus = "other"
)

// Progress returns the progress bar percentage for the status.
func (s StageStatus) Progress() int {
	switch s {
	case StageStatusProcessing, StageStatusRunning:
		return 50
	case StageStatusCompleted:
		return 100
	default:
		return 0
	}
}

// CSSClass returns the extra class applied to the status label, if any.
func (s StageStatus) CSSClass() string {
	switch s {
	case StageStatusProcessing:
		return "status-processing"
	case StageStatusRunning:
		return "status-running"
	case StageStatusCompleted:
		return "status-completed"
	case StageStatusError:
		return "status-error"
	default:
		return ""
	}
}

// StageDisplay is what a stage card currently shows.
type StageDisplay struct {
	Status   StageStatus `json:"status"`
	Label    string      `json:"label"`
	Progress int         `json:"progress"`
}

func NewStageDisplay(status StageStatus) StageDisplay {
	label := capitalize(string(status))
	if status == StageStatusOther {
		label = ""
	}
	return StageDisplay{
		Status:   status,
		Label:    label,
		Progress: status.Progress(),
	}
}

// Idle is the display every stage starts from after a reset.
func Idle() StageDisplay {
	return NewStageDisplay(StageStatusIdle)
}

// DisplayFromPipeline maps a raw backend stage status onto a display.
// "running" is shown as Processing; unknown values keep their capitalized
// text with zero progress.
func DisplayFromPipeline(raw string) StageDisplay {
	switch raw {
	case "completed":
		return NewStageDisplay(StageStatusCompleted)
	case "running":
		return NewStageDisplay(StageStatusProcessing)
	case "error":
		return NewStageDisplay(StageStatusError)
	}
	return StageDisplay{
		Status:   StageStatusOther,
		Label:    capitalize(raw),
		Progress: 0,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
