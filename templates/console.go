package templates

import "agent-console/models"

// ConsoleState is everything the console region shows. HTML fields hold
// markup rendered by the other components in this package.
type ConsoleState struct {
	Stages         [len(models.Stages)]models.StageDisplay
	ChartTitle     string
	ChartMessage   string
	FigureJSON     string
	Recommendation string
	Analysis       string
	Insights       string
}

// IdleState is the console before any submission.
func IdleState() ConsoleState {
	var s ConsoleState
	for _, st := range models.Stages {
		s.Stages[st] = models.Idle()
	}
	s.ChartTitle = DefaultChartTitle
	return s
}
