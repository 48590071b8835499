package models

// AnalysisRequest is the body posted to the analysis backend.
type AnalysisRequest struct {
	Symbol string `json:"symbol"`
	Period string `json:"period"`
}

type Recommendation string

const (
	RecommendationBuy  Recommendation = "BUY"
	RecommendationSell Recommendation = "SELL"
	RecommendationHold Recommendation = "HOLD"
)

// CSSClass returns the banner class; anything other than BUY or SELL is styled as HOLD.
func (r Recommendation) CSSClass() string {
	switch r {
	case RecommendationBuy:
		return "buy-recommendation"
	case RecommendationSell:
		return "sell-recommendation"
	default:
		return "hold-recommendation"
	}
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// CSSClass returns the subtitle class; unknown values are styled as LOW.
func (c Confidence) CSSClass() string {
	switch c {
	case ConfidenceHigh:
		return "confidence-high"
	case ConfidenceMedium:
		return "confidence-medium"
	default:
		return "confidence-low"
	}
}

// StageReport is the backend's authoritative status for one stage.
type StageReport struct {
	Name      string `json:"name,omitempty"`
	Status    string `json:"status"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

type PipelineStatus struct {
	DataCollection *StageReport `json:"data_collection,omitempty"`
	Analysis       *StageReport `json:"analysis,omitempty"`
	Visualization  *StageReport `json:"visualization,omitempty"`
}

// For returns the report for a stage, or nil when the backend omitted it.
func (p *PipelineStatus) For(stage Stage) *StageReport {
	if p == nil {
		return nil
	}
	switch stage {
	case StageDataCollection:
		return p.DataCollection
	case StageAnalysis:
		return p.Analysis
	case StageVisualization:
		return p.Visualization
	default:
		return nil
	}
}

// AnalysisResult is the backend's response to an analysis request.
type AnalysisResult struct {
	Success               bool            `json:"success"`
	Error                 string          `json:"error,omitempty"`
	Symbol                string          `json:"symbol"`
	Period                string          `json:"period,omitempty"`
	PeriodDescription     string          `json:"period_description"`
	CompanyInfo           map[string]any  `json:"company_info,omitempty"`
	Recommendation        Recommendation  `json:"recommendation"`
	Confidence            Confidence      `json:"confidence"`
	Analysis              string          `json:"analysis,omitempty"`
	VisualizationInsights string          `json:"visualization_insights,omitempty"`
	ChartConfig           *ChartConfig    `json:"chart_config,omitempty"`
	PipelineStatus        *PipelineStatus `json:"pipeline_status,omitempty"`
}

// FailureMessage is the message shown when the backend reports success=false.
func (r *AnalysisResult) FailureMessage() string {
	if r.Error != "" {
		return r.Error
	}
	return "Unknown error"
}

// ChartTitle is the heading shown above the chart.
func (r *AnalysisResult) ChartTitle() string {
	return r.Symbol + " - " + r.PeriodDescription
}

// AgentInfo is one entry of the backend's agent status listing.
type AgentInfo struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
