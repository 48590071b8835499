package templates

// Element ids shared by the page and the console that drives it.
const (
	IDStockForm             = "stockForm"
	IDStockSymbol           = "stockSymbol"
	IDTimePeriod            = "timePeriod"
	IDAnalyzeBtn            = "analyzeBtn"
	IDConsoleNotice         = "consoleNotice"
	IDLoadingChart          = "loadingChart"
	IDStockChart            = "stockChart"
	IDChartTitle            = "chartTitle"
	IDRecommendationCard    = "recommendationCard"
	IDRecommendationContent = "recommendationContent"
	IDAnalysisCard          = "analysisCard"
	IDAnalysisContent       = "analysisContent"
	IDInsightsCard          = "insightsCard"
	IDInsightsContent       = "insightsContent"
)

const (
	LabelAnalyze       = "Analyze Stock"
	LabelAnalyzing     = "Analyzing..."
	DefaultChartTitle  = "Stock Chart"
	NoChartDataMessage = "No chart data available"
)
