package mocks

import (
	"math"
	"time"

	"agent-console/models"
)

// periodDescriptions mirrors the backend's period labels.
var periodDescriptions = map[string]string{
	"1w":  "1 Week",
	"1mo": "1 Month",
	"6mo": "6 Months",
	"1y":  "1 Year",
	"3y":  "3 Years",
	"5y":  "5 Years",
	"10y": "10 Years",
	"max": "All Time",
}

// DefaultResult builds a successful analysis response for the symbol.
func DefaultResult(symbol, period string) *models.AnalysisResult {
	data := GenerateChartData(60)
	return &models.AnalysisResult{
		Success:           true,
		Symbol:            symbol,
		Period:            period,
		PeriodDescription: periodDescriptions[period],
		CompanyInfo: map[string]any{
			"name":   symbol + " Inc.",
			"sector": "Technology",
		},
		Recommendation:        models.RecommendationBuy,
		Confidence:            models.ConfidenceHigh,
		Analysis:              "1. Overview\n\nRevenue grew steadily over the period.\n\n2. Risks\n\nValuation is stretched.",
		VisualizationInsights: "Price holds above both moving averages.",
		ChartConfig: &models.ChartConfig{
			Type:           "stock",
			Symbol:         symbol,
			CompanyName:    symbol + " Inc.",
			Period:         period,
			Recommendation: models.RecommendationBuy,
			Confidence:     models.ConfidenceHigh,
			Data:           data,
		},
		PipelineStatus: CompletedPipeline(),
	}
}

// FailedResult builds a success=false response with the data collector in error.
func FailedResult(message string) *models.AnalysisResult {
	p := CompletedPipeline()
	p.DataCollection.Status = "error"
	p.Analysis.Status = "pending"
	p.Visualization.Status = "pending"
	return &models.AnalysisResult{
		Success:        false,
		Error:          message,
		PipelineStatus: p,
	}
}

// CompletedPipeline reports every stage as completed.
func CompletedPipeline() *models.PipelineStatus {
	start := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC).Format(time.RFC3339)
	end := time.Date(2024, 1, 2, 15, 4, 9, 0, time.UTC).Format(time.RFC3339)
	report := func(name string) *models.StageReport {
		return &models.StageReport{Name: name, Status: "completed", StartTime: start, EndTime: end}
	}
	return &models.PipelineStatus{
		DataCollection: report("DataCollectorAgent"),
		Analysis:       report("AnalysisAgent"),
		Visualization:  report("VisualizationAgent"),
	}
}

// GenerateChartData produces n deterministic daily points. Like the real
// backend, the moving averages start once their window fills, so they are
// shorter than the dates.
func GenerateChartData(n int) *models.ChartData {
	var prices, opens, highs, lows, volumes []float64
	d := &models.ChartData{}
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		price := 150 + 10*math.Sin(float64(i)/7) + float64(i)*0.2
		d.Dates = append(d.Dates, day.AddDate(0, 0, i).Format("2006-01-02"))
		prices = append(prices, round2(price))
		opens = append(opens, round2(price-0.5))
		highs = append(highs, round2(price+1.2))
		lows = append(lows, round2(price-1.4))
		volumes = append(volumes, float64(1_000_000+(i%10)*50_000))
	}
	d.Prices = models.Values(prices...)
	d.Opens = models.Values(opens...)
	d.Highs = models.Values(highs...)
	d.Lows = models.Values(lows...)
	d.Volumes = models.Values(volumes...)

	ma20, ma50 := movingAverage(prices, 20), movingAverage(prices, 50)
	d.MA20, d.HasMA20 = models.Values(ma20...), len(ma20) > 0
	d.MA50, d.HasMA50 = models.Values(ma50...), len(ma50) > 0
	return d
}

// movingAverage returns one value per full window.
func movingAverage(prices []float64, window int) []float64 {
	var out []float64
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= window {
			sum -= prices[i-window]
		}
		if i+1 >= window {
			out = append(out, round2(sum/float64(window)))
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
