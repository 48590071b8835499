// Package chart turns a backend chart configuration into a Plotly figure:
// price line, optional moving averages, volume bars on a secondary axis and a
// highlight marking the recommendation at the latest price.
package chart

import (
	"errors"
	"fmt"

	"agent-console/models"
	"agent-console/observability"

	"github.com/shopspring/decimal"
)

// ContainerID is the page element the figure is drawn into.
const ContainerID = "stockChart"

// ErrNoChartData is returned when there is nothing to plot.
var ErrNoChartData = errors.New("no chart data available")

const (
	ColorPrice  = "#2c3e50"
	ColorMA20   = "#3498db"
	ColorMA50   = "#e74c3c"
	ColorVolume = "#34495e"

	ColorBuy  = "#27ae60"
	ColorSell = "#c0392b"
	ColorHold = "#f39c12"
)

const chartHeight = 500

var (
	highlightTop = decimal.RequireFromString("1.02")
	labelOffset  = decimal.RequireFromString("1.03")
)

// RecommendationColor returns the highlight color for a recommendation.
func RecommendationColor(rec models.Recommendation) string {
	switch rec {
	case models.RecommendationBuy:
		return ColorBuy
	case models.RecommendationSell:
		return ColorSell
	default:
		return ColorHold
	}
}

// Build returns the figure for cfg, or ErrNoChartData when cfg has no usable data.
func Build(cfg *models.ChartConfig) (*Figure, error) {
	if cfg == nil || cfg.Data == nil {
		return nil, ErrNoChartData
	}
	data := cfg.Data
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoChartData, err)
	}

	traces := []Trace{{
		X:    data.Dates,
		Y:    data.Prices,
		Type: "scatter",
		Mode: "lines",
		Name: "Price",
		Line: &Line{Color: ColorPrice, Width: 2},
	}}

	if data.HasMA20 {
		if tr, ok := movingAverage("20-Day MA", data.Dates, data.MA20, ColorMA20); ok {
			traces = append(traces, tr)
		}
	}
	if data.HasMA50 {
		if tr, ok := movingAverage("50-Day MA", data.Dates, data.MA50, ColorMA50); ok {
			traces = append(traces, tr)
		}
	}

	traces = append(traces, Trace{
		X:      data.Dates,
		Y:      data.Volumes,
		Type:   "bar",
		Name:   "Volume",
		Marker: &Marker{Color: ColorVolume, Opacity: 0.4},
		YAxis:  "y2",
	})

	layout := baseLayout(cfg.Symbol + " " + cfg.Period)
	if date, price, ok := data.Last(); ok {
		highlight(&layout, date, price, cfg.Recommendation)
	}

	return &Figure{Data: traces, Layout: layout}, nil
}

// movingAverage aligns an average with the trailing dates, since the backend
// leaves out the points before its window fills. An average that is empty or
// longer than the dates cannot be placed and is left out of the figure.
func movingAverage(name string, dates []string, values models.Series, color string) (Trace, bool) {
	n, m := len(dates), len(values)
	if m == 0 || m > n {
		observability.Warn("moving average omitted from chart", "series", name, "points", m, "dates", n)
		return Trace{}, false
	}
	return Trace{
		X:    dates[n-m:],
		Y:    values,
		Type: "scatter",
		Mode: "lines",
		Name: name,
		Line: &Line{Color: color, Width: 1.5},
	}, true
}

func baseLayout(title string) Layout {
	return Layout{
		Title: Title{Text: title, Font: Font{Size: 16}},
		XAxis: Axis{
			Title:       "Date",
			RangeSlider: &RangeSlider{Visible: true, Thickness: 0.05},
		},
		YAxis: Axis{
			Title:    "Price",
			Side:     "left",
			ShowGrid: boolPtr(true),
			ZeroLine: boolPtr(true),
		},
		YAxis2: Axis{
			Title:      "Volume",
			Side:       "right",
			Overlaying: "y",
			ShowGrid:   boolPtr(false),
			RangeMode:  "nonnegative",
		},
		Legend:     Legend{Orientation: "h", Y: 1.1},
		Height:     chartHeight,
		Margin:     Margin{L: 50, R: 50, B: 50, T: 50, Pad: 4},
		ShowLegend: true,
		HoverMode:  "closest",
	}
}

// highlight draws a short vertical segment from the last price to 2% above
// it and points a label at the last data point from 3% above.
func highlight(layout *Layout, date string, price float64, rec models.Recommendation) {
	last := decimal.NewFromFloat(price)
	color := RecommendationColor(rec)

	layout.Shapes = []Shape{{
		Type: "line",
		X0:   date,
		Y0:   price,
		X1:   date,
		Y1:   last.Mul(highlightTop).InexactFloat64(),
		Line: Line{Color: color, Width: 3, Dash: "solid"},
	}}

	layout.Annotations = []Annotation{{
		X:           date,
		Y:           last.Mul(labelOffset).InexactFloat64(),
		XRef:        "x",
		YRef:        "y",
		Text:        string(rec),
		ShowArrow:   true,
		ArrowHead:   2,
		ArrowSize:   1,
		ArrowWidth:  2,
		ArrowColor:  color,
		Font:        Font{Color: color, Size: 12, Weight: "bold"},
		Align:       "center",
		BgColor:     "rgba(255, 255, 255, 0.8)",
		BorderColor: color,
		BorderWidth: 2,
		BorderPad:   4,
		Opacity:     0.8,
	}}
}

func boolPtr(b bool) *bool {
	return &b
}
