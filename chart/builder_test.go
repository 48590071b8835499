package chart

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"agent-console/models"
)

func sampleConfig(rec models.Recommendation) *models.ChartConfig {
	return &models.ChartConfig{
		Symbol:         "AAPL",
		Period:         "1y",
		Recommendation: rec,
		Data: &models.ChartData{
			Dates:   []string{"2024-01-01", "2024-01-02", "2024-01-03"},
			Prices:  models.Values(98, 99, 100),
			Volumes: models.Values(1000, 1500, 1200),
			HasMA20: false,
			HasMA50: true,
			MA50:    models.Values(97, 97.5, 98),
		},
	}
}

func traceNames(f *Figure) []string {
	names := make([]string, len(f.Data))
	for i, tr := range f.Data {
		names[i] = tr.Name
	}
	return names
}

func TestBuild_NoData(t *testing.T) {
	tests := []struct {
		name string
		cfg  *models.ChartConfig
	}{
		{"nil config", nil},
		{"nil data", &models.ChartConfig{Symbol: "AAPL"}},
		{"empty dates", &models.ChartConfig{Symbol: "AAPL", Data: &models.ChartData{}}},
		{"misaligned prices", &models.ChartConfig{Symbol: "AAPL", Data: &models.ChartData{
			Dates:   []string{"2024-01-01", "2024-01-02"},
			Prices:  models.Values(1),
			Volumes: models.Values(1, 2),
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fig, err := Build(tt.cfg)
			if !errors.Is(err, ErrNoChartData) {
				t.Errorf("Build() error = %v, want ErrNoChartData", err)
			}
			if fig != nil {
				t.Error("Build() should not return a figure without data")
			}
		})
	}
}

func TestBuild_TraceOrder(t *testing.T) {
	t.Run("ma50 only", func(t *testing.T) {
		fig, err := Build(sampleConfig(models.RecommendationBuy))
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}

		got := strings.Join(traceNames(fig), ",")
		if got != "Price,50-Day MA,Volume" {
			t.Errorf("traces = %v, want Price,50-Day MA,Volume", got)
		}
	})

	t.Run("both averages", func(t *testing.T) {
		cfg := sampleConfig(models.RecommendationBuy)
		cfg.Data.HasMA20 = true
		cfg.Data.MA20 = models.Values(96, 97, 98)

		fig, err := Build(cfg)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}

		got := strings.Join(traceNames(fig), ",")
		if got != "Price,20-Day MA,50-Day MA,Volume" {
			t.Errorf("traces = %v", got)
		}
		if fig.Data[1].Line.Color != ColorMA20 || fig.Data[2].Line.Color != ColorMA50 {
			t.Error("moving average colors are swapped")
		}
	})

	t.Run("no averages", func(t *testing.T) {
		cfg := sampleConfig(models.RecommendationBuy)
		cfg.Data.HasMA50 = false

		fig, err := Build(cfg)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if len(fig.Data) != 2 {
			t.Errorf("expected 2 traces, got %d", len(fig.Data))
		}
	})
}

func TestBuild_PartialMovingAverages(t *testing.T) {
	dates := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"}
	cfg := &models.ChartConfig{
		Symbol:         "AAPL",
		Period:         "1mo",
		Recommendation: models.RecommendationBuy,
		Data: &models.ChartData{
			Dates:   dates,
			Prices:  models.Values(1, 2, 3, 4),
			Volumes: models.Values(10, 20, 30, 40),
			HasMA20: true,
			MA20:    models.Values(2.5, 3.5),
		},
	}

	fig, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	got := strings.Join(traceNames(fig), ",")
	if got != "Price,20-Day MA,Volume" {
		t.Fatalf("traces = %v, want Price,20-Day MA,Volume", got)
	}

	ma := fig.Data[1]
	if strings.Join(ma.X, ",") != "2024-01-03,2024-01-04" {
		t.Errorf("ma20 x = %v, want the trailing dates", ma.X)
	}
	if len(ma.Y) != 2 || *ma.Y[0] != 2.5 {
		t.Errorf("ma20 y = %v", ma.Y)
	}
	if len(fig.Data[0].X) != 4 || len(fig.Data[2].X) != 4 {
		t.Error("price and volume should keep every date")
	}
}

func TestBuild_UnplaceableMovingAverages(t *testing.T) {
	tests := []struct {
		name string
		ma20 models.Series
	}{
		{"flagged but empty", nil},
		{"longer than dates", models.Values(1, 2, 3, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := sampleConfig(models.RecommendationBuy)
			cfg.Data.HasMA20 = true
			cfg.Data.MA20 = tt.ma20

			fig, err := Build(cfg)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}

			got := strings.Join(traceNames(fig), ",")
			if got != "Price,50-Day MA,Volume" {
				t.Errorf("traces = %v, want the ma20 trace left out", got)
			}
		})
	}
}

func TestBuild_Gaps(t *testing.T) {
	t.Run("missing points stay null", func(t *testing.T) {
		cfg := sampleConfig(models.RecommendationBuy)
		cfg.Data.Prices = models.Series{ptr(98), nil, ptr(100)}

		fig, err := Build(cfg)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}

		raw, err := json.Marshal(fig.Data[0])
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		if !strings.Contains(string(raw), `"y":[98,null,100]`) {
			t.Errorf("price trace = %s, want a null gap", raw)
		}
	})

	t.Run("highlight uses the last present price", func(t *testing.T) {
		cfg := sampleConfig(models.RecommendationBuy)
		cfg.Data.Prices = models.Series{ptr(98), ptr(100), nil}

		fig, err := Build(cfg)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}

		shape := fig.Layout.Shapes[0]
		if shape.X0 != "2024-01-02" || shape.Y0 != 100 || shape.Y1 != 102 {
			t.Errorf("shape = %+v, want anchored at 2024-01-02 / 100", shape)
		}
	})

	t.Run("no prices means no highlight", func(t *testing.T) {
		cfg := sampleConfig(models.RecommendationBuy)
		cfg.Data.Prices = models.Series{nil, nil, nil}

		fig, err := Build(cfg)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if len(fig.Layout.Shapes) != 0 || len(fig.Layout.Annotations) != 0 {
			t.Error("expected no highlight without a price")
		}
	})
}

func ptr(v float64) *float64 {
	return &v
}

func TestBuild_VolumeOnSecondaryAxis(t *testing.T) {
	fig, err := Build(sampleConfig(models.RecommendationHold))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	vol := fig.Data[len(fig.Data)-1]
	if vol.Type != "bar" || vol.YAxis != "y2" {
		t.Errorf("volume trace = %+v, want bar on y2", vol)
	}

	y2 := fig.Layout.YAxis2
	if y2.Title != "Volume" || y2.Side != "right" || y2.Overlaying != "y" {
		t.Errorf("yaxis2 = %+v", y2)
	}
	if y2.ShowGrid == nil || *y2.ShowGrid {
		t.Error("yaxis2 should disable gridlines")
	}
	if y2.RangeMode != "nonnegative" {
		t.Errorf("yaxis2 rangemode = %v, want nonnegative", y2.RangeMode)
	}
	if fig.Layout.YAxis.Title != "Price" || fig.Layout.YAxis.Side != "left" {
		t.Errorf("yaxis = %+v", fig.Layout.YAxis)
	}
	if fig.Layout.XAxis.RangeSlider == nil || !fig.Layout.XAxis.RangeSlider.Visible {
		t.Error("xaxis should show a range slider")
	}
	if fig.Layout.Legend.Orientation != "h" {
		t.Errorf("legend orientation = %v, want h", fig.Layout.Legend.Orientation)
	}
	if fig.Layout.Height != 500 {
		t.Errorf("height = %v, want 500", fig.Layout.Height)
	}
	if fig.Layout.Title.Text != "AAPL 1y" {
		t.Errorf("title = %v, want 'AAPL 1y'", fig.Layout.Title.Text)
	}
}

func TestBuild_Highlight(t *testing.T) {
	tests := []struct {
		rec  models.Recommendation
		want string
	}{
		{models.RecommendationBuy, ColorBuy},
		{models.RecommendationSell, ColorSell},
		{models.RecommendationHold, ColorHold},
		{models.Recommendation("N/A"), ColorHold},
	}

	for _, tt := range tests {
		t.Run(string(tt.rec), func(t *testing.T) {
			fig, err := Build(sampleConfig(tt.rec))
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}

			shape := fig.Layout.Shapes[0]
			if shape.Line.Color != tt.want {
				t.Errorf("shape color = %v, want %v", shape.Line.Color, tt.want)
			}
			ann := fig.Layout.Annotations[0]
			if ann.ArrowColor != tt.want || ann.Font.Color != tt.want || ann.BorderColor != tt.want {
				t.Errorf("annotation colors = %v/%v/%v, want %v", ann.ArrowColor, ann.Font.Color, ann.BorderColor, tt.want)
			}
			if ann.Text != string(tt.rec) {
				t.Errorf("annotation text = %v, want %v", ann.Text, tt.rec)
			}
		})
	}
}

func TestBuild_HighlightGeometry(t *testing.T) {
	fig, err := Build(sampleConfig(models.RecommendationSell))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	shape := fig.Layout.Shapes[0]
	if shape.X0 != "2024-01-03" || shape.X1 != "2024-01-03" {
		t.Errorf("shape x = %v..%v, want last date", shape.X0, shape.X1)
	}
	if shape.Y0 != 100 {
		t.Errorf("shape y0 = %v, want 100", shape.Y0)
	}
	if shape.Y1 != 102 {
		t.Errorf("shape y1 = %v, want 102", shape.Y1)
	}

	ann := fig.Layout.Annotations[0]
	if ann.X != "2024-01-03" || ann.Y != 103 {
		t.Errorf("annotation at (%v, %v), want (2024-01-03, 103)", ann.X, ann.Y)
	}
	if !ann.ShowArrow {
		t.Error("annotation should point with an arrow")
	}
}

func TestFigure_JSON(t *testing.T) {
	fig, err := Build(sampleConfig(models.RecommendationBuy))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	raw, err := json.Marshal(fig)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	body := string(raw)
	for _, want := range []string{`"showgrid":false`, `"rangemode":"nonnegative"`, `"yaxis":"y2"`, `"rangeslider":{"visible":true`} {
		if !strings.Contains(body, want) {
			t.Errorf("figure JSON missing %s", want)
		}
	}
}
