package models

import (
	"errors"
	"fmt"
)

var ErrEmptyChartData = errors.New("chart data has no dates")

// ChartConfig is the declarative chart payload produced by the visualization stage.
type ChartConfig struct {
	Type           string         `json:"type,omitempty"`
	Symbol         string         `json:"symbol"`
	CompanyName    string         `json:"company_name,omitempty"`
	Period         string         `json:"period"`
	Recommendation Recommendation `json:"recommendation"`
	Confidence     Confidence     `json:"confidence,omitempty"`
	Data           *ChartData     `json:"data,omitempty"`
}

// Series is a numeric series with gaps. A missing point is nil and travels
// as JSON null in both directions, so the chart shows a gap instead of zero.
type Series []*float64

// Values builds a series without gaps.
func Values(vs ...float64) Series {
	s := make(Series, len(vs))
	for i := range vs {
		s[i] = &vs[i]
	}
	return s
}

// LastValid returns the index and value of the last point that is present.
func (s Series) LastValid() (int, float64, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != nil {
			return i, *s[i], true
		}
	}
	return -1, 0, false
}

// ChartData holds parallel series indexed like Dates. The moving averages
// only carry the points the backend could compute, so they may be shorter
// than Dates; their missing points are the leading ones.
type ChartData struct {
	Dates   []string `json:"dates"`
	Prices  Series   `json:"prices"`
	Volumes Series   `json:"volumes"`
	Opens   Series   `json:"opens,omitempty"`
	Highs   Series   `json:"highs,omitempty"`
	Lows    Series   `json:"lows,omitempty"`
	HasMA20 bool     `json:"has_ma20"`
	HasMA50 bool     `json:"has_ma50"`
	MA20    Series   `json:"ma20,omitempty"`
	MA50    Series   `json:"ma50,omitempty"`
}

// Validate checks that the price and volume series are aligned with Dates.
// Moving averages are optional and checked by the chart builder.
func (d *ChartData) Validate() error {
	n := len(d.Dates)
	if n == 0 {
		return ErrEmptyChartData
	}
	if len(d.Prices) != n {
		return fmt.Errorf("prices has %d points, dates has %d", len(d.Prices), n)
	}
	if len(d.Volumes) != n {
		return fmt.Errorf("volumes has %d points, dates has %d", len(d.Volumes), n)
	}
	return nil
}

// Last returns the date and closing price of the most recent point that has
// a price. ok is false when every price is missing.
func (d *ChartData) Last() (string, float64, bool) {
	i, price, ok := d.Prices.LastValid()
	if !ok || i >= len(d.Dates) {
		return "", 0, false
	}
	return d.Dates[i], price, true
}
