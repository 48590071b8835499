package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func validChartData() *ChartData {
	return &ChartData{
		Dates:   []string{"2024-01-01", "2024-01-02", "2024-01-03"},
		Prices:  Values(100, 101, 102),
		Volumes: Values(1000, 1100, 1200),
		HasMA20: true,
		MA20:    Values(99, 100, 101),
	}
}

func TestChartData_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		if err := validChartData().Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("no dates", func(t *testing.T) {
		d := &ChartData{}
		if err := d.Validate(); !errors.Is(err, ErrEmptyChartData) {
			t.Errorf("Validate() = %v, want ErrEmptyChartData", err)
		}
	})

	t.Run("short prices", func(t *testing.T) {
		d := validChartData()
		d.Prices = d.Prices[:2]
		if err := d.Validate(); err == nil {
			t.Error("Validate() should reject misaligned prices")
		}
	})

	t.Run("short volumes", func(t *testing.T) {
		d := validChartData()
		d.Volumes = nil
		if err := d.Validate(); err == nil {
			t.Error("Validate() should reject misaligned volumes")
		}
	})

	t.Run("moving averages are optional", func(t *testing.T) {
		tests := []struct {
			name string
			ma50 Series
		}{
			{"flagged but missing", nil},
			{"flagged and short", Values(101)},
			{"flagged and long", Values(1, 2, 3, 4)},
		}
		for _, tt := range tests {
			d := validChartData()
			d.HasMA50 = true
			d.MA50 = tt.ma50
			if err := d.Validate(); err != nil {
				t.Errorf("%s: Validate() = %v, want nil", tt.name, err)
			}
		}
	})
}

func TestChartData_Last(t *testing.T) {
	tests := []struct {
		name      string
		prices    Series
		wantDate  string
		wantPrice float64
		wantOK    bool
	}{
		{"last point present", Values(100, 101, 102), "2024-01-03", 102, true},
		{"last point missing", Series{ptr(100), ptr(101), nil}, "2024-01-02", 101, true},
		{"every point missing", Series{nil, nil, nil}, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validChartData()
			d.Prices = tt.prices

			date, price, ok := d.Last()
			if date != tt.wantDate || price != tt.wantPrice || ok != tt.wantOK {
				t.Errorf("Last() = (%v, %v, %v), want (%v, %v, %v)", date, price, ok, tt.wantDate, tt.wantPrice, tt.wantOK)
			}
		})
	}
}

func TestSeries_NullPoints(t *testing.T) {
	var d ChartData
	if err := json.Unmarshal([]byte(`{"dates":["a","b","c"],"prices":[1,null,3],"volumes":[10,20,null]}`), &d); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if d.Prices[1] != nil {
		t.Errorf("prices[1] = %v, want a gap", *d.Prices[1])
	}
	if d.Volumes[2] != nil {
		t.Errorf("volumes[2] = %v, want a gap", *d.Volumes[2])
	}
	if *d.Prices[2] != 3 {
		t.Errorf("prices[2] = %v, want 3", *d.Prices[2])
	}

	raw, err := json.Marshal(d.Prices)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(raw) != "[1,null,3]" {
		t.Errorf("prices = %s, want [1,null,3]", raw)
	}
}

func TestValues(t *testing.T) {
	s := Values(1.5, 2.5)
	if len(s) != 2 || *s[0] != 1.5 || *s[1] != 2.5 {
		t.Errorf("Values() = %v", s)
	}
	if i, v, ok := s.LastValid(); i != 1 || v != 2.5 || !ok {
		t.Errorf("LastValid() = (%v, %v, %v)", i, v, ok)
	}
}

func ptr(v float64) *float64 {
	return &v
}

func TestPeriods_Resolve(t *testing.T) {
	p := Periods(DefaultPeriods)

	if got := p.Resolve("6mo"); got != "6mo" {
		t.Errorf("Resolve(6mo) = %v, want 6mo", got)
	}
	if got := p.Resolve("2d"); got != DefaultPeriod {
		t.Errorf("Resolve(2d) = %v, want %v", got, DefaultPeriod)
	}
	if tp, ok := p.Lookup("max"); !ok || tp.Label != "All Time" {
		t.Errorf("Lookup(max) = %+v, %v", tp, ok)
	}
}

func TestPeriods_Default(t *testing.T) {
	tests := []struct {
		name    string
		periods Periods
		want    string
	}{
		{"catalog offers 1y", Periods(DefaultPeriods), DefaultPeriod},
		{"catalog without 1y", Periods{{Value: "1mo", Label: "1 Month"}, {Value: "6mo", Label: "6 Months"}}, "1mo"},
		{"empty catalog", nil, DefaultPeriod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.periods.Default(); got != tt.want {
				t.Errorf("Default() = %v, want %v", got, tt.want)
			}
			if got := tt.periods.Resolve("2d"); got != tt.want {
				t.Errorf("Resolve(2d) = %v, want %v", got, tt.want)
			}
		})
	}
}
