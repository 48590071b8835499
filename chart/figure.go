package chart

// Figure is the declarative input of Plotly.newPlot.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one plotted series. Nil points in Y are gaps.
type Trace struct {
	X      []string   `json:"x"`
	Y      []*float64 `json:"y"`
	Type   string     `json:"type"`
	Mode   string     `json:"mode,omitempty"`
	Name   string     `json:"name"`
	Line   *Line      `json:"line,omitempty"`
	Marker *Marker    `json:"marker,omitempty"`
	YAxis  string     `json:"yaxis,omitempty"`
}

type Line struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
	Dash  string  `json:"dash,omitempty"`
}

type Marker struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

type Font struct {
	Color  string `json:"color,omitempty"`
	Size   int    `json:"size,omitempty"`
	Weight string `json:"weight,omitempty"`
}

type Title struct {
	Text string `json:"text"`
	Font Font   `json:"font"`
}

type RangeSlider struct {
	Visible   bool    `json:"visible"`
	Thickness float64 `json:"thickness"`
}

// Axis covers the x and y axis attributes the console sets. Pointer fields
// distinguish false from unset.
type Axis struct {
	Title       string       `json:"title,omitempty"`
	Side        string       `json:"side,omitempty"`
	Overlaying  string       `json:"overlaying,omitempty"`
	ShowGrid    *bool        `json:"showgrid,omitempty"`
	ZeroLine    *bool        `json:"zeroline,omitempty"`
	RangeMode   string       `json:"rangemode,omitempty"`
	RangeSlider *RangeSlider `json:"rangeslider,omitempty"`
}

type Legend struct {
	Orientation string  `json:"orientation"`
	Y           float64 `json:"y"`
}

type Margin struct {
	L   int `json:"l"`
	R   int `json:"r"`
	B   int `json:"b"`
	T   int `json:"t"`
	Pad int `json:"pad"`
}

type Shape struct {
	Type string  `json:"type"`
	X0   string  `json:"x0"`
	Y0   float64 `json:"y0"`
	X1   string  `json:"x1"`
	Y1   float64 `json:"y1"`
	Line Line    `json:"line"`
}

type Annotation struct {
	X           string  `json:"x"`
	Y           float64 `json:"y"`
	XRef        string  `json:"xref"`
	YRef        string  `json:"yref"`
	Text        string  `json:"text"`
	ShowArrow   bool    `json:"showarrow"`
	ArrowHead   int     `json:"arrowhead"`
	ArrowSize   float64 `json:"arrowsize"`
	ArrowWidth  float64 `json:"arrowwidth"`
	ArrowColor  string  `json:"arrowcolor"`
	Font        Font    `json:"font"`
	Align       string  `json:"align"`
	BgColor     string  `json:"bgcolor"`
	BorderColor string  `json:"bordercolor"`
	BorderWidth float64 `json:"borderwidth"`
	BorderPad   int     `json:"borderpad"`
	Opacity     float64 `json:"opacity"`
}

type Layout struct {
	Title       Title        `json:"title"`
	XAxis       Axis         `json:"xaxis"`
	YAxis       Axis         `json:"yaxis"`
	YAxis2      Axis         `json:"yaxis2"`
	Legend      Legend       `json:"legend"`
	Height      int          `json:"height"`
	Margin      Margin       `json:"margin"`
	ShowLegend  bool         `json:"showlegend"`
	HoverMode   string       `json:"hovermode"`
	Shapes      []Shape      `json:"shapes,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}
