package models

// TimePeriod is one option of the period selector.
type TimePeriod struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// DefaultPeriod is the preferred default when the catalog offers it.
const DefaultPeriod = "1y"

// DefaultPeriods is the catalog offered when no periods file is configured.
var DefaultPeriods = []TimePeriod{
	{Value: "1w", Label: "1 Week"},
	{Value: "1mo", Label: "1 Month"},
	{Value: "6mo", Label: "6 Months"},
	{Value: "1y", Label: "1 Year"},
	{Value: "3y", Label: "3 Years"},
	{Value: "5y", Label: "5 Years"},
	{Value: "10y", Label: "10 Years"},
	{Value: "max", Label: "All Time"},
}

// Periods is an ordered period catalog.
type Periods []TimePeriod

// Lookup returns the period with the given value.
func (p Periods) Lookup(value string) (TimePeriod, bool) {
	for _, tp := range p {
		if tp.Value == value {
			return tp, true
		}
	}
	return TimePeriod{}, false
}

// Default is DefaultPeriod when the catalog offers it, otherwise the
// catalog's first entry.
func (p Periods) Default() string {
	if _, ok := p.Lookup(DefaultPeriod); ok || len(p) == 0 {
		return DefaultPeriod
	}
	return p[0].Value
}

// Resolve returns value if it is in the catalog, otherwise the default period.
func (p Periods) Resolve(value string) string {
	if _, ok := p.Lookup(value); ok {
		return value
	}
	return p.Default()
}
