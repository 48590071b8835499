package templates

import "agent-console/models"

// PageData configures the index page.
type PageData struct {
	Title         string
	Periods       models.Periods
	DefaultPeriod string
}
