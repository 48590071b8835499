package config

import (
	"fmt"
	"os"

	"agent-console/models"

	"gopkg.in/yaml.v3"
)

type periodsFile struct {
	Periods []models.TimePeriod `yaml:"periods"`
}

// LoadPeriods reads the period catalog from a YAML file. An empty path yields
// the built-in catalog.
func LoadPeriods(path string) (models.Periods, error) {
	if path == "" {
		return models.Periods(models.DefaultPeriods), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read periods file: %w", err)
	}

	var f periodsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse periods file: %w", err)
	}

	if len(f.Periods) == 0 {
		return nil, fmt.Errorf("periods file %s lists no periods", path)
	}

	seen := make(map[string]bool, len(f.Periods))
	for _, p := range f.Periods {
		if p.Value == "" || p.Label == "" {
			return nil, fmt.Errorf("period entries need a value and a label, got %+v", p)
		}
		if seen[p.Value] {
			return nil, fmt.Errorf("duplicate period %q", p.Value)
		}
		seen[p.Value] = true
	}

	return models.Periods(f.Periods), nil
}
