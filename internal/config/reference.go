package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ReferenceData holds the country and border-crossing lists the validator
// checks submissions against. The lists are configuration, not code: the
// deployment ships a YAML file and the core never hard-codes an entry.
type ReferenceData struct {
	Countries       []string `yaml:"countries"`
	BorderCrossings []string `yaml:"border_crossings"`
}

// LoadReference reads reference data from a YAML file.
func LoadReference(path string) (*ReferenceData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference file: %w", err)
	}

	var ref ReferenceData
	if err := yaml.Unmarshal(data, &ref); err != nil {
		return nil, fmt.Errorf("failed to parse reference file: %w", err)
	}

	if len(ref.Countries) == 0 {
		return nil, fmt.Errorf("reference file %s lists no countries", path)
	}
	if len(ref.BorderCrossings) == 0 {
		return nil, fmt.Errorf("reference file %s lists no border crossings", path)
	}

	return &ref, nil
}
