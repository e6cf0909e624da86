//go:build !rp2040 && !rp2350

package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted input timeline played against the simulated board.
type Scenario struct {
	DurationMs uint32  `yaml:"duration_ms"`
	Events     []Event `yaml:"events"`
}

// Event is one scripted stimulus. Exactly one of Button or Encoder is set.
type Event struct {
	AtMs uint32 `yaml:"at_ms"`

	Button *int   `yaml:"button,omitempty"` // button table row
	State  string `yaml:"state,omitempty"`  // "down" or "up"

	Encoder *int `yaml:"encoder,omitempty"` // encoder table row
	Counts  int  `yaml:"counts,omitempty"`  // quadrature counts, negative for counter-clockwise
}

// LoadScenario reads and parses a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, err
	}
	if sc.DurationMs == 0 {
		sc.DurationMs = 2000
	}
	return &sc, nil
}
