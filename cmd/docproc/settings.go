package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Settings describes the simulated document pipeline: one weighted stage per
// entry, driven in order.
type Settings struct {
	Document string  `yaml:"document"`
	Stages   []Stage `yaml:"stages"`
}

// Stage is a single pipeline phase.
type Stage struct {
	// Name labels the stage's child emitter.
	Name string `yaml:"name"`

	// Weight is the stage's share of the parent timeline.
	Weight float64 `yaml:"weight"`

	// Units is the number of work items the stage processes.
	Units int `yaml:"units"`

	// TickMillis is the simulated per-unit processing time.
	TickMillis int `yaml:"tick_millis"`
}

// defaultSettings is the pipeline used when no settings file is given.
func defaultSettings() Settings {
	return Settings{
		Document: "sample.pdf",
		Stages: []Stage{
			{Name: "extract", Weight: 0.25, Units: 40, TickMillis: 25},
			{Name: "ocr", Weight: 0.5, Units: 120, TickMillis: 15},
			{Name: "index", Weight: 0.25, Units: 30, TickMillis: 30},
		},
	}
}

// loadSettings reads a pipeline description from a YAML file.
func loadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("unable to read settings file: %w", err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("unable to parse settings file: %w", err)
	}
	if len(s.Stages) == 0 {
		return Settings{}, fmt.Errorf("settings file %q defines no stages", path)
	}
	for _, stage := range s.Stages {
		if stage.Weight <= 0 {
			return Settings{}, fmt.Errorf("stage %q has non-positive weight %g", stage.Name, stage.Weight)
		}
		if stage.Units <= 0 {
			return Settings{}, fmt.Errorf("stage %q has non-positive units %d", stage.Name, stage.Units)
		}
	}
	return s, nil
}
