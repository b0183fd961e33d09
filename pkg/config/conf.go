package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/psymetrics/irtsim/pkg/sim"
)

const fileMode = 0600

// Default returns a small runnable scenario: a plain rating scale study
// with 10 items, 500 persons, and 4 response categories.
func Default() sim.Scenario {
	return sim.Scenario{
		Name:       "default",
		Items:      10,
		Persons:    500,
		Categories: 4,
		Sigma:      1,
		Seed:       1,
	}
}

// Read loads and validates a scenario file.
func Read(path string) (sim.Scenario, error) {
	var s sim.Scenario
	if path == "" {
		return s, errors.New("scenario file path required")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading scenario file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("unmarshaling scenario file %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("scenario file %s: %w", path, err)
	}
	return s, nil
}

// Write saves a scenario to a YAML file.
func Write(path string, s sim.Scenario) error {
	if path == "" {
		return errors.New("scenario file path required")
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling scenario: %w", err)
	}
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("writing scenario file %s: %w", path, err)
	}
	return nil
}

// ReadOrCreate reads a scenario file, writing the default scenario there
// first when the file does not exist yet.
func ReadOrCreate(path string) (sim.Scenario, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Write(path, Default()); err != nil {
			return sim.Scenario{}, err
		}
	}
	return Read(path)
}
