package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRegistry decodes a models/registry.yaml file.
func LoadRegistry(path string) (Registry, error) {
	var reg Registry
	if err := loadYAML(path, &reg); err != nil {
		return Registry{}, err
	}
	return reg, nil
}

// LoadRouting decodes a routing.yaml file. A missing file degrades to a
// zero-value Routing with a weighted strategy, matching the prototype's
// forgiving fallback; any other read or decode error is returned.
func LoadRouting(path string) (Routing, error) {
	var routing Routing
	if err := loadYAML(path, &routing); err != nil {
		if os.IsNotExist(err) {
			return Routing{Strategy: Strategy{Type: "weighted"}}, nil
		}
		return Routing{}, err
	}
	return routing, nil
}

// LoadGuardrails decodes a policies/guardrails.yaml file.
func LoadGuardrails(path string) (Guardrails, error) {
	var gr Guardrails
	if err := loadYAML(path, &gr); err != nil {
		return Guardrails{}, err
	}
	return gr, nil
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// WeightSum returns the sum of a weighted strategy's weights, so callers
// can warn when it strays far from 1.0 (spec.md §6: "sum should be ~1.0,
// warning otherwise").
func (s Strategy) WeightSum() float64 {
	total := 0.0
	for _, w := range s.Weights {
		total += w
	}
	return total
}
