package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/atollkit/atoll/internal/view"
)

// Scenario defines one conformance run: a page of fixture components to
// render server-side, optional client divergences, and the expected
// per-island outcomes.
type Scenario struct {
	// Name uniquely identifies the scenario; golden files use it.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description,omitempty"`

	// Page lists the components rendered into the page, in order.
	Page []PageItem `yaml:"page"`

	// Divergences install client-side component variants that disagree
	// with the server rendering.
	Divergences []Divergence `yaml:"divergences,omitempty"`

	// Expect maps island ids to expected hydration outcomes. Islands not
	// listed must hydrate cleanly.
	Expect map[string]string `yaml:"expect,omitempty"`
}

// PageItem is one component placement on the page.
type PageItem struct {
	// Component names a fixture component.
	Component string `yaml:"component"`

	// Island declares the placement as an island: "element", "fragment",
	// or "" for plain static rendering.
	Island string `yaml:"island,omitempty"`

	// Props are the component's inputs.
	Props map[string]any `yaml:"props,omitempty"`
}

// Divergence swaps in a divergent client variant for one component type.
type Divergence struct {
	Component string         `yaml:"component"`
	Mode      DivergenceMode `yaml:"mode"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks the scenario against the fixture registry.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("missing name")
	}
	if len(s.Page) == 0 {
		return fmt.Errorf("page is empty")
	}
	components := Components()
	for i, item := range s.Page {
		if _, ok := components[item.Component]; !ok {
			return fmt.Errorf("page[%d]: unknown component %q", i, item.Component)
		}
		switch item.Island {
		case "", string(view.KindElement), string(view.KindFragment):
		default:
			return fmt.Errorf("page[%d]: invalid island kind %q", i, item.Island)
		}
	}
	for i, d := range s.Divergences {
		if _, err := DivergentFactory(d.Component, d.Mode); err != nil {
			return fmt.Errorf("divergences[%d]: %w", i, err)
		}
	}
	return nil
}
