package keyword

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/switchboard/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalogue []byte

// Category is one intent label with the keywords that vote for it.
type Category struct {
	Name        string   `yaml:"name" mapstructure:"name"`
	Description string   `yaml:"description" mapstructure:"description"`
	Keywords    []string `yaml:"keywords" mapstructure:"keywords"`
}

// Catalogue configures the classifier.
type Catalogue struct {
	Categories []Category `yaml:"categories" mapstructure:"categories"`

	// Fallback is returned when no keyword matches.
	Fallback           string  `yaml:"fallback" mapstructure:"fallback"`
	FallbackConfidence float64 `yaml:"fallback_confidence" mapstructure:"fallback_confidence"`
}

// DefaultCatalogue returns the built-in support/sales/triage catalogue.
func DefaultCatalogue() Catalogue {
	c, err := Parse(defaultCatalogue)
	if err != nil {
		panic(fmt.Sprintf("keyword: invalid built-in catalogue: %v", err))
	}
	return c
}

// Parse decodes and validates a YAML catalogue.
func Parse(data []byte) (Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalogue{}, fmt.Errorf("failed to parse catalogue: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalogue{}, err
	}
	return c, nil
}

// Load reads a catalogue file.
func Load(path string) (Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalogue{}, fmt.Errorf("failed to read catalogue: %w", err)
	}
	return Parse(data)
}

// Validate checks that names are unique, keywords non-blank and a fallback is set.
// Names outside the domain label set are allowed: the workflow rejects them
// as invalid intents, which is how a misconfigured catalogue surfaces.
func (c Catalogue) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("catalogue has no categories")
	}
	seen := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		name := strings.ToLower(strings.TrimSpace(cat.Name))
		if name == "" {
			return fmt.Errorf("category name cannot be empty")
		}
		if seen[name] {
			return fmt.Errorf("duplicate category %q", name)
		}
		seen[name] = true
		for _, kw := range cat.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("category %q has a blank keyword", name)
			}
		}
	}
	if strings.TrimSpace(c.Fallback) == "" {
		return fmt.Errorf("fallback intent cannot be empty")
	}
	if c.FallbackConfidence < 0 || c.FallbackConfidence > 1 {
		return fmt.Errorf("fallback_confidence %v: %w", c.FallbackConfidence, domain.ErrConfidenceOutOfRange)
	}
	return nil
}
