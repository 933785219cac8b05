// Package catalog holds the static achievement, note template and
// integration lists shipped with the binary.
package catalog

import (
	_ "embed"
	"fmt"

	"github.com/Hayacku/initium/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

type Catalog struct {
	Achievements []models.Achievement          `yaml:"achievements"`
	Templates    []models.NoteTemplate         `yaml:"templates"`
	Integrations []models.AvailableIntegration `yaml:"integrations"`

	integrationIndex map[string]models.AvailableIntegration
}

// Load parses the embedded catalogue
func Load() (*Catalog, error) {
	return Parse(embedded)
}

// Parse decodes and validates a catalogue document
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[string]bool, len(c.Achievements))
	for i := range c.Achievements {
		a := &c.Achievements[i]
		if a.Code == "" {
			return nil, fmt.Errorf("catalog: achievement %d has no code", i)
		}
		if seen[a.Code] {
			return nil, fmt.Errorf("catalog: duplicate achievement code %q", a.Code)
		}
		seen[a.Code] = true
		a.ID = a.Code
		if a.Rarity == "" {
			a.Rarity = "common"
		}
	}

	c.integrationIndex = make(map[string]models.AvailableIntegration, len(c.Integrations))
	for _, in := range c.Integrations {
		if in.ID == "" {
			return nil, fmt.Errorf("catalog: integration without id")
		}
		c.integrationIndex[in.ID] = in
	}

	return &c, nil
}

// Integration looks up an available integration by id
func (c *Catalog) Integration(id string) (models.AvailableIntegration, bool) {
	in, ok := c.integrationIndex[id]
	return in, ok
}

// AchievementCount is the size of the achievement catalogue
func (c *Catalog) AchievementCount() int {
	return len(c.Achievements)
}
