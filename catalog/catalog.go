// Package catalog holds the static scenario scripts and character table.
// Everything is loaded once at process start from embedded assets and is
// read-only afterwards, so concurrent lookups need no locking.
package catalog

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"embed"

	"escape-chat/domain"
	"escape-chat/errors"
)

//go:embed scripts/*.json
var scriptsFolder embed.FS

type Catalog struct {
	scenarios  map[string]domain.Scenario
	characters []domain.Character
}

// Load parses every embedded script plus the character table.
// A scenario with no parts or an empty part is an authoring mistake and
// fails the whole load rather than surfacing later as a premature
// dialogue end.
func Load() (*Catalog, error) {
	entries, err := scriptsFolder.ReadDir("scripts")
	if err != nil {
		return nil, fmt.Errorf("reading embedded scripts: %w", err)
	}

	c := &Catalog{scenarios: make(map[string]domain.Scenario)}
	for _, entry := range entries {
		if entry.Name() == "characters.json" {
			continue
		}
		scenario, err := readScenario(scriptsFolder, path.Join("scripts", entry.Name()))
		if err != nil {
			return nil, err
		}
		c.scenarios[scenario.ID] = scenario
	}

	characters, err := readCharacters(scriptsFolder, "scripts/characters.json")
	if err != nil {
		return nil, err
	}
	c.characters = characters

	return c, nil
}

func readScenario(fsys fs.FS, name string) (domain.Scenario, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return domain.Scenario{}, fmt.Errorf("reading script %s: %w", name, err)
	}
	var scenario domain.Scenario
	if err := json.Unmarshal(raw, &scenario); err != nil {
		return domain.Scenario{}, fmt.Errorf("parsing script %s: %w", name, err)
	}
	if scenario.ID == "" || len(scenario.Parts) == 0 {
		return domain.Scenario{}, fmt.Errorf("script %s has no id or no parts", name)
	}
	for i, part := range scenario.Parts {
		if len(part) == 0 {
			return domain.Scenario{}, fmt.Errorf("script %s part %d is empty", name, i+1)
		}
	}
	return scenario, nil
}

func readCharacters(fsys fs.FS, name string) ([]domain.Character, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading character table: %w", err)
	}
	var characters []domain.Character
	if err := json.Unmarshal(raw, &characters); err != nil {
		return nil, fmt.Errorf("parsing character table: %w", err)
	}
	return characters, nil
}

// Lookup returns the ordered parts of a scenario.
func (c *Catalog) Lookup(scenarioID string) ([]domain.Part, error) {
	scenario, ok := c.scenarios[scenarioID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrScenarioNotFound, scenarioID)
	}
	return scenario.Parts, nil
}

// Scenario returns the full script record.
func (c *Catalog) Scenario(scenarioID string) (domain.Scenario, error) {
	scenario, ok := c.scenarios[scenarioID]
	if !ok {
		return domain.Scenario{}, fmt.Errorf("%w: %s", errors.ErrScenarioNotFound, scenarioID)
	}
	return scenario, nil
}

// Characters returns the static character table in stable id order.
func (c *Catalog) Characters() []domain.Character {
	out := make([]domain.Character, len(c.characters))
	copy(out, c.characters)
	return out
}

// ScenarioIDs lists every loaded scenario, sorted for stable output.
func (c *Catalog) ScenarioIDs() []string {
	ids := make([]string, 0, len(c.scenarios))
	for id := range c.scenarios {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
