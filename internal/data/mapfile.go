package data

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/seed/internal/spawnargs"
)

// MapEntity is one entity placed in a map file.
type MapEntity struct {
	Name      string            `yaml:"name"`
	Classname string            `yaml:"classname"`
	Args      map[string]string `yaml:"args"`
	Targets   []string          `yaml:"targets"`
}

// Spawnargs returns the entity arguments with classname and name set, keys sorted.
func (e MapEntity) Spawnargs() *spawnargs.Dict {
	d := spawnargs.New()
	d.Set("classname", e.Classname)
	d.Set("name", e.Name)
	for _, k := range sortedKeys(e.Args) {
		d.Set(k, e.Args[k])
	}
	return d
}

// Map is a parsed map file.
type Map struct {
	Name     string      `yaml:"name"`
	Entities []MapEntity `yaml:"entities"`
}

// Entity returns the entity with the given name.
func (m *Map) Entity(name string) (MapEntity, bool) {
	for _, e := range m.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return MapEntity{}, false
}

// ParseMap decodes a YAML map.
func ParseMap(contents []byte) (*Map, error) {
	var m Map
	if err := yaml.Unmarshal(contents, &m); err != nil {
		return nil, fmt.Errorf("decoding map: %w", err)
	}

	seen := make(map[string]struct{}, len(m.Entities))
	for i, e := range m.Entities {
		if e.Name == "" {
			return nil, fmt.Errorf("entity %d has no name", i)
		}
		if _, dup := seen[e.Name]; dup {
			return nil, fmt.Errorf("duplicate entity name %q", e.Name)
		}
		seen[e.Name] = struct{}{}
	}
	return &m, nil
}

// LoadMap reads a YAML map file.
func LoadMap(path string) (*Map, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map %s: %w", path, err)
	}

	m, err := ParseMap(contents)
	if err != nil {
		return nil, fmt.Errorf("parsing map %s: %w", path, err)
	}

	slog.Info("loaded map", "path", path, "name", m.Name, "entities", len(m.Entities))
	return m, nil
}
