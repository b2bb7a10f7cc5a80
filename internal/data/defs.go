package data

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/pelletier/go-toml"

	"github.com/udisondev/seed/internal/spawnargs"
)

// maxInheritDepth bounds inherit chains so that cycles terminate.
const maxInheritDepth = 16

// EntityDef is a named entity definition. Args hold only the keys the definition
// itself declares; Resolve merges the inherit chain.
type EntityDef struct {
	Name       string
	Inherit    string
	SpawnClass string
	Args       *spawnargs.Dict
}

// Registry holds entity definitions by name.
type Registry struct {
	defs map[string]*EntityDef
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*EntityDef)}
}

// Register adds or replaces a definition.
func (r *Registry) Register(def *EntityDef) {
	if def.Args == nil {
		def.Args = spawnargs.New()
	}
	r.defs[def.Name] = def
}

// Len returns the number of definitions.
func (r *Registry) Len() int { return len(r.defs) }

// Lookup returns the definition name with its inherit chain resolved.
func (r *Registry) Lookup(name string) (*EntityDef, bool) {
	def, ok := r.defs[name]
	if !ok {
		return nil, false
	}

	resolved := &EntityDef{
		Name:       def.Name,
		Inherit:    def.Inherit,
		SpawnClass: def.SpawnClass,
		Args:       def.Args.Clone(),
	}

	parent := def.Inherit
	for depth := 0; parent != "" && depth < maxInheritDepth; depth++ {
		p, ok := r.defs[parent]
		if !ok {
			slog.Warn("inherited definition not found", "def", name, "inherit", parent)
			break
		}
		resolved.Args.Inherit(p.Args)
		if resolved.SpawnClass == "" {
			resolved.SpawnClass = p.SpawnClass
		}
		parent = p.Inherit
	}
	return resolved, true
}

type defsFile struct {
	Defs []defEntry `toml:"def"`
}

type defEntry struct {
	Name       string                 `toml:"name"`
	Inherit    string                 `toml:"inherit"`
	SpawnClass string                 `toml:"spawnclass"`
	Args       map[string]interface{} `toml:"args"`
}

// ParseDefs decodes TOML definitions into r.
func (r *Registry) ParseDefs(contents []byte) error {
	var f defsFile
	if err := toml.Unmarshal(contents, &f); err != nil {
		return fmt.Errorf("decoding definitions: %w", err)
	}

	for _, e := range f.Defs {
		if e.Name == "" {
			return fmt.Errorf("definition without name")
		}
		args := spawnargs.New()
		for _, k := range sortedKeys(e.Args) {
			args.Set(k, fmt.Sprint(e.Args[k]))
		}
		r.Register(&EntityDef{
			Name:       e.Name,
			Inherit:    e.Inherit,
			SpawnClass: e.SpawnClass,
			Args:       args,
		})
	}
	return nil
}

// LoadDefs reads a TOML definition file into a new registry.
func LoadDefs(path string) (*Registry, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definitions %s: %w", path, err)
	}

	r := NewRegistry()
	if err := r.ParseDefs(contents); err != nil {
		return nil, fmt.Errorf("parsing definitions %s: %w", path, err)
	}

	slog.Info("loaded entity definitions", "path", path, "count", r.Len())
	return r, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
