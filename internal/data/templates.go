package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gridveil/server/internal/world"
)

// Template holds static data for an entity species loaded from YAML.
// Label is the stable machine key clients use for sprites/strings; Name is
// the display name.
type Template struct {
	ID           int32   `yaml:"id"`
	Kind         string  `yaml:"kind"` // player, mob, npc, item
	Label        string  `yaml:"label"`
	Name         string  `yaml:"name"`
	SpecialState string  `yaml:"special_state"`
	Aggressive   bool    `yaml:"aggressive"`
	Sight        int32   `yaml:"sight"`
	Roaming      bool    `yaml:"roaming"`
	CustomScale  float64 `yaml:"custom_scale"`
	TTL          int     `yaml:"ttl"` // despawn ticks, items only (0 = never)
}

// SpawnEntry defines where and how many entities to place at boot.
type SpawnEntry struct {
	Kind  string `yaml:"kind"`
	ID    int32  `yaml:"id"`
	X     int32  `yaml:"x"`
	Y     int32  `yaml:"y"`
	Count int    `yaml:"count"`
}

type templateFile struct {
	Templates []Template `yaml:"templates"`
}

type spawnFile struct {
	Spawns []SpawnEntry `yaml:"spawns"`
}

type templateKey struct {
	kind world.Kind
	id   int32
}

// TemplateTable holds all entity templates indexed by (kind, id). It is the
// label/name lookup the snapshot builder consumes.
type TemplateTable struct {
	byKey map[templateKey]*Template
}

// LoadTemplateTable reads the template table from a YAML file. Unknown kinds
// and duplicate (kind, id) pairs are boot errors, not warnings.
func LoadTemplateTable(path string) (*TemplateTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates %s: %w", path, err)
	}
	var f templateFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse templates %s: %w", path, err)
	}
	t := &TemplateTable{byKey: make(map[templateKey]*Template, len(f.Templates))}
	for i := range f.Templates {
		tpl := &f.Templates[i]
		kind, err := world.ParseKind(tpl.Kind)
		if err != nil {
			return nil, fmt.Errorf("template id %d: %w", tpl.ID, err)
		}
		k := templateKey{kind: kind, id: tpl.ID}
		if _, dup := t.byKey[k]; dup {
			return nil, fmt.Errorf("duplicate template %s id %d", tpl.Kind, tpl.ID)
		}
		t.byKey[k] = tpl
	}
	return t, nil
}

// Get returns the template for a (kind, id), or nil.
func (t *TemplateTable) Get(kind world.Kind, id int32) *Template {
	return t.byKey[templateKey{kind: kind, id: id}]
}

// Label implements world.Lookup.
func (t *TemplateTable) Label(kind world.Kind, id int32) (string, bool) {
	tpl := t.Get(kind, id)
	if tpl == nil {
		return "", false
	}
	return tpl.Label, true
}

// DisplayName implements world.Lookup.
func (t *TemplateTable) DisplayName(kind world.Kind, id int32) (string, bool) {
	tpl := t.Get(kind, id)
	if tpl == nil {
		return "", false
	}
	return tpl.Name, true
}

// Count returns the number of loaded templates.
func (t *TemplateTable) Count() int {
	return len(t.byKey)
}

// LoadSpawnList reads the boot spawn list from a YAML file.
func LoadSpawnList(path string) ([]SpawnEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn list %s: %w", path, err)
	}
	var f spawnFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spawn list %s: %w", path, err)
	}
	return f.Spawns, nil
}
