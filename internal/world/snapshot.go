package world

import (
	"errors"
	"fmt"
)

// Snapshot is the canonical wire view of an entity. Field names and
// optionality are the compatibility contract with clients: nameColour only
// appears when a special state is set, customScale only when overridden.
type Snapshot struct {
	Type        string  `json:"type"`
	ID          string  `json:"id"` // instance, not template id
	String      string  `json:"string"`
	Name        string  `json:"name"`
	X           int32   `json:"x"`
	Y           int32   `json:"y"`
	NameColour  string  `json:"nameColour,omitempty"`
	CustomScale float64 `json:"customScale,omitempty"`
}

// Lookup supplies the external label/name tables keyed by (kind, template id).
type Lookup interface {
	Label(kind Kind, id int32) (string, bool)
	DisplayName(kind Kind, id int32) (string, bool)
}

// ErrMissingTemplate marks a (kind, id) pair absent from the lookup tables.
// Snapshot construction refuses to produce a half-labelled entity; callers
// skip the one entity and keep the sweep going.
var ErrMissingTemplate = errors.New("no template for entity")

var nameColours = map[SpecialState]string{
	SpecialBoss:           "#660033",
	SpecialMiniboss:       "#cc3300",
	SpecialAchievementNpc: "#669900",
	SpecialArea:           "#00aa00",
	SpecialQuestNpc:       "#6699ff",
	SpecialQuestMob:       "#0099cc",
}

// NameColour returns the display colour for a special state. Absent states
// have no colour; the snapshot omits the field entirely rather than
// defaulting one.
func NameColour(s SpecialState) (string, bool) {
	c, ok := nameColours[s]
	return c, ok
}

// BuildSnapshot derives the wire-ready view of an entity.
func BuildSnapshot(e *Entity, lookup Lookup) (*Snapshot, error) {
	label, ok := lookup.Label(e.Kind, e.ID)
	if !ok {
		return nil, fmt.Errorf("snapshot %s (%s id %d): %w", e.Instance, e.Kind, e.ID, ErrMissingTemplate)
	}
	name, ok := lookup.DisplayName(e.Kind, e.ID)
	if !ok {
		return nil, fmt.Errorf("snapshot %s (%s id %d): %w", e.Instance, e.Kind, e.ID, ErrMissingTemplate)
	}
	snap := &Snapshot{
		Type:        e.Kind.String(),
		ID:          e.Instance,
		String:      label,
		Name:        name,
		X:           e.X,
		Y:           e.Y,
		CustomScale: e.CustomScale,
	}
	if c, ok := NameColour(e.SpecialState); ok {
		snap.NameColour = c
	}
	return snap, nil
}
