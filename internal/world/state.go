package world

import (
	"go.uber.org/zap"

	"github.com/gridveil/server/internal/region"
)

// RegionHook is invoked when an entity crosses a region boundary, after the
// crossing has been appended to its RecentRegions.
type RegionHook func(e *Entity, id region.ID)

// State tracks every live entity in the world. Single-goroutine access only
// (game loop): all mutation — movement, death, visibility edits, despawn —
// runs on the owning tick goroutine, so no locks are taken here.
type State struct {
	entities map[string]*Entity // instance → entity
	regions  *region.Grid
	log      *zap.Logger

	maxRecentRegions int
	regionHook       RegionHook

	// Reusable candidate buffer for Nearby queries (single-threaded loop).
	nearBuf []string
}

func NewState(regions *region.Grid, maxRecentRegions int, log *zap.Logger) *State {
	return &State{
		entities:         make(map[string]*Entity),
		regions:          regions,
		log:              log,
		maxRecentRegions: maxRecentRegions,
	}
}

// SetRegionHook registers the region-crossing hook (quest trigger scripts).
func (s *State) SetRegionHook(fn RegionHook) {
	s.regionHook = fn
}

// Spawn registers an entity in the world and wires its position-change
// notification to the region index, so every SetPosition re-indexes the
// entity and records boundary crossings.
func (s *State) Spawn(e *Entity) {
	s.entities[e.Instance] = e
	first := s.regions.Add(e.Instance, e.X, e.Y)
	e.PushRegion(first, s.maxRecentRegions)
	e.OnPositionChange(func(ent *Entity, px, py, nx, ny int32) {
		id, crossed := s.regions.Move(ent.Instance, px, py, nx, ny)
		if crossed {
			ent.PushRegion(id, s.maxRecentRegions)
			if s.regionHook != nil {
				s.regionHook(ent, id)
			}
		}
	})
}

// Despawn removes an entity from all indices and purges its instance from
// every remaining entity's hide list, so no dangling hide-list entry can
// outlive the instance. Runs synchronously inside the tick that requested
// it; instance ids are never reused, so no reuse window exists either way.
// Despawning an unknown instance is a no-op with a diagnostic (the caller
// raced a despawn that already happened).
func (s *State) Despawn(instance string) *Entity {
	e, ok := s.entities[instance]
	if !ok {
		s.log.Debug("despawn of stale instance", zap.String("instance", instance))
		return nil
	}
	s.regions.Remove(instance, e.X, e.Y)
	delete(s.entities, instance)
	e.OnPositionChange(nil)
	for _, other := range s.entities {
		other.Visibility.Unhide(instance)
	}
	return e
}

// Get returns a live entity by instance, or nil.
func (s *State) Get(instance string) *Entity {
	return s.entities[instance]
}

// Move performs one discrete movement step for a live entity: records the
// pre-move position, then commits the new one (position notification fires
// inside SetPosition). Moving a stale instance is a no-op with a diagnostic.
func (s *State) Move(instance string, x, y int32) {
	e, ok := s.entities[instance]
	if !ok {
		s.log.Debug("move of stale instance", zap.String("instance", instance))
		return
	}
	e.CommitMove()
	e.SetPosition(x, y)
}

// Nearby returns all live entities within the given Chebyshev radius of a
// position, excluding the instance named by exclude ("" = no exclusion).
// Candidates come from the region grid's 3x3 window; fine filtering is done
// here.
func (s *State) Nearby(x, y, radius int32, exclude string) []*Entity {
	s.nearBuf = s.regions.NearbyInto(x, y, s.nearBuf)
	result := make([]*Entity, 0, len(s.nearBuf))
	for _, inst := range s.nearBuf {
		if inst == exclude {
			continue
		}
		e := s.entities[inst]
		if e == nil {
			continue
		}
		if CoordDistance(e.X, e.Y, x, y) <= radius {
			result = append(result, e)
		}
	}
	return result
}

// All iterates every live entity.
func (s *State) All(fn func(*Entity)) {
	for _, e := range s.entities {
		fn(e)
	}
}

// AllOfKind iterates every live entity of one kind.
func (s *State) AllOfKind(kind Kind, fn func(*Entity)) {
	for _, e := range s.entities {
		if e.Kind == kind {
			fn(e)
		}
	}
}

// Count returns the number of live entities.
func (s *State) Count() int {
	return len(s.entities)
}
