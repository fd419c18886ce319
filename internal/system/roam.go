package system

import (
	"math/rand"
	"time"

	coresys "github.com/gridveil/server/internal/core/system"
	"github.com/gridveil/server/internal/world"
)

// Wander cadence and leash, in ticks/cells.
const (
	roamCooldownMin = 8
	roamCooldownMax = 24
	roamLeash       = 6 // max Chebyshev drift from the spawn cell
)

// RoamSystem drives autonomous wandering for roaming NPC-class entities.
// One random king-move step per cooldown, leashed to the spawn cell. Each
// step goes through State.Move so the pre-move position is committed and the
// region index stays consistent.
type RoamSystem struct {
	world *world.State
	rng   *rand.Rand

	timers map[string]int      // instance → ticks until next step
	homes  map[string][2]int32 // instance → spawn cell
}

func NewRoamSystem(ws *world.State, rng *rand.Rand) *RoamSystem {
	return &RoamSystem{
		world:  ws,
		rng:    rng,
		timers: make(map[string]int),
		homes:  make(map[string][2]int32),
	}
}

func (s *RoamSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *RoamSystem) Update(_ time.Duration) {
	// Prune state for despawned roamers.
	for inst := range s.timers {
		if s.world.Get(inst) == nil {
			delete(s.timers, inst)
			delete(s.homes, inst)
		}
	}

	s.world.All(func(e *world.Entity) {
		if !e.Roaming || e.Dead {
			return
		}
		if e.Kind != world.KindNPC && e.Kind != world.KindMob {
			return
		}
		if _, ok := s.homes[e.Instance]; !ok {
			s.homes[e.Instance] = [2]int32{e.X, e.Y}
			s.timers[e.Instance] = s.cooldown()
			return
		}
		s.timers[e.Instance]--
		if s.timers[e.Instance] > 0 {
			return
		}
		s.timers[e.Instance] = s.cooldown()
		s.step(e)
	})
}

func (s *RoamSystem) cooldown() int {
	return roamCooldownMin + s.rng.Intn(roamCooldownMax-roamCooldownMin+1)
}

func (s *RoamSystem) step(e *world.Entity) {
	dx := int32(s.rng.Intn(3) - 1)
	dy := int32(s.rng.Intn(3) - 1)
	if dx == 0 && dy == 0 {
		return
	}
	nx, ny := e.X+dx, e.Y+dy
	home := s.homes[e.Instance]
	if world.CoordDistance(nx, ny, home[0], home[1]) > roamLeash {
		return
	}
	s.world.Move(e.Instance, nx, ny)
}
