package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/gridveil/server/internal/core/system"
	"github.com/gridveil/server/internal/world"
)

// Engagement is the combat handle this engine writes onto a mob when it
// acquires a target. The rest of its contents belong to the combat engine;
// the world core only checks the handle for presence.
type Engagement struct {
	Target string // player instance
}

// AggroSystem scans for idle aggressive mobs acquiring nearby players.
// Acquisition only — damage and resolution are the combat engine's business.
type AggroSystem struct {
	world *world.State
	log   *zap.Logger
}

func NewAggroSystem(ws *world.State, log *zap.Logger) *AggroSystem {
	return &AggroSystem{world: ws, log: log}
}

func (s *AggroSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *AggroSystem) Update(_ time.Duration) {
	s.world.AllOfKind(world.KindMob, func(mob *world.Entity) {
		if mob.Dead || mob.Combat != nil {
			return
		}
		for _, c := range s.world.Nearby(mob.X, mob.Y, mobScanRadius, mob.Instance) {
			if c.Kind != world.KindPlayer {
				continue
			}
			ok, err := mob.CanAggro(c)
			if err != nil {
				// Capability is installed on every mob at construction;
				// reaching this is a programming error worth shouting about.
				s.log.Error("aggro contract violation", zap.String("instance", mob.Instance), zap.Error(err))
				return
			}
			if ok {
				mob.Combat = &Engagement{Target: c.Instance}
				s.log.Debug("mob acquired target",
					zap.String("mob", mob.Instance),
					zap.String("target", c.Instance),
				)
				return
			}
		}
	})
}

// mobScanRadius bounds the candidate query; per-mob sight does the real
// filtering inside CanAggro.
const mobScanRadius = 20
