package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/gridveil/server/internal/core/system"
	"github.com/gridveil/server/internal/world"
)

// CleanupSystem runs in the cleanup phase: it expires timed ground items and
// drains the despawn queue through State.Despawn, which is the single place
// the hide-list purge happens. Anything that wants an entity gone enqueues
// here instead of mutating the world mid-phase.
type CleanupSystem struct {
	world *world.State
	log   *zap.Logger

	ttls  map[string]int // instance → ticks until despawn
	queue []string
}

func NewCleanupSystem(ws *world.State, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{
		world: ws,
		log:   log,
		ttls:  make(map[string]int),
	}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

// QueueDespawn schedules an entity for removal at the end of this tick.
func (s *CleanupSystem) QueueDespawn(instance string) {
	s.queue = append(s.queue, instance)
}

// TrackTTL registers a despawn countdown for an entity (ground items).
func (s *CleanupSystem) TrackTTL(instance string, ticks int) {
	if ticks > 0 {
		s.ttls[instance] = ticks
	}
}

func (s *CleanupSystem) Update(_ time.Duration) {
	for inst := range s.ttls {
		s.ttls[inst]--
		if s.ttls[inst] <= 0 {
			delete(s.ttls, inst)
			s.queue = append(s.queue, inst)
		}
	}
	for _, inst := range s.queue {
		delete(s.ttls, inst)
		if e := s.world.Despawn(inst); e != nil {
			s.log.Debug("despawned entity",
				zap.String("instance", inst),
				zap.String("kind", e.Kind.String()),
			)
		}
	}
	s.queue = s.queue[:0]
}
