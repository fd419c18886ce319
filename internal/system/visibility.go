package system

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/gridveil/server/internal/broadcast"
	coresys "github.com/gridveil/server/internal/core/system"
	"github.com/gridveil/server/internal/world"
)

// knownPos records a known target's last broadcast position, for move
// detection and leave diffing.
type knownPos struct{ X, Y int32 }

// VisibilitySystem is the broadcast sweep. Every other tick it computes, for
// each player observer, the set of targets that are both in sight range and
// not on the observer's hide lists, diffs it against what the observer
// already knows, and emits enter/move/leave events to the sink.
//
// A target whose template lookup fails is skipped with a diagnostic; the
// sweep never aborts for unrelated entities.
type VisibilitySystem struct {
	world  *world.State
	lookup world.Lookup
	sink   broadcast.Sink
	log    *zap.Logger
	sight  int32
	ticks  int

	known map[string]map[string]knownPos // observer instance → target instance → pos
}

func NewVisibilitySystem(ws *world.State, lookup world.Lookup, sink broadcast.Sink, sight int32, log *zap.Logger) *VisibilitySystem {
	return &VisibilitySystem{
		world:  ws,
		lookup: lookup,
		sink:   sink,
		log:    log,
		sight:  sight,
		known:  make(map[string]map[string]knownPos),
	}
}

func (s *VisibilitySystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *VisibilitySystem) Update(_ time.Duration) {
	s.ticks++
	if s.ticks < 2 {
		return
	}
	s.ticks = 0

	// Drop known-sets of observers that despawned since the last sweep.
	for obs := range s.known {
		if s.world.Get(obs) == nil {
			delete(s.known, obs)
		}
	}

	s.world.AllOfKind(world.KindPlayer, func(p *world.Entity) {
		s.sweepObserver(p)
	})
}

func (s *VisibilitySystem) sweepObserver(p *world.Entity) {
	known := s.known[p.Instance]
	if known == nil {
		known = make(map[string]knownPos)
		s.known[p.Instance] = known
	}

	nearby := s.world.Nearby(p.X, p.Y, s.sight, p.Instance)

	current := make(map[string]struct{}, len(nearby))
	for _, target := range nearby {
		if !world.VisibleTo(p, target) {
			continue
		}
		current[target.Instance] = struct{}{}

		if pos, seen := known[target.Instance]; !seen {
			snap, err := world.BuildSnapshot(target, s.lookup)
			if err != nil {
				if errors.Is(err, world.ErrMissingTemplate) {
					s.log.Warn("skipping entity without template",
						zap.String("instance", target.Instance),
						zap.Error(err),
					)
					delete(current, target.Instance)
					continue
				}
				s.log.Error("snapshot failed", zap.String("instance", target.Instance), zap.Error(err))
				delete(current, target.Instance)
				continue
			}
			s.sink.EntityEntered(p.Instance, snap)
			known[target.Instance] = knownPos{X: target.X, Y: target.Y}
		} else if pos.X != target.X || pos.Y != target.Y {
			s.sink.EntityMoved(p.Instance, target.Instance, target.X, target.Y)
			known[target.Instance] = knownPos{X: target.X, Y: target.Y}
		}
	}

	for inst := range known {
		if _, still := current[inst]; !still {
			s.sink.EntityLeft(p.Instance, inst)
			delete(known, inst)
		}
	}
}
