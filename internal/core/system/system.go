package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain external commands
	PhaseUpdate                  // 1: movement, roaming, aggro
	PhasePostUpdate              // 2: visibility sweep
	PhaseOutput                  // 3: flush broadcast sinks
	PhaseCleanup                 // 4: despawn queued entities
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
