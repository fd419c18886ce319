package world

import (
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/gridveil/server/internal/region"
)

// Kind is an entity's gameplay class, fixed at construction.
type Kind int

const (
	KindPlayer Kind = iota
	KindMob
	KindNPC
	KindItem
)

var kindNames = [...]string{"player", "mob", "npc", "item"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind maps a template-table kind string to a Kind.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown entity kind %q", s)
}

// SpecialState is a display-emphasis tag independent of Kind. Empty = none.
type SpecialState string

const (
	SpecialBoss           SpecialState = "boss"
	SpecialMiniboss       SpecialState = "miniboss"
	SpecialAchievementNpc SpecialState = "achievementNpc"
	SpecialArea           SpecialState = "area"
	SpecialQuestNpc       SpecialState = "questNpc"
	SpecialQuestMob       SpecialState = "questMob"
)

// ErrNotAggroCapable is the sentinel behind ContractViolationError.
var ErrNotAggroCapable = errors.New("entity kind cannot aggro")

// ContractViolationError reports a capability call on an entity kind that
// does not support it. This is a caller-side type error: it must surface
// loudly, never degrade into a silent false.
type ContractViolationError struct {
	Op       string
	Kind     Kind
	Instance string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("%s called on non-capable %s entity %s", e.Op, e.Kind, e.Instance)
}

func (e *ContractViolationError) Unwrap() error { return ErrNotAggroCapable }

// AggroProfile is the aggro capability installed on mob-kind entities at
// construction. Entities without one cannot answer CanAggro.
type AggroProfile struct {
	Aggressive bool  // attacks players on sight
	Sight      int32 // aggro acquisition range (Chebyshev)
}

// PositionFunc is the position-change notification. px/py are the
// coordinates before the move that triggered it; nx/ny the new ones.
type PositionFunc func(e *Entity, px, py, nx, ny int32)

// instanceCounter generates unique entity instance ids. Process-lifetime
// monotonic: an instance id is never reused, so a destroyed entity's id can
// never be confused with a live one.
var instanceCounter atomic.Uint64

var kindPrefixes = [...]string{"p", "m", "n", "i"}

func nextInstance(kind Kind) string {
	n := instanceCounter.Add(1)
	return kindPrefixes[kind] + "-" + strconv.FormatUint(n, 10)
}

// Entity is the authoritative server-side representation of one live object
// in the world. Accessed only from the game loop goroutine — no locks.
type Entity struct {
	ID       int32  // template id, shared by all instances of a species
	Kind     Kind   // fixed at construction
	Instance string // globally unique per live object, map key everywhere

	X, Y       int32
	OldX, OldY int32 // position before the most recent committed move

	Dead    bool // one-way; excluded from aggro and movement once set
	Roaming bool // NPC-class wandering flag, consumed by the AI driver

	// RecentRegions is the trailing history of regions this entity belonged
	// to, appended on region crossings, read by broadcast logic.
	RecentRegions []region.ID

	SpecialState SpecialState // empty = none
	CustomScale  float64      // render-scale override, 0 = unset, pass-through

	// Combat is an opaque handle owned and populated by the external combat
	// engine. The core only ever checks it for presence.
	Combat any

	Visibility *VisibilityIndex

	aggro  *AggroProfile
	onMove PositionFunc
}

func newEntity(kind Kind, id, x, y int32) *Entity {
	return &Entity{
		ID:         id,
		Kind:       kind,
		Instance:   nextInstance(kind),
		X:          x,
		Y:          y,
		OldX:       x,
		OldY:       y,
		Visibility: NewVisibilityIndex(),
	}
}

// NewPlayer creates a player entity at the given cell.
func NewPlayer(id, x, y int32) *Entity {
	return newEntity(KindPlayer, id, x, y)
}

// NewMob creates a mob entity with its aggro capability installed.
func NewMob(id, x, y int32, aggro AggroProfile) *Entity {
	e := newEntity(KindMob, id, x, y)
	e.aggro = &aggro
	return e
}

// NewNPC creates a non-combat NPC entity.
func NewNPC(id, x, y int32) *Entity {
	return newEntity(KindNPC, id, x, y)
}

// NewItem creates a ground-item entity.
func NewItem(id, x, y int32) *Entity {
	return newEntity(KindItem, id, x, y)
}

// OnPositionChange registers the position-change notification. At most one
// callback per entity; the last registration wins.
func (e *Entity) OnPositionChange(fn PositionFunc) {
	e.onMove = fn
}

// SetPosition sets the current cell and invokes the registered
// position-change notification synchronously. It never touches OldX/OldY;
// that is CommitMove's job.
func (e *Entity) SetPosition(x, y int32) {
	px, py := e.X, e.Y
	e.X = x
	e.Y = y
	if e.onMove != nil {
		e.onMove(e, px, py, x, y)
	}
}

// CommitMove records the current cell as the pre-move position. The movement
// driver calls it once per discrete step, before SetPosition, so that
// (OldX, OldY) always holds the cell occupied before the latest move.
// Idempotent between moves.
func (e *Entity) CommitMove() {
	e.OldX = e.X
	e.OldY = e.Y
}

// MarkDead commits the entity's death. One-way: never reversed.
func (e *Entity) MarkDead() {
	e.Dead = true
}

// PushRegion appends a region id to the trailing history, keeping at most
// max entries. Called by the region index on boundary crossings.
func (e *Entity) PushRegion(id region.ID, max int) {
	e.RecentRegions = append(e.RecentRegions, id)
	if max > 0 && len(e.RecentRegions) > max {
		e.RecentRegions = e.RecentRegions[len(e.RecentRegions)-max:]
	}
}

// CanAggro reports whether this entity would acquire the target as an aggro
// target right now. Only aggro-capable kinds (mobs) carry the capability;
// calling it on any other kind returns a ContractViolationError. Dead
// entities on either side never aggro; only players are valid targets.
func (e *Entity) CanAggro(target *Entity) (bool, error) {
	if e.aggro == nil {
		return false, &ContractViolationError{Op: "CanAggro", Kind: e.Kind, Instance: e.Instance}
	}
	if e.Dead || target == nil || target.Dead {
		return false, nil
	}
	if target.Kind != KindPlayer {
		return false, nil
	}
	if !e.aggro.Aggressive {
		return false, nil
	}
	return IsNear(e, target, e.aggro.Sight), nil
}
