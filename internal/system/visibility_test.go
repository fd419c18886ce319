package system_test

import (
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/gridveil/server/internal/region"
	"github.com/gridveil/server/internal/system"
	"github.com/gridveil/server/internal/world"
)

// recordSink captures sweep events for assertions.
type recordSink struct {
	entered []string // "observer←target"
	moved   []string
	left    []string
}

func (s *recordSink) EntityEntered(observer string, snap *world.Snapshot) {
	s.entered = append(s.entered, observer+"←"+snap.ID)
}

func (s *recordSink) EntityMoved(observer, target string, x, y int32) {
	s.moved = append(s.moved, observer+"←"+target)
}

func (s *recordSink) EntityLeft(observer, target string) {
	s.left = append(s.left, observer+"←"+target)
}

func (s *recordSink) reset() {
	s.entered, s.moved, s.left = nil, nil, nil
}

type mapLookup map[string][2]string

func (l mapLookup) Label(kind world.Kind, id int32) (string, bool) {
	v, ok := l[fmt.Sprintf("%s/%d", kind, id)]
	return v[0], ok
}

func (l mapLookup) DisplayName(kind world.Kind, id int32) (string, bool) {
	v, ok := l[fmt.Sprintf("%s/%d", kind, id)]
	return v[1], ok
}

var testLookup = mapLookup{
	"player/1": {"player", "Adventurer"},
	"mob/5":    {"skeleton", "Skeleton"},
}

// sweep runs enough ticks for one visibility pass (the system runs every
// second tick).
func sweep(vs *system.VisibilitySystem) {
	vs.Update(0)
	vs.Update(0)
}

func newWorld() *world.State {
	return world.NewState(region.NewGrid(20), 8, zap.NewNop())
}

func TestSweepEmitsEnterThenMoveThenLeave(t *testing.T) {
	ws := newWorld()
	sink := &recordSink{}
	vs := system.NewVisibilitySystem(ws, testLookup, sink, 20, zap.NewNop())

	p := world.NewPlayer(1, 50, 50)
	mob := world.NewMob(5, 55, 50, world.AggroProfile{})
	ws.Spawn(p)
	ws.Spawn(mob)

	sweep(vs)
	if len(sink.entered) != 1 || sink.entered[0] != p.Instance+"←"+mob.Instance {
		t.Fatalf("enter events = %v", sink.entered)
	}

	// No change → no events.
	sink.reset()
	sweep(vs)
	if len(sink.entered)+len(sink.moved)+len(sink.left) != 0 {
		t.Fatalf("idle sweep emitted events: %+v", sink)
	}

	// In-range movement → move event, no re-enter.
	sink.reset()
	ws.Move(mob.Instance, 56, 51)
	sweep(vs)
	if len(sink.entered) != 0 || len(sink.moved) != 1 {
		t.Fatalf("move sweep: entered=%v moved=%v", sink.entered, sink.moved)
	}

	// Walk out of sight → leave event.
	sink.reset()
	ws.Move(mob.Instance, 200, 200)
	sweep(vs)
	if len(sink.left) != 1 || sink.left[0] != p.Instance+"←"+mob.Instance {
		t.Fatalf("leave events = %v", sink.left)
	}
}

func TestSweepHonoursHideLists(t *testing.T) {
	ws := newWorld()
	sink := &recordSink{}
	vs := system.NewVisibilitySystem(ws, testLookup, sink, 20, zap.NewNop())

	a := world.NewPlayer(1, 50, 50)
	b := world.NewPlayer(1, 52, 50)
	ws.Spawn(a)
	ws.Spawn(b)
	a.Visibility.Hide(b.Instance)

	sweep(vs)

	// Asymmetric: a never hears about b, b still hears about a.
	for _, ev := range sink.entered {
		if ev == a.Instance+"←"+b.Instance {
			t.Fatalf("hidden target broadcast to observer: %v", sink.entered)
		}
	}
	found := false
	for _, ev := range sink.entered {
		if ev == b.Instance+"←"+a.Instance {
			found = true
		}
	}
	if !found {
		t.Fatalf("reverse direction suppressed: %v", sink.entered)
	}

	// Unhiding makes the target enter on the next sweep.
	sink.reset()
	a.Visibility.Unhide(b.Instance)
	sweep(vs)
	if len(sink.entered) != 1 || sink.entered[0] != a.Instance+"←"+b.Instance {
		t.Fatalf("unhidden target did not enter: %v", sink.entered)
	}
}

func TestHidingKnownTargetEmitsLeave(t *testing.T) {
	ws := newWorld()
	sink := &recordSink{}
	vs := system.NewVisibilitySystem(ws, testLookup, sink, 20, zap.NewNop())

	p := world.NewPlayer(1, 50, 50)
	mob := world.NewMob(5, 55, 50, world.AggroProfile{})
	ws.Spawn(p)
	ws.Spawn(mob)
	sweep(vs)

	sink.reset()
	p.Visibility.HideID(mob.ID)
	sweep(vs)
	if len(sink.left) != 1 || sink.left[0] != p.Instance+"←"+mob.Instance {
		t.Fatalf("hiding a known target did not emit leave: %+v", sink)
	}
}

func TestSweepSkipsEntityWithoutTemplate(t *testing.T) {
	ws := newWorld()
	sink := &recordSink{}
	vs := system.NewVisibilitySystem(ws, testLookup, sink, 20, zap.NewNop())

	p := world.NewPlayer(1, 50, 50)
	known := world.NewMob(5, 52, 50, world.AggroProfile{})
	unknown := world.NewMob(999, 53, 50, world.AggroProfile{}) // no template
	ws.Spawn(p)
	ws.Spawn(known)
	ws.Spawn(unknown)

	sweep(vs)

	// The broken entity is skipped; the rest of the sweep still runs.
	if len(sink.entered) != 1 || sink.entered[0] != p.Instance+"←"+known.Instance {
		t.Fatalf("enter events = %v, want only the templated mob", sink.entered)
	}
}

func TestDespawnedTargetLeavesOnNextSweep(t *testing.T) {
	ws := newWorld()
	sink := &recordSink{}
	vs := system.NewVisibilitySystem(ws, testLookup, sink, 20, zap.NewNop())

	p := world.NewPlayer(1, 50, 50)
	mob := world.NewMob(5, 55, 50, world.AggroProfile{})
	ws.Spawn(p)
	ws.Spawn(mob)
	sweep(vs)

	sink.reset()
	ws.Despawn(mob.Instance)
	sweep(vs)
	if len(sink.left) != 1 || sink.left[0] != p.Instance+"←"+mob.Instance {
		t.Fatalf("despawned target did not leave: %+v", sink)
	}
}
