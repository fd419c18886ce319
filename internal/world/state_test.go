package world_test

import (
	"testing"

	"go.uber.org/zap"

	"github.com/gridveil/server/internal/region"
	"github.com/gridveil/server/internal/world"
)

func newTestState() *world.State {
	return world.NewState(region.NewGrid(20), 8, zap.NewNop())
}

func TestSpawnAndNearby(t *testing.T) {
	ws := newTestState()
	p := world.NewPlayer(1, 50, 50)
	near := world.NewMob(5, 55, 52, world.AggroProfile{})
	far := world.NewMob(5, 200, 200, world.AggroProfile{})
	ws.Spawn(p)
	ws.Spawn(near)
	ws.Spawn(far)

	got := ws.Nearby(p.X, p.Y, 20, p.Instance)
	if len(got) != 1 || got[0].Instance != near.Instance {
		t.Fatalf("Nearby returned %d entities, want exactly the near mob", len(got))
	}
}

func TestNearbyExcludesSelf(t *testing.T) {
	ws := newTestState()
	p := world.NewPlayer(1, 10, 10)
	ws.Spawn(p)
	if got := ws.Nearby(p.X, p.Y, 20, p.Instance); len(got) != 0 {
		t.Fatalf("Nearby returned self")
	}
}

func TestMoveCommitsAndReindexes(t *testing.T) {
	ws := newTestState()
	p := world.NewPlayer(1, 5, 5)
	ws.Spawn(p)

	ws.Move(p.Instance, 6, 5)
	if p.X != 6 || p.Y != 5 {
		t.Fatalf("position (%d,%d), want (6,5)", p.X, p.Y)
	}
	if p.OldX != 5 || p.OldY != 5 {
		t.Fatalf("old position (%d,%d), want (5,5)", p.OldX, p.OldY)
	}

	// Cross into another region cell: the history must grow.
	regionsBefore := len(p.RecentRegions)
	ws.Move(p.Instance, 25, 5)
	if len(p.RecentRegions) != regionsBefore+1 {
		t.Fatalf("region history did not record the crossing: %v", p.RecentRegions)
	}
}

func TestRegionHookFiresOnCrossing(t *testing.T) {
	ws := newTestState()
	p := world.NewPlayer(1, 5, 5)
	ws.Spawn(p)

	var fired []region.ID
	ws.SetRegionHook(func(e *world.Entity, id region.ID) {
		if e.Instance != p.Instance {
			t.Fatalf("hook fired for %q, want %q", e.Instance, p.Instance)
		}
		fired = append(fired, id)
	})

	ws.Move(p.Instance, 6, 5) // same cell, no hook
	if len(fired) != 0 {
		t.Fatalf("hook fired without a crossing")
	}
	ws.Move(p.Instance, 25, 5) // crosses at cell size 20
	if len(fired) != 1 {
		t.Fatalf("hook fired %d times, want 1", len(fired))
	}
}

func TestDespawnPurgesHideLists(t *testing.T) {
	ws := newTestState()
	victim := world.NewMob(5, 0, 0, world.AggroProfile{})
	a := world.NewPlayer(1, 1, 1)
	b := world.NewPlayer(1, 2, 2)
	ws.Spawn(victim)
	ws.Spawn(a)
	ws.Spawn(b)

	a.Visibility.Hide(victim.Instance)
	b.Visibility.Hide(victim.Instance)

	if got := ws.Despawn(victim.Instance); got == nil {
		t.Fatalf("Despawn returned nil for a live instance")
	}

	// The purge completes before Despawn returns: no dangling hide-list
	// entry may reference the destroyed instance.
	if a.Visibility.HiddenCount() != 0 || b.Visibility.HiddenCount() != 0 {
		t.Fatalf("dangling hide-list entries after despawn: a=%d b=%d",
			a.Visibility.HiddenCount(), b.Visibility.HiddenCount())
	}
	if ws.Get(victim.Instance) != nil {
		t.Fatalf("despawned instance still registered")
	}
	if got := ws.Nearby(1, 1, 20, a.Instance); len(got) != 1 {
		t.Fatalf("region index still lists despawned entity")
	}
}

func TestStaleOperationsAreNoOps(t *testing.T) {
	ws := newTestState()
	if e := ws.Despawn("m-0"); e != nil {
		t.Fatalf("despawn of unknown instance returned %v", e)
	}
	ws.Move("m-0", 1, 1) // must not panic
	if ws.Count() != 0 {
		t.Fatalf("stale ops mutated the world")
	}
}

func TestDespawnedEntityStopsReindexing(t *testing.T) {
	ws := newTestState()
	p := world.NewPlayer(1, 0, 0)
	ws.Spawn(p)
	ws.Despawn(p.Instance)

	// A handle kept past despawn may still move locally, but must not be
	// reindexed into the region grid.
	p.SetPosition(5, 5)
	if got := ws.Nearby(5, 5, 20, ""); len(got) != 0 {
		t.Fatalf("despawned entity reappeared in region index")
	}
}
