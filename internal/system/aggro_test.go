package system_test

import (
	"testing"

	"go.uber.org/zap"

	"github.com/gridveil/server/internal/system"
	"github.com/gridveil/server/internal/world"
)

func TestAggroSystemAcquiresPlayerInSight(t *testing.T) {
	ws := newWorld()
	as := system.NewAggroSystem(ws, zap.NewNop())

	mob := world.NewMob(5, 50, 50, world.AggroProfile{Aggressive: true, Sight: 8})
	player := world.NewPlayer(1, 54, 50)
	ws.Spawn(mob)
	ws.Spawn(player)

	as.Update(0)

	eng, ok := mob.Combat.(*system.Engagement)
	if !ok || eng == nil {
		t.Fatalf("mob did not acquire a combat handle: %v", mob.Combat)
	}
	if eng.Target != player.Instance {
		t.Fatalf("engagement target %q, want %q", eng.Target, player.Instance)
	}
}

func TestAggroSystemIgnoresOutOfSightAndPassive(t *testing.T) {
	ws := newWorld()
	as := system.NewAggroSystem(ws, zap.NewNop())

	aggressive := world.NewMob(5, 50, 50, world.AggroProfile{Aggressive: true, Sight: 3})
	passive := world.NewMob(12, 52, 50, world.AggroProfile{Aggressive: false, Sight: 10})
	player := world.NewPlayer(1, 58, 50) // inside passive's sight, outside aggressive's
	ws.Spawn(aggressive)
	ws.Spawn(passive)
	ws.Spawn(player)

	as.Update(0)

	if aggressive.Combat != nil {
		t.Fatalf("mob aggroed beyond its sight")
	}
	if passive.Combat != nil {
		t.Fatalf("passive mob aggroed")
	}
}

func TestAggroSystemSkipsEngagedAndDeadMobs(t *testing.T) {
	ws := newWorld()
	as := system.NewAggroSystem(ws, zap.NewNop())

	engaged := world.NewMob(5, 50, 50, world.AggroProfile{Aggressive: true, Sight: 8})
	engaged.Combat = &system.Engagement{Target: "p-0"}
	dead := world.NewMob(5, 51, 50, world.AggroProfile{Aggressive: true, Sight: 8})
	dead.MarkDead()
	player := world.NewPlayer(1, 52, 50)
	ws.Spawn(engaged)
	ws.Spawn(dead)
	ws.Spawn(player)

	as.Update(0)

	if eng := engaged.Combat.(*system.Engagement); eng.Target != "p-0" {
		t.Fatalf("engaged mob switched target to %q", eng.Target)
	}
	if dead.Combat != nil {
		t.Fatalf("dead mob acquired a target")
	}
}
