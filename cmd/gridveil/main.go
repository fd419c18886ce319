package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/gridveil/server/internal/broadcast"
	"github.com/gridveil/server/internal/config"
	coresys "github.com/gridveil/server/internal/core/system"
	"github.com/gridveil/server/internal/data"
	"github.com/gridveil/server/internal/region"
	"github.com/gridveil/server/internal/scripting"
	"github.com/gridveil/server/internal/system"
	"github.com/gridveil/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            Gridveil  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      tile world engine · Go server        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s \033[90m(id: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	lineLen := 45 - len(title)
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main engine logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("GRIDVEIL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Load data tables
	printSection("data")

	templates, err := data.LoadTemplateTable(filepath.Join(cfg.World.DataDir, "templates.yaml"))
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	printStat("entity templates", templates.Count())

	spawns, err := data.LoadSpawnList(filepath.Join(cfg.World.DataDir, "spawns.yaml"))
	if err != nil {
		return fmt.Errorf("load spawn list: %w", err)
	}

	// 4. Create world state
	regions := region.NewGrid(cfg.World.RegionCell)
	ws := world.NewState(regions, cfg.World.RecentRegions, log)

	// 5. Lua trigger scripts
	engine, err := scripting.NewEngine(cfg.World.ScriptsDir, ws, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer engine.Close()
	ws.SetRegionHook(engine.OnRegionEnter)
	printOK("lua scripts loaded")

	// 6. Systems
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	cleanup := system.NewCleanupSystem(ws, log)

	runner := coresys.NewRunner()
	runner.Register(system.NewRoamSystem(ws, rng))
	runner.Register(system.NewAggroSystem(ws, log))
	runner.Register(system.NewVisibilitySystem(ws, templates, broadcast.NewLogSink(log), cfg.World.SightRadius, log))
	runner.Register(cleanup)

	// 7. Spawn the world
	spawned := spawnEntities(ws, templates, spawns, engine, cleanup, log)
	printStat("entities spawned", spawned)
	fmt.Println()

	printReady(fmt.Sprintf("world ticking every %s (sight %d)", cfg.World.TickRate, cfg.World.SightRadius))
	log.Info("engine started",
		zap.String("server", cfg.Server.Name),
		zap.Int("entities", ws.Count()),
		zap.Duration("tick_rate", cfg.World.TickRate),
	)

	// 8. Tick loop until signalled
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.World.TickRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-sig:
			log.Info("shutting down")
			return nil
		case now := <-ticker.C:
			runner.Tick(now.Sub(last))
			last = now
		}
	}
}

// spawnEntities places every spawn-list entry into the world and fires the
// on_spawn script hook for each.
func spawnEntities(ws *world.State, templates *data.TemplateTable, spawns []data.SpawnEntry,
	engine *scripting.Engine, cleanup *system.CleanupSystem, log *zap.Logger) int {

	count := 0
	for _, entry := range spawns {
		kind, err := world.ParseKind(entry.Kind)
		if err != nil {
			log.Warn("spawn entry with unknown kind", zap.String("kind", entry.Kind))
			continue
		}
		tpl := templates.Get(kind, entry.ID)
		if tpl == nil {
			log.Warn("spawn entry without template",
				zap.String("kind", entry.Kind), zap.Int32("id", entry.ID))
			continue
		}
		n := entry.Count
		if n < 1 {
			n = 1
		}
		for i := 0; i < n; i++ {
			var e *world.Entity
			switch kind {
			case world.KindMob:
				e = world.NewMob(entry.ID, entry.X, entry.Y, world.AggroProfile{
					Aggressive: tpl.Aggressive,
					Sight:      tpl.Sight,
				})
			case world.KindNPC:
				e = world.NewNPC(entry.ID, entry.X, entry.Y)
			case world.KindItem:
				e = world.NewItem(entry.ID, entry.X, entry.Y)
			case world.KindPlayer:
				e = world.NewPlayer(entry.ID, entry.X, entry.Y)
			}
			e.Roaming = tpl.Roaming
			e.SpecialState = world.SpecialState(tpl.SpecialState)
			e.CustomScale = tpl.CustomScale
			ws.Spawn(e)
			if kind == world.KindItem && tpl.TTL > 0 {
				cleanup.TrackTTL(e.Instance, tpl.TTL)
			}
			engine.OnSpawn(e)
			count++
		}
	}
	return count
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	if cfg.File == "" {
		return zapCfg.Build()
	}

	// File output goes through lumberjack for rotation; console keeps the
	// configured format.
	rotated := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	})
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		rotated,
		level,
	)
	console, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return console.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	})), nil
}
