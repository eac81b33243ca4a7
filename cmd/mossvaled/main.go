package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mossvale/mossvale/internal/config"
	"github.com/mossvale/mossvale/internal/content"
	"github.com/mossvale/mossvale/internal/persist"
	"github.com/mossvale/mossvale/internal/scripting"
	"github.com/mossvale/mossvale/internal/server"
	"github.com/mossvale/mossvale/internal/sim"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(worldName string, seed int64) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            Mossvale  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      苔谷小鎮 · Go 生活模擬伺服器         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m世界:\033[0m %s \033[90m(種子: %d)\033[0m\n\n", worldName, seed)
}

func printSection(title string) {
	// Use rune count for CJK width calculation (each CJK char = 2 columns)
	displayWidth := 0
	for _, r := range title {
		if r > 0x7F {
			displayWidth += 2
		} else {
			displayWidth++
		}
	}
	lineLen := 46 - displayWidth - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	// Use display width for CJK characters
	displayWidth := 0
	for _, r := range label {
		if r > 0x7F {
			displayWidth += 2
		} else {
			displayWidth++
		}
	}
	dotsLen := 42 - displayWidth - len(numStr)
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

// ── Main daemon logic ──────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.World.Seed)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 3. Optional PostgreSQL save store
	var saveRepo *persist.SaveRepo
	if cfg.Database.Enabled {
		printSection("資料庫")

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL 連線成功")

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("資料庫遷移完成")

		saveRepo, err = persist.NewSaveRepo(db)
		if err != nil {
			return fmt.Errorf("save repo: %w", err)
		}
		fmt.Println()
	}

	// 4. Load definition tables
	printSection("資料載入")

	var registry *content.Registry
	if cfg.Data.Dir != "" {
		registry, err = content.Load(cfg.Data.Dir)
		if err != nil {
			return fmt.Errorf("load content: %w", err)
		}
	} else {
		registry, err = content.Default()
		if err != nil {
			return fmt.Errorf("builtin content: %w", err)
		}
	}
	printStat("需求定義", registry.Needs.Count())
	printStat("地形定義", registry.Terrains.Count())
	printStat("建築模板", registry.Buildings.Count())
	printStat("增益效果", registry.Buffs.Count())
	printStat("資源種類", registry.Resources.Count())

	var scenario *content.Scenario
	if cfg.Bootstrap.Scenario != "" {
		scenario, err = content.LoadScenario(cfg.Bootstrap.Scenario)
		if err != nil {
			return fmt.Errorf("load scenario: %w", err)
		}
		printOK(fmt.Sprintf("劇本載入完成 (%s)", cfg.Bootstrap.Scenario))
	}

	// 5. Optional Lua economy hooks
	var luaEngine *scripting.Engine
	if cfg.Data.ScriptsDir != "" {
		luaEngine, err = scripting.NewEngine(cfg.Data.ScriptsDir, log)
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer luaEngine.Close()
		printOK("Lua 腳本載入完成")
	}

	// 6. Saved world takes priority over any starting layout
	var savedState *sim.SaveStateV1
	if saveRepo != nil {
		savedState, err = saveRepo.Load(ctx, cfg.Database.SaveName)
		if err != nil {
			return fmt.Errorf("load save: %w", err)
		}
	}

	// 7. Build the simulation
	opts := []sim.Option{sim.WithLogger(log)}
	if luaEngine != nil {
		opts = append(opts, sim.WithScripting(luaEngine))
	}
	if savedState != nil {
		cfg.Bootstrap.Skip = true
	} else if scenario != nil {
		opts = append(opts, sim.WithScenario(scenario))
	}

	s, err := sim.New(cfg, registry, opts...)
	if err != nil {
		return err
	}
	if savedState != nil {
		if err := s.Restore(savedState); err != nil {
			return fmt.Errorf("restore save: %w", err)
		}
		printOK(fmt.Sprintf("存檔載入完成 (tick %d)", savedState.Tick))
	}

	snap := s.Snapshot()
	printStat("居民", len(snap.Pawns))
	printStat("建築", len(snap.Buildings))
	fmt.Println()

	// 8. Observer websocket server
	obs := server.NewServer(cfg.Server, log)
	if err := obs.Start(); err != nil {
		return fmt.Errorf("observer server: %w", err)
	}
	if frame, err := json.Marshal(snap); err == nil {
		obs.Broadcast(s.CurrentTick(), frame) // observers see the world before the first tick
	}

	// 9. Simulation loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Server.TickRate)
	defer ticker.Stop()

	printSection("伺服器就緒")
	printReady(fmt.Sprintf("觀察位址 ws://%s/ws", obs.Addr().String()))
	printReady(fmt.Sprintf("模擬迴圈啟動 (tick: %s)", cfg.Server.TickRate))
	fmt.Println()

	snapEvery := cfg.Server.SnapshotEvery
	if snapEvery <= 0 {
		snapEvery = 1
	}

	for {
		select {
		case <-ticker.C:
			tick := s.Tick()

			if tick%snapEvery == 0 {
				if frame, err := json.Marshal(s.Snapshot()); err == nil {
					obs.Broadcast(tick, frame)
				}
			}

			if saveRepo != nil && cfg.Database.AutosaveTicks > 0 && tick%cfg.Database.AutosaveTicks == 0 {
				writeSave(saveRepo, cfg.Database.SaveName, s.Capture(), log)
			}

		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			if saveRepo != nil {
				writeSave(saveRepo, cfg.Database.SaveName, s.Capture(), log)
			}
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			if err := obs.Shutdown(shutdownCtx); err != nil {
				log.Warn("observer shutdown", zap.Error(err))
			}
			cancelShutdown()
			log.Info("server stopped")
			return nil
		}
	}
}

// writeSave persists a captured state under the configured slot name. Runs
// between ticks on the loop goroutine; the capture is already detached from
// live state.
func writeSave(repo *persist.SaveRepo, name string, save *sim.SaveStateV1, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.Save(ctx, name, save); err != nil {
		log.Error("autosave failed", zap.Error(err))
		return
	}
	log.Info("autosave complete", zap.Int64("tick", save.Tick), zap.String("name", name))
}

func loadConfig() (*config.Config, error) {
	path := os.Getenv("MOSSVALE_CONFIG")
	if path == "" {
		path = "config/mossvale.toml"
		if _, err := os.Stat(path); os.IsNotExist(err) {
			// No config file: run the builtin world.
			cfg := config.Defaults()
			cfg.Server.StartTime = time.Now().Unix()
			return cfg, nil
		}
	}
	return config.Load(path)
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

	return zapCfg.Build()
}
