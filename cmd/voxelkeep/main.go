package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/voxelkeep/server/internal/config"
	"github.com/voxelkeep/server/internal/data"
	"github.com/voxelkeep/server/internal/persist"
	"github.com/voxelkeep/server/internal/scripting"
	"github.com/voxelkeep/server/internal/system"
	"github.com/voxelkeep/server/internal/validate"
	"github.com/voxelkeep/server/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const usage = `usage: voxelkeep <command> [flags]

commands:
  check                 load item catalogs and scripts, report counts
  repair [-dry-run]     sanitize every persisted container
  audit -player NAME    show recent audit entries for a player
  version               show the applied schema version
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Display helpers ───────────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             VoxelKeep  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        庫存完整性 · 伺服器權威驗證        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m伺服器:\033[0m %s \033[90m(編號: %d)\033[0m\n\n", serverName, serverID)
}

// displayWidth counts CJK runes as two columns.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r > 0x7F {
			w += 2
		} else {
			w++
		}
	}
	return w
}

func printSection(title string) {
	lineLen := max(46-displayWidth(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-displayWidth(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printWarn(msg string) {
	fmt.Printf("  \033[33m!\033[0m %s\n", msg)
}

// ── Commands ──────────────────────────────────────────────────────

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing command")
	}

	cfgPath := "config/server.toml"
	if p := os.Getenv("VOXELKEEP_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "check":
		printBanner(cfg.Server.Name, cfg.Server.ID)
		_, err := loadCatalogs(cfg, log)
		return err
	case "repair":
		return runRepair(ctx, cfg, log, rest)
	case "audit":
		return runAudit(ctx, cfg, log, rest)
	case "version":
		return runVersion(ctx, cfg, log)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	}
	fmt.Fprint(os.Stderr, usage)
	return fmt.Errorf("unknown command %q", cmd)
}

// loadCatalogs loads the YAML catalogs and runs the Lua catalog extensions on top.
func loadCatalogs(cfg *config.Config, log *zap.Logger) (*data.Catalogs, error) {
	printSection("物品目錄")

	catalogs, err := data.LoadCatalogs(cfg.Data.BlocksPath, cfg.Data.ToolsPath, cfg.Data.SpawnEggsPath)
	if err != nil {
		return nil, fmt.Errorf("load catalogs: %w", err)
	}
	printStat("方塊", catalogs.Blocks.Count())
	printStat("工具", catalogs.Tools.Count())
	printStat("生怪蛋", catalogs.Eggs.Count())

	engine, err := scripting.NewEngine(cfg.Data.ScriptsDir, catalogs, log)
	if err != nil {
		return nil, fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()
	printStat("腳本新增", engine.Added())
	printStat("合計", catalogs.Count())
	fmt.Println()
	return catalogs, nil
}

func openDB(ctx context.Context, cfg *config.Config, log *zap.Logger) (*persist.DB, error) {
	printSection("資料庫")

	dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(dbCtx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	printOK("PostgreSQL 連線成功")

	if err := persist.RunMigrations(dbCtx, db.Pool); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	printOK("資料庫遷移完成")
	fmt.Println()
	return db, nil
}

func runRepair(ctx context.Context, cfg *config.Config, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("repair", flag.ContinueOnError)
	dryRun := fs.Bool("dry-run", false, "report damaged containers without writing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	printBanner(cfg.Server.Name, cfg.Server.ID)
	catalogs, err := loadCatalogs(cfg, log)
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	oracle := validate.NewOracle(catalogs.Blocks, catalogs.Tools, catalogs.Eggs)
	validator := validate.NewValidator(oracle, validate.Limits{
		MaxStack:   cfg.Inventory.MaxStack,
		HotbarSize: cfg.Inventory.HotbarSize,
	}, log)

	inv := system.NewInventorySystem(&system.Deps{
		World:     world.NewState(),
		Validator: validator,
		Catalogs:  catalogs,
		Store:     persist.NewSlotRepo(db),
		Audit:     persist.NewAuditRepo(db),
		Config:    cfg.Inventory,
		Log:       log,
	})

	printSection("修復")
	report, err := inv.RepairAll(ctx, *dryRun)
	if err != nil {
		return fmt.Errorf("repair: %w", err)
	}
	printStat("掃描容器", report.Scanned)
	printStat("需修復", len(report.Repaired))
	for _, ref := range report.Repaired {
		printWarn(ref.String())
	}
	if report.DryRun {
		printOK("試執行：未寫入任何資料")
	} else {
		printOK("修復完成")
	}
	return nil
}

func runAudit(ctx context.Context, cfg *config.Config, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	player := fs.String("player", "", "player name")
	limit := fs.Int("limit", 20, "maximum entries")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *player == "" {
		return errors.New("audit: -player is required")
	}

	db, err := openDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := persist.NewAuditRepo(db).Recent(ctx, *player, *limit)
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	printSection("稽核記錄")
	for _, e := range entries {
		fmt.Printf("  %s  %-9s %-28s item=%d amount=%d %s\n",
			e.CreatedAt.Format(time.DateTime), e.Kind, e.Container, e.ItemID, e.Amount, e.Reason)
	}
	printStat("筆數", len(entries))
	return nil
}

func runVersion(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	db, err := openDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	v, err := persist.SchemaVersion(ctx, db.Pool)
	if err != nil {
		return fmt.Errorf("schema version: %w", err)
	}
	printStat("資料庫版本", int(v))
	return nil
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
