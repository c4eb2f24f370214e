package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/encounter"
	"github.com/cory-johannsen/skirmish/internal/game/character"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/npc"
	"github.com/cory-johannsen/skirmish/internal/game/reward"
	"github.com/cory-johannsen/skirmish/internal/scripting"
	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
)

// app holds every dependency a command needs, built once from Config.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	items    *inventory.Registry
	bestiary *npc.Bestiary
	sheets   *encounter.MemoryStore
	scripts  *scripting.Manager
	pool     *postgres.Pool
	progress *postgres.ProgressRepository
	roster   encounter.Roster
	service  *encounter.Service
}

// newApp loads content, opens the progression store and assembles the
// encounter service.
//
// Precondition: cfg must be valid; logger must be non-nil.
// Postcondition: the caller must Close the returned app.
func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	var src dice.Source
	if cfg.Combat.Seed != 0 {
		src = dice.NewSeededSource(cfg.Combat.Seed)
	} else {
		src = dice.NewCryptoSource()
	}
	if cfg.Combat.LogRolls {
		src = dice.NewLoggedSource(src, logger)
	}

	var err error
	if a.items, err = inventory.LoadRegistry(cfg.Content.ItemsDir); err != nil {
		return nil, err
	}
	if a.bestiary, err = npc.LoadBestiary(cfg.Content.EnemiesDir); err != nil {
		return nil, err
	}

	curve := reward.DefaultCurve
	a.sheets = encounter.NewMemoryStore(curve)
	if cfg.Content.CharactersDir != "" {
		sheets, err := character.LoadDir(cfg.Content.CharactersDir)
		if err != nil {
			return nil, err
		}
		for _, c := range sheets {
			a.sheets.Put(c)
		}
	}

	a.scripts = scripting.NewManager(src, logger)
	if cfg.Content.ScriptsDir != "" {
		if err := a.scripts.LoadDir(cfg.Content.ScriptsDir, cfg.Content.InstructionLimit); err != nil {
			a.scripts.Close()
			return nil, err
		}
	}

	a.roster = a.sheets
	var ledger encounter.Ledger = a.sheets
	if cfg.Database.Enabled {
		a.pool, err = postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			a.scripts.Close()
			return nil, err
		}
		a.progress = postgres.NewProgressRepository(a.pool.DB(), a.sheets, curve)
		a.roster = encounter.Hydrated(a.sheets, a.progress)
		ledger = a.progress
	}

	engine := combat.NewEngine(src, a.items, logger, combat.WithMaxTicks(cfg.Combat.MaxTicks))
	calc := reward.NewCalculator(src, curve)
	a.service = encounter.NewService(engine, calc, a.roster, ledger, a.bestiary, a.items, a.scripts, logger)

	logger.Info("content loaded",
		zap.Int("items", len(a.items.All())),
		zap.Int("enemies", len(a.bestiary.All())),
		zap.Int("characters", len(a.sheets.IDs())),
		zap.Strings("scripts", a.scripts.Names()),
		zap.Bool("database", cfg.Database.Enabled),
	)
	return a, nil
}

// Close releases the script VMs and the database pool.
func (a *app) Close() {
	a.scripts.Close()
	if a.pool != nil {
		a.pool.Close()
	}
}

// character resolves ref as a stored character id, or as a path to a YAML
// sheet which is then registered under its own id.
func (a *app) character(ref string) (string, error) {
	if !strings.HasSuffix(ref, ".yaml") && !strings.HasSuffix(ref, ".yml") {
		return ref, nil
	}
	c, err := character.LoadFile(ref)
	if err != nil {
		return "", err
	}
	a.sheets.Put(c)
	return c.ID, nil
}

// requireDatabase fails commands that only make sense with persistence.
func (a *app) requireDatabase(cmd string) error {
	if a.progress == nil {
		return fmt.Errorf("%s requires database.enabled", cmd)
	}
	return nil
}
