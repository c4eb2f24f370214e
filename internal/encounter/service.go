// Package encounter runs duels between player characters and enemies and
// carries their outcome into rewards, reports and persisted progression.
package encounter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/character"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/npc"
	"github.com/cory-johannsen/skirmish/internal/game/report"
	"github.com/cory-johannsen/skirmish/internal/game/reward"
)

var (
	// ErrAlreadyInCombat is returned when the character is already fighting.
	ErrAlreadyInCombat = errors.New("character is already in combat")
	// ErrCharacterNotFound is returned for an unknown character id.
	ErrCharacterNotFound = errors.New("character not found")
	// ErrEnemyNotFound is returned for an unknown enemy template id.
	ErrEnemyNotFound = errors.New("enemy not found")
)

// Enemies spawns enemy snapshots. *npc.Bestiary satisfies it.
type Enemies interface {
	Spawn(id string) (*npc.Template, *combat.Snapshot, error)
}

// Items resolves item metadata, worn armor and display names.
// *inventory.Registry satisfies it.
type Items interface {
	combat.ItemCatalog
	Armor(ids []string) (inventory.Worn, error)
	Names() map[string]string
}

// Scripts binds passive scripts to combatants. *scripting.Manager satisfies it.
type Scripts interface {
	Hooks(script, ownerID string) combat.Hooks
}

// Duel is one simulated fight with no rewards or persistence attached.
type Duel struct {
	Character *character.Character
	Enemy     *npc.Template
	// EnemyID is the combatant id the enemy fought under.
	EnemyID string
	Worn    inventory.Worn
	Result  *combat.Result
}

// Won reports whether the character won the duel.
func (d *Duel) Won() bool {
	w, ok := d.Result.Winner()
	return ok && w.ID == d.Character.ID
}

// Encounter is a finished, persisted fight.
type Encounter struct {
	ID     string
	Result *combat.Result
	// Rewards is nil unless the character won.
	Rewards *reward.Result
	Report  report.Report
	// Character is the sheet after gains were applied.
	Character   *character.Character
	Advancement character.Advancement
}

// Service runs encounters. A character may take part in at most one encounter
// at a time; different characters fight concurrently.
type Service struct {
	engine  *combat.Engine
	calc    *reward.Calculator
	roster  Roster
	ledger  Ledger
	enemies Enemies
	items   Items
	scripts Scripts
	logger  *zap.Logger

	busyMu sync.Mutex
	busy   map[string]struct{}
}

// NewService creates a Service.
//
// Precondition: all arguments except scripts must be non-nil; a nil scripts
// runs every duel without passive hooks.
// Postcondition: Returns a non-nil Service.
func NewService(
	engine *combat.Engine,
	calc *reward.Calculator,
	roster Roster,
	ledger Ledger,
	enemies Enemies,
	items Items,
	scripts Scripts,
	logger *zap.Logger,
) *Service {
	if engine == nil || calc == nil || roster == nil || ledger == nil || enemies == nil || items == nil || logger == nil {
		panic("encounter.NewService: precondition violated: nil dependency")
	}
	return &Service{
		engine:  engine,
		calc:    calc,
		roster:  roster,
		ledger:  ledger,
		enemies: enemies,
		items:   items,
		scripts: scripts,
		logger:  logger,
		busy:    make(map[string]struct{}),
	}
}

// Fight runs one encounter between a stored character and a fresh enemy.
//
// Rewards are calculated only when the character wins. Whatever the outcome
// the character's final HP, and any gains, are written through the Ledger.
//
// Precondition: ctx must be non-nil.
// Postcondition: Returns ErrAlreadyInCombat while another Fight for the same
// character is running; ErrCharacterNotFound or ErrEnemyNotFound for unknown
// ids; a *combat.SetupError when either side cannot fight.
func (s *Service) Fight(ctx context.Context, characterID, enemyID string, opts report.Options) (*Encounter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.claim(characterID) {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyInCombat, characterID)
	}
	defer s.release(characterID)

	c, err := s.roster.Character(ctx, characterID)
	if err != nil {
		return nil, err
	}
	d, err := s.Duel(c, enemyID)
	if err != nil {
		return nil, err
	}

	var rewards *reward.Result
	if d.Won() {
		rewards = s.calc.Calculate(reward.Input{
			Result:     d.Result,
			Table:      d.Enemy.Reward,
			Experience: c.Experience,
			Offense:    c.OffenseLevels(),
			Defense:    c.DefenseLevels(),
			Armor:      d.Worn.Pieces,
		})
	}

	gains := character.GainsFrom(rewards, d.Result.Combatant(c.ID).CurrentHP)
	if err := s.ledger.Apply(ctx, c.ID, gains); err != nil {
		return nil, fmt.Errorf("recording encounter for %q: %w", c.ID, err)
	}
	updated, adv := character.ApplyGains(c, gains, s.calc.Curve())

	rep := report.Render(report.Input{
		Result:    d.Result,
		Rewards:   rewards,
		ItemNames: s.items.Names(),
	}, opts)

	enc := &Encounter{
		ID:          uuid.NewString(),
		Result:      d.Result,
		Rewards:     rewards,
		Report:      rep,
		Character:   updated,
		Advancement: adv,
	}
	fields := []zap.Field{
		zap.String("encounter", enc.ID),
		zap.String("character", c.ID),
		zap.String("enemy", d.EnemyID),
		zap.Stringer("outcome", d.Result.Outcome),
		zap.Bool("won", d.Won()),
		zap.Int("ticks", d.Result.Ticks),
		zap.Int("hp", gains.CurrentHP),
	}
	if rewards != nil {
		fields = append(fields,
			zap.Int("gold", rewards.Gold),
			zap.Int("experience", rewards.Experience),
			zap.Int("drops", len(rewards.Drops)),
			zap.Int("levels_gained", adv.LevelsGained),
		)
	}
	s.logger.Info("encounter resolved", fields...)
	return enc, nil
}

// Duel simulates c against a fresh spawn of enemyID without rewarding or
// persisting anything. c is not modified.
//
// Postcondition: Returns ErrEnemyNotFound for an unknown template and a
// *combat.SetupError when either side cannot fight.
func (s *Service) Duel(c *character.Character, enemyID string) (*Duel, error) {
	worn, err := s.items.Armor(c.Armor)
	if err != nil {
		return nil, fmt.Errorf("character %q: %w", c.ID, err)
	}
	hero, err := c.Snapshot(s.items)
	if err != nil {
		return nil, err
	}
	tmpl, foe, err := s.enemies.Spawn(enemyID)
	if err != nil {
		if errors.Is(err, npc.ErrTemplateNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrEnemyNotFound, enemyID)
		}
		return nil, err
	}

	var hooks []combat.Hooks
	if s.scripts != nil {
		hooks = append(hooks, s.scripts.Hooks(c.Passive, hero.ID), s.scripts.Hooks(tmpl.Passive, foe.ID))
	}
	res, err := s.engine.Run(hero, foe, hooks...)
	if err != nil {
		return nil, err
	}
	return &Duel{Character: c, Enemy: tmpl, EnemyID: foe.ID, Worn: worn, Result: res}, nil
}

func (s *Service) claim(id string) bool {
	s.busyMu.Lock()
	defer s.busyMu.Unlock()
	if _, ok := s.busy[id]; ok {
		return false
	}
	s.busy[id] = struct{}{}
	return true
}

func (s *Service) release(id string) {
	s.busyMu.Lock()
	defer s.busyMu.Unlock()
	delete(s.busy, id)
}
