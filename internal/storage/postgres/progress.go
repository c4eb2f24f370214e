package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skirmish/internal/game/character"
	"github.com/cory-johannsen/skirmish/internal/game/reward"
)

const (
	kindOffense = "offense"
	kindDefense = "defense"
)

// Sheets supplies the content sheet a character starts from before any
// progression is persisted.
type Sheets interface {
	Character(ctx context.Context, id string) (*character.Character, error)
}

// ProgressRepository persists the parts of a character sheet that change
// between fights: level, experience, gold, HP, skills and backpack. Attacks,
// armor and base stats stay in content.
type ProgressRepository struct {
	db     *pgxpool.Pool
	sheets Sheets
	curve  reward.Curve
}

// NewProgressRepository creates a ProgressRepository. A nil curve selects
// reward.DefaultCurve.
//
// Precondition: db must be a valid, open connection pool; sheets must be non-nil.
func NewProgressRepository(db *pgxpool.Pool, sheets Sheets, curve reward.Curve) *ProgressRepository {
	if curve == nil {
		curve = reward.DefaultCurve
	}
	return &ProgressRepository{db: db, sheets: sheets, curve: curve}
}

// querier is the subset shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Hydrate overlays persisted progression onto c. A character with nothing
// persisted yet is left unchanged.
//
// Precondition: c must be non-nil.
// Postcondition: c.UpdatedAt is non-zero iff progression was found.
func (r *ProgressRepository) Hydrate(ctx context.Context, c *character.Character) error {
	_, err := hydrate(ctx, r.db, c, false)
	return err
}

// Apply applies g to the character's persisted progression in one
// transaction, starting from the content sheet the first time.
//
// Postcondition: Returns the Sheets error unchanged when the character is unknown.
func (r *ProgressRepository) Apply(ctx context.Context, id string, g character.Gains) error {
	c, err := r.sheets.Character(ctx, id)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning progress transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Serializes Apply for one character, including the first insert.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, id); err != nil {
		return fmt.Errorf("locking progress for %q: %w", id, err)
	}
	if _, err := hydrate(ctx, tx, c, true); err != nil {
		return err
	}
	updated, _ := character.ApplyGains(c, g, r.curve)
	if err := save(ctx, tx, updated); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing progress for %q: %w", id, err)
	}
	return nil
}

// Reset deletes every persisted row for id, returning the character to its
// content sheet.
func (r *ProgressRepository) Reset(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM character_progress WHERE character_id = $1`, id); err != nil {
		return fmt.Errorf("resetting progress for %q: %w", id, err)
	}
	return nil
}

func hydrate(ctx context.Context, q querier, c *character.Character, forUpdate bool) (bool, error) {
	sql := `
		SELECT level, experience, gold, max_hp, current_hp, updated_at
		FROM character_progress WHERE character_id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	err := q.QueryRow(ctx, sql, c.ID).Scan(
		&c.Level, &c.Experience, &c.Gold, &c.MaxHP, &c.CurrentHP, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying progress for %q: %w", c.ID, err)
	}

	rows, err := q.Query(ctx, `
		SELECT kind, skill, level, experience
		FROM character_skills WHERE character_id = $1`, c.ID)
	if err != nil {
		return false, fmt.Errorf("querying skills for %q: %w", c.ID, err)
	}
	c.OffenseSkills = make(map[reward.Skill]character.Progress)
	c.DefenseSkills = make(map[reward.Skill]character.Progress)
	for rows.Next() {
		var kind, skill string
		var p character.Progress
		if err := rows.Scan(&kind, &skill, &p.Level, &p.Experience); err != nil {
			rows.Close()
			return false, fmt.Errorf("scanning skill row: %w", err)
		}
		if kind == kindDefense {
			c.DefenseSkills[reward.Skill(skill)] = p
		} else {
			c.OffenseSkills[reward.Skill(skill)] = p
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("reading skills for %q: %w", c.ID, err)
	}

	rows, err = q.Query(ctx, `
		SELECT item_id, quantity
		FROM character_items WHERE character_id = $1`, c.ID)
	if err != nil {
		return false, fmt.Errorf("querying items for %q: %w", c.ID, err)
	}
	c.Items = make(map[string]int)
	for rows.Next() {
		var item string
		var qty int
		if err := rows.Scan(&item, &qty); err != nil {
			rows.Close()
			return false, fmt.Errorf("scanning item row: %w", err)
		}
		c.Items[item] = qty
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("reading items for %q: %w", c.ID, err)
	}
	return true, nil
}

func save(ctx context.Context, tx pgx.Tx, c *character.Character) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO character_progress
			(character_id, level, experience, gold, max_hp, current_hp, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (character_id) DO UPDATE SET
			level = EXCLUDED.level,
			experience = EXCLUDED.experience,
			gold = EXCLUDED.gold,
			max_hp = EXCLUDED.max_hp,
			current_hp = EXCLUDED.current_hp,
			updated_at = NOW()`,
		c.ID, c.Level, c.Experience, c.Gold, c.MaxHP, c.CurrentHP,
	); err != nil {
		return fmt.Errorf("saving progress for %q: %w", c.ID, err)
	}

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM character_skills WHERE character_id = $1`, c.ID)
	batch.Queue(`DELETE FROM character_items WHERE character_id = $1`, c.ID)
	queueSkills(batch, c.ID, kindOffense, c.OffenseSkills)
	queueSkills(batch, c.ID, kindDefense, c.DefenseSkills)
	items := make([]string, 0, len(c.Items))
	for id, n := range c.Items {
		if n > 0 {
			items = append(items, id)
		}
	}
	sort.Strings(items)
	for _, id := range items {
		batch.Queue(`INSERT INTO character_items (character_id, item_id, quantity) VALUES ($1, $2, $3)`,
			c.ID, id, c.Items[id])
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("saving skills and items for %q: %w", c.ID, err)
	}
	return nil
}

func queueSkills(batch *pgx.Batch, id, kind string, skills map[reward.Skill]character.Progress) {
	names := make([]string, 0, len(skills))
	for s := range skills {
		names = append(names, string(s))
	}
	sort.Strings(names)
	for _, s := range names {
		p := skills[reward.Skill(s)]
		batch.Queue(`
			INSERT INTO character_skills (character_id, kind, skill, level, experience)
			VALUES ($1, $2, $3, $4, $5)`,
			id, kind, s, p.Level, p.Experience)
	}
}
