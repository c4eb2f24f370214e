package report

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// block is a run of consecutive log entries by the same attacker, against the
// same target, with the same action.
type block struct {
	entries []combat.LogEntry
}

func sameBlock(a, b combat.LogEntry) bool {
	return a.AttackerID == b.AttackerID &&
		a.TargetID == b.TargetID &&
		a.ActionID == b.ActionID &&
		a.Shield == b.Shield
}

// group splits log into blocks, preserving order.
func group(log []combat.LogEntry) []block {
	var out []block
	for _, e := range log {
		if n := len(out); n > 0 && sameBlock(out[n-1].entries[0], e) {
			out[n-1].entries = append(out[n-1].entries, e)
			continue
		}
		out = append(out, block{entries: []combat.LogEntry{e}})
	}
	return out
}

func (b block) first() combat.LogEntry { return b.entries[0] }
func (b block) last() combat.LogEntry  { return b.entries[len(b.entries)-1] }

func (b block) ticks() string {
	if b.first().Tick == b.last().Tick {
		return fmt.Sprintf("[t%d]", b.first().Tick)
	}
	return fmt.Sprintf("[t%d-%d]", b.first().Tick, b.last().Tick)
}

// line renders the block with the single or multi template.
func (b block) line(res *combat.Result) string {
	e := b.first()
	attacker := displayName(res, e.AttackerID)
	target := displayName(res, e.TargetID)

	switch {
	case len(b.entries) == 1 && e.Shield:
		if !e.Hit {
			return fmt.Sprintf("%s %s fumbles %s.", b.ticks(), attacker, e.ActionName)
		}
		return fmt.Sprintf("%s %s raises %s for %d shield (shield %d).",
			b.ticks(), attacker, e.ActionName, e.ShieldGranted, e.AttackerShield)

	case len(b.entries) == 1:
		if !e.Hit {
			return fmt.Sprintf("%s %s's %s misses %s.", b.ticks(), attacker, e.ActionName, target)
		}
		verb := "hits"
		if e.Crit {
			verb = "critically hits"
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s %s's %s %s %s for %d damage", b.ticks(), attacker, e.ActionName, verb, target, e.Damage)
		if e.Resisted {
			sb.WriteString(", critical resisted")
		}
		if e.Absorbed > 0 {
			fmt.Fprintf(&sb, ", %d absorbed by shield", e.Absorbed)
		}
		sb.WriteString(hpSuffix(res, e.TargetID, e.TargetHP))
		return sb.String()

	case e.Shield:
		granted, raised := 0, 0
		for _, x := range b.entries {
			if x.Hit {
				raised++
				granted += x.ShieldGranted
			}
		}
		return fmt.Sprintf("%s %s raises %s %d times, %d held, for %d shield (shield %d).",
			b.ticks(), attacker, e.ActionName, len(b.entries), raised, granted, b.last().AttackerShield)

	default:
		var hits, crits, misses, dmg, absorbed int
		for _, x := range b.entries {
			switch {
			case !x.Hit:
				misses++
			case x.Crit:
				crits++
				hits++
			default:
				hits++
			}
			dmg += x.Damage
			absorbed += x.Absorbed
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s %s's %s strikes %s %d times: %d hits", b.ticks(), attacker, e.ActionName, target, len(b.entries), hits)
		if crits > 0 {
			fmt.Fprintf(&sb, " (%d critical)", crits)
		}
		fmt.Fprintf(&sb, ", %d misses, %d damage", misses, dmg)
		if absorbed > 0 {
			fmt.Fprintf(&sb, ", %d absorbed by shield", absorbed)
		}
		sb.WriteString(hpSuffix(res, e.TargetID, b.last().TargetHP))
		return sb.String()
	}
}

func hpSuffix(res *combat.Result, id string, hp int) string {
	maxHP := 0
	if c := res.Combatant(id); c != nil {
		maxHP = c.MaxHP
	}
	return fmt.Sprintf(" (%s: %d/%d HP).", displayName(res, id), hp, maxHP)
}

func displayName(res *combat.Result, id string) string {
	if c := res.Combatant(id); c != nil && c.Name != "" {
		return c.Name
	}
	return id
}
