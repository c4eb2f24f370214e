package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/reward"
)

func outcomeSection(res *combat.Result) string {
	var sb strings.Builder
	sb.WriteString("== Outcome ==\n")
	if winner, ok := res.Winner(); ok {
		loser, _ := res.Loser()
		fmt.Fprintf(&sb, "%s is defeated after %d ticks.\n", loser.Name, res.Ticks)
		fmt.Fprintf(&sb, "%s stands with %d/%d HP.", winner.Name, winner.CurrentHP, winner.MaxHP)
		return sb.String()
	}
	fmt.Fprintf(&sb, "No victor after %d ticks.\n", res.Ticks)
	fmt.Fprintf(&sb, "%s: %d/%d HP.\n", res.Attacker.Name, res.Attacker.CurrentHP, res.Attacker.MaxHP)
	fmt.Fprintf(&sb, "%s: %d/%d HP.", res.Defender.Name, res.Defender.CurrentHP, res.Defender.MaxHP)
	return sb.String()
}

func rewardSection(in Input) string {
	rw := in.Rewards
	if rw == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n== Rewards ==\n")
	fmt.Fprintf(&sb, "+%d gold\n", rw.Gold)
	fmt.Fprintf(&sb, "+%d experience", rw.Experience)
	if rw.LevelUp {
		fmt.Fprintf(&sb, "\nLevel up! Now level %d.", rw.NewLevel)
	}
	if len(rw.Drops) > 0 {
		parts := make([]string, len(rw.Drops))
		for i, d := range rw.Drops {
			name := d.ItemID
			if n, ok := in.ItemNames[d.ItemID]; ok && n != "" {
				name = n
			}
			parts[i] = fmt.Sprintf("%dx %s", d.Quantity, name)
		}
		fmt.Fprintf(&sb, "\nDrops: %s", strings.Join(parts, ", "))
	}
	writeSkills(&sb, "Offense skills:", rw.Offense)
	writeSkills(&sb, "Defense skills:", rw.Defense)
	return sb.String()
}

func writeSkills(sb *strings.Builder, title string, xp map[reward.Skill]int) {
	if len(xp) == 0 {
		return
	}
	skills := make([]reward.Skill, 0, len(xp))
	for s := range xp {
		skills = append(skills, s)
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i] < skills[j] })

	sb.WriteString("\n")
	sb.WriteString(title)
	for _, s := range skills {
		fmt.Fprintf(sb, "\n  %s +%d", s, xp[s])
	}
}
