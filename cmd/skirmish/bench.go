package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// benchStats summarizes repeated duels from the character's side.
type benchStats struct {
	Runs, Wins, Losses, Unresolved int
	Ticks                          int
}

func (s benchStats) avgTicks() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Ticks) / float64(s.Runs)
}

func newBenchCmd() *cobra.Command {
	var characterRef, enemyID string
	var runs int
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Simulate many duels without rewards or persistence",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if runs < 1 {
				return fmt.Errorf("--runs must be >= 1, got %d", runs)
			}
			a := appFrom(cmd)
			id, err := a.character(characterRef)
			if err != nil {
				return err
			}
			c, err := a.roster.Character(cmd.Context(), id)
			if err != nil {
				return err
			}

			var stats benchStats
			for i := 0; i < runs; i++ {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				d, err := a.service.Duel(c, enemyID)
				if err != nil {
					return err
				}
				stats.Runs++
				stats.Ticks += d.Result.Ticks
				switch {
				case d.Won():
					stats.Wins++
				case d.Result.Outcome == combat.OutcomeUnresolved:
					stats.Unresolved++
				default:
					stats.Losses++
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s vs %s over %d duels: %d wins, %d losses, %d unresolved, %.1f ticks on average\n",
				c.Name, enemyID, stats.Runs, stats.Wins, stats.Losses, stats.Unresolved, stats.avgTicks())
			return nil
		},
	}
	cmd.Flags().StringVar(&characterRef, "character", "", "Character id or path to a YAML sheet")
	cmd.Flags().StringVar(&enemyID, "enemy", "", "Enemy template id")
	cmd.Flags().IntVar(&runs, "runs", 100, "Number of duels to simulate")
	_ = cmd.MarkFlagRequired("character")
	_ = cmd.MarkFlagRequired("enemy")
	return cmd
}
