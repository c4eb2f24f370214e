package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSimulateCmd() *cobra.Command {
	var characterRef, enemyID string
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Fight one encounter and print its report",
		Long: `Runs one duel between a character and a freshly spawned enemy, applies
rewards when the character wins, records the result, and prints the report.

--character accepts a character id or a path to a YAML sheet.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			id, err := a.character(characterRef)
			if err != nil {
				return err
			}
			opts, err := a.cfg.Report.Options()
			if err != nil {
				return err
			}
			enc, err := a.service.Fight(cmd.Context(), id, enemyID, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, page := range enc.Report.Pages {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, page)
			}
			c := enc.Character
			fmt.Fprintf(out, "\n%s: level %d (%d xp), %d gold, %d/%d HP\n",
				c.Name, c.Level, c.Experience, c.Gold, c.CurrentHP, c.MaxHP)
			if enc.Advancement.LevelsGained > 0 {
				fmt.Fprintf(out, "Gained %d level(s)!\n", enc.Advancement.LevelsGained)
			}
			for _, s := range enc.Advancement.SkillsRaised {
				fmt.Fprintf(out, "%s skill increased to %d\n", s, max(c.OffenseSkills[s].Level, c.DefenseSkills[s].Level))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&characterRef, "character", "", "Character id or path to a YAML sheet")
	cmd.Flags().StringVar(&enemyID, "enemy", "", "Enemy template id")
	_ = cmd.MarkFlagRequired("character")
	_ = cmd.MarkFlagRequired("enemy")
	return cmd
}
