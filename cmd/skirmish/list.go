package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/skirmish/internal/scripting"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List characters, enemies and passive scripts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Characters:")
			for _, id := range a.sheets.IDs() {
				c, err := a.roster.Character(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %-14s %-12s level %-3d %d/%d HP\n", c.ID, c.Name, c.Level, c.CurrentHP, c.MaxHP)
			}

			fmt.Fprintln(out, "Enemies:")
			for _, t := range a.bestiary.All() {
				fmt.Fprintf(out, "  %-14s %-12s level %-3d %d HP\n", t.ID, t.Name, t.Level, t.MaxHP)
			}

			fmt.Fprintln(out, "Scripts:")
			for _, name := range a.scripts.Names() {
				hooks := a.scripts.Defines(name, scripting.Hooks...)
				fmt.Fprintf(out, "  %-14s %s\n", name, strings.Join(hooks, ", "))
			}
			return nil
		},
	}
}
