package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newResetCmd() *cobra.Command {
	var characterID string
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop a character's persisted progression",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			if err := a.requireDatabase("reset"); err != nil {
				return err
			}
			if _, err := a.sheets.Character(cmd.Context(), characterID); err != nil {
				return err
			}
			if err := a.progress.Reset(cmd.Context(), characterID); err != nil {
				return err
			}
			a.logger.Info("progression reset", zap.String("character", characterID))
			fmt.Fprintf(cmd.OutOrStdout(), "%s reset to its content sheet\n", characterID)
			return nil
		},
	}
	cmd.Flags().StringVar(&characterID, "character", "", "Character id")
	_ = cmd.MarkFlagRequired("character")
	return cmd
}
