package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"quizstream"
)

var drainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Pop questions from the configured store and print them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		count, _ := cmd.Flags().GetInt("count")

		a, err := loadApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		questions, dispenseErr := quizstream.NewDispenser(a.store, a.logger).Dispense(ctx, count)

		output, err := json.MarshalIndent(questions, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal questions: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(output))

		if dispenseErr != nil {
			return fmt.Errorf("dispense: %w", dispenseErr)
		}
		return nil
	},
}

func init() {
	drainCmd.Flags().Int("count", quizstream.DefaultDispenseCount, "Maximum number of questions to pop")
}
