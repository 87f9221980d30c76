package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run a single generation round and print what it did",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := loadApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		gen, err := a.generator(ctx)
		if err != nil {
			return err
		}

		result, err := gen.RunOnce(ctx)
		if err != nil {
			return fmt.Errorf("generation round failed: %w", err)
		}

		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(output))
		return nil
	},
}
