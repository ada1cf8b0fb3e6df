package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sheetsync/sheetsync/internal/engine"
)

var diffCmd = &cobra.Command{
	Use:     "diff <original> <edited>",
	Short:   "Show changes between two snapshot files",
	Long:    `Compare two snapshot documents layer by layer and display every cell, formula, format, feature, and manifest change.`,
	Args:    cobra.ExactArgs(2),
	GroupID: "reconciliation",
	RunE: func(cmd *cobra.Command, args []string) error {
		original, err := loadSnapshot("original", args[0])
		if err != nil {
			return err
		}
		edited, err := loadSnapshot("edited", args[1])
		if err != nil {
			return err
		}

		result, err := newEngine().Diff(context.Background(), &engine.DiffRequest{
			Original: original,
			Edited:   edited,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(changeSetJSON(result.Changes))
		}

		formatChangeSet(result.Changes)
		return nil
	},
}
