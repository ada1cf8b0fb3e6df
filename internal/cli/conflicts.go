package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sheetsync/sheetsync/internal/conflict"
	"github.com/sheetsync/sheetsync/internal/engine"
)

// errConflictsFound makes the process exit non-zero when conflicts exist,
// so scripted callers can tell "clean" from "conflicted" without parsing
// output. The report itself is rendered before this is returned.
var errConflictsFound = errors.New("conflicts found")

var conflictsCmd = &cobra.Command{
	Use:   "conflicts <base> <local> <remote>",
	Short: "Detect conflicting edits of a shared baseline",
	Long: `Diff two edited snapshot documents against their shared baseline and report
every identity both sides changed differently. Detection only: no winner is
chosen and no requests are generated.`,
	Args:    cobra.ExactArgs(3),
	GroupID: "reconciliation",
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := loadSnapshot("base", args[0])
		if err != nil {
			return err
		}
		local, err := loadSnapshot("local", args[1])
		if err != nil {
			return err
		}
		remote, err := loadSnapshot("remote", args[2])
		if err != nil {
			return err
		}

		result, err := newEngine().DetectConflicts(context.Background(), &engine.ConflictRequest{
			Base:   base,
			Local:  local,
			Remote: remote,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			if err := outputJSON(conflictsJSON(result.Conflicts)); err != nil {
				return err
			}
		} else {
			formatConflicts(result.Conflicts)
		}

		if len(result.Conflicts) > 0 {
			return errConflictsFound
		}
		return nil
	},
}

type conflictJSON struct {
	Sheet  int64  `json:"sheet"`
	Cell   string `json:"cell,omitempty"`
	Kind   string `json:"kind"`
	Local  string `json:"local"`
	Remote string `json:"remote"`
}

func conflictsJSON(conflicts []conflict.Conflict) []conflictJSON {
	out := make([]conflictJSON, 0, len(conflicts))
	for _, c := range conflicts {
		cj := conflictJSON{
			Sheet:  c.SheetID,
			Kind:   string(c.Tag),
			Local:  c.ValueA,
			Remote: c.ValueB,
		}
		if c.Tag != conflict.TagSheetDeleted {
			cj.Cell = c.Coord.A1()
		}
		out = append(out, cj)
	}
	return out
}

func formatConflicts(conflicts []conflict.Conflict) {
	if len(conflicts) == 0 {
		PrintSuccess("No conflicts: the two edits are compatible.")
		return
	}

	PrintSection(fmt.Sprintf("Conflicts (%s)", PrintCount(len(conflicts), "identity", "identities")))
	for _, c := range conflicts {
		where := fmt.Sprintf("sheet %d", c.SheetID)
		if c.Tag != conflict.TagSheetDeleted {
			where += " " + c.Coord.A1()
		}
		_, _ = errorColor.Printf("  ✗ %s [%s]\n", where, c.Tag)
		_, _ = labelColor.Print("      local:  ")
		_, _ = valueColor.Println(c.ValueA)
		_, _ = labelColor.Print("      remote: ")
		_, _ = valueColor.Println(c.ValueB)
	}
	fmt.Println()
	PrintWarning("Resolve the conflicts and re-run; sheetsync never picks a winner.")
}
