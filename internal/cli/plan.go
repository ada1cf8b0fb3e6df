package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sheetsync/sheetsync/internal/engine"
	"github.com/sheetsync/sheetsync/internal/request"
)

var planNoOptimize bool

var planCmd = &cobra.Command{
	Use:     "plan <original> <edited>",
	Short:   "Generate the ordered mutation requests",
	Long:    `Diff two snapshot documents and generate the phase-ordered list of mutation requests that reconciles the original into the edited state.`,
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

		result, err := newEngine().Plan(context.Background(), &engine.PlanRequest{
			Original:     original,
			Edited:       edited,
			SkipOptimize: planNoOptimize,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(planJSON(result.Plan))
		}

		formatPlanOutput(result.Plan)
		return nil
	},
}

func init() {
	planCmd.Flags().BoolVar(&planNoOptimize, "no-optimize", false, "Skip the dedup and merge passes")
}

// requestJSON is the wire shape of one planned request.
type requestJSON struct {
	Phase   string `json:"phase"`
	Kind    string `json:"kind"`
	Target  string `json:"target"`
	Payload string `json:"payload"`
}

type planOutputJSON struct {
	Requests []requestJSON `json:"requests"`
	Unknown  []requestJSON `json:"unknown,omitempty"`
}

func planJSON(plan *request.Plan) planOutputJSON {
	out := planOutputJSON{Requests: make([]requestJSON, 0, len(plan.Requests))}
	for i, r := range plan.Requests {
		out.Requests = append(out.Requests, requestJSON{
			Phase:   plan.Phases[i].String(),
			Kind:    r.Kind().String(),
			Target:  r.Target(),
			Payload: r.Payload(),
		})
	}
	for _, r := range plan.Unknown {
		out.Unknown = append(out.Unknown, requestJSON{
			Phase:   request.PhaseOf(r).String(),
			Kind:    r.Kind().String(),
			Target:  r.Target(),
			Payload: r.Payload(),
		})
	}
	return out
}

func formatPlanOutput(plan *request.Plan) {
	if len(plan.Requests) == 0 {
		PrintEmptyState("Snapshots are identical; nothing to do.")
		return
	}

	var lastPhase request.Phase
	for i, r := range plan.Requests {
		if phase := plan.Phases[i]; phase != lastPhase {
			PrintSection(fmt.Sprintf("Phase %d: %s", int(phase), phase))
			lastPhase = phase
		}
		_, _ = infoColor.Printf("  %-24s", r.Kind())
		_, _ = valueColor.Printf(" %s\n", r.Target())
	}

	fmt.Println()
	PrintSuccess(fmt.Sprintf("Plan ready: %s", PrintCount(len(plan.Requests), "request", "requests")))
	if len(plan.Unknown) > 0 {
		PrintWarning(fmt.Sprintf("%s missing a phase mapping, defaulted to the format phase",
			PrintCount(len(plan.Unknown), "request kind is", "request kinds are")))
	}
}
