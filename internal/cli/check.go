package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/atollkit/atoll/internal/harness"
	"github.com/atollkit/atoll/internal/hydrate"
)

// NewCheckCommand creates the check command: the server/client agreement
// dry-run. It renders a scenario, re-parses the markup, hydrates every
// island in-process, and fails when any island falls back unexpectedly.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <scenario.yaml>",
		Short: "Render then hydrate a scenario and report per-island outcomes",
		Long: `Render a scenario server-side and immediately hydrate the delivered
markup in-process, reporting each island's outcome.

Exits non-zero when any island fails to hydrate, unless the scenario's
expect block declares the failure deliberate.

Example:
  atoll check scenarios/counter.yaml
  atoll check scenarios/mismatch.yaml --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenario, err := harness.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "load scenario", err)
	}

	result, err := harness.Run(scenario)
	if err != nil {
		return WrapExitError(ExitFailure, "run scenario", err)
	}

	unexpected := 0
	for _, island := range result.Report.Islands {
		want := scenario.Expect[island.ID]
		if want == "" {
			want = string(hydrate.OutcomeHydrated)
		}
		if string(island.Outcome) != want {
			unexpected++
		}
	}

	data := map[string]any{
		"scenario":   scenario.Name,
		"islands":    snapshotIslands(scenario, result),
		"unexpected": unexpected,
	}
	outErr := formatter.Success(data, func(w io.Writer) error {
		for _, island := range result.Report.Islands {
			fmt.Fprintf(w, "%-24s %-12s %s", island.ID, island.Outcome, island.Detail)
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%d islands, %d unexpected outcomes\n", len(result.Report.Islands), unexpected)
		return nil
	})
	if outErr != nil {
		return outErr
	}
	if unexpected > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d islands with unexpected hydration outcomes", unexpected))
	}
	return nil
}

func snapshotIslands(s *harness.Scenario, r *harness.Result) []harness.IslandTrace {
	return harness.Snapshot(s, r).Islands
}
