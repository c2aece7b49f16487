package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/atollkit/atoll/internal/harness"
)

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <scenario.yaml>",
		Short: "Render a scenario's page to markup",
		Long: `Render a scenario's page server-side and print the resulting markup,
island markers and bootstrap payload included.

Example:
  atoll render scenarios/counter.yaml
  atoll render scenarios/counter.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runRender(opts *RootOptions, path string, cmd *cobra.Command) error {
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
	formatter.Verbosef("rendering scenario %s (%d page items)", scenario.Name, len(scenario.Page))

	markup, markers, err := harness.RenderPage(scenario)
	if err != nil {
		return WrapExitError(ExitFailure, "render page", err)
	}

	data := map[string]any{
		"scenario": scenario.Name,
		"markup":   markup,
		"islands":  markers,
	}
	return formatter.Success(data, func(w io.Writer) error {
		fmt.Fprintln(w, markup)
		for _, m := range markers {
			fmt.Fprintf(w, "# island %s type=%s kind=%s\n", m.ID, m.Type, m.Kind)
		}
		return nil
	})
}
