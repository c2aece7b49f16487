package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atollkit/atoll/internal/harness"
)

// NewScenariosCommand creates the scenarios command, which lists and
// validates every scenario file in a directory.
func NewScenariosCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenarios <dir>",
		Short: "List and validate scenario files in a directory",
		Long: `Walk a directory for .yaml scenario files, validate each against the
component registry, and report per-file status.

Example:
  atoll scenarios internal/harness/testdata/scenarios
  atoll scenarios ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

type scenarioStatus struct {
	File        string `json:"file"`
	Name        string `json:"name,omitempty"`
	Islands     int    `json:"islands"`
	Divergences int    `json:"divergences"`
	Error       string `json:"error,omitempty"`
}

func runScenarios(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "read scenario directory", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	statuses := make([]scenarioStatus, 0, len(files))
	invalid := 0
	for _, f := range files {
		st := scenarioStatus{File: f}
		s, err := harness.Load(filepath.Join(dir, f))
		if err != nil {
			st.Error = err.Error()
			invalid++
		} else {
			st.Name = s.Name
			st.Divergences = len(s.Divergences)
			for _, item := range s.Page {
				if item.Island != "" {
					st.Islands++
				}
			}
		}
		statuses = append(statuses, st)
		formatter.Verbosef("checked %s", f)
	}

	data := map[string]any{
		"dir":       dir,
		"scenarios": statuses,
		"invalid":   invalid,
	}
	outErr := formatter.Success(data, func(w io.Writer) error {
		for _, st := range statuses {
			if st.Error != "" {
				fmt.Fprintf(w, "%-32s INVALID  %s\n", st.File, firstLine(st.Error))
				continue
			}
			fmt.Fprintf(w, "%-32s ok       %s (%d islands, %d divergences)\n",
				st.File, st.Name, st.Islands, st.Divergences)
		}
		fmt.Fprintf(w, "%d scenarios, %d invalid\n", len(statuses), invalid)
		return nil
	})
	if outErr != nil {
		return outErr
	}
	if invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d invalid scenario files", invalid))
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
