package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/fim/pkg/fim/output"
)

func newStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show baseline information",
		Long: `Show when the baseline was created and last updated, how many files
it tracks, their total size, and the first few tracked paths.`,
		Args: ignoreArgs,
		RunE: a.runStatus,
	}
	cmd.Flags().StringP("format", "o", "", "output format: "+formatList())
	return cmd
}

func (a *app) runStatus(cmd *cobra.Command, _ []string) error {
	formatter, err := a.formatter(cmd)
	if err != nil {
		return err
	}

	// Reads only; the atomic save means no lock is needed to see a whole file.
	b, err := a.store().Load()
	if err != nil {
		return fmt.Errorf("loading baseline: %w", err)
	}

	return a.render(cmd, formatter, &output.Result{Source: a.cfg.Baseline, Status: output.NewStatus(b)})
}
