package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/fim/pkg/fim/baseline"
	"github.com/jamesainslie/fim/pkg/fim/journal"
	"github.com/jamesainslie/fim/pkg/fim/output"
	"github.com/jamesainslie/fim/pkg/fim/reconcile"
)

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compare files against the baseline",
		Long: `Re-hash every tracked file and report which ones were modified or
deleted. The baseline is not changed.

Exit status is 0 unless --fail-on-change is set and something changed.`,
		Args: ignoreArgs,
		RunE: a.runCheck,
	}
	cmd.Flags().StringP("format", "o", "", "report format: "+formatList())
	cmd.Flags().Bool("fail-on-change", false, "exit 1 when any file is modified or deleted")
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, _ []string) error {
	formatter, err := a.formatter(cmd)
	if err != nil {
		return err
	}

	var report *reconcile.Report
	err = a.locked(func(_ *baseline.Store, b *baseline.Baseline) error {
		r, err := reconcile.Check(b, reconcile.Options{})
		report = r
		return err
	})
	if errors.Is(err, baseline.ErrUninitialized) {
		a.printResult(cmd, "[!] %v", err)
		return nil
	}
	if err != nil {
		return err
	}

	if err := a.render(cmd, formatter, &output.Result{Source: a.cfg.Baseline, Report: report}); err != nil {
		return err
	}

	a.record(journal.OpCheck, reportPaths(report), journal.Summary{
		Files:    report.Checked,
		OK:       report.OK,
		Modified: len(report.Modified),
		Deleted:  len(report.Deleted),
	})

	if failOnChange, _ := cmd.Flags().GetBool("fail-on-change"); failOnChange && !report.Clean() {
		return errChangesDetected
	}
	return nil
}

// reportPaths lists modified then deleted paths.
func reportPaths(r *reconcile.Report) []string {
	paths := make([]string, 0, len(r.Modified)+len(r.Deleted))
	for _, e := range r.Modified {
		paths = append(paths, e.Path)
	}
	for _, e := range r.Deleted {
		paths = append(paths, e.Path)
	}
	return paths
}
