package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/fim/pkg/fim/baseline"
	"github.com/jamesainslie/fim/pkg/fim/journal"
	"github.com/jamesainslie/fim/pkg/fim/mutate"
)

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <path> [path...]",
		Aliases: []string{"rm"},
		Short:   "Stop tracking files",
		Long: `Remove exact paths from the baseline. Directories are not expanded:
only a tracked entry whose path equals the argument is removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return a.runRemove(cmd, args)
		},
	}
}

func (a *app) runRemove(cmd *cobra.Command, args []string) error {
	var res *mutate.Result
	err := a.locked(func(s *baseline.Store, b *baseline.Baseline) error {
		r, err := mutate.Remove(a.env(), b, args)
		if err != nil {
			return err
		}
		res = r
		return save(s, b)
	})
	if errors.Is(err, baseline.ErrUninitialized) {
		a.printResult(cmd, "[!] %v", err)
		return nil
	}
	if err != nil {
		return err
	}

	for _, p := range res.Removed {
		a.printInfo(cmd, "  [-] %s", p)
	}
	a.printResult(cmd, "\n[ok] removed %d files", len(res.Removed))

	a.record(journal.OpRemove, changedPaths(res), mutationSummary(res))
	return nil
}
