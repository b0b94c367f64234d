package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/fim/pkg/fim/baseline"
	"github.com/jamesainslie/fim/pkg/fim/journal"
	"github.com/jamesainslie/fim/pkg/fim/mutate"
)

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <path> [path...]",
		Short: "Add files to the baseline",
		Long: `Hash and start tracking files that are not in the baseline yet.
Files already tracked keep their recorded digest; use 'fim update' to refresh them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return a.runAdd(cmd, args)
		},
	}
}

func (a *app) runAdd(cmd *cobra.Command, args []string) error {
	var res *mutate.Result
	err := a.locked(func(s *baseline.Store, b *baseline.Baseline) error {
		r, err := mutate.Add(a.env(), b, args)
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

	for _, p := range res.Added {
		a.printInfo(cmd, "  [+] %s", p)
	}
	a.printResult(cmd, "\n[ok] added %d files", len(res.Added))

	a.record(journal.OpAdd, changedPaths(res), mutationSummary(res))
	return nil
}
