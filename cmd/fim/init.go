package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/fim/pkg/fim/baseline"
	"github.com/jamesainslie/fim/pkg/fim/journal"
	"github.com/jamesainslie/fim/pkg/fim/mutate"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init <path> [path...]",
		Short: "Create a baseline from files and folders",
		Long: `Hash every regular file under the given paths and write a new
baseline, replacing any existing one. Unreadable files are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return a.runInit(cmd, args)
		},
	}
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	var res *mutate.Result
	err := a.withLock(func(s *baseline.Store) error {
		env := a.env()
		paths := env.Enumerate(args...)
		if len(paths) > 0 {
			a.printInfo(cmd, "[*] hashing %d files...", len(paths))
		}
		env.Enumerate = func(...string) []string { return paths }

		b, r, err := mutate.Init(env, args)
		if err != nil {
			return err
		}
		res = r
		return save(s, b)
	})
	if errors.Is(err, mutate.ErrEmptyInput) {
		a.printResult(cmd, "[!] %v", err)
		return nil
	}
	if err != nil {
		return err
	}

	for _, p := range res.Added {
		a.printInfo(cmd, "  [+] %s", p)
	}
	a.printResult(cmd, "\n[ok] baseline created: %d files", res.Tracked)
	if len(res.Skipped) > 0 {
		a.printInfo(cmd, "[!] skipped %d unreadable files", len(res.Skipped))
	}

	a.record(journal.OpInit, changedPaths(res), mutationSummary(res))
	return nil
}
