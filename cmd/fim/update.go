package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/fim/pkg/fim/baseline"
	"github.com/jamesainslie/fim/pkg/fim/journal"
	"github.com/jamesainslie/fim/pkg/fim/mutate"
)

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Accept current file contents into the baseline",
		Long: `Re-hash every tracked file and record the new digest for files that
changed. Deleted and unreadable files keep their old record.`,
		Args: ignoreArgs,
		RunE: a.runUpdate,
	}
}

func (a *app) runUpdate(cmd *cobra.Command, _ []string) error {
	var res *mutate.Result
	err := a.locked(func(s *baseline.Store, b *baseline.Baseline) error {
		if !b.Empty() {
			a.printInfo(cmd, "[*] updating %d hashes...", len(b.Files))
		}
		r, err := mutate.Update(a.env(), b)
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

	for _, p := range res.Updated {
		a.printInfo(cmd, "  [~] %s", p)
	}
	a.printResult(cmd, "\n[ok] updated %d hashes", len(res.Updated))

	a.record(journal.OpUpdate, changedPaths(res), mutationSummary(res))
	return nil
}
