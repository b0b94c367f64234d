package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/fim/pkg/fim/journal"
	"github.com/jamesainslie/fim/pkg/fim/output"
)

// errJournalDisabled is returned when a history command runs with the
// journal turned off.
var errJournalDisabled = errors.New("journal is disabled")

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past operations",
		Long: `List recorded operations, newest first. Every init, add, remove,
update and check is recorded unless the journal is disabled.`,
		Args: ignoreArgs,
		RunE: a.runHistory,
	}
	cmd.Flags().IntP("limit", "l", 20, "maximum entries to show (0 = all)")
	cmd.Flags().StringP("format", "o", "", "output format: "+formatList())

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one operation in detail",
		Long:  "Show one recorded operation. A unique prefix of the id is enough.",
		Args:  ignoreArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return a.runHistoryShow(cmd, args)
		},
	}
	show.Flags().StringP("format", "o", "", "output format: "+formatList())

	clean := &cobra.Command{
		Use:   "clean",
		Short: "Delete old history",
		Long: `Delete entries older than journal.retention_days. With --all, delete
every entry.`,
		Args: ignoreArgs,
		RunE: a.runHistoryClean,
	}
	clean.Flags().Bool("all", false, "delete all entries")

	cmd.AddCommand(show, clean)
	return cmd
}

// withJournal opens the journal for the duration of fn.
func (a *app) withJournal(fn func(j *journal.Journal) error) error {
	if !a.cfg.Journal.Enabled {
		return errJournalDisabled
	}
	j, err := journal.Open(a.cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer func() { _ = j.Close() }()
	return fn(j)
}

func (a *app) runHistory(cmd *cobra.Command, _ []string) error {
	formatter, err := a.formatter(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	err = a.withJournal(func(j *journal.Journal) error {
		entries, err := j.List(limit)
		if err != nil {
			return fmt.Errorf("reading history: %w", err)
		}
		return a.render(cmd, formatter, &output.Result{Source: a.cfg.Baseline, History: entries})
	})
	if errors.Is(err, errJournalDisabled) {
		a.printResult(cmd, "[!] %v", err)
		return nil
	}
	return err
}

func (a *app) runHistoryShow(cmd *cobra.Command, args []string) error {
	formatter, err := a.formatter(cmd)
	if err != nil {
		return err
	}

	err = a.withJournal(func(j *journal.Journal) error {
		entry, err := j.Get(args[0])
		if err != nil {
			return err
		}
		return a.render(cmd, formatter, &output.Result{Source: entry.Baseline, Entry: entry})
	})
	if errors.Is(err, errJournalDisabled) {
		a.printResult(cmd, "[!] %v", err)
		return nil
	}
	return err
}

func (a *app) runHistoryClean(cmd *cobra.Command, _ []string) error {
	all, _ := cmd.Flags().GetBool("all")

	err := a.withJournal(func(j *journal.Journal) error {
		if all {
			if err := j.Clear(); err != nil {
				return fmt.Errorf("clearing history: %w", err)
			}
			a.printResult(cmd, "[ok] history cleared")
			return nil
		}

		removed, err := j.Prune(a.cfg.Journal.RetentionDays)
		if err != nil {
			return fmt.Errorf("pruning history: %w", err)
		}
		a.printResult(cmd, "[ok] removed %d entries older than %d days", removed, a.cfg.Journal.RetentionDays)
		return nil
	})
	if errors.Is(err, errJournalDisabled) {
		a.printResult(cmd, "[!] %v", err)
		return nil
	}
	return err
}
