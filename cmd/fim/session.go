package main

import (
	"fmt"

	"github.com/jamesainslie/fim/pkg/fim/baseline"
	"github.com/jamesainslie/fim/pkg/fim/enumerate"
	"github.com/jamesainslie/fim/pkg/fim/journal"
	"github.com/jamesainslie/fim/pkg/fim/mutate"
)

// store returns the configured baseline store.
func (a *app) store() *baseline.Store {
	return baseline.NewStore(a.cfg.Baseline)
}

// env builds the mutator environment from configuration.
func (a *app) env() mutate.Env {
	e := enumerate.New(enumerate.Options{
		Exclude: a.cfg.Exclude,
		Workers: a.cfg.Workers,
	})
	return mutate.Env{Enumerate: e.All}
}

// withLock runs fn while holding the store lock. The lock is released when
// fn returns, whatever the outcome.
func (a *app) withLock(fn func(s *baseline.Store) error) error {
	s := a.store()

	unlock, err := s.Lock()
	if err != nil {
		return fmt.Errorf("locking baseline: %w", err)
	}
	defer func() {
		if uerr := unlock(); uerr != nil {
			logger.Warn("failed to release baseline lock", "path", s.LockPath(), "err", uerr)
		}
	}()

	return fn(s)
}

// locked is withLock plus loading the current baseline.
func (a *app) locked(fn func(s *baseline.Store, b *baseline.Baseline) error) error {
	return a.withLock(func(s *baseline.Store) error {
		b, err := s.Load()
		if err != nil {
			return fmt.Errorf("loading baseline: %w", err)
		}
		return fn(s, b)
	})
}

// save persists b, wrapping failures for the user.
func save(s *baseline.Store, b *baseline.Baseline) error {
	if err := s.Save(b); err != nil {
		return fmt.Errorf("saving baseline: %w", err)
	}
	return nil
}

// record appends an entry to the journal. Failures are logged and never
// affect the command's outcome.
func (a *app) record(op journal.Operation, paths []string, summary journal.Summary) {
	if !a.cfg.Journal.Enabled {
		return
	}

	j, err := journal.Open(a.cfg.Journal.Path)
	if err != nil {
		logger.Warn("journal unavailable", "path", a.cfg.Journal.Path, "err", err)
		return
	}
	defer func() {
		if err := j.Close(); err != nil {
			logger.Warn("failed to close journal", "err", err)
		}
	}()

	if _, err := j.Record(op, a.cfg.Baseline, paths, summary); err != nil {
		logger.Warn("failed to record operation", "op", op, "err", err)
		return
	}

	if _, err := j.Prune(a.cfg.Journal.RetentionDays); err != nil {
		logger.Warn("failed to prune journal", "err", err)
	}
}

// mutationSummary converts a mutation result into journal counts.
func mutationSummary(res *mutate.Result) journal.Summary {
	return journal.Summary{
		Files:   res.Tracked,
		Added:   len(res.Added),
		Removed: len(res.Removed),
		Updated: len(res.Updated),
		Skipped: len(res.Skipped),
	}
}

// changedPaths lists the paths a mutation touched, for the journal.
func changedPaths(res *mutate.Result) []string {
	paths := make([]string, 0, len(res.Added)+len(res.Removed)+len(res.Updated))
	paths = append(paths, res.Added...)
	paths = append(paths, res.Removed...)
	return append(paths, res.Updated...)
}
