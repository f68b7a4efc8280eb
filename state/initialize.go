package state

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"cssinval/config"
	"cssinval/css"
	"cssinval/ruleset"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
	}
}

// ruleSetOptions translates index configuration into rule set options.
func ruleSetOptions(cfg *config.IndexConfig) []ruleset.Option {
	if cfg == nil {
		return nil
	}
	return []ruleset.Option{
		ruleset.WithShardPerStylesheet(cfg.ShardPerStylesheet),
		ruleset.WithImports(cfg.FollowImports),
		ruleset.WithNeverMatchingWarnings(cfg.WarnNeverMatching),
	}
}

// BuildIndex loads stylesheets into a fresh rule set and keeps it in Index.
// Stylesheets which could not be loaded are reported in returned error, the
// rest of them is indexed anyway.
func (e *LocalEnv) BuildIndex(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return errors.New("no stylesheets to index")
	}
	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}

	var opts []ruleset.Option
	if e.Cfg != nil {
		opts = ruleSetOptions(&e.Cfg.Index)
	}

	for i, p := range paths {
		if err := e.Rpt.StoreCopy(fmt.Sprintf("input/%02d-%s", i, filepath.Base(p)), p); err != nil {
			log.Debug("Unable to store stylesheet in report", zap.String("path", p), zap.Error(err))
		}
	}

	start := time.Now()
	e.Index = ruleset.New(log, opts...)
	err := e.Index.LoadFiles(ctx, css.NewParser(log), paths...)

	stats := e.Index.Stats()
	log.Info("Index built",
		zap.Int("stylesheets", stats.Stylesheets),
		zap.Int("rules", stats.Rules),
		zap.Int("selectors", stats.Selectors),
		zap.Int("never_matching", stats.NeverMatching),
		zap.Int("warnings", stats.Warnings),
		zap.Duration("elapsed", time.Since(start)),
	)
	return err
}
