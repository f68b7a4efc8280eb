// Package ruleset feeds parsed stylesheets into rule feature sets.
package ruleset

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cssinval/css"
	"cssinval/features"
)

// Stats counts what has been ingested.
type Stats struct {
	Stylesheets   int
	Rules         int
	Selectors     int
	NeverMatching int
	Warnings      int
}

func (s *Stats) add(o Stats) {
	s.Stylesheets += o.Stylesheets
	s.Rules += o.Rules
	s.Selectors += o.Selectors
	s.NeverMatching += o.NeverMatching
	s.Warnings += o.Warnings
}

// Shard is the feature set of a single stylesheet.
type Shard struct {
	Source   string
	Features *features.RuleFeatureSet
	Stats    Stats
}

// RuleSet owns the invalidation index built from stylesheets. It is not safe
// for concurrent use while stylesheets are being added.
type RuleSet struct {
	log *zap.Logger

	shardPerStylesheet bool
	warnNeverMatching  bool
	followImports      bool

	features *features.RuleFeatureSet
	shards   []Shard
	composed *features.RuleFeatureSet
	stats    Stats
}

// Option configures RuleSet.
type Option func(*RuleSet)

// WithShardPerStylesheet keeps separate feature set for every stylesheet,
// combined set is produced on demand by Compose.
func WithShardPerStylesheet(on bool) Option {
	return func(rs *RuleSet) { rs.shardPerStylesheet = on }
}

// WithNeverMatchingWarnings logs selectors which can never match at warning
// level instead of debug.
func WithNeverMatchingWarnings(on bool) Option {
	return func(rs *RuleSet) { rs.warnNeverMatching = on }
}

// WithImports makes file loading follow local @import references.
func WithImports(on bool) Option {
	return func(rs *RuleSet) { rs.followImports = on }
}

// New creates empty rule set.
func New(log *zap.Logger, opts ...Option) *RuleSet {
	if log == nil {
		log = zap.NewNop()
	}
	rs := &RuleSet{log: log.Named("ruleset")}
	for _, opt := range opts {
		opt(rs)
	}
	rs.features = features.New(features.WithLogger(rs.log))
	return rs
}

// AddStylesheet ingests every rule of the stylesheet.
func (rs *RuleSet) AddStylesheet(sheet *css.Stylesheet) {
	target := rs.features
	if rs.shardPerStylesheet {
		target = features.New(features.WithLogger(rs.log))
	}

	stats := Stats{Stylesheets: 1, Warnings: len(sheet.Warnings)}
	for _, w := range sheet.Warnings {
		rs.log.Warn("Stylesheet construct skipped", zap.String("source", sheet.Source), zap.String("reason", w))
	}

	for i := range sheet.Rules {
		rs.addRule(target, sheet.Source, &sheet.Rules[i], &stats)
	}

	rs.log.Debug("Stylesheet added",
		zap.String("source", sheet.Source),
		zap.Int("rules", stats.Rules),
		zap.Int("selectors", stats.Selectors),
		zap.Int("never-matching", stats.NeverMatching))

	rs.stats.add(stats)
	if rs.shardPerStylesheet {
		rs.shards = append(rs.shards, Shard{Source: sheet.Source, Features: target, Stats: stats})
		rs.composed = nil
	}
}

func (rs *RuleSet) addRule(target *features.RuleFeatureSet, source string, rule *css.Rule, stats *Stats) {
	stats.Rules++
	for _, mq := range rule.Media {
		target.AddMediaQueryResultFlags(MediaFlags(mq))
	}

	for complex := range rule.Selectors.Complexes() {
		stats.Selectors++
		if target.CollectFeaturesFromSelector(complex, rule.Scope) == features.SelectorMayMatch {
			continue
		}
		stats.NeverMatching++
		if ce := rs.log.Check(rs.neverMatchingLevel(), "Selector never matches"); ce != nil {
			ce.Write(zap.String("source", source), zap.Stringer("selector", complex))
		}
	}
}

func (rs *RuleSet) neverMatchingLevel() zapcore.Level {
	if rs.warnNeverMatching {
		return zapcore.WarnLevel
	}
	return zapcore.DebugLevel
}

// Features returns the combined feature set. With sharding enabled it is
// composed from shards and cached until next stylesheet is added.
func (rs *RuleSet) Features() *features.RuleFeatureSet {
	if !rs.shardPerStylesheet {
		return rs.features
	}
	if rs.composed == nil {
		rs.composed = rs.Compose()
	}
	return rs.composed
}

// Compose merges all shards into a new feature set. Shards stay untouched,
// invalidation sets are shared until written to.
func (rs *RuleSet) Compose() *features.RuleFeatureSet {
	out := features.New(features.WithLogger(rs.log))
	out.Merge(rs.features)
	for _, sh := range rs.shards {
		out.Merge(sh.Features)
	}
	return out
}

// Shards returns per stylesheet feature sets, empty unless sharding is on.
func (rs *RuleSet) Shards() []Shard {
	return rs.shards
}

// Stats returns totals over all added stylesheets.
func (rs *RuleSet) Stats() Stats {
	return rs.stats
}
