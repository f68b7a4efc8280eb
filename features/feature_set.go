// Package features builds rule feature sets: per stylesheet index of
// invalidation sets keyed by class, id, attribute and pseudo-class, used to
// decide which elements need style recalculation after DOM mutations.
package features

import (
	"maps"

	"go.uber.org/zap"

	"cssinval/invalidation"
	"cssinval/selector"
)

// SelectorPreMatch tells whether selector may match anything at all.
type SelectorPreMatch bool

const (
	SelectorNeverMatches SelectorPreMatch = false
	SelectorMayMatch     SelectorPreMatch = true
)

func (p SelectorPreMatch) String() string {
	if p {
		return "may-match"
	}
	return "never-matches"
}

// Metadata is stylesheet wide information gathered from selectors.
type Metadata struct {
	UsesFirstLineRules                    bool
	UsesWindowInactiveSelector            bool
	NeedsFullRecalcForRuleSetInvalidation bool
	MaxDirectAdjacentSelectors            uint32
	InvalidatesParts                      bool
}

// Merge unions other into m.
func (m *Metadata) Merge(other Metadata) {
	m.UsesFirstLineRules = m.UsesFirstLineRules || other.UsesFirstLineRules
	m.UsesWindowInactiveSelector = m.UsesWindowInactiveSelector || other.UsesWindowInactiveSelector
	m.NeedsFullRecalcForRuleSetInvalidation = m.NeedsFullRecalcForRuleSetInvalidation || other.NeedsFullRecalcForRuleSetInvalidation
	m.MaxDirectAdjacentSelectors = max(m.MaxDirectAdjacentSelectors, other.MaxDirectAdjacentSelectors)
	m.InvalidatesParts = m.InvalidatesParts || other.InvalidatesParts
}

// UnitFlags record relative units media queries depend on.
type UnitFlags uint8

const (
	UnitFontRelative UnitFlags = 1 << iota
	UnitRootFontRelative
	UnitStaticViewport
	UnitDynamicViewport
	UnitContainer
)

// MediaQueryResultFlags describe what media query results of the stylesheet
// depend on.
type MediaQueryResultFlags struct {
	ViewportDependent bool
	DeviceDependent   bool
	Units             UnitFlags
}

// Add unions other into f.
func (f *MediaQueryResultFlags) Add(other MediaQueryResultFlags) {
	f.ViewportDependent = f.ViewportDependent || other.ViewportDependent
	f.DeviceDependent = f.DeviceDependent || other.DeviceDependent
	f.Units |= other.Units
}

type stringSet map[string]struct{}

func (s *stringSet) add(v string) {
	if *s == nil {
		*s = make(stringSet)
	}
	(*s)[v] = struct{}{}
}

func (s stringSet) has(v string) bool {
	_, ok := s[v]
	return ok
}

// RuleFeatureSet is the invalidation index of one stylesheet (or of several
// merged ones). It is built by a single goroutine and may be read
// concurrently once complete.
type RuleFeatureSet struct {
	log *zap.Logger

	metadata   Metadata
	mediaFlags MediaQueryResultFlags

	classSets  map[string]*invalidation.Set
	idSets     map[string]*invalidation.Set
	attrSets   map[string]*invalidation.Set
	pseudoSets map[selector.PseudoType]*invalidation.Set

	universalSiblingSet *invalidation.Set
	nthSet              *invalidation.Set
	typeRuleSet         *invalidation.Set

	classesInHas    stringSet
	attributesInHas stringSet
	idsInHas        stringSet
	tagNamesInHas   stringSet
	pseudosInHas    map[selector.PseudoType]struct{}
	universalInHas  bool
	notInHas        bool
}

// Option configures RuleFeatureSet.
type Option func(*RuleFeatureSet)

// WithLogger sets logger used for debug events.
func WithLogger(log *zap.Logger) Option {
	return func(r *RuleFeatureSet) {
		if log != nil {
			r.log = log.Named("features")
		}
	}
}

// New creates empty feature set.
func New(opts ...Option) *RuleFeatureSet {
	r := &RuleFeatureSet{log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	r.init()
	return r
}

func (r *RuleFeatureSet) init() {
	r.classSets = make(map[string]*invalidation.Set)
	r.idSets = make(map[string]*invalidation.Set)
	r.attrSets = make(map[string]*invalidation.Set)
	r.pseudoSets = make(map[selector.PseudoType]*invalidation.Set)
}

// Clear returns feature set to its initial empty state.
func (r *RuleFeatureSet) Clear() {
	log := r.log
	*r = RuleFeatureSet{log: log}
	r.init()
}

// Metadata returns stylesheet wide metadata.
func (r *RuleFeatureSet) Metadata() Metadata { return r.metadata }

// MediaQueryResultFlags returns accumulated media query dependencies.
func (r *RuleFeatureSet) MediaQueryResultFlags() MediaQueryResultFlags { return r.mediaFlags }

// AddMediaQueryResultFlags records media query dependencies of ingested
// rules.
func (r *RuleFeatureSet) AddMediaQueryResultFlags(f MediaQueryResultFlags) {
	r.mediaFlags.Add(f)
}

// UsesFirstLineRules reports ::first-line presence.
func (r *RuleFeatureSet) UsesFirstLineRules() bool { return r.metadata.UsesFirstLineRules }

// UsesWindowInactiveSelector reports :window-inactive presence.
func (r *RuleFeatureSet) UsesWindowInactiveSelector() bool {
	return r.metadata.UsesWindowInactiveSelector
}

// NeedsFullRecalcForRuleSetInvalidation reports that some rule could not be
// represented in the type rule set.
func (r *RuleFeatureSet) NeedsFullRecalcForRuleSetInvalidation() bool {
	return r.metadata.NeedsFullRecalcForRuleSetInvalidation
}

// MaxDirectAdjacentSelectors returns the longest "+" run in the stylesheet.
func (r *RuleFeatureSet) MaxDirectAdjacentSelectors() uint32 {
	return r.metadata.MaxDirectAdjacentSelectors
}

// InvalidatesParts reports ::part() presence.
func (r *RuleFeatureSet) InvalidatesParts() bool { return r.metadata.InvalidatesParts }

// Equal compares two feature sets structurally.
func (r *RuleFeatureSet) Equal(o *RuleFeatureSet) bool {
	setsEqual := func(a, b *invalidation.Set) bool { return a.Equal(b) }
	return r.metadata == o.metadata &&
		r.mediaFlags == o.mediaFlags &&
		maps.EqualFunc(r.classSets, o.classSets, setsEqual) &&
		maps.EqualFunc(r.idSets, o.idSets, setsEqual) &&
		maps.EqualFunc(r.attrSets, o.attrSets, setsEqual) &&
		maps.EqualFunc(r.pseudoSets, o.pseudoSets, setsEqual) &&
		r.universalSiblingSet.Equal(o.universalSiblingSet) &&
		r.nthSet.Equal(o.nthSet) &&
		r.typeRuleSet.Equal(o.typeRuleSet) &&
		maps.Equal(r.classesInHas, o.classesInHas) &&
		maps.Equal(r.attributesInHas, o.attributesInHas) &&
		maps.Equal(r.idsInHas, o.idsInHas) &&
		maps.Equal(r.tagNamesInHas, o.tagNamesInHas) &&
		maps.Equal(r.pseudosInHas, o.pseudosInHas) &&
		r.universalInHas == o.universalInHas &&
		r.notInHas == o.notInHas
}

// CollectFeaturesFromSelector ingests one complex selector. Scope is the
// enclosing @scope, nil when there is none.
func (r *RuleFeatureSet) CollectFeaturesFromSelector(complex selector.Ref, scope *selector.StyleScope) SelectorPreMatch {
	var md Metadata
	if r.collectMetadataFromSelector(complex, 0, &md) == SelectorNeverMatches {
		r.log.Debug("Selector never matches, skipping", zap.Stringer("selector", complex))
		return SelectorNeverMatches
	}
	r.metadata.Merge(md)

	r.collectValuesInHasArgument(complex)
	r.updateInvalidationSets(complex, scope)
	return SelectorMayMatch
}

// CollectFeaturesFromList ingests every complex selector of the list and
// returns number of selectors which never match.
func (r *RuleFeatureSet) CollectFeaturesFromList(list *selector.List, scope *selector.StyleScope) int {
	skipped := 0
	for c := range list.Complexes() {
		if r.CollectFeaturesFromSelector(c, scope) == SelectorNeverMatches {
			skipped++
		}
	}
	return skipped
}

func (r *RuleFeatureSet) updateInvalidationSets(complex selector.Ref, scope *selector.StyleScope) {
	var features Features
	if r.updateInvalidationSetsForComplex(complex, scope, &features, positionSubject, selector.PseudoUnknown) == requiresSubtreeInvalidation {
		features.WholeSubtree = true
	}
	r.updateRuleSetInvalidation(&features)
}

// updateRuleSetInvalidation records rule in the type rule set when its
// features are not specific enough for keyed sets.
func (r *RuleFeatureSet) updateRuleSetInvalidation(features *Features) {
	if features.HasFeaturesForRuleSetInvalidation {
		return
	}
	if features.WholeSubtree || (!features.InvalidateCustomPseudo && len(features.TagNames) == 0) {
		if !r.metadata.NeedsFullRecalcForRuleSetInvalidation {
			r.log.Debug("Rule requires full recalc for rule set invalidation")
		}
		r.metadata.NeedsFullRecalcForRuleSetInvalidation = true
		return
	}

	set := r.ensureTypeRuleSet()
	if features.InvalidateCustomPseudo {
		set.SetCustomPseudoInvalid()
		set.SetTreeBoundaryCrossing()
	}
	for _, tag := range features.TagNames {
		set.AddTagName(tag)
	}
}
