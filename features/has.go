package features

import "cssinval/selector"

// hasMethod selects how logical combinations inside :has() are mapped onto
// plain invalidation sets.
type hasMethod uint8

const (
	// ".a:has(:is(.b ~ .c .d))" is indexed as ".b ~ .c .a"
	forAllNonRightmostCompounds hasMethod = iota
	// ".a:has(:is(.b ~ .c .d))" is indexed as ".b ~ .a"
	forCompoundImmediatelyFollowsAdjacentRelation
)

// addFeaturesToInvalidationSetsForHasPseudoClass indexes compounds of
// complex selectors nested in logical combinations inside :has(). Changes of
// those compounds are not reported by :has() invalidation itself.
func (r *RuleFeatureSet) addFeaturesToInvalidationSetsForHasPseudoClass(has *selector.Selector, compound selector.Ref, sib *Features, desc *Features) {
	if !has.ContainsComplexLogicalCombinationsInsideHasPseudoClass() {
		return
	}

	wholeSubtree := desc.WholeSubtree
	defer func() { desc.WholeSubtree = wholeSubtree }()
	if !desc.HasFeatures() {
		desc.WholeSubtree = true
	}

	// subject position, the subject itself acts as sibling features
	if sib == nil && desc.DescendantFeaturesDepth == 0 {
		sib = desc
	}

	for rel := range has.SelectorList().Complexes() {
		for cur := range rel.Simples() {
			sel := cur.Selector()
			if sel.Pseudo() == selector.PseudoRelativeAnchor {
				break
			}
			if !sel.Pseudo().IsLogicalCombination() {
				continue
			}
			r.addFeaturesForLogicalCombinationInHas(sel, compound, sib, desc, forAllNonRightmostCompounds)
			r.addFeaturesForLogicalCombinationInHas(sel, compound, sib, desc, forCompoundImmediatelyFollowsAdjacentRelation)
		}
	}
}

func (r *RuleFeatureSet) addFeaturesForLogicalCombinationInHas(logical *selector.Selector, hasCompound selector.Ref, sib *Features, desc *Features, method hasMethod) {
	list := logical.SelectorList()
	if list == nil {
		return
	}
	for complex := range list.Complexes() {
		var sibMax uint32
		if sib != nil {
			sibMax = sib.MaxDirectAdjacentSelectors
		}
		saved := desc.saveScope()

		switch method {
		case forAllNonRightmostCompounds:
			r.addAllNonRightmostCompoundsInHas(complex, hasCompound, sib, desc)
		case forCompoundImmediatelyFollowsAdjacentRelation:
			r.addCompoundsFollowingAdjacentInHas(complex, hasCompound, sib, desc)
		}

		desc.restoreScope(saved)
		if sib != nil {
			sib.MaxDirectAdjacentSelectors = sibMax
		}
	}
}

// addAllNonRightmostCompoundsInHas skips the rightmost compound (it matches
// the same element as the :has() argument) and indexes the rest as
// ancestors or siblings of the compound holding :has().
func (r *RuleFeatureSet) addAllNonRightmostCompoundsInHas(complex, hasCompound selector.Ref, sib *Features, desc *Features) {
	var chain Features
	first := true
	for compound := complex; compound.Valid(); {
		var last selector.Ref
		if first {
			last = r.skipAddingInHas(compound, hasCompound, sib, desc, forAllNonRightmostCompounds)
			first = false
		} else {
			last = r.addFeaturesInHas(compound, hasCompound, sib, desc, forAllNonRightmostCompounds)
		}
		next := last.TagHistory()
		if !next.Valid() {
			return
		}
		r.updateFeaturesFromCombinatorInHas(last.Selector().Relation(), hasCompound, &chain, &sib, desc)
		compound = next
	}
}

// addCompoundsFollowingAdjacentInHas indexes every compound placed right
// before a sibling combinator, and everything left of it, as siblings of
// the compound holding :has().
func (r *RuleFeatureSet) addCompoundsFollowingAdjacentInHas(complex, hasCompound selector.Ref, sib *Features, desc *Features) {
	prev := selector.RelationSubSelector
	for compound := complex; compound.Valid(); {
		last := compound.LastInCompound()
		if prev.IsAdjacent() {
			r.addAdjacentRunInHas(compound, hasCompound, desc)
		} else {
			r.skipAddingInHas(compound, hasCompound, sib, desc, forCompoundImmediatelyFollowsAdjacentRelation)
		}
		prev = last.Selector().Relation()
		compound = last.TagHistory()
	}
}

func (r *RuleFeatureSet) addAdjacentRunInHas(start, hasCompound selector.Ref, desc *Features) {
	saved := desc.saveScope()
	defer desc.restoreScope(saved)

	var (
		chain Features
		sib   *Features
	)
	r.updateFeaturesFromCombinator(selector.RelationIndirectAdjacent, hasCompound, &chain, &sib, desc, true)
	for compound := start; compound.Valid(); {
		last := r.addFeaturesInHas(compound, hasCompound, sib, desc, forCompoundImmediatelyFollowsAdjacentRelation)
		next := last.TagHistory()
		if !next.Valid() {
			return
		}
		r.updateFeaturesFromCombinatorInHas(last.Selector().Relation(), hasCompound, &chain, &sib, desc)
		compound = next
	}
}

// skipAddingInHas only descends into logical combinations of compound.
func (r *RuleFeatureSet) skipAddingInHas(compound, hasCompound selector.Ref, sib *Features, desc *Features, method hasMethod) selector.Ref {
	var last selector.Ref
	for cur := range compound.Compound() {
		last = cur
		if sel := cur.Selector(); sel.Pseudo().IsLogicalCombination() {
			r.addFeaturesForLogicalCombinationInHas(sel, hasCompound, sib, desc, method)
		}
	}
	return last
}

func (r *RuleFeatureSet) addFeaturesInHas(compound, hasCompound selector.Ref, sib *Features, desc *Features, method hasMethod) selector.Ref {
	var (
		last             selector.Ref
		compoundFeatures bool
	)
	for cur := range compound.Compound() {
		last = cur
		saved := desc.HasFeaturesForRuleSetInvalidation
		desc.HasFeaturesForRuleSetInvalidation = false

		if sel := cur.Selector(); sel.Pseudo().IsLogicalCombination() {
			r.addFeaturesForLogicalCombinationInHas(sel, hasCompound, sib, desc, method)
		} else {
			r.addFeaturesToInvalidationSetsForSimple(sel, compound, sib, desc)
		}

		if desc.HasFeaturesForRuleSetInvalidation {
			compoundFeatures = true
		}
		desc.HasFeaturesForRuleSetInvalidation = saved
	}

	if compoundFeatures {
		desc.HasFeaturesForRuleSetInvalidation = true
	} else if sib != nil {
		r.addFeaturesToUniversalSiblingInvalidationSet(sib, desc)
	}
	return last
}

// updateFeaturesFromCombinatorInHas always uses indirect combinators,
// distances inside logical combinations are not tracked.
func (r *RuleFeatureSet) updateFeaturesFromCombinatorInHas(rel selector.Relation, hasCompound selector.Ref, chain *Features, sib **Features, desc *Features) {
	switch rel {
	case selector.RelationDirectAdjacent, selector.RelationIndirectAdjacent:
		rel = selector.RelationIndirectAdjacent
	default:
		rel = selector.RelationDescendant
	}
	r.updateFeaturesFromCombinator(rel, hasCompound, chain, sib, desc, true)
}

// collectValuesInHasArgument records features inside every :has() of
// complex, nested lists included, used to filter :has() invalidation.
func (r *RuleFeatureSet) collectValuesInHasArgument(complex selector.Ref) {
	for cur := range complex.Simples() {
		sel := cur.Selector()
		if sel.Pseudo() == selector.PseudoHas {
			r.collectValuesInHas(sel)
			continue
		}
		if sel.Pseudo() == selector.PseudoParent {
			continue
		}
		for sub := range sel.SelectorList().Complexes() {
			r.collectValuesInHasArgument(sub)
		}
	}
}

func (r *RuleFeatureSet) collectValuesInHas(has *selector.Selector) {
	for rel := range has.SelectorList().Complexes() {
		added := false
		for cur := range rel.Simples() {
			sel := cur.Selector()
			if sel.Pseudo() == selector.PseudoRelativeAnchor {
				break
			}
			added = r.addValueInHas(sel) || added
			if sel.Relation() != selector.RelationSubSelector {
				if !added {
					r.universalInHas = true
				}
				added = false
			}
		}
	}
}

// addValueInHas records one simple selector found inside :has() and reports
// whether it narrows the compound it belongs to.
func (r *RuleFeatureSet) addValueInHas(sel *selector.Selector) bool {
	switch {
	case sel.Match() == selector.MatchClass:
		r.classesInHas.add(sel.Value())
		return true
	case sel.IsAttributeSelector():
		r.attributesInHas.add(sel.Attribute().LocalName)
		return true
	case sel.Match() == selector.MatchID:
		r.idsInHas.add(sel.Value())
		return true
	case sel.Match() == selector.MatchTag:
		if sel.TagQName().IsUniversal() {
			return false
		}
		r.tagNamesInHas.add(sel.TagQName().LocalName)
		return true
	case sel.Match() != selector.MatchPseudoClass:
		return false
	}

	switch pt := sel.Pseudo(); pt {
	case selector.PseudoNot:
		r.notInHas = true
		return r.addValuesInLogicalCombination(sel.SelectorList())
	case selector.PseudoIs, selector.PseudoWhere, selector.PseudoParent:
		return r.addValuesInLogicalCombination(sel.SelectorList())
	case selector.PseudoVisited:
		// never matches inside :has()
		return false
	default:
		if r.pseudosInHas == nil {
			r.pseudosInHas = make(map[selector.PseudoType]struct{})
		}
		r.pseudosInHas[pt] = struct{}{}
		return false
	}
}

// addValuesInLogicalCombination walks list nested inside :has(). Compounds
// without values make the index treat any element as a possible match.
func (r *RuleFeatureSet) addValuesInLogicalCombination(list *selector.List) bool {
	if list.IsEmpty() {
		return false
	}
	for complex := range list.Complexes() {
		added := false
		for cur := range complex.Simples() {
			sel := cur.Selector()
			added = r.addValueInHas(sel) || added
			if sel.IsLastInCompound() {
				if !added {
					r.universalInHas = true
				}
				added = false
			}
		}
	}
	return true
}
