package features

import (
	"cssinval/invalidation"
	"cssinval/selector"
)

type invalidationRequirement uint8

const (
	normalInvalidation invalidationRequirement = iota
	requiresSubtreeInvalidation
)

// requiresSubtree reports simple selectors which cannot be tracked per
// element and invalidate the whole subtree instead.
func requiresSubtree(sel *selector.Selector) bool {
	if sel.Match() != selector.MatchPseudoElement && sel.Match() != selector.MatchPseudoClass {
		return false
	}
	switch sel.Pseudo() {
	case selector.PseudoFirstLine, selector.PseudoFirstLetter, selector.PseudoHostContext:
		return true
	}
	return false
}

func extractFromSimpleSelector(sel *selector.Selector, features *Features) {
	switch {
	case sel.Match() == selector.MatchTag:
		if !sel.TagQName().IsUniversal() {
			features.NarrowToTag(sel.TagQName().LocalName)
		}
		return
	case sel.Match() == selector.MatchID:
		features.NarrowToID(sel.Value())
		return
	case sel.Match() == selector.MatchClass:
		features.NarrowToClass(sel.Value())
		return
	case sel.IsAttributeSelector():
		features.NarrowToAttribute(sel.Attribute().LocalName)
		return
	}

	switch sel.Pseudo() {
	case selector.PseudoWebKitCustomElement, selector.PseudoInternalElement:
		features.InvalidateCustomPseudo = true
	case selector.PseudoSlotted:
		features.InvalidatesSlotted = true
	case selector.PseudoPart:
		features.InvalidatesParts = true
		features.TreeBoundaryCrossing = true
	case selector.PseudoContent:
		features.ContentPseudoCrossing = true
		features.InsertionPointCrossing = true
	}
}

// extractInvalidationSetFeaturesFromCompound collects features of compound
// starting at compound and returns its last simple selector. Invalid Ref is
// returned when compound requires subtree invalidation.
func (r *RuleFeatureSet) extractInvalidationSetFeaturesFromCompound(compound selector.Ref, features *Features, pos position, forLogicalInHas bool) selector.Ref {
	var (
		last         selector.Ref
		hasSelectors []*selector.Selector
	)
	for cur := range compound.Compound() {
		sel := cur.Selector()
		last = cur

		if requiresSubtree(sel) {
			features.WholeSubtree = true
			return selector.Ref{}
		}

		extractFromSimpleSelector(sel, features)

		// only subject compounds key sets of their own, ancestors get theirs
		// when features are propagated
		if pos == positionSubject {
			if set := r.invalidationSetForSimpleSelector(sel, invalidation.Descendants, pos); set != nil {
				if set == r.nthSet {
					features.HasNthPseudo = true
				} else {
					set.SetInvalidatesSelf()
				}
			}
		}

		r.extractInvalidationSetFeaturesFromSelectorList(sel, features, pos)

		if sel.Pseudo() == selector.PseudoPart {
			r.metadata.InvalidatesParts = true
		}
		if sel.Pseudo() == selector.PseudoHas && !forLogicalInHas {
			hasSelectors = append(hasSelectors, sel)
		}
	}
	// :has() arguments are indexed against features of the whole compound
	for _, has := range hasSelectors {
		r.addFeaturesToInvalidationSetsForHasPseudoClass(has, compound, nil, features)
	}
	features.HasFeaturesForRuleSetInvalidation = features.HasIDClassOrAttribute()
	return last
}

// extractInvalidationSetFeaturesFromSelectorList processes every branch of
// nested list and narrows features when all branches are narrowable.
func (r *RuleFeatureSet) extractInvalidationSetFeaturesFromSelectorList(sel *selector.Selector, features *Features, pos position) {
	list := sel.SelectorList()
	if list == nil || sel.Pseudo() == selector.PseudoHas {
		return
	}
	defer features.restoreScope(features.saveScope())

	var (
		anyFeatures     Features
		allHaveFeatures = true
		allForRuleSet   = true
	)
	for sub := range list.Complexes() {
		var cf Features
		if r.updateInvalidationSetsForComplex(sub, nil, &cf, pos, sel.Pseudo()) == requiresSubtreeInvalidation {
			features.WholeSubtree = true
			continue
		}
		if cf.HasNthPseudo {
			features.HasNthPseudo = true
		}
		if !allHaveFeatures {
			continue
		}
		if cf.HasFeatures() {
			anyFeatures.Add(&cf)
		} else {
			allHaveFeatures = false
		}
		allForRuleSet = allForRuleSet && cf.HasFeaturesForRuleSetInvalidation
	}

	// :not(.b) must invalidate elements without .b, so inner features never
	// narrow the outer compound
	if sel.Pseudo() == selector.PseudoNot {
		return
	}
	if allHaveFeatures {
		features.NarrowToFeatures(&anyFeatures)
	}
	features.HasFeaturesForRuleSetInvalidation = features.HasFeaturesForRuleSetInvalidation || allForRuleSet
}

// updateInvalidationSetsForComplex walks complex selector right to left
// writing features of the subject into sets keyed by features on the left.
func (r *RuleFeatureSet) updateInvalidationSetsForComplex(complex selector.Ref, scope *selector.StyleScope, features *Features, pos position, pseudo selector.PseudoType) invalidationRequirement {
	last := r.extractInvalidationSetFeaturesFromCompound(complex, features, pos, false)

	wasWholeSubtree := features.WholeSubtree
	if features.WholeSubtree {
		features.HasFeaturesForRuleSetInvalidation = false
	} else if !features.HasFeatures() {
		features.WholeSubtree = true
	}

	if pseudo == selector.PseudoUnknown && features.HasNthPseudo {
		r.addFeaturesToInvalidationSet(r.ensureNthInvalidationSet(), features)
	}

	next := complex
	if last.Valid() {
		next = last.TagHistory()
	}

	if next.Valid() {
		var sib *Features
		if last.Valid() {
			r.updateFeaturesFromCombinator(last.Selector().Relation(), selector.Ref{}, features, &sib, features, false)
		}
		r.addFeaturesToInvalidationSets(next, sib, features)
	}

	if scope != nil {
		r.addFeaturesForStyleScope(scope, features)
	}

	if !next.Valid() {
		return normalInvalidation
	}
	features.WholeSubtree = wasWholeSubtree
	if last.Valid() {
		return normalInvalidation
	}
	return requiresSubtreeInvalidation
}
