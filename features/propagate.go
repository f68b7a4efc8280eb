package features

import (
	"cssinval/invalidation"
	"cssinval/selector"
)

// updateFeaturesFromCombinator moves walk state across combinator. For
// sibling combinators sib is switched to chain features (extracted from
// head when given) and the reach of sibling sets is widened. Other
// combinators end the sibling chain.
func (r *RuleFeatureSet) updateFeaturesFromCombinator(rel selector.Relation, head selector.Ref, chain *Features, sib **Features, desc *Features, forLogicalInHas bool) {
	if rel.IsAdjacent() {
		if *sib == nil {
			*sib = chain
			if head.Valid() {
				r.extractInvalidationSetFeaturesFromCompound(head, chain, positionAncestor, forLogicalInHas)
				if !chain.HasFeatures() {
					chain.WholeSubtree = true
				}
			}
		}
		s := *sib
		if s.MaxDirectAdjacentSelectors == invalidation.DirectAdjacentMax {
			return
		}
		if rel == selector.RelationDirectAdjacent {
			s.incrementDirectAdjacent()
		} else {
			s.MaxDirectAdjacentSelectors = invalidation.DirectAdjacentMax
		}
		return
	}

	desc.DescendantFeaturesDepth++

	if *sib != nil && chain.MaxDirectAdjacentSelectors != 0 {
		*chain = Features{}
	}
	*sib = nil

	switch rel {
	case selector.RelationUAShadow, selector.RelationShadowPart:
		desc.TreeBoundaryCrossing = true
	case selector.RelationShadowSlot:
		desc.InsertionPointCrossing = true
	}
}

// addFeaturesToInvalidationSets walks compounds left of the subject, start
// is the compound immediately to the left of the rightmost combinator.
func (r *RuleFeatureSet) addFeaturesToInvalidationSets(start selector.Ref, sib *Features, desc *Features) {
	var chain Features
	for compound := start; compound.Valid(); {
		last := r.addFeaturesToInvalidationSetsForCompound(compound, sib, desc)
		r.updateFeaturesFromCombinator(last.Selector().Relation(), compound, &chain, &sib, desc, false)
		compound = last.TagHistory()
	}
}

func (r *RuleFeatureSet) addFeaturesToInvalidationSetsForCompound(compound selector.Ref, sib *Features, desc *Features) selector.Ref {
	var (
		last             selector.Ref
		compoundFeatures bool
	)
	for cur := range compound.Compound() {
		last = cur
		saved := desc.HasFeaturesForRuleSetInvalidation
		desc.HasFeaturesForRuleSetInvalidation = false
		r.addFeaturesToInvalidationSetsForSimple(cur.Selector(), compound, sib, desc)
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

func (r *RuleFeatureSet) addFeaturesToInvalidationSetsForSimple(sel *selector.Selector, compound selector.Ref, sib *Features, desc *Features) {
	if sel.IsIDClassOrAttributeSelector() {
		desc.HasFeaturesForRuleSetInvalidation = true
	}

	if sel.Pseudo() == selector.PseudoHas {
		r.addFeaturesToInvalidationSetsForHasPseudoClass(sel, compound, sib, desc)
	}

	typ := invalidation.Descendants
	if sib != nil {
		typ = invalidation.Siblings
	}
	if set := r.invalidationSetForSimpleSelector(sel, typ, positionAncestor); set != nil {
		switch {
		case sib == nil:
			if set == r.nthSet {
				// nth set is a sibling set, descendants of the subject are
				// reached through its sibling descendants
				set.SetWholeSubtreeInvalid()
				r.addFeaturesToInvalidationSet(set.EnsureSiblingDescendants(), desc)
				return
			}
			r.addFeaturesToInvalidationSet(set, desc)
		default:
			set.UpdateMaxDirectAdjacentSelectors(sib.MaxDirectAdjacentSelectors)
			r.addFeaturesToInvalidationSet(set, sib)
			if sib == desc {
				set.SetInvalidatesSelf()
			} else {
				r.addFeaturesToInvalidationSet(set.EnsureSiblingDescendants(), desc)
			}
		}
		return
	}

	if sel.Pseudo() == selector.PseudoHas {
		return
	}
	if sel.Pseudo() == selector.PseudoPart {
		desc.InvalidatesParts = true
	}
	r.addFeaturesToInvalidationSetsForSelectorList(sel, sib, desc)
}

func (r *RuleFeatureSet) addFeaturesToInvalidationSetsForSelectorList(sel *selector.Selector, sib *Features, desc *Features) {
	list := sel.SelectorList()
	if list == nil {
		return
	}

	hadFeatures := desc.HasFeaturesForRuleSetInvalidation
	containsUniversal := sel.Pseudo() == selector.PseudoNot || sel.Pseudo() == selector.PseudoHostContext

	for sub := range list.Complexes() {
		var sibMax uint32
		if sib != nil {
			sibMax = sib.MaxDirectAdjacentSelectors
		}
		saved := desc.saveScope()

		if sel.IsHostPseudoClass() {
			desc.TreeBoundaryCrossing = true
		}
		desc.HasFeaturesForRuleSetInvalidation = false

		r.addFeaturesToInvalidationSets(sub, sib, desc)

		if !desc.HasFeaturesForRuleSetInvalidation {
			containsUniversal = true
		}

		desc.restoreScope(saved)
		if sib != nil {
			sib.MaxDirectAdjacentSelectors = sibMax
		}
	}

	desc.HasFeaturesForRuleSetInvalidation = hadFeatures || !containsUniversal
}

// addFeaturesToInvalidationSet copies features into set. Whole subtree and
// ::content crossing features carry no names.
func (r *RuleFeatureSet) addFeaturesToInvalidationSet(set *invalidation.Set, features *Features) {
	if features.TreeBoundaryCrossing {
		set.SetTreeBoundaryCrossing()
	}
	if features.InsertionPointCrossing {
		set.SetInsertionPointCrossing()
	}
	if features.InvalidatesSlotted {
		set.SetInvalidatesSlotted()
	}
	if features.WholeSubtree {
		set.SetWholeSubtreeInvalid()
	}
	if features.InvalidatesParts {
		set.SetInvalidatesParts()
	}
	if features.ContentPseudoCrossing || features.WholeSubtree {
		return
	}

	for _, id := range features.IDs {
		set.AddID(id)
	}
	for _, tag := range features.TagNames {
		set.AddTagName(tag)
	}
	for _, tag := range features.EmittedTagNames {
		set.AddTagName(tag)
	}
	for _, class := range features.Classes {
		set.AddClass(class)
	}
	for _, attr := range features.Attributes {
		set.AddAttribute(attr)
	}
	if features.InvalidateCustomPseudo {
		set.SetCustomPseudoInvalid()
	}
}

// addFeaturesToUniversalSiblingInvalidationSet handles sibling compounds
// with no keyable feature, e.g. "* + .a".
func (r *RuleFeatureSet) addFeaturesToUniversalSiblingInvalidationSet(sib *Features, desc *Features) {
	set := r.ensureUniversalSiblingInvalidationSet()
	r.addFeaturesToInvalidationSet(set, sib)
	set.UpdateMaxDirectAdjacentSelectors(sib.MaxDirectAdjacentSelectors)
	if sib == desc {
		set.SetInvalidatesSelf()
		return
	}
	r.addFeaturesToInvalidationSet(set.EnsureSiblingDescendants(), desc)
}

// addFeaturesForStyleScope treats every @scope boundary selector, for all
// enclosing scopes, as an ancestor of the subject.
func (r *RuleFeatureSet) addFeaturesForStyleScope(scope *selector.StyleScope, desc *Features) {
	for _, s := range scope.Chain() {
		for _, list := range []*selector.List{s.From, s.To} {
			if list == nil {
				continue
			}
			for c := range list.Complexes() {
				r.addFeaturesToInvalidationSets(c, nil, desc)
			}
		}
	}
}
