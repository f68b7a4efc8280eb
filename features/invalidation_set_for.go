package features

import (
	"cssinval/invalidation"
	"cssinval/selector"
)

// position of the compound being processed relative to the subject.
type position uint8

const (
	positionSubject position = iota
	positionAncestor
)

// ensureMutableInvalidationSet returns set stored in slot, made suitable for
// writing features of the requested type. Shared sets are copied first.
func ensureMutableInvalidationSet(typ invalidation.Type, pos position, slot **invalidation.Set) *invalidation.Set {
	set := *slot
	if set == nil {
		switch {
		case typ == invalidation.Siblings:
			set = invalidation.NewSiblingSet(nil)
		case pos == positionSubject:
			set = invalidation.SelfInvalidationSet()
		default:
			set = invalidation.NewDescendantSet()
		}
		*slot = set
		return set
	}

	if set.IsSelfInvalidationSet() && typ == invalidation.Descendants && pos == positionSubject {
		return set
	}

	if !set.HasOneRef() {
		cp := set.Copy()
		set.Release()
		set = cp
		*slot = set
	}

	if set.Type() == typ {
		return set
	}
	if typ == invalidation.Descendants {
		return set.EnsureDescendants()
	}

	// descendant set becomes the descendants part of the new sibling set
	set = invalidation.NewSiblingSet(set)
	*slot = set
	return set
}

func ensureInMap[K comparable](m map[K]*invalidation.Set, key K, typ invalidation.Type, pos position) *invalidation.Set {
	set := m[key]
	res := ensureMutableInvalidationSet(typ, pos, &set)
	m[key] = set
	return res
}

func (r *RuleFeatureSet) ensureClassInvalidationSet(name string, typ invalidation.Type, pos position) *invalidation.Set {
	return ensureInMap(r.classSets, name, typ, pos)
}

func (r *RuleFeatureSet) ensureAttributeInvalidationSet(name string, typ invalidation.Type, pos position) *invalidation.Set {
	return ensureInMap(r.attrSets, name, typ, pos)
}

func (r *RuleFeatureSet) ensureIDInvalidationSet(name string, typ invalidation.Type, pos position) *invalidation.Set {
	return ensureInMap(r.idSets, name, typ, pos)
}

func (r *RuleFeatureSet) ensurePseudoInvalidationSet(pt selector.PseudoType, typ invalidation.Type, pos position) *invalidation.Set {
	return ensureInMap(r.pseudoSets, pt, typ, pos)
}

func (r *RuleFeatureSet) ensureUniversalSiblingInvalidationSet() *invalidation.Set {
	return ensureMutableInvalidationSet(invalidation.Siblings, positionAncestor, &r.universalSiblingSet)
}

// ensureNthInvalidationSet returns sibling set shared by all structural
// pseudo-classes. It reaches every sibling.
func (r *RuleFeatureSet) ensureNthInvalidationSet() *invalidation.Set {
	if r.nthSet == nil {
		r.nthSet = invalidation.NewSiblingSet(nil)
		r.nthSet.SetInvalidatesNth()
		r.nthSet.UpdateMaxDirectAdjacentSelectors(invalidation.DirectAdjacentMax)
		return r.nthSet
	}
	return ensureMutableInvalidationSet(invalidation.Siblings, positionAncestor, &r.nthSet)
}

func (r *RuleFeatureSet) ensureTypeRuleSet() *invalidation.Set {
	return ensureMutableInvalidationSet(invalidation.Descendants, positionAncestor, &r.typeRuleSet)
}

// invalidationSetForSimpleSelector returns (creating when needed) the set
// keyed by simple selector, nil when the selector cannot key a set.
func (r *RuleFeatureSet) invalidationSetForSimpleSelector(sel *selector.Selector, typ invalidation.Type, pos position) *invalidation.Set {
	switch {
	case sel.Match() == selector.MatchClass:
		return r.ensureClassInvalidationSet(sel.Value(), typ, pos)
	case sel.IsAttributeSelector():
		return r.ensureAttributeInvalidationSet(sel.Attribute().LocalName, typ, pos)
	case sel.Match() == selector.MatchID:
		return r.ensureIDInvalidationSet(sel.Value(), typ, pos)
	case sel.Match() != selector.MatchPseudoClass:
		return nil
	}

	switch pt := sel.Pseudo(); pt {
	case selector.PseudoEmpty, selector.PseudoFirstChild, selector.PseudoLastChild,
		selector.PseudoOnlyChild, selector.PseudoLink, selector.PseudoVisited,
		selector.PseudoAnyLink, selector.PseudoAutofill, selector.PseudoAutofillPreviewed,
		selector.PseudoAutofillSelected, selector.PseudoHover, selector.PseudoDrag,
		selector.PseudoFocus, selector.PseudoFocusVisible, selector.PseudoFocusWithin,
		selector.PseudoActive, selector.PseudoChecked, selector.PseudoEnabled,
		selector.PseudoDefault, selector.PseudoDisabled, selector.PseudoOptional,
		selector.PseudoPlaceholderShown, selector.PseudoRequired, selector.PseudoReadOnly,
		selector.PseudoReadWrite, selector.PseudoState, selector.PseudoUserInvalid,
		selector.PseudoUserValid, selector.PseudoValid, selector.PseudoInvalid,
		selector.PseudoIndeterminate, selector.PseudoTarget, selector.PseudoLang,
		selector.PseudoDir, selector.PseudoFullScreen, selector.PseudoFullScreenAncestor,
		selector.PseudoFullscreen, selector.PseudoPaused, selector.PseudoPictureInPicture,
		selector.PseudoPlaying, selector.PseudoInRange, selector.PseudoOutOfRange,
		selector.PseudoDefined, selector.PseudoOpen, selector.PseudoClosed,
		selector.PseudoXrOverlay, selector.PseudoHasDatalist, selector.PseudoMultiSelectFocus,
		selector.PseudoModal, selector.PseudoPopoverOpen:
		return r.ensurePseudoInvalidationSet(pt, typ, pos)
	case selector.PseudoFirstOfType, selector.PseudoLastOfType, selector.PseudoOnlyOfType,
		selector.PseudoNthChild, selector.PseudoNthOfType, selector.PseudoNthLastChild,
		selector.PseudoNthLastOfType:
		return r.ensureNthInvalidationSet()
	case selector.PseudoHas:
		if pos == positionAncestor {
			return r.ensurePseudoInvalidationSet(pt, typ, pos)
		}
	}
	return nil
}
