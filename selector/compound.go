package selector

// validateSubSelector decides which simple selectors are allowed inside
// compound-only contexts such as :host() and ::slotted().
//
// NOTE: the pseudo-class list below is known to be incomplete (:only-child
// and most user action pseudos are missing) - it is kept as is, other code
// depends on what IsCompound reports.
func validateSubSelector(s *Selector) bool {
	switch s.match {
	case MatchTag, MatchID, MatchClass, MatchAttributeExact, MatchAttributeSet, MatchAttributeList,
		MatchAttributeHyphen, MatchAttributeContain, MatchAttributeBegin, MatchAttributeEnd:
		return true
	case MatchPseudoElement, MatchUnknown:
		return false
	case MatchPagePseudoClass, MatchPseudoClass:
	}

	switch s.pseudo {
	case PseudoEmpty, PseudoLink, PseudoVisited, PseudoTarget, PseudoEnabled, PseudoDisabled,
		PseudoChecked, PseudoIndeterminate, PseudoNthChild, PseudoNthLastChild, PseudoNthOfType,
		PseudoNthLastOfType, PseudoFirstChild, PseudoLastChild, PseudoFirstOfType, PseudoLastOfType,
		PseudoOnlyOfType, PseudoHost, PseudoHostContext, PseudoNot, PseudoSpatialNavigationFocus,
		PseudoHasDatalist, PseudoIsHTML, PseudoListBox, PseudoHostHasAppearance, PseudoMultiSelectFocus:
		return true
	}
	return false
}

// IsCompound reports whether complex selector starting at r is a single
// compound made of allowed simple selectors only.
func (r Ref) IsCompound() bool {
	if !r.Valid() || !validateSubSelector(r.Selector()) {
		return false
	}
	prev := r
	for cur := r.TagHistory(); cur.Valid(); cur = cur.TagHistory() {
		if prev.Selector().relation != RelationSubSelector {
			return false
		}
		if !validateSubSelector(cur.Selector()) {
			return false
		}
		prev = cur
	}
	return true
}

// ContainsComplexLogicalCombinationsInsideHasPseudoClass reports whether
// :has() argument contains :is(), :where(), :not() or nesting selector with
// a complex (multi-compound) selector somewhere inside.
func (s *Selector) ContainsComplexLogicalCombinationsInsideHasPseudoClass() bool {
	if s.pseudo != PseudoHas {
		return false
	}
	for rel := range s.SelectorList().Complexes() {
		for cur := range rel.Simples() {
			if hasComplexInLogicalCombination(cur.Selector()) {
				return true
			}
		}
	}
	return false
}

func hasComplexInLogicalCombination(s *Selector) bool {
	if !s.pseudo.IsLogicalCombination() {
		return false
	}
	for c := range s.SelectorList().Complexes() {
		for cur := range c.Simples() {
			sel := cur.Selector()
			if !sel.lastInComplex && sel.relation != RelationSubSelector {
				return true
			}
			if hasComplexInLogicalCombination(sel) {
				return true
			}
		}
	}
	return false
}
