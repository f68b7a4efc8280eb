package features

import "cssinval/selector"

// collectMetadataFromSelector gathers stylesheet wide flags and the longest
// run of "+" combinators. It also spots selectors which can never match.
// directAdjacent is the "+" run carried from the enclosing selector.
func (r *RuleFeatureSet) collectMetadataFromSelector(complex selector.Ref, directAdjacent uint32, md *Metadata) SelectorPreMatch {
	foundHost := false
	compoundStart := complex

	for cur := range complex.Simples() {
		sel := cur.Selector()

		switch sel.Pseudo() {
		case selector.PseudoHas, selector.PseudoParent:
		case selector.PseudoFirstLine:
			md.UsesFirstLineRules = true
		case selector.PseudoWindowInactive:
			md.UsesWindowInactiveSelector = true
		case selector.PseudoHost, selector.PseudoHostContext:
			if !onlyHostAndPseudoElements(compoundStart) {
				return SelectorNeverMatches
			}
			foundHost = true
			r.collectMetadataFromList(sel.SelectorList(), directAdjacent, md)
		case selector.PseudoIs, selector.PseudoWhere:
			if sel.SelectorList().IsEmpty() {
				return SelectorNeverMatches
			}
			r.collectMetadataFromList(sel.SelectorList(), directAdjacent, md)
		default:
			r.collectMetadataFromList(sel.SelectorList(), directAdjacent, md)
		}

		rel := sel.Relation()
		if foundHost && rel != selector.RelationSubSelector {
			return SelectorNeverMatches
		}

		switch {
		case rel == selector.RelationDirectAdjacent:
			directAdjacent++
		case directAdjacent > 0 && (rel != selector.RelationSubSelector || sel.IsLastInComplex()):
			md.MaxDirectAdjacentSelectors = max(md.MaxDirectAdjacentSelectors, directAdjacent)
			directAdjacent = 0
		}

		if sel.IsLastInCompound() {
			compoundStart = cur.TagHistory()
		}
	}
	return SelectorMayMatch
}

// collectMetadataFromList ignores pre-match results of nested selectors,
// forgiving lists drop them independently.
func (r *RuleFeatureSet) collectMetadataFromList(list *selector.List, directAdjacent uint32, md *Metadata) {
	for sub := range list.Complexes() {
		r.collectMetadataFromSelector(sub, directAdjacent, md)
	}
}

func onlyHostAndPseudoElements(compound selector.Ref) bool {
	for cur := range compound.Compound() {
		sel := cur.Selector()
		if !sel.IsHostPseudoClass() && sel.Match() != selector.MatchPseudoElement {
			return false
		}
	}
	return true
}
