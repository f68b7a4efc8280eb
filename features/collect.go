package features

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"cssinval/invalidation"
	"cssinval/selector"
)

// trace logs collected set. Elements passed to Collect* methods are only
// used here and may be nil.
func (r *RuleFeatureSet) trace(kind, key string, el *html.Node, set *invalidation.Set) {
	if ce := r.log.Check(zap.DebugLevel, "Collected invalidation set"); ce != nil {
		ce.Write(
			zap.String("kind", kind),
			zap.String("key", key),
			zap.String("element", DescribeNode(el)),
			zap.Stringer("set", set),
		)
	}
}

// addToLists places set into the list of its kind. Descendant part of
// sibling sets applies to the changed element itself.
func addToLists(lists *invalidation.Lists, set *invalidation.Set) {
	if !set.IsSiblingSet() {
		lists.Descendants = append(lists.Descendants, set)
		return
	}
	lists.Siblings = append(lists.Siblings, set)
	if d := set.Descendants(); d != nil {
		lists.Descendants = append(lists.Descendants, d)
	}
}

func (r *RuleFeatureSet) collectFrom(lists *invalidation.Lists, set *invalidation.Set, kind, key string, el *html.Node) {
	if set == nil {
		return
	}
	r.trace(kind, key, el, set)
	addToLists(lists, set)
}

// CollectInvalidationSetsForClass appends sets to evaluate when class is
// added to or removed from el.
func (r *RuleFeatureSet) CollectInvalidationSetsForClass(lists *invalidation.Lists, el *html.Node, class string) {
	r.collectFrom(lists, r.classSets[class], "class", class, el)
}

// CollectInvalidationSetsForID appends sets to evaluate when id of el
// changes.
func (r *RuleFeatureSet) CollectInvalidationSetsForID(lists *invalidation.Lists, el *html.Node, id string) {
	r.collectFrom(lists, r.idSets[id], "id", id, el)
}

// CollectInvalidationSetsForAttribute appends sets to evaluate when
// attribute of el changes.
func (r *RuleFeatureSet) CollectInvalidationSetsForAttribute(lists *invalidation.Lists, el *html.Node, attr string) {
	r.collectFrom(lists, r.attrSets[attr], "attribute", attr, el)
}

// CollectInvalidationSetsForPseudoClass appends sets to evaluate when state
// matched by pseudo-class changes on el.
func (r *RuleFeatureSet) CollectInvalidationSetsForPseudoClass(lists *invalidation.Lists, el *html.Node, pt selector.PseudoType) {
	r.collectFrom(lists, r.pseudoSets[pt], "pseudo", pt.String(), el)
}

func (r *RuleFeatureSet) collectSiblingFrom(lists *invalidation.Lists, set *invalidation.Set, minDirectAdjacent uint32, kind, key string, el *html.Node) {
	if set == nil || !set.IsSiblingSet() || set.MaxDirectAdjacentSelectors() < minDirectAdjacent {
		return
	}
	r.trace(kind, key, el, set)
	lists.Siblings = append(lists.Siblings, set)
}

// CollectSiblingInvalidationSetForClass appends sibling set of class when it
// reaches at least minDirectAdjacent siblings. Used when a sibling of el
// was inserted or removed.
func (r *RuleFeatureSet) CollectSiblingInvalidationSetForClass(lists *invalidation.Lists, el *html.Node, class string, minDirectAdjacent uint32) {
	r.collectSiblingFrom(lists, r.classSets[class], minDirectAdjacent, "class", class, el)
}

func (r *RuleFeatureSet) CollectSiblingInvalidationSetForID(lists *invalidation.Lists, el *html.Node, id string, minDirectAdjacent uint32) {
	r.collectSiblingFrom(lists, r.idSets[id], minDirectAdjacent, "id", id, el)
}

func (r *RuleFeatureSet) CollectSiblingInvalidationSetForAttribute(lists *invalidation.Lists, el *html.Node, attr string, minDirectAdjacent uint32) {
	r.collectSiblingFrom(lists, r.attrSets[attr], minDirectAdjacent, "attribute", attr, el)
}

func (r *RuleFeatureSet) CollectSiblingInvalidationSetForPseudoClass(lists *invalidation.Lists, el *html.Node, pt selector.PseudoType, minDirectAdjacent uint32) {
	r.collectSiblingFrom(lists, r.pseudoSets[pt], minDirectAdjacent, "pseudo", pt.String(), el)
}

// CollectUniversalSiblingInvalidationSet appends set of sibling compounds
// without keyable features.
func (r *RuleFeatureSet) CollectUniversalSiblingInvalidationSet(lists *invalidation.Lists, minDirectAdjacent uint32) {
	r.collectSiblingFrom(lists, r.universalSiblingSet, minDirectAdjacent, "universal", "*", nil)
}

// CollectNthInvalidationSet appends set shared by structural pseudo-classes.
func (r *RuleFeatureSet) CollectNthInvalidationSet(lists *invalidation.Lists) {
	if r.nthSet == nil {
		return
	}
	r.trace("nth", "", nil, r.nthSet)
	lists.Siblings = append(lists.Siblings, r.nthSet)
}

// CollectPartInvalidationSet appends ::part() singleton when any rule uses
// ::part().
func (r *RuleFeatureSet) CollectPartInvalidationSet(lists *invalidation.Lists) {
	if !r.metadata.InvalidatesParts {
		return
	}
	lists.Descendants = append(lists.Descendants, invalidation.PartInvalidationSet())
}

// CollectTypeRuleInvalidationSet appends set used when a whole rule set is
// added or removed under root.
func (r *RuleFeatureSet) CollectTypeRuleInvalidationSet(lists *invalidation.Lists, root *html.Node) {
	if r.typeRuleSet == nil {
		return
	}
	r.trace("type-rule", "", root, r.typeRuleSet)
	lists.Descendants = append(lists.Descendants, r.typeRuleSet)
}

// NeedsHasInvalidationForClass reports class mentioned inside some :has().
func (r *RuleFeatureSet) NeedsHasInvalidationForClass(class string) bool {
	return r.classesInHas.has(class)
}

func (r *RuleFeatureSet) NeedsHasInvalidationForAttribute(attr string) bool {
	return r.attributesInHas.has(attr)
}

func (r *RuleFeatureSet) NeedsHasInvalidationForID(id string) bool {
	return r.idsInHas.has(id)
}

func (r *RuleFeatureSet) NeedsHasInvalidationForTagName(tag string) bool {
	return r.tagNamesInHas.has(tag)
}

func (r *RuleFeatureSet) NeedsHasInvalidationForPseudoClass(pt selector.PseudoType) bool {
	_, ok := r.pseudosInHas[pt]
	return ok
}

// NeedsHasInvalidationForInsertedOrRemovedElement reports whether inserting
// or removing el may change the result of some :has() match.
func (r *RuleFeatureSet) NeedsHasInvalidationForInsertedOrRemovedElement(el *html.Node) bool {
	if r.notInHas || r.universalInHas {
		return true
	}
	if el == nil || el.Type != html.ElementNode {
		return false
	}
	for _, a := range el.Attr {
		if a.Namespace != "" {
			continue
		}
		switch a.Key {
		case "id":
			if r.NeedsHasInvalidationForID(a.Val) {
				return true
			}
		case "class":
			for _, c := range strings.Fields(a.Val) {
				if r.NeedsHasInvalidationForClass(c) {
					return true
				}
			}
		}
	}
	return len(r.attributesInHas) > 0 || r.NeedsHasInvalidationForTagName(el.Data)
}

// DescribeNode renders element as tag#id.class.
func DescribeNode(n *html.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type {
	case html.DocumentNode:
		return "#document"
	case html.ElementNode:
	default:
		return "#node"
	}
	var sb strings.Builder
	sb.WriteString(n.Data)
	for _, a := range n.Attr {
		switch a.Key {
		case "id":
			sb.WriteString("#" + a.Val)
		case "class":
			for _, c := range strings.Fields(a.Val) {
				sb.WriteString("." + c)
			}
		}
	}
	return sb.String()
}
