package features

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"cssinval/invalidation"
	"cssinval/selector"
	"cssinval/utils/debug"
)

// describeSet renders set together with its attached descendant parts.
func describeSet(s *invalidation.Set) string {
	out := s.String()
	if d := s.Descendants(); d != nil {
		out += " descendants=" + d.String()
	}
	if d := s.SiblingDescendants(); d != nil {
		out += " sibling-descendants=" + d.String()
	}
	return out
}

func (r *RuleFeatureSet) metaFlags() string {
	var sb strings.Builder
	for _, f := range []struct {
		on bool
		c  byte
	}{
		{r.metadata.UsesFirstLineRules, 'F'},
		{r.metadata.UsesWindowInactiveSelector, 'W'},
		{r.metadata.NeedsFullRecalcForRuleSetInvalidation, 'R'},
		{r.metadata.InvalidatesParts, 'P'},
		{r.mediaFlags.ViewportDependent, 'V'},
		{r.mediaFlags.DeviceDependent, 'D'},
	} {
		if f.on {
			sb.WriteByte(f.c)
		}
	}
	return sb.String()
}

func pseudoKeys(m map[selector.PseudoType]*invalidation.Set) []selector.PseudoType {
	return slices.SortedFunc(maps.Keys(m), func(a, b selector.PseudoType) int {
		return strings.Compare(a.String(), b.String())
	})
}

func sortedStrings(s stringSet) []string {
	return slices.Sorted(maps.Keys(s))
}

func sortedPseudos(m map[selector.PseudoType]struct{}) []string {
	var out []string
	for pt := range m {
		out = append(out, pt.String())
	}
	slices.Sort(out)
	return out
}

// String renders feature set one entry per line with keys sorted, output is
// stable and used in tests.
func (r *RuleFeatureSet) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "META flags=%s max-adjacent=%d units=%d\n",
		r.metaFlags(), r.metadata.MaxDirectAdjacentSelectors, r.mediaFlags.Units)

	for _, group := range []struct {
		name string
		m    map[string]*invalidation.Set
	}{
		{"CLASS", r.classSets},
		{"ID", r.idSets},
		{"ATTR", r.attrSets},
	} {
		for _, k := range slices.Sorted(maps.Keys(group.m)) {
			fmt.Fprintf(&sb, "%s %s %s\n", group.name, k, describeSet(group.m[k]))
		}
	}
	for _, pt := range pseudoKeys(r.pseudoSets) {
		fmt.Fprintf(&sb, "PSEUDO %s %s\n", pt, describeSet(r.pseudoSets[pt]))
	}
	if r.universalSiblingSet != nil {
		fmt.Fprintf(&sb, "UNIVERSAL-SIBLING %s\n", describeSet(r.universalSiblingSet))
	}
	if r.nthSet != nil {
		fmt.Fprintf(&sb, "NTH %s\n", describeSet(r.nthSet))
	}
	if r.typeRuleSet != nil {
		fmt.Fprintf(&sb, "TYPE-RULE %s\n", describeSet(r.typeRuleSet))
	}
	fmt.Fprintf(&sb, "HAS classes=%v ids=%v attrs=%v tags=%v pseudos=%v universal=%t not=%t\n",
		sortedStrings(r.classesInHas), sortedStrings(r.idsInHas), sortedStrings(r.attributesInHas),
		sortedStrings(r.tagNamesInHas), sortedPseudos(r.pseudosInHas), r.universalInHas, r.notInHas)
	return sb.String()
}

// DumpTree returns indented human readable dump, keys in natural order.
func (r *RuleFeatureSet) DumpTree() string {
	tw := debug.NewTreeWriter()

	tw.Line(0, "RuleFeatureSet")
	tw.Line(1, "Metadata")
	tw.Line(2, "UsesFirstLineRules: %t", r.metadata.UsesFirstLineRules)
	tw.Line(2, "UsesWindowInactiveSelector: %t", r.metadata.UsesWindowInactiveSelector)
	tw.Line(2, "NeedsFullRecalcForRuleSetInvalidation: %t", r.metadata.NeedsFullRecalcForRuleSetInvalidation)
	tw.Line(2, "MaxDirectAdjacentSelectors: %d", r.metadata.MaxDirectAdjacentSelectors)
	tw.Line(2, "InvalidatesParts: %t", r.metadata.InvalidatesParts)
	tw.Line(1, "MediaQueryResultFlags")
	tw.Line(2, "ViewportDependent: %t", r.mediaFlags.ViewportDependent)
	tw.Line(2, "DeviceDependent: %t", r.mediaFlags.DeviceDependent)
	tw.Line(2, "Units: %08b", r.mediaFlags.Units)

	for _, group := range []struct {
		name string
		m    map[string]*invalidation.Set
	}{
		{"Classes", r.classSets},
		{"IDs", r.idSets},
		{"Attributes", r.attrSets},
	} {
		if len(group.m) == 0 {
			continue
		}
		tw.Line(1, "%s (%d entries)", group.name, len(group.m))
		keys := slices.Collect(maps.Keys(group.m))
		sort.Sort(natural.StringSlice(keys))
		for _, k := range keys {
			dumpSet(tw, 2, fmt.Sprintf("%q", k), group.m[k])
		}
	}
	if len(r.pseudoSets) > 0 {
		tw.Line(1, "Pseudo classes (%d entries)", len(r.pseudoSets))
		for _, pt := range pseudoKeys(r.pseudoSets) {
			dumpSet(tw, 2, ":"+pt.String(), r.pseudoSets[pt])
		}
	}
	if r.universalSiblingSet != nil {
		dumpSet(tw, 1, "Universal sibling", r.universalSiblingSet)
	}
	if r.nthSet != nil {
		dumpSet(tw, 1, "Nth", r.nthSet)
	}
	if r.typeRuleSet != nil {
		dumpSet(tw, 1, "Type rule", r.typeRuleSet)
	}

	tw.Line(1, "Has argument index")
	for _, e := range []struct {
		name   string
		values []string
	}{
		{"Classes", sortedStrings(r.classesInHas)},
		{"IDs", sortedStrings(r.idsInHas)},
		{"Attributes", sortedStrings(r.attributesInHas)},
		{"Tags", sortedStrings(r.tagNamesInHas)},
		{"Pseudos", sortedPseudos(r.pseudosInHas)},
	} {
		sort.Sort(natural.StringSlice(e.values))
		tw.List(2, e.name, e.values)
	}
	tw.Line(2, "Universal: %t", r.universalInHas)
	tw.Line(2, "Not: %t", r.notInHas)
	return tw.String()
}

func dumpSet(tw *debug.TreeWriter, depth int, label string, s *invalidation.Set) {
	tw.Line(depth, "%s %s %s", label, s.Type(), s)
	if d := s.Descendants(); d != nil {
		tw.Line(depth+1, "Descendants %s", d)
	}
	if d := s.SiblingDescendants(); d != nil {
		tw.Line(depth+1, "Sibling descendants %s", d)
	}
}
