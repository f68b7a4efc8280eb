package features_test

import (
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"cssinval/features"
	"cssinval/invalidation"
	"cssinval/selector"
)

func mustParse(t *testing.T, text string) *selector.List {
	t.Helper()
	list, err := selector.NewParser(zap.NewNop()).Parse(text, nil)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", text, err)
	}
	return list
}

// build ingests every selector list into a fresh feature set.
func build(t *testing.T, rules ...string) *features.RuleFeatureSet {
	t.Helper()
	r := features.New(features.WithLogger(zaptest.NewLogger(t)))
	for _, rule := range rules {
		r.CollectFeaturesFromList(mustParse(t, rule), nil)
	}
	return r
}

func classLists(r *features.RuleFeatureSet, class string) *invalidation.Lists {
	var l invalidation.Lists
	r.CollectInvalidationSetsForClass(&l, nil, class)
	return &l
}

func TestCollectFeatures_InvalidationSets(t *testing.T) {
	tests := []struct {
		name  string
		rules []string
		kind  string
		key   string
		want  string
	}{
		{"descendant ancestor", []string{".a .b"}, "class", "a", "descendants: { .b } siblings:"},
		{"descendant subject", []string{".a .b"}, "class", "b", "descendants: {<$>} siblings:"},
		{"child", []string{".a > .b"}, "class", "a", "descendants: { .b } siblings:"},
		{"indirect adjacent", []string{".a ~ .b"}, "class", "a", "descendants: siblings: {<$~> .b }"},
		{"direct adjacent", []string{".a + .b"}, "class", "a", "descendants: siblings: {<$> .b }"},
		{"tag subject", []string{".a span"}, "class", "a", "descendants: { span } siblings:"},
		{"class wins over tag", []string{".a div.b"}, "class", "a", "descendants: { .b } siblings:"},
		{"id key", []string{"#x .a"}, "id", "x", "descendants: { .a } siblings:"},
		{"attribute key", []string{"[href] .a"}, "attr", "href", "descendants: { .a } siblings:"},
		{"pseudo key", []string{":hover .a"}, "pseudo", "hover", "descendants: { .a } siblings:"},
		{"pseudo subject", []string{".a:hover"}, "pseudo", "hover", "descendants: {<$>} siblings:"},
		{"union of rules", []string{".a .b", ".a .c"}, "class", "a", "descendants: { .b .c } siblings:"},
		{"is in ancestor", []string{":is(.a, .b) .c"}, "class", "b", "descendants: { .c } siblings:"},
		{"is in subject", []string{".x :is(.a, .b)"}, "class", "x", "descendants: { .a .b } siblings:"},
		{"host context crosses tree boundary", []string{":host-context(.x) .a"}, "class", "x", "descendants: {<T> .a } siblings:"},
		{"first line", []string{".a::first-line"}, "class", "a", "descendants: {<W>} siblings:"},
		{"universal subject", []string{".a *"}, "class", "a", "descendants: {<W>} siblings:"},
		{"not keeps subject wide", []string{".a :not(.b)"}, "class", "a", "descendants: {<W>} siblings:"},
		{"not still indexes argument", []string{".a :not(.b)"}, "class", "b", "descendants: {<$>} siblings:"},
		{"slotted crosses insertion point", []string{".x ::slotted(.a)"}, "class", "x", "descendants: {<IS> .a } siblings:"},
		{"custom pseudo element", []string{".a::-webkit-foo"}, "class", "a", "descendants: {<CT>} siblings:"},
		{"bare custom pseudo element", []string{"::-webkit-foo"}, "type-rule", "", "descendants: {<CT>} siblings:"},
		{"first letter", []string{".a::first-letter"}, "class", "a", "descendants: {<W>} siblings:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := build(t, tt.rules...)

			var l invalidation.Lists
			switch tt.kind {
			case "class":
				r.CollectInvalidationSetsForClass(&l, nil, tt.key)
			case "id":
				r.CollectInvalidationSetsForID(&l, nil, tt.key)
			case "attr":
				r.CollectInvalidationSetsForAttribute(&l, nil, tt.key)
			case "pseudo":
				r.CollectInvalidationSetsForPseudoClass(&l, nil, selector.LookupPseudoClass(tt.key))
			case "type-rule":
				r.CollectTypeRuleInvalidationSet(&l, nil)
			}
			if got := l.String(); got != tt.want {
				t.Errorf("lists for %s %q = %q, want %q", tt.kind, tt.key, got, tt.want)
			}
		})
	}
}

func TestCollectFeatures_SiblingDescendants(t *testing.T) {
	r := build(t, ".a ~ .b .c")

	l := classLists(r, "a")
	if len(l.Siblings) != 1 {
		t.Fatalf("expected one sibling set, got %s", l)
	}
	set := l.Siblings[0]
	if got := set.String(); got != "{<~> .b }" {
		t.Errorf("sibling set = %q", got)
	}
	sd := set.SiblingDescendants()
	if sd == nil || !sd.HasClass("c") {
		t.Errorf("sibling descendants must reach .c, got %v", sd)
	}

	if got := classLists(r, "b").String(); got != "descendants: { .c } siblings:" {
		t.Errorf("lists for .b = %q", got)
	}
}

func TestCollectFeatures_AncestorCompoundKeysNoEmptySets(t *testing.T) {
	r := build(t, ".a + .b", ".x:hover .y")

	if l := classLists(r, "a"); len(l.Descendants) != 0 || len(l.Siblings) != 1 {
		t.Errorf("lists for .a = %s, want single sibling set", l)
	}
	if got := classLists(r, "x").String(); got != "descendants: { .y } siblings:" {
		t.Errorf("lists for .x = %q", got)
	}
}

func TestCollectFeatures_SiblingDistance(t *testing.T) {
	tests := []struct {
		rule string
		want uint32
	}{
		{".a ~ .b", invalidation.DirectAdjacentMax},
		{".a + .b", 1},
		{".a + .x + .b", 2},
		{".a + .x ~ .b", invalidation.DirectAdjacentMax},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			l := classLists(build(t, tt.rule), "a")
			if len(l.Siblings) != 1 {
				t.Fatalf("expected sibling set, got %s", l)
			}
			if got := l.Siblings[0].MaxDirectAdjacentSelectors(); got != tt.want {
				t.Errorf("MaxDirectAdjacentSelectors() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCollectFeatures_SiblingDistanceSaturation(t *testing.T) {
	parts := make([]string, 33)
	for i := range parts {
		parts[i] = fmt.Sprintf(".c%d", i)
	}
	r := build(t, strings.Join(parts, " + "))

	saturated := classLists(r, "c0")
	tilde := classLists(build(t, ".c0 ~ .b"), "c0")
	if saturated.Siblings[0].MaxDirectAdjacentSelectors() != tilde.Siblings[0].MaxDirectAdjacentSelectors() {
		t.Errorf("long '+' run must saturate like '~', got %d", saturated.Siblings[0].MaxDirectAdjacentSelectors())
	}

	if got := classLists(r, "c1").Siblings[0].MaxDirectAdjacentSelectors(); got != 31 {
		t.Errorf("last tracked distance = %d, want 31", got)
	}
	if got := r.MaxDirectAdjacentSelectors(); got != 32 {
		t.Errorf("metadata max direct adjacent = %d, want 32", got)
	}
}

func TestCollectFeatures_SiblingLookups(t *testing.T) {
	r := build(t, ".a + .b", ".c ~ .d", "* + .e")

	var l invalidation.Lists
	r.CollectSiblingInvalidationSetForClass(&l, nil, "a", 1)
	if len(l.Siblings) != 1 {
		t.Errorf("'+' set must be found for distance 1, got %s", &l)
	}
	l.Reset()
	r.CollectSiblingInvalidationSetForClass(&l, nil, "a", 2)
	if !l.IsEmpty() {
		t.Errorf("'+' set must not be found for distance 2, got %s", &l)
	}
	l.Reset()
	r.CollectSiblingInvalidationSetForClass(&l, nil, "c", 100)
	if len(l.Siblings) != 1 {
		t.Errorf("'~' set must be found for any distance, got %s", &l)
	}
	l.Reset()
	r.CollectSiblingInvalidationSetForClass(&l, nil, "d", 1)
	if !l.IsEmpty() {
		t.Errorf("descendant sets are not sibling sets, got %s", &l)
	}

	l.Reset()
	r.CollectUniversalSiblingInvalidationSet(&l, 1)
	if got := l.String(); got != "descendants: siblings: {<$> .e }" {
		t.Errorf("universal sibling lists = %q", got)
	}
	l.Reset()
	r.CollectUniversalSiblingInvalidationSet(&l, 2)
	if !l.IsEmpty() {
		t.Errorf("universal sibling set reaches one sibling only, got %s", &l)
	}
}

func TestCollectFeatures_Nth(t *testing.T) {
	r := build(t, ".a:nth-child(2)")

	var l invalidation.Lists
	r.CollectNthInvalidationSet(&l)
	if got := l.String(); got != "descendants: siblings: {<N~> .a }" {
		t.Errorf("nth lists = %q", got)
	}

	r = build(t, ":nth-child(2) .b")
	l.Reset()
	r.CollectNthInvalidationSet(&l)
	if len(l.Siblings) != 1 {
		t.Fatalf("expected nth set, got %s", &l)
	}
	nth := l.Siblings[0]
	if !nth.WholeSubtreeInvalid() {
		t.Error("nth set in ancestor position must invalidate whole subtree")
	}
	if sd := nth.SiblingDescendants(); sd == nil || !sd.HasClass("b") {
		t.Errorf("nth sibling descendants must reach .b, got %v", sd)
	}

	empty := build(t, ".a")
	l.Reset()
	empty.CollectNthInvalidationSet(&l)
	if !l.IsEmpty() {
		t.Errorf("no structural pseudo-classes, got %s", &l)
	}
}

func TestCollectFeatures_TypeRuleSet(t *testing.T) {
	tests := []struct {
		rule       string
		typeRule   string
		fullRecalc bool
	}{
		{".a", "", false},
		{"div", "descendants: { div } siblings:", false},
		{"p span", "descendants: { span } siblings:", false},
		{"*", "", true},
		{".a::first-line", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			r := build(t, tt.rule)
			var l invalidation.Lists
			r.CollectTypeRuleInvalidationSet(&l, nil)
			got := ""
			if !l.IsEmpty() {
				got = l.String()
			}
			if got != tt.typeRule {
				t.Errorf("type rule lists = %q, want %q", got, tt.typeRule)
			}
			if r.NeedsFullRecalcForRuleSetInvalidation() != tt.fullRecalc {
				t.Errorf("NeedsFullRecalcForRuleSetInvalidation() = %t, want %t", r.NeedsFullRecalcForRuleSetInvalidation(), tt.fullRecalc)
			}
		})
	}
}

func TestCollectFeatures_NeverMatches(t *testing.T) {
	tests := []struct {
		rule string
		want features.SelectorPreMatch
	}{
		{".a", features.SelectorMayMatch},
		{":host", features.SelectorMayMatch},
		{":host .a", features.SelectorMayMatch},
		{":host::before", features.SelectorMayMatch},
		{":host(.x):host-context(.y)", features.SelectorMayMatch},
		{":host.a", features.SelectorNeverMatches},
		{".x :host", features.SelectorNeverMatches},
		{".x > :host-context(.y)", features.SelectorNeverMatches},
		{".a:is()", features.SelectorNeverMatches},
		{":where(::before) .a", features.SelectorNeverMatches},
		{".a :is(.b, ::after)", features.SelectorMayMatch},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			r := features.New()
			got := r.CollectFeaturesFromSelector(mustParse(t, tt.rule).First(), nil)
			if got != tt.want {
				t.Errorf("CollectFeaturesFromSelector(%q) = %s, want %s", tt.rule, got, tt.want)
			}
			if got == features.SelectorNeverMatches && !r.Equal(features.New()) {
				t.Errorf("never matching selector changed the index:\n%s", r)
			}
		})
	}
}

func TestCollectFeaturesFromList_CountsSkipped(t *testing.T) {
	r := features.New()
	if got := r.CollectFeaturesFromList(mustParse(t, ".a, :host.b, .c:where()"), nil); got != 2 {
		t.Errorf("skipped = %d, want 2", got)
	}
	if l := classLists(r, "a"); l.IsEmpty() {
		t.Error("matching selector of the list must be indexed")
	}
	if l := classLists(r, "b"); !l.IsEmpty() {
		t.Error("never matching selector must not be indexed")
	}
}

func TestCollectFeatures_Metadata(t *testing.T) {
	tests := []struct {
		rule string
		want features.Metadata
	}{
		{".a", features.Metadata{}},
		{"p::first-line", features.Metadata{UsesFirstLineRules: true, NeedsFullRecalcForRuleSetInvalidation: true}},
		{".a:window-inactive", features.Metadata{UsesWindowInactiveSelector: true}},
		{".a + .b + .c", features.Metadata{MaxDirectAdjacentSelectors: 2}},
		{".a + .b .c + .d", features.Metadata{MaxDirectAdjacentSelectors: 1}},
		{".a :is(.b + .c + .d)", features.Metadata{MaxDirectAdjacentSelectors: 2}},
		{"x-foo::part(label)", features.Metadata{InvalidatesParts: true, NeedsFullRecalcForRuleSetInvalidation: true}},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			if got := build(t, tt.rule).Metadata(); got != tt.want {
				t.Errorf("Metadata() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCollectFeatures_Parts(t *testing.T) {
	var l invalidation.Lists
	build(t, ".a").CollectPartInvalidationSet(&l)
	if !l.IsEmpty() {
		t.Errorf("no ::part() rules, got %s", &l)
	}

	build(t, "x-foo::part(label)").CollectPartInvalidationSet(&l)
	if got := l.String(); got != "descendants: {<TP>} siblings:" {
		t.Errorf("part lists = %q", got)
	}
	if l.Descendants[0] != invalidation.PartInvalidationSet() {
		t.Error("part invalidation must use shared singleton")
	}
}

func TestCollectFeatures_StyleScope(t *testing.T) {
	outer := &selector.StyleScope{From: mustParse(t, ".p")}
	scope := &selector.StyleScope{
		From:   mustParse(t, ".s"),
		To:     mustParse(t, ".e"),
		Parent: outer,
	}

	r := features.New()
	r.CollectFeaturesFromList(mustParse(t, ".x"), scope)

	for _, key := range []string{"s", "e", "p"} {
		if got := classLists(r, key).String(); got != "descendants: { .x } siblings:" {
			t.Errorf("lists for scope boundary .%s = %q", key, got)
		}
	}
	if got := classLists(r, "x").String(); got != "descendants: {<$>} siblings:" {
		t.Errorf("lists for subject = %q", got)
	}
}

func TestCollectFeatures_Clear(t *testing.T) {
	r := build(t, ".a .b", ".c:has(.d)", "p::first-line")
	r.Clear()
	if !r.Equal(features.New()) {
		t.Errorf("Clear() left state behind:\n%s", r)
	}
}
