package selector_test

import (
	"errors"
	"testing"

	"go.uber.org/zap"

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

func TestParser_RoundTrip(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"div", "div"},
		{"DIV.Foo", "div.Foo"},
		{"div.a#b", "div.a#b"},
		{"a > b + c ~ d e", "a > b + c ~ d e"},
		{"a>b", "a > b"},
		{".a,.b , #c", ".a, .b, #c"},
		{"[href]", "[href]"},
		{"[href^=x i]", `[href^="x" i]`},
		{`[lang|='en']`, `[lang|="en"]`},
		{"[data-x~=y s]", `[data-x~="y" s]`},
		{"*", "*"},
		{"svg|circle", "svg|circle"},
		{":IS(.a, .b)", ":is(.a, .b)"},
		{":where(.a)", ":where(.a)"},
		{":not(.a.b)", ":not(.a.b)"},
		{":is(.a, ::before)", ":is(.a)"},
		{":is(::before)", ":is()"},
		{":has(.a)", ":has(.a)"},
		{":has(> .a, ~ .b .c)", ":has(> .a, ~ .b .c)"},
		{":nth-child(2n+1)", ":nth-child(2n+1)"},
		{":nth-child(odd)", ":nth-child(2n+1)"},
		{":nth-last-of-type( -n + 3 )", ":nth-last-of-type(-n+3)"},
		{":nth-child(3)", ":nth-child(3)"},
		{"p:first-line", "p::first-line"},
		{"::slotted(.a)", "::slotted(.a)"},
		{"x-foo::part(label icon)", "x-foo::part(label icon)"},
		{"input::-webkit-inner-spin-button", "input::-webkit-inner-spin-button"},
		{":host(.dark) .a", ":host(.dark) .a"},
		{":lang(en)", ":lang(en)"},
		{`.a\:b`, ".a:b"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := mustParse(t, tt.in).String()
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []string{
		"",
		"a >",
		".",
		"#1a",
		"div span.",
		":unknown-thing",
		"::unknown-thing",
		":not(.a, )",
		":has(:has(.a))",
		":has(::before)",
		":nth-child(2n of .a)",
		":nth-child(foo)",
		":host(.a .b)",
		"::slotted(.a > .b)",
		"&.a",
		"[href=]",
		"[href=x q]",
		".a.b div",
		"a:is(.b",
		"::before::after",
		"p::first-line.a",
		".a::before .b",
		".a::after > .b",
		"\xff\xfe",
	}

	p := selector.NewParser(zap.NewNop())
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			if in == ".a.b div" {
				// valid, used as a control
				if _, err := p.Parse(in, nil); err != nil {
					t.Fatalf("Parse(%q) unexpected error: %v", in, err)
				}
				return
			}
			_, err := p.Parse(in, nil)
			if err == nil {
				t.Fatalf("Parse(%q) expected error", in)
			}
			if !errors.Is(err, selector.ErrSyntax) {
				t.Errorf("error %v does not wrap ErrSyntax", err)
			}
		})
	}
}

func TestParser_AfterPseudoElement(t *testing.T) {
	p := selector.NewParser(zap.NewNop())
	for _, in := range []string{"a::before:hover", "::after::marker", "::selection:window-inactive", "x-foo::part(label):focus"} {
		if _, err := p.Parse(in, nil); err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", in, err)
		}
	}
}

func TestParser_RightToLeftLayout(t *testing.T) {
	list := mustParse(t, "a > b .c")

	r := list.First()
	want := []struct {
		match    selector.Match
		relation selector.Relation
		last     bool
	}{
		{selector.MatchClass, selector.RelationDescendant, false},
		{selector.MatchTag, selector.RelationChild, false},
		{selector.MatchTag, selector.RelationSubSelector, true},
	}
	for i, w := range want {
		if !r.Valid() {
			t.Fatalf("chain ended early at %d", i)
		}
		sel := r.Selector()
		if sel.Match() != w.match || sel.Relation() != w.relation || sel.IsLastInComplex() != w.last {
			t.Errorf("selector %d = (%s, %s, %v), want (%s, %s, %v)", i,
				sel.Match(), sel.Relation(), sel.IsLastInComplex(), w.match, w.relation, w.last)
		}
		r = r.TagHistory()
	}
	if r.Valid() {
		t.Error("expected end of chain")
	}
}

func TestParser_CompoundOrder(t *testing.T) {
	list := mustParse(t, "div.a#b")
	var got []selector.Match
	for r := range list.First().Compound() {
		got = append(got, r.Selector().Match())
	}
	want := []selector.Match{selector.MatchID, selector.MatchClass, selector.MatchTag}
	if len(got) != len(want) {
		t.Fatalf("compound has %d selectors, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("selector %d is %s, want %s", i, got[i], want[i])
		}
	}
}

func TestParser_RelativeAnchor(t *testing.T) {
	list := mustParse(t, ":has(+ .a)")
	has := list.First().Selector()
	if has.Pseudo() != selector.PseudoHas {
		t.Fatalf("expected :has, got %s", has.Pseudo())
	}

	rel := has.SelectorList().First()
	if rel.Selector().Relation() != selector.RelationRelativeDirectAdjacent {
		t.Errorf("leading relation = %s, want relative-direct-adjacent", rel.Selector().Relation())
	}
	anchor := rel.TagHistory()
	if !anchor.Valid() || anchor.Selector().Pseudo() != selector.PseudoRelativeAnchor {
		t.Fatal("expected relative anchor after leftmost compound")
	}
	if !anchor.Selector().IsLastInComplex() {
		t.Error("anchor must be the last selector of the complex")
	}
}

func TestParser_ShadowSplit(t *testing.T) {
	list := mustParse(t, "::slotted(span)")
	r := list.First()
	if r.Selector().Pseudo() != selector.PseudoSlotted {
		t.Fatalf("expected ::slotted first, got %s", r.Selector().Pseudo())
	}
	if r.Selector().Relation() != selector.RelationShadowSlot {
		t.Errorf("relation = %s, want shadow-slot", r.Selector().Relation())
	}
	host := r.TagHistory()
	if !host.Valid() || !host.Selector().IsUniversalTag() || !host.Selector().IsImplicit() {
		t.Error("expected implicit universal selector before ::slotted")
	}
}

func TestParser_Nesting(t *testing.T) {
	p := selector.NewParser(zap.NewNop())
	parent, err := p.Parse(".card", nil)
	if err != nil {
		t.Fatal(err)
	}
	list, err := p.Parse("& > .title", parent)
	if err != nil {
		t.Fatal(err)
	}

	amp := list.First().TagHistory()
	if amp.Selector().Pseudo() != selector.PseudoParent {
		t.Fatalf("expected nesting selector, got %s", amp.Selector().Pseudo())
	}
	if amp.Selector().SelectorList() != parent {
		t.Error("nesting selector must refer to the parent list")
	}
	if got := list.String(); got != "& > .title" {
		t.Errorf("String() = %q", got)
	}
}

func TestParser_Attribute(t *testing.T) {
	list := mustParse(t, `[Data-State="Open" i]`)
	sel := list.First().Selector()
	if sel.Match() != selector.MatchAttributeExact {
		t.Fatalf("match = %s", sel.Match())
	}
	if sel.Attribute().LocalName != "data-state" {
		t.Errorf("attribute name = %q, want folded name", sel.Attribute().LocalName)
	}
	if sel.Value() != "Open" {
		t.Errorf("value = %q, want value case preserved", sel.Value())
	}
	if sel.AttributeMatch() != selector.AttributeCaseInsensitive {
		t.Error("expected case insensitive flag")
	}
}

func TestParser_Nth(t *testing.T) {
	tests := []struct {
		in   string
		a, b int
	}{
		{":nth-child(even)", 2, 0},
		{":nth-child(n)", 1, 0},
		{":nth-child(-2n-1)", -2, -1},
		{":nth-of-type(+5)", 0, 5},
		{":nth-last-child(3n + 2)", 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a, b := mustParse(t, tt.in).First().Selector().Nth()
			if a != tt.a || b != tt.b {
				t.Errorf("Nth() = (%d, %d), want (%d, %d)", a, b, tt.a, tt.b)
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	p := selector.NewParser(zap.NewNop())
	tests := []struct {
		in   string
		want uint32
	}{
		{"", 0},
		{":left", 1},
		{":first", 2},
		{"toc", 4},
		{"toc:first", 6},
		{"toc:first:right", 7},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			list, err := p.ParsePage(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got := list.First().SpecificityForPage(); got != tt.want {
				t.Errorf("SpecificityForPage() = %d, want %d", got, tt.want)
			}
		})
	}

	if _, err := p.ParsePage(":middle"); err == nil {
		t.Error("expected error for unknown page pseudo-class")
	}
}
