package css_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"cssinval/css"
)

func parse(t *testing.T, input string) *css.Stylesheet {
	t.Helper()
	return css.NewParser(zap.NewNop()).Parse([]byte(input), t.Name())
}

func TestParser_StyleRules(t *testing.T) {
	sheet := parse(t, `
p { text-indent: 1em; }
.note > em, #main { color: red !important; margin: 0 auto }
`)

	if len(sheet.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d: %v", len(sheet.Rules), sheet.Warnings)
	}
	if len(sheet.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", sheet.Warnings)
	}

	p := sheet.Rules[0]
	if got := p.Selectors.String(); got != "p" {
		t.Errorf("first selector = %q", got)
	}
	d, ok := p.GetDeclaration("text-indent")
	if !ok {
		t.Fatal("text-indent declaration missing")
	}
	if d.Value.Value != 1 || d.Value.Unit != "em" || !d.Value.IsNumeric() {
		t.Errorf("text-indent value = %+v", d.Value)
	}

	r := sheet.Rules[1]
	if r.Selectors.ComplexCount() != 2 {
		t.Errorf("expected 2 complex selectors, got %d (%s)", r.Selectors.ComplexCount(), r.Selectors)
	}
	if got := r.Selectors.String(); got != ".note > em, #main" {
		t.Errorf("grouped selector = %q", got)
	}
	color, _ := r.GetDeclaration("color")
	if !color.Important || color.Value.Keyword != "red" || !color.Value.IsKeyword() {
		t.Errorf("color declaration = %+v", color)
	}
	margin, _ := r.GetDeclaration("margin")
	if margin.Important || margin.Value.Raw != "0 auto" {
		t.Errorf("margin declaration = %+v", margin)
	}

	if got := sheet.SelectorCount(); got != 3 {
		t.Errorf("SelectorCount() = %d, want 3", got)
	}
}

func TestParser_SelectorListWithFunctionalPseudo(t *testing.T) {
	sheet := parse(t, `.a:is(.b, .c) .d, .e { color: blue }`)

	if len(sheet.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d: %v", len(sheet.Rules), sheet.Warnings)
	}
	if got := sheet.Rules[0].Selectors.ComplexCount(); got != 2 {
		t.Errorf("expected 2 complex selectors, got %d", got)
	}
}

func TestParser_InvalidSelectorIsWarning(t *testing.T) {
	sheet := parse(t, `
.ok { color: red }
.bad:unknown-pseudo-class { color: red }
.also-ok { color: red }
`)

	if len(sheet.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(sheet.Rules))
	}
	if len(sheet.Warnings) != 1 || !strings.Contains(sheet.Warnings[0], "rule skipped") {
		t.Errorf("expected single selector warning, got %v", sheet.Warnings)
	}
}

func TestParser_Imports(t *testing.T) {
	sheet := parse(t, `
@charset "utf-8";
@import "base.css";
@import url("print.css") print;
@import url(plain.css);
.a { color: red }
`)

	want := []string{"base.css", "print.css", "plain.css"}
	if len(sheet.Imports) != len(want) {
		t.Fatalf("imports = %v, want %v", sheet.Imports, want)
	}
	for i := range want {
		if sheet.Imports[i] != want[i] {
			t.Errorf("import %d = %q, want %q", i, sheet.Imports[i], want[i])
		}
	}
	if len(sheet.Rules) != 1 {
		t.Errorf("expected 1 rule, got %d", len(sheet.Rules))
	}
}

func TestParser_MediaBlock(t *testing.T) {
	sheet := parse(t, `
.top { color: red }
@media screen and (min-width: 40em), print {
  .a { color: blue }
  .b { color: green }
}
.after { color: red }
`)

	if len(sheet.Rules) != 4 {
		t.Fatalf("expected 4 rules, got %d", len(sheet.Rules))
	}
	if len(sheet.Rules[0].Media) != 0 || len(sheet.Rules[3].Media) != 0 {
		t.Error("rules outside @media must not carry queries")
	}

	a := sheet.Rules[1]
	if len(a.Media) != 2 {
		t.Fatalf("expected 2 queries, got %+v", a.Media)
	}
	screen := a.Media[0]
	if screen.Type != "screen" || len(screen.Features) != 1 {
		t.Fatalf("screen query = %+v", screen)
	}
	f := screen.Features[0]
	if f.Name != "min-width" || f.Value.Value != 40 || f.Value.Unit != "em" {
		t.Errorf("feature = %+v", f)
	}
	if a.Media[1].Type != "print" {
		t.Errorf("second query = %+v", a.Media[1])
	}
}

func TestParser_MediaQueries(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		typ      string
		negated  bool
		features []css.MediaFeature
	}{
		{
			name:  "type only",
			query: "print",
			typ:   "print",
		},
		{
			name:    "negated type with feature",
			query:   "not screen and (color)",
			typ:     "screen",
			negated: true,
			features: []css.MediaFeature{
				{Name: "color"},
			},
		},
		{
			name:  "keyword feature",
			query: "(prefers-color-scheme: dark)",
			features: []css.MediaFeature{
				{Name: "prefers-color-scheme", Value: css.Value{Raw: "dark", Keyword: "dark"}},
			},
		},
		{
			name:  "range syntax",
			query: "(width >= 600px)",
			features: []css.MediaFeature{
				{Name: "width", Value: css.Value{Raw: "600px", Value: 600, Unit: "px"}},
			},
		},
		{
			name:  "nested not",
			query: "(not (hover)) and (max-height: 50vh)",
			features: []css.MediaFeature{
				{Name: "hover", Negated: true},
				{Name: "max-height", Value: css.Value{Raw: "50vh", Value: 50, Unit: "vh"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := parse(t, "@media "+tt.query+" { .x { color: red } }")
			if len(sheet.Rules) != 1 || len(sheet.Rules[0].Media) != 1 {
				t.Fatalf("unexpected parse result: %+v", sheet.Rules)
			}
			mq := sheet.Rules[0].Media[0]
			if mq.Type != tt.typ || mq.Negated != tt.negated {
				t.Errorf("query = %+v", mq)
			}
			if len(mq.Features) != len(tt.features) {
				t.Fatalf("features = %+v, want %+v", mq.Features, tt.features)
			}
			for i := range tt.features {
				if mq.Features[i] != tt.features[i] {
					t.Errorf("feature %d = %+v, want %+v", i, mq.Features[i], tt.features[i])
				}
			}
		})
	}
}

func TestParser_NestedMedia(t *testing.T) {
	sheet := parse(t, `@media screen { @supports (display: grid) { @media (hover) { .x { color: red } } } }`)

	if len(sheet.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d: %v", len(sheet.Rules), sheet.Warnings)
	}
	media := sheet.Rules[0].Media
	if len(media) != 2 || media[0].Type != "screen" || media[1].Features[0].Name != "hover" {
		t.Errorf("media chain = %+v", media)
	}
}

func TestParser_Scope(t *testing.T) {
	sheet := parse(t, `
@scope (.card) to (.content) {
  .title { color: red }
  & > .footer { color: blue }
}
.outside { color: green }
`)

	if len(sheet.Rules) != 3 {
		t.Fatalf("expected 3 rules, got %d: %v", len(sheet.Rules), sheet.Warnings)
	}

	title := sheet.Rules[0]
	if title.Scope == nil {
		t.Fatal("scoped rule has no scope")
	}
	if got := title.Scope.From.String(); got != ".card" {
		t.Errorf("scope start = %q", got)
	}
	if title.Scope.To == nil || title.Scope.To.String() != ".content" {
		t.Errorf("scope end = %v", title.Scope.To)
	}

	footer := sheet.Rules[1]
	if footer.Scope != title.Scope {
		t.Error("rules of one @scope block must share scope")
	}
	if got := footer.Selectors.String(); got != "& > .footer" {
		t.Errorf("nested selector = %q", got)
	}

	if sheet.Rules[2].Scope != nil {
		t.Error("rule after @scope must be unscoped")
	}
}

func TestParser_NestedScope(t *testing.T) {
	sheet := parse(t, `@scope (.outer) { @scope (.inner) { .x { color: red } } }`)

	if len(sheet.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d: %v", len(sheet.Rules), sheet.Warnings)
	}
	chain := sheet.Rules[0].Scope.Chain()
	if len(chain) != 2 {
		t.Fatalf("expected scope chain of 2, got %d", len(chain))
	}
	if chain[0].From.String() != ".inner" || chain[1].From.String() != ".outer" {
		t.Errorf("scope chain = %s, %s", chain[0].From, chain[1].From)
	}
}

func TestParser_ImplicitScope(t *testing.T) {
	sheet := parse(t, `@scope { & > p { color: red } }`)

	if len(sheet.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d: %v", len(sheet.Rules), sheet.Warnings)
	}
	scope := sheet.Rules[0].Scope
	if scope == nil || scope.From != nil || scope.To != nil {
		t.Errorf("implicit scope = %+v", scope)
	}
}

func TestParser_InvalidScopePrelude(t *testing.T) {
	sheet := parse(t, `@scope .card { .x { color: red } } .y { color: red }`)

	if len(sheet.Rules) != 1 || sheet.Rules[0].Raw != ".y" {
		t.Fatalf("unexpected rules: %+v", sheet.Rules)
	}
	if len(sheet.Warnings) != 1 || !strings.HasPrefix(sheet.Warnings[0], "@scope skipped") {
		t.Errorf("warnings = %v", sheet.Warnings)
	}
}

func TestParser_SkippedAtRules(t *testing.T) {
	sheet := parse(t, `
@font-face { font-family: "X"; src: url(x.woff) }
@keyframes spin { from { opacity: 0 } to { opacity: 1 } }
@frobnicate { .x { color: red } }
.a { color: red }
`)

	if len(sheet.Rules) != 1 || sheet.Rules[0].Raw != ".a" {
		t.Fatalf("unexpected rules: %+v", sheet.Rules)
	}
	if len(sheet.Warnings) != 1 || !strings.Contains(sheet.Warnings[0], "@frobnicate") {
		t.Errorf("warnings = %v", sheet.Warnings)
	}
}

func TestParser_NilLogger(t *testing.T) {
	sheet := css.NewParser(nil).Parse([]byte(`.a { color: red }`))
	if len(sheet.Rules) != 1 {
		t.Errorf("expected 1 rule, got %d", len(sheet.Rules))
	}
}

func TestStylesheet_RulesBySelector(t *testing.T) {
	sheet := parse(t, `.a { color: red } .b { color: red } .a { margin: 0 }`)

	if got := len(sheet.RulesBySelector(".a")); got != 2 {
		t.Errorf("RulesBySelector(.a) = %d rules, want 2", got)
	}
	if got := len(sheet.RulesBySelector(".c")); got != 0 {
		t.Errorf("RulesBySelector(.c) = %d rules, want 0", got)
	}
}

func TestStylesheet_String(t *testing.T) {
	sheet := parse(t, `@import "x.css"; .a { color: red } @media print { .b { color: red; margin: 0 } }`)

	want := "@import url(\"x.css\");\n" +
		".a { 1 declarations }\n" +
		"@media print .b { 2 declarations }\n"
	if got := sheet.String(); got != want {
		t.Errorf("String() =\n%s\nwant:\n%s", got, want)
	}
}
