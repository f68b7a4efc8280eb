package inspect_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/net/html"

	"cssinval/config"
	"cssinval/features"
	"cssinval/inspect"
	"cssinval/selector"
)

func build(t *testing.T, rules ...string) *features.RuleFeatureSet {
	t.Helper()
	log := zaptest.NewLogger(t)
	parser := selector.NewParser(log)
	r := features.New(features.WithLogger(log))
	for _, rule := range rules {
		list, err := parser.Parse(rule, nil)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", rule, err)
		}
		r.CollectFeaturesFromList(list, nil)
	}
	return r
}

func TestWriteIndex(t *testing.T) {
	r := build(t, ".a .b")

	tests := []struct {
		format config.DumpFormat
		want   string
	}{
		{config.DumpFormatLine, "CLASS a { .b }\n"},
		{config.DumpFormatTree, "RuleFeatureSet\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := inspect.WriteIndex(&buf, r, tt.format); err != nil {
				t.Fatalf("WriteIndex() error = %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("WriteIndex() misses %q in:\n%s", tt.want, buf.String())
			}
		})
	}

	if err := inspect.WriteIndex(&bytes.Buffer{}, r, config.DumpFormat(42)); !errors.Is(err, config.ErrInvalidDumpFormat) {
		t.Errorf("WriteIndex() with unknown format error = %v", err)
	}
}

func TestQuery_Collect(t *testing.T) {
	r := build(t, ".a .b", "#x + .c", ".d:hover .e", ":nth-child(2) .f", "[lang] span")

	tests := []struct {
		name  string
		query inspect.Query
		want  []string
	}{
		{
			name:  "class",
			query: inspect.Query{Classes: []string{"a", "missing"}},
			want:  []string{"class a: descendants: { .b } siblings:", "class missing: descendants: siblings:"},
		},
		{
			name:  "attribute",
			query: inspect.Query{Attributes: []string{"lang"}},
			want:  []string{"attr lang: descendants: { span } siblings:"},
		},
		{
			name:  "pseudo with colon",
			query: inspect.Query{Pseudos: []string{":HOVER"}},
			want:  []string{"pseudo :hover: descendants: { .e } siblings:"},
		},
		{
			name:  "descendant set ignored in sibling mode",
			query: inspect.Query{Classes: []string{"a"}, Siblings: 1},
			want:  []string{"class a: descendants: siblings:", "universal-sibling: descendants: siblings:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := tt.query.Collect(r, nil)
			if err != nil {
				t.Fatalf("Collect() error = %v", err)
			}
			var got []string
			for _, res := range results {
				got = append(got, res.String())
			}
			if strings.Join(got, "\n") != strings.Join(tt.want, "\n") {
				t.Errorf("Collect() =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(tt.want, "\n"))
			}
		})
	}
}

func TestQuery_CollectSiblings(t *testing.T) {
	r := build(t, "#x + .c")

	results, err := inspect.Query{IDs: []string{"x"}, Siblings: 1}.Collect(r, nil)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got := len(results[0].Lists.Siblings); got != 1 {
		t.Errorf("expected sibling set for #x, got %d", got)
	}

	results, err = inspect.Query{IDs: []string{"x"}, Siblings: 2}.Collect(r, nil)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if !results[0].Lists.IsEmpty() {
		t.Errorf("sibling set reaching one sibling must not be collected for two: %s", results[0])
	}
}

func TestQuery_CollectNthAndPart(t *testing.T) {
	r := build(t, ":nth-child(2) .f", "x-host::part(label)")

	results, err := inspect.Query{Nth: true, Part: true}.Collect(r, nil)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Lists.IsEmpty() {
			t.Errorf("%s set is empty", res.Kind)
		}
	}
}

func TestQuery_UnknownPseudo(t *testing.T) {
	_, err := inspect.Query{Pseudos: []string{"bogus"}}.Collect(build(t, ".a"), nil)
	if !errors.Is(err, inspect.ErrUnknownPseudo) {
		t.Errorf("Collect() error = %v, want ErrUnknownPseudo", err)
	}
}

func TestCheckHas(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<div class="b"><span></span></div><p id="q"></p>`))
	if err != nil {
		t.Fatal(err)
	}

	results := inspect.CheckHas(build(t, ".a:has(.b)", ".c:has(> #q)"), doc)

	var got []string
	for _, r := range results {
		got = append(got, r.String())
	}
	want := []string{
		"- html",
		"-   head",
		"-   body",
		"+     div.b",
		"-       span",
		"+     p#q",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("CheckHas() =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}
