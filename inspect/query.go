// Package inspect implements program subcommands working with invalidation
// index: dumping it, looking up invalidation sets and checking documents
// against :has() argument index.
package inspect

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"cssinval/config"
	"cssinval/features"
	"cssinval/invalidation"
	"cssinval/selector"
)

var ErrUnknownPseudo = errors.New("unknown pseudo-class")

// WriteIndex outputs feature set in requested format.
func WriteIndex(w io.Writer, rfs *features.RuleFeatureSet, format config.DumpFormat) error {
	var out string
	switch format {
	case config.DumpFormatLine:
		out = rfs.String()
	case config.DumpFormatTree:
		out = rfs.DumpTree()
	default:
		return fmt.Errorf("unable to dump index: %w", config.ErrInvalidDumpFormat)
	}
	_, err := io.WriteString(w, out)
	return err
}

// Query describes a change of a single element.
type Query struct {
	Classes    []string
	IDs        []string
	Attributes []string
	Pseudos    []string
	// Nth adds structural set, Part adds ::part() set.
	Nth  bool
	Part bool
	// Siblings switches lookup to sibling sets reaching at least that many
	// direct adjacent siblings, as used when a sibling of the element is
	// inserted or removed. 0 means element itself changed.
	Siblings uint32
}

// Result holds invalidation sets scheduled for one feature of the query.
type Result struct {
	Kind  string
	Key   string
	Lists invalidation.Lists
}

func (r Result) String() string {
	if len(r.Key) == 0 {
		return fmt.Sprintf("%s: %s", r.Kind, &r.Lists)
	}
	return fmt.Sprintf("%s %s: %s", r.Kind, r.Key, &r.Lists)
}

func lookupPseudo(name string) (selector.PseudoType, error) {
	pt := selector.LookupPseudoClass(strings.ToLower(strings.TrimPrefix(name, ":")))
	if pt == selector.PseudoUnknown {
		return pt, fmt.Errorf("%q: %w", name, ErrUnknownPseudo)
	}
	return pt, nil
}

// Collect performs index lookups for every feature of the query, el is only
// used for tracing and may be nil.
func (q Query) Collect(rfs *features.RuleFeatureSet, el *html.Node) ([]Result, error) {
	var results []Result

	add := func(kind, key string, collect func(*invalidation.Lists), sibling func(*invalidation.Lists)) {
		res := Result{Kind: kind, Key: key}
		if q.Siblings > 0 && sibling != nil {
			sibling(&res.Lists)
		} else {
			collect(&res.Lists)
		}
		results = append(results, res)
	}

	for _, c := range q.Classes {
		add("class", c,
			func(l *invalidation.Lists) { rfs.CollectInvalidationSetsForClass(l, el, c) },
			func(l *invalidation.Lists) { rfs.CollectSiblingInvalidationSetForClass(l, el, c, q.Siblings) })
	}
	for _, id := range q.IDs {
		add("id", id,
			func(l *invalidation.Lists) { rfs.CollectInvalidationSetsForID(l, el, id) },
			func(l *invalidation.Lists) { rfs.CollectSiblingInvalidationSetForID(l, el, id, q.Siblings) })
	}
	for _, a := range q.Attributes {
		add("attr", a,
			func(l *invalidation.Lists) { rfs.CollectInvalidationSetsForAttribute(l, el, a) },
			func(l *invalidation.Lists) { rfs.CollectSiblingInvalidationSetForAttribute(l, el, a, q.Siblings) })
	}
	for _, p := range q.Pseudos {
		pt, err := lookupPseudo(p)
		if err != nil {
			return nil, err
		}
		add("pseudo", ":"+pt.String(),
			func(l *invalidation.Lists) { rfs.CollectInvalidationSetsForPseudoClass(l, el, pt) },
			func(l *invalidation.Lists) { rfs.CollectSiblingInvalidationSetForPseudoClass(l, el, pt, q.Siblings) })
	}
	if q.Nth {
		add("nth", "", rfs.CollectNthInvalidationSet, nil)
	}
	if q.Part {
		add("part", "", rfs.CollectPartInvalidationSet, nil)
	}
	if q.Siblings > 0 {
		add("universal-sibling", "", nil, func(l *invalidation.Lists) {
			rfs.CollectUniversalSiblingInvalidationSet(l, q.Siblings)
		})
	}
	return results, nil
}

// HasResult tells whether inserting or removing element requires :has()
// invalidation.
type HasResult struct {
	Element string
	Depth   int
	Needs   bool
}

func (r HasResult) String() string {
	mark := "-"
	if r.Needs {
		mark = "+"
	}
	return fmt.Sprintf("%s %s%s", mark, strings.Repeat("  ", r.Depth), r.Element)
}

// CheckHas walks document elements in tree order.
func CheckHas(rfs *features.RuleFeatureSet, doc *html.Node) []HasResult {
	var results []HasResult
	var walk func(n *html.Node, depth int)
	walk = func(n *html.Node, depth int) {
		if n.Type == html.ElementNode {
			results = append(results, HasResult{
				Element: features.DescribeNode(n),
				Depth:   depth,
				Needs:   rfs.NeedsHasInvalidationForInsertedOrRemovedElement(n),
			})
			depth++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, depth)
		}
	}
	walk(doc, 0)
	return results
}
