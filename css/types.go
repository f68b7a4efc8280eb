package css

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"cssinval/selector"
)

// cssEscapeDoubleQuoted escapes a string for use inside CSS double quotes.
// Backslashes and double quotes are escaped per CSS syntax: \" and \\.
func cssEscapeDoubleQuoted(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MediaQuery represents one comma separated query of @media prelude.
type MediaQuery struct {
	Raw      string         // Original query text
	Type     string         // Media type ("screen", "print", "all") or empty
	Negated  bool           // "not" modifier on the query
	Only     bool           // "only" modifier on the query
	Features []MediaFeature // Parenthesized conditions, nested groups flattened
}

// MediaFeature represents a single media feature condition in a media query.
type MediaFeature struct {
	Name    string // Lower case feature name (e.g. "min-width", "prefers-color-scheme")
	Value   Value  // Compared value, empty for boolean features like "(hover)"
	Negated bool   // true when the condition sits under "not"
}

// String returns the media query text.
func (mq MediaQuery) String() string {
	return mq.Raw
}

// Value represents a parsed CSS value.
type Value struct {
	Raw     string  // Original CSS value string (e.g., "1.2em", "bold", "#ff0000")
	Value   float64 // Numeric value if applicable
	Unit    string  // Lower case unit if applicable: "em", "px", "%", "vw", etc.
	Keyword string  // Keyword if applicable: "bold", "dark", "landscape", etc.
}

// IsNumeric returns true if the value has a numeric component.
// This includes explicit zero values like "0" or "0px".
func (v Value) IsNumeric() bool {
	if v.Unit != "" {
		return true
	}
	if v.Value != 0 && v.Keyword == "" {
		return true
	}
	if v.Raw != "" && v.Keyword == "" {
		firstChar := rune(v.Raw[0])
		if unicode.IsDigit(firstChar) || firstChar == '.' || firstChar == '-' || firstChar == '+' {
			return true
		}
	}
	return false
}

// IsKeyword returns true if the value is a keyword (no numeric component).
func (v Value) IsKeyword() bool {
	return v.Keyword != "" && v.Unit == ""
}

// Declaration is a single property declaration of a style rule. Values are
// kept as written, the index never looks at them.
type Declaration struct {
	Property  string
	Value     Value
	Important bool
}

// Rule is a style rule: selector list plus declarations, together with the
// conditional context it was found in.
type Rule struct {
	Raw          string               // Selector text as written
	Selectors    *selector.List       // Parsed selector list
	Declarations []Declaration        // Declarations in source order
	Media        []MediaQuery         // Queries of all enclosing @media blocks
	Scope        *selector.StyleScope // Innermost enclosing @scope, nil when unscoped
}

// GetDeclaration returns the last declaration for a property.
func (r Rule) GetDeclaration(name string) (Declaration, bool) {
	for i := len(r.Declarations) - 1; i >= 0; i-- {
		if r.Declarations[i].Property == name {
			return r.Declarations[i], true
		}
	}
	return Declaration{}, false
}

// Stylesheet represents a parsed CSS stylesheet.
type Stylesheet struct {
	Source   string   // Name of the stylesheet, may be empty
	Rules    []Rule   // Style rules in source order, nested blocks flattened
	Imports  []string // @import URLs in source order
	Warnings []string // Skipped constructs and selector errors
}

// SelectorCount returns number of complex selectors in all rules.
func (s *Stylesheet) SelectorCount() int {
	n := 0
	for _, r := range s.Rules {
		n += r.Selectors.ComplexCount()
	}
	return n
}

// RulesBySelector returns all rules whose selector text matches.
func (s *Stylesheet) RulesBySelector(sel string) []Rule {
	var matches []Rule
	for _, r := range s.Rules {
		if r.Raw == sel {
			matches = append(matches, r)
		}
	}
	return matches
}

func (s *Stylesheet) warnf(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// WriteTo writes a normalized listing of the stylesheet to w, one rule per
// line with its conditions, implementing io.WriterTo.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, url := range s.Imports {
		n, err := fmt.Fprintf(w, "@import url(\"%s\");\n", cssEscapeDoubleQuoted(url))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	for _, r := range s.Rules {
		var prefix strings.Builder
		for _, mq := range r.Media {
			fmt.Fprintf(&prefix, "@media %s ", mq.Raw)
		}
		if r.Scope != nil {
			prefix.WriteString("@scope ")
		}
		n, err := fmt.Fprintf(w, "%s%s { %d declarations }\n", prefix.String(), r.Selectors, len(r.Declarations))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// String returns the listing produced by WriteTo.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}
