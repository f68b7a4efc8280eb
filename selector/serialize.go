package selector

import (
	"strconv"
	"strings"
)

// String serializes list back to CSS text in source order.
func (l *List) String() string {
	var sb strings.Builder
	first := true
	for c := range l.Complexes() {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(c.String())
	}
	return sb.String()
}

// String serializes complex selector starting at r.
func (r Ref) String() string {
	// gather compounds, rightmost first
	var compounds [][]*Selector
	var cur []*Selector
	for ref := range r.Simples() {
		sel := ref.Selector()
		cur = append(cur, sel)
		if sel.IsLastInCompound() {
			compounds = append(compounds, cur)
			cur = nil
		}
	}

	var sb strings.Builder
	for i := len(compounds) - 1; i >= 0; i-- {
		c := compounds[i]
		sb.WriteString(combinatorText(c[len(c)-1].relation))
		for j := len(c) - 1; j >= 0; j-- {
			writeSimple(&sb, c[j])
		}
	}
	return sb.String()
}

func combinatorText(r Relation) string {
	switch r {
	case RelationDescendant:
		return " "
	case RelationChild:
		return " > "
	case RelationDirectAdjacent:
		return " + "
	case RelationIndirectAdjacent:
		return " ~ "
	case RelationRelativeChild:
		return "> "
	case RelationRelativeDirectAdjacent:
		return "+ "
	case RelationRelativeIndirectAdjacent:
		return "~ "
	}
	return ""
}

func writeSimple(sb *strings.Builder, s *Selector) {
	switch s.match {
	case MatchTag:
		if !s.implicit {
			sb.WriteString(s.TagQName().String())
		}
	case MatchID:
		sb.WriteString("#" + s.Value())
	case MatchClass:
		sb.WriteString("." + s.Value())
	case MatchPagePseudoClass:
		sb.WriteString(":" + s.Value())
	case MatchPseudoClass:
		writePseudo(sb, ":", s)
	case MatchPseudoElement:
		writePseudo(sb, "::", s)
	default:
		if s.match.IsAttribute() {
			writeAttribute(sb, s)
		}
	}
}

func writePseudo(sb *strings.Builder, prefix string, s *Selector) {
	switch s.pseudo {
	case PseudoRelativeAnchor:
		return
	case PseudoParent:
		sb.WriteString("&")
		return
	}

	sb.WriteString(prefix + s.Value())
	rare, ok := s.data.(*RareData)
	if !ok {
		return
	}
	sb.WriteString("(")
	switch {
	case s.pseudo.IsNth():
		sb.WriteString(formatNth(rare.NthA, rare.NthB))
	case rare.List != nil:
		sb.WriteString(rare.List.String())
	case len(rare.Idents) > 0:
		sb.WriteString(strings.Join(rare.Idents, " "))
	case rare.Toggle != "":
		sb.WriteString(rare.Toggle)
	default:
		sb.WriteString(rare.Argument)
	}
	sb.WriteString(")")
}

func writeAttribute(sb *strings.Builder, s *Selector) {
	sb.WriteString("[" + s.Attribute().String())
	op := ""
	switch s.match {
	case MatchAttributeExact:
		op = "="
	case MatchAttributeHyphen:
		op = "|="
	case MatchAttributeList:
		op = "~="
	case MatchAttributeContain:
		op = "*="
	case MatchAttributeBegin:
		op = "^="
	case MatchAttributeEnd:
		op = "$="
	}
	if op != "" {
		sb.WriteString(op + strconv.Quote(s.Value()))
		switch s.AttributeMatch() {
		case AttributeCaseInsensitive:
			sb.WriteString(" i")
		case AttributeCaseSensitiveAlways:
			sb.WriteString(" s")
		}
	}
	sb.WriteString("]")
}

func formatNth(a, b int) string {
	if a == 0 {
		return strconv.Itoa(b)
	}
	var sb strings.Builder
	switch a {
	case 1:
	case -1:
		sb.WriteString("-")
	default:
		sb.WriteString(strconv.Itoa(a))
	}
	sb.WriteString("n")
	switch {
	case b > 0:
		sb.WriteString("+" + strconv.Itoa(b))
	case b < 0:
		sb.WriteString(strconv.Itoa(b))
	}
	return sb.String()
}
