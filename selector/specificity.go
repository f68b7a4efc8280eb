package selector

import "fmt"

// Specificity packs (id, class-like, tag) counters into separate bytes.
type Specificity uint32

const (
	IDSpecificity        Specificity = 0x10000
	ClassLikeSpecificity Specificity = 0x100
	TagSpecificity       Specificity = 0x1

	laneMask = 0xFF
)

// Lanes returns individual counters.
func (s Specificity) Lanes() (id, class, tag uint8) {
	return uint8(s >> 16 & laneMask), uint8(s >> 8 & laneMask), uint8(s & laneMask)
}

// Add sums specificities lane by lane, saturating every lane at 0xFF.
func (s Specificity) Add(o Specificity) Specificity {
	var res Specificity
	for shift := 0; shift <= 16; shift += 8 {
		v := (s>>shift)&laneMask + (o>>shift)&laneMask
		if v > laneMask {
			v = laneMask
		}
		res |= v << shift
	}
	return res
}

// Less compares specificities, id lane first.
func (s Specificity) Less(o Specificity) bool {
	return s < o
}

func (s Specificity) String() string {
	id, class, tag := s.Lanes()
	return fmt.Sprintf("(%d,%d,%d)", id, class, tag)
}

// Specificity computes specificity of the complex selector starting at r.
func (r Ref) Specificity() Specificity {
	var total Specificity
	for cur := range r.Simples() {
		total = total.Add(cur.Selector().specificityForOne())
	}
	return total
}

// MaximumSpecificity returns the largest specificity among complex selectors
// of the list, zero for empty or absent list.
func (l *List) MaximumSpecificity() Specificity {
	var m Specificity
	for c := range l.Complexes() {
		m = max(m, c.Specificity())
	}
	return m
}

func (s *Selector) specificityForOne() Specificity {
	switch s.match {
	case MatchID:
		return IDSpecificity
	case MatchPseudoClass:
		switch s.pseudo {
		case PseudoWhere, PseudoRelativeAnchor:
			return 0
		case PseudoHost:
			if s.SelectorList() == nil {
				return ClassLikeSpecificity
			}
			return ClassLikeSpecificity.Add(s.SelectorList().MaximumSpecificity())
		case PseudoHostContext:
			return ClassLikeSpecificity.Add(s.SelectorList().MaximumSpecificity())
		case PseudoIs, PseudoNot, PseudoHas, PseudoAny, PseudoParent:
			return s.SelectorList().MaximumSpecificity()
		}
		return ClassLikeSpecificity
	case MatchPseudoElement:
		if s.pseudo == PseudoSlotted {
			return ClassLikeSpecificity.Add(s.SelectorList().MaximumSpecificity())
		}
		return TagSpecificity
	case MatchClass, MatchAttributeExact, MatchAttributeSet, MatchAttributeHyphen,
		MatchAttributeList, MatchAttributeContain, MatchAttributeBegin, MatchAttributeEnd:
		return ClassLikeSpecificity
	case MatchTag:
		if s.TagQName().IsUniversal() {
			return 0
		}
		return TagSpecificity
	case MatchPagePseudoClass:
		return 0
	}
	panic(fmt.Sprintf("specificity requested for selector of unknown match kind %d", s.match))
}

// SpecificityForPage computes specificity of @page selector: type selector
// counts 4, :first 2, :left and :right 1.
func (r Ref) SpecificityForPage() uint32 {
	var s uint32
	for cur := range r.Simples() {
		sel := cur.Selector()
		switch sel.match {
		case MatchTag:
			if !sel.TagQName().IsUniversal() {
				s += 4
			}
		case MatchPagePseudoClass:
			switch sel.pseudo {
			case PseudoFirstPage:
				s += 2
			case PseudoLeftPage, PseudoRightPage:
				s++
			case PseudoBlankPage:
			default:
				panic(fmt.Sprintf("unexpected page pseudo class %s", sel.pseudo))
			}
		}
	}
	return s
}
