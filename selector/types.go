// Package selector defines in-memory representation of parsed CSS selectors.
//
// Selectors of one or more complex selectors are stored in a single List
// arena in right-to-left order: the subject (rightmost) compound comes first
// and every simple selector carries relation to the next simple selector in
// the chain.
package selector

// Match is a kind of simple selector.
type Match uint8

const (
	MatchUnknown Match = iota
	MatchTag
	MatchID
	MatchClass
	MatchPseudoClass
	MatchPseudoElement
	MatchPagePseudoClass
	MatchAttributeExact    // [a=b]
	MatchAttributeSet      // [a]
	MatchAttributeHyphen   // [a|=b]
	MatchAttributeList     // [a~=b]
	MatchAttributeContain  // [a*=b]
	MatchAttributeBegin    // [a^=b]
	MatchAttributeEnd      // [a$=b]
)

func (m Match) String() string {
	switch m {
	case MatchTag:
		return "tag"
	case MatchID:
		return "id"
	case MatchClass:
		return "class"
	case MatchPseudoClass:
		return "pseudo-class"
	case MatchPseudoElement:
		return "pseudo-element"
	case MatchPagePseudoClass:
		return "page-pseudo-class"
	case MatchAttributeExact, MatchAttributeSet, MatchAttributeHyphen, MatchAttributeList,
		MatchAttributeContain, MatchAttributeBegin, MatchAttributeEnd:
		return "attribute"
	}
	return "unknown"
}

// IsAttribute reports whether match kind is one of attribute selectors.
func (m Match) IsAttribute() bool {
	return m >= MatchAttributeExact && m <= MatchAttributeEnd
}

// Relation is a combinator joining simple selector to the next one in the
// chain (to the left in source order).
type Relation uint8

const (
	RelationSubSelector Relation = iota // same compound
	RelationDescendant                  // "a b"
	RelationChild                       // "a > b"
	RelationDirectAdjacent              // "a + b"
	RelationIndirectAdjacent            // "a ~ b"

	// Leftmost combinator of relative selectors, :has() arguments.
	RelationRelativeDescendant
	RelationRelativeChild
	RelationRelativeDirectAdjacent
	RelationRelativeIndirectAdjacent

	RelationUAShadow   // ::-webkit-*, ::placeholder and similar
	RelationShadowSlot // ::slotted()
	RelationShadowPart // ::part()

	RelationScopeActivation // @scope boundary
)

func (r Relation) String() string {
	switch r {
	case RelationSubSelector:
		return "sub-selector"
	case RelationDescendant:
		return "descendant"
	case RelationChild:
		return "child"
	case RelationDirectAdjacent:
		return "direct-adjacent"
	case RelationIndirectAdjacent:
		return "indirect-adjacent"
	case RelationRelativeDescendant:
		return "relative-descendant"
	case RelationRelativeChild:
		return "relative-child"
	case RelationRelativeDirectAdjacent:
		return "relative-direct-adjacent"
	case RelationRelativeIndirectAdjacent:
		return "relative-indirect-adjacent"
	case RelationUAShadow:
		return "ua-shadow"
	case RelationShadowSlot:
		return "shadow-slot"
	case RelationShadowPart:
		return "shadow-part"
	case RelationScopeActivation:
		return "scope-activation"
	}
	return "invalid"
}

// IsAdjacent reports sibling combinators.
func (r Relation) IsAdjacent() bool {
	return r == RelationDirectAdjacent || r == RelationIndirectAdjacent
}

// IsRelative reports combinators which may only start relative selector.
func (r Relation) IsRelative() bool {
	return r >= RelationRelativeDescendant && r <= RelationRelativeIndirectAdjacent
}

// IsShadow reports combinators crossing shadow tree boundary.
func (r Relation) IsShadow() bool {
	return r == RelationUAShadow || r == RelationShadowSlot || r == RelationShadowPart
}

// AttributeMatchType controls case sensitivity of attribute value matching.
type AttributeMatchType uint8

const (
	AttributeCaseSensitive       AttributeMatchType = iota
	AttributeCaseInsensitive                        // [a=b i]
	AttributeCaseSensitiveAlways                    // [a=b s]
)

// QualifiedName is a possibly namespaced element or attribute name.
type QualifiedName struct {
	Prefix       string
	LocalName    string
	NamespaceURI string
}

// Universal is the local name of universal type selector.
const Universal = "*"

// IsUniversal reports whether name matches any element.
func (q QualifiedName) IsUniversal() bool {
	return q.LocalName == Universal
}

func (q QualifiedName) String() string {
	if len(q.Prefix) > 0 {
		return q.Prefix + "|" + q.LocalName
	}
	return q.LocalName
}

// Data is a payload of the simple selector, one of Value, TagName,
// ParentRule or *RareData.
type Data interface {
	isData()
}

// Value holds name of id, class or pseudo selector.
type Value string

// TagName holds qualified name of type selector.
type TagName QualifiedName

// ParentRule refers to the selector list of the enclosing rule, payload of
// nesting selector "&".
type ParentRule struct {
	List *List
}

// RareData keeps everything which does not fit into other variants.
type RareData struct {
	Value     string             // attribute value or pseudo name
	Attribute QualifiedName      // attribute selectors
	AttrMatch AttributeMatchType // attribute selectors
	NthA      int                // :nth-*() coefficients
	NthB      int
	List      *List    // nested selector list, nil when absent
	Argument  string   // :lang(), :dir(), :state(), ::highlight()
	Idents    []string // ::part()
	Toggle    string   // :toggle()
}

func (Value) isData()      {}
func (TagName) isData()    {}
func (ParentRule) isData() {}
func (*RareData) isData()  {}

// Selector is one simple selector.
type Selector struct {
	match         Match
	pseudo        PseudoType
	relation      Relation
	lastInComplex bool
	lastInList    bool
	implicit      bool // inserted by parser, not serialized
	data          Data
}

// Match returns kind of the simple selector.
func (s *Selector) Match() Match { return s.match }

// Pseudo returns pseudo type, PseudoUnknown for non pseudo selectors.
func (s *Selector) Pseudo() PseudoType { return s.pseudo }

// Relation returns combinator to the next simple selector in the chain.
func (s *Selector) Relation() Relation { return s.relation }

// IsLastInComplex reports whether this is the leftmost simple selector of its
// complex selector.
func (s *Selector) IsLastInComplex() bool { return s.lastInComplex }

// IsLastInList reports whether this is the final selector of the list arena.
func (s *Selector) IsLastInList() bool { return s.lastInList }

// IsLastInCompound reports whether this simple selector ends its compound.
func (s *Selector) IsLastInCompound() bool {
	return s.lastInComplex || s.relation != RelationSubSelector
}

// IsImplicit reports selectors added by the parser (for instance universal
// selector before ::slotted()).
func (s *Selector) IsImplicit() bool { return s.implicit }

// Data returns raw payload.
func (s *Selector) Data() Data { return s.data }

// Value returns id, class or pseudo name, or attribute value.
func (s *Selector) Value() string {
	switch d := s.data.(type) {
	case Value:
		return string(d)
	case *RareData:
		return d.Value
	}
	return ""
}

// TagQName returns name of type selector.
func (s *Selector) TagQName() QualifiedName {
	if d, ok := s.data.(TagName); ok {
		return QualifiedName(d)
	}
	return QualifiedName{}
}

// Attribute returns name of attribute selector.
func (s *Selector) Attribute() QualifiedName {
	if d, ok := s.data.(*RareData); ok {
		return d.Attribute
	}
	return QualifiedName{}
}

// AttributeMatch returns case sensitivity of attribute selector.
func (s *Selector) AttributeMatch() AttributeMatchType {
	if d, ok := s.data.(*RareData); ok {
		return d.AttrMatch
	}
	return AttributeCaseSensitive
}

// Nth returns a and b of An+B notation.
func (s *Selector) Nth() (int, int) {
	if d, ok := s.data.(*RareData); ok {
		return d.NthA, d.NthB
	}
	return 0, 0
}

// Argument returns free form argument of functional pseudo.
func (s *Selector) Argument() string {
	if d, ok := s.data.(*RareData); ok {
		return d.Argument
	}
	return ""
}

// Idents returns ::part() names.
func (s *Selector) Idents() []string {
	if d, ok := s.data.(*RareData); ok {
		return d.Idents
	}
	return nil
}

// SelectorList returns nested selector list. For nesting selector it returns
// the list of the parent rule. Nil means there is no list, which is different
// from empty list left after forgiving parsing.
func (s *Selector) SelectorList() *List {
	switch d := s.data.(type) {
	case *RareData:
		return d.List
	case ParentRule:
		return d.List
	}
	return nil
}

// IsIDClassOrAttributeSelector reports selectors which are keys of
// invalidation sets.
func (s *Selector) IsIDClassOrAttributeSelector() bool {
	return s.match == MatchID || s.match == MatchClass || s.match.IsAttribute()
}

// IsAttributeSelector reports attribute selectors.
func (s *Selector) IsAttributeSelector() bool {
	return s.match.IsAttribute()
}

// IsHostPseudoClass reports :host and :host-context.
func (s *Selector) IsHostPseudoClass() bool {
	return s.pseudo == PseudoHost || s.pseudo == PseudoHostContext
}

// IsUniversalTag reports universal type selector.
func (s *Selector) IsUniversalTag() bool {
	return s.match == MatchTag && s.TagQName().IsUniversal()
}
