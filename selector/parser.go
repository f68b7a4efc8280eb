package selector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// ErrSyntax is returned (wrapped) for selectors which cannot be parsed.
var ErrSyntax = errors.New("invalid selector")

// Parser turns selector text into selector lists.
// NOTE: not safe for concurrent use, case folder keeps state.
type Parser struct {
	log  *zap.Logger
	fold cases.Caser
}

// NewParser creates selector parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("selector-parser"), fold: cases.Fold()}
}

type token struct {
	tt   css.TokenType
	data string
}

func (t token) is(tt css.TokenType, data string) bool {
	return t.tt == tt && t.data == data
}

// Parse parses comma separated list of complex selectors. When parent is not
// nil nesting selector "&" is allowed and refers to it.
func (p *Parser) Parse(text string, parent *List) (*List, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	st := &state{p: p, toks: toks, parent: parent}
	list, err := st.parseList(false, false)
	if err != nil {
		return nil, fmt.Errorf("selector %q: %w", strings.TrimSpace(text), err)
	}
	return list, nil
}

// ParsePage parses @page selector list, for instance "toc:first".
func (p *Parser) ParsePage(text string) (*List, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	st := &state{p: p, toks: toks}
	var complexes [][]Selector
	for {
		seg := st.untilComma()
		c, err := st.sub(seg).parsePageSelector()
		if err != nil {
			return nil, fmt.Errorf("page selector %q: %w", strings.TrimSpace(text), err)
		}
		complexes = append(complexes, c)
		if st.eof() {
			break
		}
		st.next()
	}
	return NewList(complexes...), nil
}

func tokenize(text string) ([]token, error) {
	l := css.NewLexer(parse.NewInputString(text))
	var toks []token
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			return toks, nil
		case css.CommentToken:
			continue
		case css.BadStringToken, css.BadURLToken:
			return nil, fmt.Errorf("%w: malformed token %q", ErrSyntax, string(data))
		}
		toks = append(toks, token{tt: tt, data: string(data)})
	}
}

type state struct {
	p      *Parser
	toks   []token
	pos    int
	parent *List
	inHas  bool
	nested bool
}

func (s *state) sub(toks []token) *state {
	return &state{p: s.p, toks: toks, parent: s.parent, inHas: s.inHas, nested: s.nested}
}

func (s *state) eof() bool {
	return s.pos >= len(s.toks)
}

func (s *state) peek() token {
	if s.eof() {
		return token{tt: css.ErrorToken}
	}
	return s.toks[s.pos]
}

func (s *state) peekAt(n int) token {
	if s.pos+n >= len(s.toks) {
		return token{tt: css.ErrorToken}
	}
	return s.toks[s.pos+n]
}

func (s *state) next() token {
	t := s.peek()
	if !s.eof() {
		s.pos++
	}
	return t
}

func (s *state) skipWS() bool {
	skipped := false
	for !s.eof() && s.toks[s.pos].tt == css.WhitespaceToken {
		s.pos++
		skipped = true
	}
	return skipped
}

func (s *state) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSyntax, fmt.Sprintf(format, args...))
}

// untilComma returns tokens up to the next top level comma, comma itself is
// not consumed.
func (s *state) untilComma() []token {
	start, depth := s.pos, 0
	for ; !s.eof(); s.pos++ {
		switch s.toks[s.pos].tt {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			depth--
		case css.CommaToken:
			if depth == 0 {
				return s.toks[start:s.pos]
			}
		}
	}
	return s.toks[start:s.pos]
}

// untilClose consumes tokens up to matching closing bracket (which is
// consumed as well) and returns everything in between.
func (s *state) untilClose(closing css.TokenType) ([]token, error) {
	start, depth := s.pos, 0
	for ; !s.eof(); s.pos++ {
		switch tt := s.toks[s.pos].tt; tt {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			if depth == 0 {
				if tt != closing {
					return nil, s.errorf("mismatched %q", s.toks[s.pos].data)
				}
				args := s.toks[start:s.pos]
				s.pos++
				return args, nil
			}
			depth--
		}
	}
	return nil, s.errorf("unterminated argument")
}

func (s *state) parseList(forgiving, relative bool) (*List, error) {
	var complexes [][]Selector
	for {
		seg := s.untilComma()
		c, err := s.sub(seg).parseComplex(relative)
		if err != nil {
			if !forgiving {
				return nil, err
			}
			s.p.log.Debug("Dropping invalid selector from forgiving list", zap.Error(err))
		} else {
			complexes = append(complexes, c)
		}
		if s.eof() {
			break
		}
		s.next()
	}
	if len(complexes) == 0 {
		if forgiving {
			return EmptyList(), nil
		}
		return nil, s.errorf("empty selector list")
	}
	return NewList(complexes...), nil
}

type compound struct {
	sels []Selector // source order
	rel  Relation   // relation to the compound on the left
}

func (s *state) combinator() (Relation, bool) {
	t := s.peek()
	if t.tt != css.DelimToken {
		return RelationSubSelector, false
	}
	switch t.data {
	case ">":
		return RelationChild, true
	case "+":
		return RelationDirectAdjacent, true
	case "~":
		return RelationIndirectAdjacent, true
	}
	return RelationSubSelector, false
}

func toRelative(r Relation) Relation {
	switch r {
	case RelationChild:
		return RelationRelativeChild
	case RelationDirectAdjacent:
		return RelationRelativeDirectAdjacent
	case RelationIndirectAdjacent:
		return RelationRelativeIndirectAdjacent
	}
	return RelationRelativeDescendant
}

func (s *state) parseComplex(relative bool) ([]Selector, error) {
	s.skipWS()
	if s.eof() {
		return nil, s.errorf("empty selector")
	}

	leading := RelationSubSelector
	if relative {
		leading = RelationRelativeDescendant
		if r, ok := s.combinator(); ok {
			leading = toRelative(r)
			s.next()
			s.skipWS()
		}
	}

	var (
		compounds []compound
		pending   = leading
	)
	for {
		parts, err := s.parseCompound()
		if err != nil {
			return nil, err
		}
		parts[0].rel = pending
		compounds = append(compounds, parts...)

		ws := s.skipWS()
		if s.eof() {
			break
		}
		if _, ok := s.combinator(); (ok || ws) && hasPseudoElement(parts) {
			return nil, s.errorf("pseudo-element must be in the last compound")
		}
		if r, ok := s.combinator(); ok {
			s.next()
			s.skipWS()
			if s.eof() {
				return nil, s.errorf("dangling combinator")
			}
			pending = r
			continue
		}
		if ws {
			pending = RelationDescendant
			continue
		}
		return nil, s.errorf("unexpected %q", s.peek().data)
	}

	var out []Selector
	for i := len(compounds) - 1; i >= 0; i-- {
		c := compounds[i]
		for j := len(c.sels) - 1; j >= 0; j-- {
			sel := c.sels[j]
			sel.relation = RelationSubSelector
			if j == 0 {
				sel.relation = c.rel
			}
			out = append(out, sel)
		}
	}
	if relative {
		out = append(out, Selector{
			match:  MatchPseudoClass,
			pseudo: PseudoRelativeAnchor,
			data:   Value(PseudoRelativeAnchor.String()),
		})
	}
	return out, nil
}

func implicitUniversal() Selector {
	return Selector{match: MatchTag, implicit: true, data: TagName{LocalName: Universal}}
}

func (s *state) atCompoundEnd() bool {
	if s.eof() {
		return true
	}
	t := s.peek()
	if t.tt == css.WhitespaceToken || t.tt == css.CommaToken {
		return true
	}
	_, ok := s.combinator()
	return ok
}

// parseCompound parses one compound. Shadow pseudo-elements split it into
// several parts joined by shadow relations.
func (s *state) parseCompound() ([]compound, error) {
	var (
		parts []compound
		cur   compound
	)
	if sel, ok, err := s.parseTypeSelector(); err != nil {
		return nil, err
	} else if ok {
		cur.sels = append(cur.sels, sel)
	}

	// pseudo-element which does not start compound part of its own
	var element PseudoType
	for !s.atCompoundEnd() {
		sel, err := s.parseSimple()
		if err != nil {
			return nil, err
		}
		if element != PseudoUnknown && !validAfterPseudoElement(element, &sel) {
			return nil, s.errorf("unexpected selector after ::%s", element)
		}
		if sel.match == MatchPseudoElement {
			if rel, split := sel.pseudo.splitsCompound(); split {
				if len(cur.sels) == 0 {
					cur.sels = append(cur.sels, implicitUniversal())
				}
				parts = append(parts, cur)
				cur = compound{rel: rel, sels: []Selector{sel}}
				element = PseudoUnknown
				continue
			}
			element = sel.pseudo
		}
		cur.sels = append(cur.sels, sel)
	}
	if len(cur.sels) == 0 {
		if s.eof() {
			return nil, s.errorf("expected selector")
		}
		return nil, s.errorf("unexpected %q", s.peek().data)
	}
	return append(parts, cur), nil
}

func hasPseudoElement(parts []compound) bool {
	for _, c := range parts {
		for i := range c.sels {
			if c.sels[i].match == MatchPseudoElement {
				return true
			}
		}
	}
	return false
}

// validAfterPseudoElement allows user action pseudo-classes after any
// pseudo-element and ::marker after ::before and ::after.
func validAfterPseudoElement(element PseudoType, sel *Selector) bool {
	switch sel.match {
	case MatchPseudoClass:
		switch sel.pseudo {
		case PseudoHover, PseudoActive, PseudoFocus, PseudoFocusVisible,
			PseudoFocusWithin, PseudoWindowInactive:
			return true
		}
	case MatchPseudoElement:
		return sel.pseudo == PseudoMarker && (element == PseudoBefore || element == PseudoAfter)
	}
	return false
}

// parseTypeSelector handles "tag", "*", "ns|tag", "*|*" and "|tag".
func (s *state) parseTypeSelector() (Selector, bool, error) {
	t := s.peek()
	var prefix, local string
	hasPrefix := false

	switch {
	case t.tt == css.IdentToken, t.is(css.DelimToken, "*"):
		if s.peekAt(1).is(css.DelimToken, "|") {
			prefix, hasPrefix = t.data, true
			s.pos += 2
		}
	case t.is(css.DelimToken, "|"):
		hasPrefix = true
		s.pos++
	default:
		return Selector{}, false, nil
	}

	t = s.next()
	switch {
	case t.tt == css.IdentToken:
		if !utf8.ValidString(t.data) {
			return Selector{}, false, s.errorf("invalid UTF-8 in type selector")
		}
		local = s.p.fold.String(unescape(t.data))
	case t.is(css.DelimToken, "*"):
		local = Universal
	default:
		if hasPrefix {
			return Selector{}, false, s.errorf("expected type selector after namespace prefix")
		}
		return Selector{}, false, s.errorf("unexpected %q", t.data)
	}
	return Selector{match: MatchTag, data: TagName{Prefix: prefix, LocalName: local}}, true, nil
}

func (s *state) parseSimple() (Selector, error) {
	t := s.next()
	switch {
	case t.tt == css.HashToken:
		id := unescape(t.data[1:])
		if id == "" || (id[0] >= '0' && id[0] <= '9') {
			return Selector{}, s.errorf("invalid id %q", t.data)
		}
		return Selector{match: MatchID, data: Value(id)}, nil

	case t.is(css.DelimToken, "."):
		n := s.next()
		if n.tt != css.IdentToken {
			return Selector{}, s.errorf("expected class name after '.'")
		}
		return Selector{match: MatchClass, data: Value(unescape(n.data))}, nil

	case t.tt == css.LeftBracketToken:
		args, err := s.untilClose(css.RightBracketToken)
		if err != nil {
			return Selector{}, err
		}
		return s.sub(args).parseAttribute()

	case t.is(css.DelimToken, "&"):
		if s.parent == nil {
			return Selector{}, s.errorf("nesting selector outside of nested rule")
		}
		return Selector{match: MatchPseudoClass, pseudo: PseudoParent, data: ParentRule{List: s.parent}}, nil

	case t.tt == css.ColonToken:
		if s.peek().tt == css.ColonToken {
			s.next()
			return s.parsePseudoElement()
		}
		return s.parsePseudoClass()

	case t.tt == css.IdentToken, t.is(css.DelimToken, "*"):
		return Selector{}, s.errorf("type selector %q must come first in compound", t.data)
	}
	if t.tt == css.ErrorToken {
		return Selector{}, s.errorf("unexpected end of selector")
	}
	return Selector{}, s.errorf("unexpected %q", t.data)
}

func (s *state) parseAttribute() (Selector, error) {
	s.skipWS()
	var name QualifiedName
	t := s.next()
	switch {
	case t.tt == css.IdentToken && s.peek().is(css.DelimToken, "|"):
		name.Prefix = t.data
		s.next()
		t = s.next()
	case t.is(css.DelimToken, "*") && s.peek().is(css.DelimToken, "|"):
		name.Prefix = Universal
		s.next()
		t = s.next()
	}
	if t.tt != css.IdentToken {
		return Selector{}, s.errorf("expected attribute name")
	}
	name.LocalName = s.p.fold.String(unescape(t.data))

	rare := &RareData{Attribute: name}
	s.skipWS()
	if s.eof() {
		return Selector{match: MatchAttributeSet, data: rare}, nil
	}

	var match Match
	op := s.next()
	switch {
	case op.is(css.DelimToken, "="):
		match = MatchAttributeExact
	case op.tt == css.IncludeMatchToken:
		match = MatchAttributeList
	case op.tt == css.DashMatchToken:
		match = MatchAttributeHyphen
	case op.tt == css.PrefixMatchToken:
		match = MatchAttributeBegin
	case op.tt == css.SuffixMatchToken:
		match = MatchAttributeEnd
	case op.tt == css.SubstringMatchToken:
		match = MatchAttributeContain
	default:
		return Selector{}, s.errorf("unexpected %q in attribute selector", op.data)
	}

	s.skipWS()
	v := s.next()
	switch v.tt {
	case css.IdentToken:
		rare.Value = unescape(v.data)
	case css.StringToken:
		rare.Value = unquote(v.data)
	default:
		return Selector{}, s.errorf("expected attribute value")
	}

	s.skipWS()
	if f := s.peek(); f.tt == css.IdentToken {
		switch s.p.fold.String(f.data) {
		case "i":
			rare.AttrMatch = AttributeCaseInsensitive
		case "s":
			rare.AttrMatch = AttributeCaseSensitiveAlways
		default:
			return Selector{}, s.errorf("unknown attribute flag %q", f.data)
		}
		s.next()
		s.skipWS()
	}
	if !s.eof() {
		return Selector{}, s.errorf("unexpected %q in attribute selector", s.peek().data)
	}
	return Selector{match: match, data: rare}, nil
}

func (s *state) parsePseudoClass() (Selector, error) {
	t := s.next()
	switch t.tt {
	case css.IdentToken:
		name := s.p.fold.String(t.data)
		if legacyPseudoElements[name] {
			return s.pseudoElement(name)
		}
		pt := LookupPseudoClass(name)
		switch pt {
		case PseudoUnknown:
			return Selector{}, s.errorf("unknown pseudo-class :%s", name)
		case PseudoHost:
		default:
			if pt.NeedsRareData() {
				return Selector{}, s.errorf("pseudo-class :%s requires argument", name)
			}
		}
		return Selector{match: MatchPseudoClass, pseudo: pt, data: Value(name)}, nil

	case css.FunctionToken:
		name := s.p.fold.String(strings.TrimSuffix(t.data, "("))
		args, err := s.untilClose(css.RightParenthesisToken)
		if err != nil {
			return Selector{}, err
		}
		return s.functionalPseudoClass(name, args)
	}
	return Selector{}, s.errorf("expected pseudo-class name")
}

func (s *state) functionalPseudoClass(name string, args []token) (Selector, error) {
	pt := LookupPseudoClass(name)
	rare := &RareData{Value: name}
	sel := Selector{match: MatchPseudoClass, pseudo: pt, data: rare}

	arg := s.sub(args)
	arg.nested = true

	var err error
	switch pt {
	case PseudoIs, PseudoWhere:
		rare.List, err = arg.parseList(true, false)
	case PseudoNot, PseudoAny:
		rare.List, err = arg.parseList(false, false)
	case PseudoHas:
		if s.inHas {
			return Selector{}, s.errorf(":has() cannot be nested")
		}
		arg.inHas = true
		rare.List, err = arg.parseList(false, true)
	case PseudoHost, PseudoHostContext:
		rare.List, err = arg.parseCompoundArgument(name)
	case PseudoNthChild, PseudoNthLastChild, PseudoNthOfType, PseudoNthLastOfType:
		rare.NthA, rare.NthB, err = parseNth(joinTokens(args))
	case PseudoLang, PseudoDir, PseudoState:
		rare.Argument, err = arg.parseIdentArgument(name, pt == PseudoLang)
	case PseudoToggle:
		rare.Toggle, err = arg.parseIdentArgument(name, false)
	default:
		return Selector{}, s.errorf("unknown functional pseudo-class :%s()", name)
	}
	if err != nil {
		return Selector{}, err
	}
	return sel, nil
}

func (s *state) parsePseudoElement() (Selector, error) {
	if s.inHas || s.nested {
		return Selector{}, s.errorf("pseudo-elements are not allowed in nested selectors")
	}
	t := s.next()
	switch t.tt {
	case css.IdentToken:
		return s.pseudoElement(s.p.fold.String(t.data))
	case css.FunctionToken:
		name := s.p.fold.String(strings.TrimSuffix(t.data, "("))
		args, err := s.untilClose(css.RightParenthesisToken)
		if err != nil {
			return Selector{}, err
		}
		pt := LookupPseudoElement(name)
		rare := &RareData{Value: name}
		arg := s.sub(args)
		arg.nested = true
		switch pt {
		case PseudoSlotted:
			rare.List, err = arg.parseCompoundArgument(name)
		case PseudoPart:
			rare.Idents, err = arg.parseIdentList()
		case PseudoHighlight:
			rare.Argument, err = arg.parseIdentArgument(name, false)
		default:
			return Selector{}, s.errorf("unknown functional pseudo-element ::%s()", name)
		}
		if err != nil {
			return Selector{}, err
		}
		return Selector{match: MatchPseudoElement, pseudo: pt, data: rare}, nil
	}
	return Selector{}, s.errorf("expected pseudo-element name")
}

func (s *state) pseudoElement(name string) (Selector, error) {
	if s.inHas || s.nested {
		return Selector{}, s.errorf("pseudo-elements are not allowed in nested selectors")
	}
	pt := LookupPseudoElement(name)
	switch pt {
	case PseudoUnknown:
		return Selector{}, s.errorf("unknown pseudo-element ::%s", name)
	case PseudoSlotted, PseudoPart, PseudoHighlight:
		return Selector{}, s.errorf("pseudo-element ::%s requires argument", name)
	}
	return Selector{match: MatchPseudoElement, pseudo: pt, data: Value(name)}, nil
}

// parseCompoundArgument parses argument of :host(), :host-context() and
// ::slotted() which must be a single compound selector.
func (s *state) parseCompoundArgument(name string) (*List, error) {
	list, err := s.parseList(false, false)
	if err != nil {
		return nil, err
	}
	if !list.IsSingleComplexSelector() || !list.First().IsCompound() {
		return nil, s.errorf("argument of %s() must be a compound selector", name)
	}
	return list, nil
}

func (s *state) parseIdentArgument(name string, allowList bool) (string, error) {
	var vals []string
	for s.skipWS(); !s.eof(); s.skipWS() {
		t := s.next()
		switch t.tt {
		case css.IdentToken:
			vals = append(vals, unescape(t.data))
		case css.StringToken:
			if !allowList {
				return "", s.errorf("unexpected string in %s()", name)
			}
			vals = append(vals, unquote(t.data))
		case css.CommaToken:
			if !allowList {
				return "", s.errorf("unexpected ',' in %s()", name)
			}
			continue
		default:
			return "", s.errorf("unexpected %q in %s()", t.data, name)
		}
	}
	if len(vals) == 0 || (!allowList && len(vals) > 1) {
		return "", s.errorf("invalid argument of %s()", name)
	}
	return strings.Join(vals, ", "), nil
}

func (s *state) parseIdentList() ([]string, error) {
	var idents []string
	for s.skipWS(); !s.eof(); s.skipWS() {
		t := s.next()
		if t.tt != css.IdentToken {
			return nil, s.errorf("unexpected %q in ::part()", t.data)
		}
		idents = append(idents, unescape(t.data))
	}
	if len(idents) == 0 {
		return nil, s.errorf("empty ::part()")
	}
	return idents, nil
}

func (s *state) parsePageSelector() ([]Selector, error) {
	s.skipWS()
	var sels []Selector
	if t := s.peek(); t.tt == css.IdentToken {
		s.next()
		sels = append(sels, Selector{match: MatchTag, data: TagName{LocalName: t.data}})
	}
	for s.skipWS(); !s.eof(); s.skipWS() {
		if s.next().tt != css.ColonToken {
			return nil, s.errorf("expected page pseudo-class")
		}
		t := s.next()
		if t.tt != css.IdentToken {
			return nil, s.errorf("expected page pseudo-class name")
		}
		name := s.p.fold.String(t.data)
		pt, ok := pagePseudoByName[name]
		if !ok {
			return nil, s.errorf("unknown page pseudo-class :%s", name)
		}
		sels = append(sels, Selector{match: MatchPagePseudoClass, pseudo: pt, data: Value(name)})
	}
	if len(sels) == 0 {
		sels = append(sels, implicitUniversal())
	}
	// stored right-to-left as everything else
	for i, j := 0, len(sels)-1; i < j; i, j = i+1, j-1 {
		sels[i], sels[j] = sels[j], sels[i]
	}
	return sels, nil
}

func joinTokens(toks []token) string {
	var sb strings.Builder
	for _, t := range toks {
		sb.WriteString(t.data)
	}
	return sb.String()
}

// parseNth parses An+B notation.
func parseNth(text string) (int, int, error) {
	fields := strings.Fields(strings.ToLower(text))
	for _, f := range fields {
		if f == "of" {
			return 0, 0, fmt.Errorf("%w: 'of <selector>' is not supported", ErrSyntax)
		}
	}
	expr := strings.Join(fields, "")
	switch expr {
	case "":
		return 0, 0, fmt.Errorf("%w: empty An+B expression", ErrSyntax)
	case "odd":
		return 2, 1, nil
	case "even":
		return 2, 0, nil
	}

	aPart, bPart, hasN := strings.Cut(expr, "n")
	if !hasN {
		b, err := strconv.Atoi(expr)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: invalid An+B expression %q", ErrSyntax, text)
		}
		return 0, b, nil
	}

	var a int
	switch aPart {
	case "", "+":
		a = 1
	case "-":
		a = -1
	default:
		v, err := strconv.Atoi(aPart)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: invalid An+B expression %q", ErrSyntax, text)
		}
		a = v
	}

	if bPart == "" {
		return a, 0, nil
	}
	if bPart[0] != '+' && bPart[0] != '-' {
		return 0, 0, fmt.Errorf("%w: invalid An+B expression %q", ErrSyntax, text)
	}
	b, err := strconv.Atoi(bPart)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid An+B expression %q", ErrSyntax, text)
	}
	return a, b, nil
}

// unescape resolves CSS escapes in identifiers.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		j := i
		for j < len(s) && j-i < 6 && isHex(s[j]) {
			j++
		}
		if j == i {
			r, size := utf8.DecodeRuneInString(s[i:])
			sb.WriteRune(r)
			i += size - 1
			continue
		}
		v, _ := strconv.ParseUint(s[i:j], 16, 32)
		if v == 0 || v > utf8.MaxRune {
			v = utf8.RuneError
		}
		sb.WriteRune(rune(v))
		if j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n') {
			j++
		}
		i = j - 1
	}
	return sb.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	return unescape(s)
}
