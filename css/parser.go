package css

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"cssinval/selector"
)

// Parser parses CSS stylesheets into style rules with parsed selectors.
type Parser struct {
	log *zap.Logger
	sel *selector.Parser
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser"), sel: selector.NewParser(log)}
}

// blockContext is the conditional context of rules being parsed.
type blockContext struct {
	media []MediaQuery
	scope *selector.StyleScope
}

func (c blockContext) withMedia(queries []MediaQuery) blockContext {
	media := make([]MediaQuery, 0, len(c.media)+len(queries))
	media = append(media, c.media...)
	c.media = append(media, queries...)
	return c
}

// Parse parses CSS text into a Stylesheet.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{}

	if len(source) > 0 && source[0] != "" {
		sheet.Source = source[0]
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	p.parseRuleList(newGrammar(data), sheet, blockContext{})
	return sheet
}

func newGrammar(data []byte) *css.Parser {
	return css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
}

// parseRuleList consumes rules until end of input or end of the enclosing
// at-rule block. Blocks the grammar does not know are delivered as plain
// tokens, they are collected and parsed again as a rule list.
func (p *Parser) parseRuleList(parser *css.Parser, sheet *Stylesheet, ctx blockContext) {
	var (
		pending []string
		raw     bytes.Buffer
	)

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				p.log.Debug("CSS parse error", zap.Error(err))
			}
			p.parseRaw(&raw, sheet, ctx)
			return

		case css.EndAtRuleGrammar:
			p.parseRaw(&raw, sheet, ctx)
			return

		case css.TokenGrammar:
			raw.Write(data)

		case css.BeginAtRuleGrammar:
			p.parseBlockAtRule(parser, sheet, ctx, strings.ToLower(string(data)))

		case css.AtRuleGrammar:
			p.parseStatementAtRule(parser, sheet, strings.ToLower(string(data)))

		case css.QualifiedRuleGrammar:
			// Grammar reports every comma separated part of a selector list
			// before the one opening the block.
			pending = append(pending, tokensText(data, parser.Values()))

		case css.BeginRulesetGrammar:
			text := strings.Join(append(pending, tokensText(data, parser.Values())), ",")
			pending = nil
			p.parseRuleset(parser, sheet, ctx, text)
		}
	}
}

// parseRaw parses collected block tokens as a nested rule list.
func (p *Parser) parseRaw(raw *bytes.Buffer, sheet *Stylesheet, ctx blockContext) {
	if len(bytes.TrimSpace(raw.Bytes())) == 0 {
		return
	}
	data := bytes.Clone(raw.Bytes())
	raw.Reset()
	p.parseRuleList(newGrammar(data), sheet, ctx)
}

func (p *Parser) parseBlockAtRule(parser *css.Parser, sheet *Stylesheet, ctx blockContext, name string) {
	switch name {
	case "@media":
		queries := p.parseMediaQueryList(parser.Values())
		p.log.Debug("Parsed @media block", zap.Int("queries", len(queries)))
		p.parseRuleList(parser, sheet, ctx.withMedia(queries))

	case "@supports", "@layer", "@container", "@document", "@-moz-document":
		// Conditions are not evaluated, rules are indexed unconditionally.
		p.log.Debug("Entering conditional block", zap.String("rule", name))
		p.parseRuleList(parser, sheet, ctx)

	case "@scope":
		scope, err := p.parseScopePrelude(parser.Values(), ctx.scope)
		if err != nil {
			sheet.warnf("@scope skipped: %v", err)
			p.log.Debug("Skipping @scope block", zap.Error(err))
			p.skipAtRuleBlock(parser)
			return
		}
		ctx.scope = scope
		p.parseRuleList(parser, sheet, ctx)

	case "@font-face", "@keyframes", "@-webkit-keyframes", "@page", "@counter-style",
		"@property", "@font-feature-values", "@font-palette-values", "@view-transition":
		p.log.Debug("Skipping @-rule without style rules", zap.String("rule", name))
		p.skipAtRuleBlock(parser)

	default:
		sheet.warnf("unsupported at-rule %s skipped", name)
		p.log.Debug("Skipping @-rule", zap.String("rule", name))
		p.skipAtRuleBlock(parser)
	}
}

func (p *Parser) parseStatementAtRule(parser *css.Parser, sheet *Stylesheet, name string) {
	switch name {
	case "@import":
		if url := extractImportURL(parser.Values()); url != "" {
			sheet.Imports = append(sheet.Imports, url)
			p.log.Debug("Parsed @import", zap.String("url", url))
		}
	case "@charset", "@namespace", "@layer":
		p.log.Debug("Ignoring @-rule", zap.String("rule", name))
	default:
		sheet.warnf("unsupported at-rule %s skipped", name)
		p.log.Debug("Skipping @-rule", zap.String("rule", name))
	}
}

// parseRuleset parses selector list and declarations of a style rule.
func (p *Parser) parseRuleset(parser *css.Parser, sheet *Stylesheet, ctx blockContext, text string) {
	text = strings.TrimSpace(text)
	decls := p.parseDeclarations(parser, sheet, text)

	list, err := p.sel.Parse(text, p.nestingParent(ctx.scope))
	if err != nil {
		sheet.warnf("rule skipped: %v", err)
		p.log.Debug("Skipping rule with invalid selector", zap.String("selector", text), zap.Error(err))
		return
	}

	sheet.Rules = append(sheet.Rules, Rule{
		Raw:          text,
		Selectors:    list,
		Declarations: decls,
		Media:        ctx.media,
		Scope:        ctx.scope,
	})
}

// nestingParent returns the list "&" refers to inside the scope: scope start
// or :scope for implicit scopes.
func (p *Parser) nestingParent(scope *selector.StyleScope) *selector.List {
	if scope == nil {
		return nil
	}
	if scope.From != nil {
		return scope.From
	}
	list, err := p.sel.Parse(":scope", nil)
	if err != nil {
		panic(err)
	}
	return list
}

// parseScopePrelude parses "(<start>) [to (<end>)]". Both parts are
// optional, without start the scope is rooted at the owner node.
func (p *Parser) parseScopePrelude(tokens []css.Token, parent *selector.StyleScope) (*selector.StyleScope, error) {
	scope := &selector.StyleScope{Parent: parent}

	groups, err := scopeGroups(tokens)
	if err != nil {
		return nil, err
	}

	if text, ok := groups["start"]; ok {
		scope.From, err = p.sel.Parse(text, p.nestingParent(parent))
		if err != nil {
			return nil, err
		}
	}
	if text, ok := groups["end"]; ok {
		scope.To, err = p.sel.Parse(text, p.nestingParent(scope))
		if err != nil {
			return nil, err
		}
	}
	return scope, nil
}

var errScopePrelude = errors.New("invalid @scope prelude")

func scopeGroups(tokens []css.Token) (map[string]string, error) {
	groups := make(map[string]string)
	key := "start"
	depth := 0
	var sb strings.Builder

	for _, t := range tokens {
		switch {
		case depth == 0 && t.TokenType == css.WhitespaceToken:
		case depth == 0 && t.TokenType == css.IdentToken && strings.EqualFold(string(t.Data), "to"):
			if key != "start" {
				return nil, errScopePrelude
			}
			key = "end"
		case depth == 0 && t.TokenType == css.LeftParenthesisToken:
			if _, dup := groups[key]; dup {
				return nil, errScopePrelude
			}
			depth++
		case depth == 0:
			return nil, errScopePrelude
		case t.TokenType == css.RightParenthesisToken && depth == 1:
			depth--
			groups[key] = sb.String()
			sb.Reset()
		default:
			switch t.TokenType {
			case css.LeftParenthesisToken, css.FunctionToken:
				depth++
			case css.RightParenthesisToken:
				depth--
			}
			sb.Write(t.Data)
		}
	}
	if depth != 0 || (key == "end" && groups["end"] == "") {
		return nil, errScopePrelude
	}
	return groups, nil
}

// tokensText joins token data into the original text.
func tokensText(data []byte, values []css.Token) string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}
	return sb.String()
}

// extractImportURL extracts the URL from @import tokens.
// Handles: @import "url"; @import url("url"); @import url(url);
func extractImportURL(tokens []css.Token) string {
	for _, t := range tokens {
		switch t.TokenType {
		case css.StringToken:
			return unquote(string(t.Data))
		case css.URLToken:
			s := string(t.Data)
			s = strings.TrimPrefix(s, "url(")
			s = strings.TrimSuffix(s, ")")
			return unquote(strings.TrimSpace(s))
		}
	}
	return ""
}

// parseDeclarations parses property declarations until EndRulesetGrammar.
// Nested rules are not supported, they are skipped with a warning.
func (p *Parser) parseDeclarations(parser *css.Parser, sheet *Stylesheet, owner string) []Declaration {
	var decls []Declaration

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return decls

		case css.DeclarationGrammar:
			values := parser.Values()
			if len(values) == 0 {
				continue
			}
			values, important := stripImportant(values)
			decls = append(decls, Declaration{
				Property:  strings.ToLower(string(data)),
				Value:     parseValue(values),
				Important: important,
			})

		case css.CustomPropertyGrammar:
			raw := strings.TrimSpace(tokensText(nil, parser.Values()))
			decls = append(decls, Declaration{Property: string(data), Value: Value{Raw: raw, Keyword: raw}})

		case css.QualifiedRuleGrammar:
			// remaining parts arrive with the block

		case css.BeginRulesetGrammar, css.BeginAtRuleGrammar:
			sheet.warnf("nested rule inside %q skipped", owner)
			p.log.Debug("Skipping nested rule", zap.String("owner", owner))
			p.skipAtRuleBlock(parser)
		}
	}
}

func stripImportant(tokens []css.Token) ([]css.Token, bool) {
	end := len(tokens)
	for end > 0 && tokens[end-1].TokenType == css.WhitespaceToken {
		end--
	}
	if end < 2 || tokens[end-1].TokenType != css.IdentToken || !strings.EqualFold(string(tokens[end-1].Data), "important") {
		return tokens, false
	}
	i := end - 2
	for i >= 0 && tokens[i].TokenType == css.WhitespaceToken {
		i--
	}
	if i < 0 || tokens[i].TokenType != css.DelimToken || string(tokens[i].Data) != "!" {
		return tokens, false
	}
	return tokens[:i], true
}

// parseValue converts CSS tokens to a Value.
func parseValue(tokens []css.Token) Value {
	if len(tokens) == 0 {
		return Value{}
	}

	raw := joinNormalized(tokens)
	val := Value{Raw: raw}

	var significant []css.Token
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			significant = append(significant, t)
		}
	}
	if len(significant) != 1 {
		val.Keyword = raw
		return val
	}

	t := significant[0]
	switch t.TokenType {
	case css.DimensionToken:
		val.Value, val.Unit = parseDimension(string(t.Data))
	case css.PercentageToken:
		val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
		val.Unit = "%"
	case css.NumberToken:
		val.Value, _ = strconv.ParseFloat(string(t.Data), 64)
	case css.IdentToken:
		val.Keyword = strings.ToLower(string(t.Data))
	case css.StringToken:
		val.Keyword = unquote(string(t.Data))
	default:
		val.Keyword = raw
	}
	return val
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}

	if numEnd == 0 {
		return 0, ""
	}

	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	unit := strings.ToLower(s[numEnd:])
	return num, unit
}

// skipAtRuleBlock skips tokens until the matching end of a block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
