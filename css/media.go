package css

import (
	"strings"

	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// parseMediaQueryList splits @media prelude on top level commas and parses
// every query.
func (p *Parser) parseMediaQueryList(tokens []css.Token) []MediaQuery {
	var (
		queries []MediaQuery
		start   int
		depth   int
	)
	for i, t := range tokens {
		switch t.TokenType {
		case css.LeftParenthesisToken, css.FunctionToken:
			depth++
		case css.RightParenthesisToken:
			depth--
		case css.CommaToken:
			if depth == 0 {
				queries = append(queries, p.parseMediaQuery(tokens[start:i]))
				start = i + 1
			}
		}
	}
	if q := p.parseMediaQuery(tokens[start:]); q.Raw != "" || len(queries) > 0 {
		queries = append(queries, q)
	}
	return queries
}

// parseMediaQuery parses a single media query.
// Format: [not|only] type [and <condition>]... | <condition> [and|or <condition>]...
func (p *Parser) parseMediaQuery(tokens []css.Token) MediaQuery {
	mq := MediaQuery{Raw: joinNormalized(tokens)}

	leading := true
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		switch t.TokenType {
		case css.IdentToken:
			word := strings.ToLower(string(t.Data))
			switch {
			case leading && word == "not":
				mq.Negated = true
			case leading && word == "only":
				mq.Only = true
			case leading:
				mq.Type = word
				leading = false
			}

		case css.LeftParenthesisToken:
			leading = false
			end := closingParen(tokens, i)
			mq.Features = append(mq.Features, parseMediaCondition(tokens[i+1:end], false)...)
			i = end
		}
	}

	if len(mq.Features) > 0 || mq.Type != "" {
		p.log.Debug("Parsed media query", zap.String("query", mq.Raw), zap.Int("features", len(mq.Features)))
	}
	return mq
}

// parseMediaCondition parses content of one parenthesized group: either a
// feature test or nested conditions joined with and/or/not.
func parseMediaCondition(tokens []css.Token, negated bool) []MediaFeature {
	first := firstSignificant(tokens)
	if first < 0 {
		return nil
	}

	nested := tokens[first].TokenType == css.LeftParenthesisToken ||
		(tokens[first].TokenType == css.IdentToken && strings.EqualFold(string(tokens[first].Data), "not"))
	if !nested {
		return []MediaFeature{parseMediaFeature(tokens, negated)}
	}

	var out []MediaFeature
	neg := negated
	for i := first; i < len(tokens); i++ {
		t := tokens[i]
		switch {
		case t.TokenType == css.IdentToken && strings.EqualFold(string(t.Data), "not"):
			neg = !negated
		case t.TokenType == css.LeftParenthesisToken:
			end := closingParen(tokens, i)
			out = append(out, parseMediaCondition(tokens[i+1:end], neg)...)
			neg = negated
			i = end
		}
	}
	return out
}

// parseMediaFeature parses "name: value", "name" or range forms like
// "width >= 600px" and "400px < width < 800px".
func parseMediaFeature(tokens []css.Token, negated bool) MediaFeature {
	f := MediaFeature{Negated: negated}

	var values []css.Token
	for _, t := range tokens {
		switch t.TokenType {
		case css.WhitespaceToken, css.ColonToken, css.DelimToken:
		case css.IdentToken:
			if f.Name == "" {
				f.Name = strings.ToLower(string(t.Data))
				continue
			}
			values = append(values, t)
		default:
			values = append(values, t)
		}
	}
	if len(values) > 0 {
		f.Value = parseValue(values[:1])
	}
	return f
}

func closingParen(tokens []css.Token, open int) int {
	depth := 0
	for i := open; i < len(tokens); i++ {
		switch tokens[i].TokenType {
		case css.LeftParenthesisToken, css.FunctionToken:
			depth++
		case css.RightParenthesisToken:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(tokens)
}

func firstSignificant(tokens []css.Token) int {
	for i, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			return i
		}
	}
	return -1
}

// joinNormalized joins tokens collapsing whitespace runs into single space.
func joinNormalized(tokens []css.Token) string {
	var parts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			parts = append(parts, string(t.Data))
		} else if len(parts) > 0 {
			parts = append(parts, " ")
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}
