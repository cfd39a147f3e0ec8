// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package css

import (
	"fmt"
	"strings"
)

// URLRewriter rewrites a url(...) token's decoded content, returning the
// (possibly transformed) URL and whether it survives. A StylingPolicy
// calls this instead of emitting raw url(...) content verbatim; only
// non-empty rewritten results are emitted.
type URLRewriter func(url string) (string, bool)

// StylingPolicy filters a style attribute's declaration list against a
// property schema table, token by token.
type StylingPolicy struct {
	Schemas    map[string]*Schema
	RewriteURL URLRewriter
}

// New returns a StylingPolicy over schemas, rewriting url(...) content
// through rewriteURL (which may be nil to reject every URL token).
func New(schemas map[string]*Schema, rewriteURL URLRewriter) *StylingPolicy {
	return &StylingPolicy{Schemas: schemas, RewriteURL: rewriteURL}
}

// Sanitize filters cssText (the contents of a style attribute) and
// returns the normalized, policy-compliant declaration list. An
// all-empty property (every value token dropped) is discarded entirely,
// heading included.
func (p *StylingPolicy) Sanitize(cssText string) string {
	lx := NewLexer(cssText)
	decls := splitDeclarations(lx.Tokens())
	var out []string
	for _, d := range decls {
		prop := strings.ToLower(d.prop)
		schema, ok := p.Schemas[prop]
		if !ok {
			continue
		}
		filtered := p.filterValue(schema, d.value)
		if len(filtered) == 0 {
			continue
		}
		out = append(out, prop+":"+joinTokens(filtered))
	}
	return strings.Join(out, "; ")
}

type declaration struct {
	prop  string
	value []Token
}

// splitDeclarations partitions a token stream into "prop: value"
// declarations on top-level (paren-depth-0) semicolons and the first
// top-level colon in each segment, skipping whitespace.
func splitDeclarations(tokens []Token) []declaration {
	var decls []declaration
	var seg []Token
	depth := 0
	flush := func() {
		d, ok := parseDeclaration(seg)
		if ok {
			decls = append(decls, d)
		}
		seg = nil
	}
	for _, t := range tokens {
		switch t.Type {
		case Function, LeftParen, LeftBracket, LeftBrace:
			depth++
		case RightParen, RightBracket, RightBrace:
			depth--
		}
		if t.Type == Semicolon && depth == 0 {
			flush()
			continue
		}
		seg = append(seg, t)
	}
	flush()
	return decls
}

func parseDeclaration(tokens []Token) (declaration, bool) {
	i := 0
	for i < len(tokens) && tokens[i].Type == Whitespace {
		i++
	}
	if i >= len(tokens) || tokens[i].Type != Ident {
		return declaration{}, false
	}
	prop := tokens[i].Value
	i++
	for i < len(tokens) && tokens[i].Type == Whitespace {
		i++
	}
	if i >= len(tokens) || tokens[i].Type != Colon {
		return declaration{}, false
	}
	i++
	value := tokens[i:]
	return declaration{prop: prop, value: value}, true
}

// filterValue filters value tokens against schema, recursing into
// Function arguments via schema.FnKeys and applying the string-hoisting
// pass once filtering completes.
func (p *StylingPolicy) filterValue(schema *Schema, tokens []Token) []Token {
	var out []Token
	i := 0
	for i < len(tokens) {
		t := tokens[i]
		switch t.Type {
		case Whitespace:
			i++
		case Comma:
			out = append(out, t)
			i++
		case Function:
			j := matchFunctionEnd(tokens, i+1)
			sub, ok := schema.FnKeys[t.Value]
			if !ok {
				i = j + 1
				continue
			}
			inner := p.filterValue(sub, tokens[i+1:j])
			out = append(out, Token{Type: Function, Value: t.Value})
			out = append(out, inner...)
			out = append(out, Token{Type: RightParen})
			i = j + 1
		case URL:
			if schema.Bits&URLBits != 0 && p.RewriteURL != nil {
				if rewritten, ok := p.RewriteURL(t.Value); ok && rewritten != "" {
					out = append(out, Token{Type: URL, Value: rewritten})
				}
			}
			i++
		case String:
			if schema.Bits&StringBits != 0 {
				out = append(out, Token{Type: String, Value: strings.ToLower(t.Value)})
			}
			i++
		case Hash:
			if schema.Bits&HashValue != 0 {
				out = append(out, t)
			}
			i++
		case Number, Percentage, Dimension:
			if schema.Bits&Quantity != 0 && (!t.Negative || schema.Bits&Negative != 0) {
				out = append(out, t)
			}
			i++
		case Ident:
			lower := strings.ToLower(t.Value)
			if schema.Literals[lower] || schema.Bits&Word != 0 {
				out = append(out, Token{Type: Ident, Value: lower})
			}
			i++
		default:
			i++
		}
	}
	if schema.Bits&StringBits != 0 {
		out = hoistStrings(out)
	}
	return out
}

// matchFunctionEnd returns the index of the RightParen matching the
// Function token whose argument list begins at start, accounting for
// nested Function/paren depth.
func matchFunctionEnd(tokens []Token, start int) int {
	depth := 1
	for i := start; i < len(tokens); i++ {
		switch tokens[i].Type {
		case Function, LeftParen:
			depth++
		case RightParen:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(tokens)
}

// hoistStrings merges runs of two or more consecutive Ident tokens (not
// separated by a Comma) into a single, space-joined String token, so an
// unquoted "font-family: Arial Black" becomes 'arial black'. A lone
// identifier (e.g. the generic family "sans-serif") is left as a bare,
// unquoted keyword: hoisting only fires where there was genuinely more
// than one word to join.
func hoistStrings(tokens []Token) []Token {
	var out []Token
	var run []string
	flush := func() {
		switch len(run) {
		case 0:
			return
		case 1:
			out = append(out, Token{Type: Ident, Value: run[0]})
		default:
			out = append(out, Token{Type: String, Value: strings.Join(run, " ")})
		}
		run = nil
	}
	for _, t := range tokens {
		if t.Type == Ident {
			run = append(run, t.Value)
			continue
		}
		flush()
		out = append(out, t)
	}
	flush()
	return out
}

// joinTokens serializes a filtered value token list: tokens are
// space-joined, but a Comma is always surrounded by a single space on
// each side regardless of what followed it in the source.
func joinTokens(tokens []Token) string {
	var b strings.Builder
	for i, t := range tokens {
		if t.Type == Comma {
			b.WriteString(" , ")
			continue
		}
		if i > 0 && tokens[i-1].Type != Comma {
			b.WriteString(" ")
		}
		b.WriteString(serialize(t))
	}
	return strings.TrimSpace(b.String())
}

func serialize(t Token) string {
	switch t.Type {
	case Ident:
		// Re-escape anything the lexer decoded from an escape that is not
		// an identifier character, so it cannot end the declaration.
		var b strings.Builder
		for _, r := range t.Value {
			if r == '-' || r == '_' || r >= 0x80 || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				b.WriteRune(r)
				continue
			}
			fmt.Fprintf(&b, `\%x `, r)
		}
		return b.String()
	case String:
		return "'" + escapeCSSString(t.Value) + "'"
	case Hash:
		return "#" + t.Value
	case Number:
		return t.Value
	case Percentage:
		return t.Value + "%"
	case Dimension:
		return t.Value + t.Unit
	case URL:
		return "url('" + percentEncodeURLContent(t.Value) + "')"
	case Function:
		return t.Value + "("
	case RightParen:
		return ")"
	case Comma:
		return ","
	default:
		return ""
	}
}

// escapeCSSString applies a fixed hex-escape table to the
// characters that would otherwise let a quoted string value escape its
// quotes or be reinterpreted as markup.
func escapeCSSString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\a `)
		case '\f':
			b.WriteString(`\c `)
		case '\r':
			b.WriteString(`\d `)
		case 0:
			b.WriteString(`\0 `)
		case '"':
			b.WriteString(`\22 `)
		case '&':
			b.WriteString(`\26 `)
		case '\'':
			b.WriteString(`\27 `)
		case '<':
			b.WriteString(`\3c `)
		case '>':
			b.WriteString(`\3e `)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// urlUnreservedExtra are the characters additionally allowed unescaped
// inside a percent-encoded url(...) body, beyond RFC 3986's unreserved
// set.
const urlUnreservedExtra = ":/?#[]@!$&+,;=%"

// percentEncodeURLContent percent-encodes every byte of s that is neither
// in the RFC 3986 unreserved set nor in urlUnreservedExtra.
func percentEncodeURLContent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isURLUnreserved(c) || strings.IndexByte(urlUnreservedExtra, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func isURLUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~':
		return true
	}
	return false
}
