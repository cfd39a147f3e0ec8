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

package lexer

import (
	"strings"

	"github.com/google/go-htmlsanitizer/internal/htmlnames"
)

// Lexer pulls Tokens out of a fixed input buffer. The whole buffer is
// tokenized eagerly at construction time: inputs are bounded in length,
// and doing so up front lets the escape-exempt and escaping-text-span
// handling (which both
// require unbounded lookahead for a close tag that may never arrive) be
// expressed as ordinary sequential scanning instead of a suspendable state
// machine. Next() then just walks the precomputed slice; the contract
// (pull tokenizer, order-preserving, never fails) is unaffected by this
// implementation choice.
type Lexer struct {
	buf    string
	tokens []Token
	pos    int
}

// New tokenizes buf and returns a Lexer ready to pull from it.
func New(buf string) *Lexer {
	return &Lexer{buf: buf, tokens: scan(buf)}
}

// Text returns the substring a Token refers to.
func (l *Lexer) Text(t Token) string { return l.buf[t.Start:t.End] }

// Next returns the next token and true, or a zero Token and false at EOF.
func (l *Lexer) Next() (Token, bool) {
	if l.pos >= len(l.tokens) {
		return Token{}, false
	}
	t := l.tokens[l.pos]
	l.pos++
	return t, true
}

// scanner holds the mutable state of a single tokenization pass.
type scanner struct {
	buf string
	pos int
	out []Token

	// exemptName/exemptMode describe the element whose close tag is
	// currently being awaited because its content mode is not Normal.
	// exemptName is the canonical lowercase element name, or "" when not
	// inside escape-exempt content.
	exemptName string
	exemptMode htmlnames.EscapingMode
}

func scan(buf string) []Token {
	s := &scanner{buf: buf}
	for s.pos < len(s.buf) {
		if s.exemptName != "" {
			s.scanExemptContent()
			continue
		}
		if s.buf[s.pos] == '<' {
			s.scanLeftAngle()
		} else {
			s.scanText()
		}
	}
	return mergeAdjacentText(s.out)
}

func (s *scanner) emit(t Token) { s.out = append(s.out, t) }

// scanText consumes a run of ordinary character data up to (but not
// including) the next '<' that begins a recognizable construct. A '<'
// that doesn't form one is swallowed into the text run rather than ending
// it (the lexer never fails; it degrades malformed markup to Text).
func (s *scanner) scanText() {
	start := s.pos
	for s.pos < len(s.buf) {
		if s.buf[s.pos] != '<' {
			s.pos++
			continue
		}
		if s.startsConstruct() {
			break
		}
		s.pos++
	}
	if s.pos > start {
		s.emit(Token{Start: start, End: s.pos, Type: Text})
	}
}

// startsConstruct reports whether s.buf[s.pos:] ('<' at s.pos) begins a
// tag, comment, directive, processing instruction or server-code span.
func (s *scanner) startsConstruct() bool {
	rest := s.buf[s.pos:]
	switch {
	case strings.HasPrefix(rest, "<!--"), strings.HasPrefix(rest, "<!"),
		strings.HasPrefix(rest, "<?"), strings.HasPrefix(rest, "<%"),
		strings.HasPrefix(rest, "</"):
		return true
	}
	if len(rest) >= 2 && isNameStart(rest[1]) {
		return true
	}
	return false
}

func isNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == ':'
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// scanLeftAngle dispatches on the construct starting at s.pos ('<').
func (s *scanner) scanLeftAngle() {
	rest := s.buf[s.pos:]
	switch {
	case strings.HasPrefix(rest, "<!--"):
		s.scanComment()
	case strings.HasPrefix(rest, "<?"):
		s.scanQMarkMeta()
	case strings.HasPrefix(rest, "<%"):
		s.scanServerCode()
	case strings.HasPrefix(rest, "<!"):
		s.scanDirective()
	case strings.HasPrefix(rest, "</"):
		s.scanTag(true)
	case len(rest) >= 2 && isNameStart(rest[1]):
		s.scanTag(false)
	default:
		// Stray '<' that doesn't start a construct: treat as text.
		s.pos++
		s.emit(Token{Start: s.pos - 1, End: s.pos, Type: Text})
	}
}

func (s *scanner) scanComment() {
	start := s.pos + 4 // past "<!--"
	end := strings.Index(s.buf[start:], "-->")
	if end < 0 {
		s.emit(Token{Start: start, End: len(s.buf), Type: Comment})
		s.pos = len(s.buf)
		return
	}
	s.emit(Token{Start: start, End: start + end, Type: Comment})
	s.pos = start + end + 3
}

func (s *scanner) scanDirective() {
	start := s.pos + 2 // past "<!"
	end := strings.IndexByte(s.buf[start:], '>')
	if end < 0 {
		s.emit(Token{Start: start, End: len(s.buf), Type: Directive})
		s.pos = len(s.buf)
		return
	}
	s.emit(Token{Start: start, End: start + end, Type: Directive})
	s.pos = start + end + 1
}

func (s *scanner) scanQMarkMeta() {
	start := s.pos + 2 // past "<?"
	rest := s.buf[start:]
	if i := strings.Index(rest, "?>"); i >= 0 {
		s.emit(Token{Start: start, End: start + i, Type: QMarkMeta})
		s.pos = start + i + 2
		return
	}
	if i := strings.IndexByte(rest, '>'); i >= 0 {
		s.emit(Token{Start: start, End: start + i, Type: QMarkMeta})
		s.pos = start + i + 1
		return
	}
	s.emit(Token{Start: start, End: len(s.buf), Type: QMarkMeta})
	s.pos = len(s.buf)
}

func (s *scanner) scanServerCode() {
	start := s.pos + 2 // past "<%"
	rest := s.buf[start:]
	if i := strings.Index(rest, "%>"); i >= 0 {
		s.emit(Token{Start: start, End: start + i, Type: ServerCode})
		s.pos = start + i + 2
		return
	}
	s.emit(Token{Start: start, End: len(s.buf), Type: ServerCode})
	s.pos = len(s.buf)
}

// scanTag consumes a start or end tag: its name, then its attribute list
// via the IN_TAG/SAW_NAME/SAW_EQ reclassification FSM, ending at '>' or
// "/>". If this is a start tag for an escape-exempt element, the scanner
// enters exempt-content mode afterwards.
func (s *scanner) scanTag(closing bool) {
	nameStart := s.pos + 1
	if closing {
		nameStart++
	}
	i := nameStart
	for i < len(s.buf) && isNameChar(s.buf[i]) {
		i++
	}
	if i == nameStart {
		// "<" or "</" not followed by a name: not a tag after all.
		s.pos++
		s.emit(Token{Start: s.pos - 1, End: s.pos, Type: Text})
		return
	}
	inputName := s.buf[nameStart:i]
	s.emit(Token{Start: nameStart, End: i, Type: TagBegin, Closing: closing})
	s.pos = i

	selfClosing := s.scanAttributes()

	if !closing {
		mode := htmlnames.EscapingModeForName(strings.ToLower(inputName))
		if mode != htmlnames.Normal && !selfClosing && !htmlnames.IsVoidElement(strings.ToLower(inputName)) {
			s.exemptName = strings.ToLower(inputName)
			s.exemptMode = mode
		}
	} else if strings.ToLower(inputName) == s.exemptName {
		// Shouldn't normally happen (exempt content scanning consumes
		// the matching close tag itself before reaching scanLeftAngle),
		// but guards against a degenerate empty-element edge case.
		s.exemptName = ""
	}
}

// scanAttributes scans from s.pos (just after the tag name) through the
// tag's attribute list and the terminating '>' or "/>", emitting
// AttrName/AttrValue/QString tokens and a trailing TagEnd. It returns
// whether the tag was self-closing.
//
// This walks the IN_TAG -> SAW_NAME -> SAW_EQ reclassification FSM:
// IN_TAG is this loop between attributes, scanAttrName moves
// to SAW_NAME, and finding '=' moves to SAW_EQ before dispatching to
// quoted/unquoted value scanning; failing to find '=' returns straight to
// IN_TAG (a valueless attribute).
func (s *scanner) scanAttributes() bool {
	for s.pos < len(s.buf) {
		c := s.buf[s.pos]
		if isSpace(c) {
			s.pos++
			continue
		}
		if c == '>' {
			s.pos++
			s.emit(Token{Start: s.pos - 1, End: s.pos, Type: TagEnd})
			return false
		}
		if c == '/' && s.pos+1 < len(s.buf) && s.buf[s.pos+1] == '>' {
			s.pos += 2
			s.emit(Token{Start: s.pos - 2, End: s.pos, Type: TagEnd, SelfClosing: true})
			return true
		}
		if isNameStart(c) || isAttrNameChar(c) {
			s.scanAttrName()
			continue
		}
		// Unrecognized character in tag position (e.g. a stray quote or
		// a lone '='): skip it; never fail.
		s.pos++
	}
	// EOF inside a tag: recover by acting as if '>' had been seen.
	return false
}

func isAttrNameChar(c byte) bool {
	return isNameChar(c) || c == '.' || c == '@'
}

func (s *scanner) scanAttrName() {
	start := s.pos
	for s.pos < len(s.buf) && isAttrNameChar(s.buf[s.pos]) {
		s.pos++
	}
	s.emit(Token{Start: start, End: s.pos, Type: AttrName})
	// Look for '=' (possibly after whitespace); if absent, this is a
	// valueless attribute and scanAttributes resumes at inTag state.
	save := s.pos
	for s.pos < len(s.buf) && isSpace(s.buf[s.pos]) {
		s.pos++
	}
	if s.pos < len(s.buf) && s.buf[s.pos] == '=' {
		s.pos++
		for s.pos < len(s.buf) && isSpace(s.buf[s.pos]) {
			s.pos++
		}
		s.scanAttrValueAfterEq()
		return
	}
	s.pos = save
}

// scanAttrValueAfterEq scans the value immediately following an '=',
// dispatching to quoted or unquoted scanning.
func (s *scanner) scanAttrValueAfterEq() {
	if s.pos >= len(s.buf) {
		s.emit(Token{Start: s.pos, End: s.pos, Type: AttrValue})
		return
	}
	c := s.buf[s.pos]
	if c == '"' || c == '\'' {
		s.scanQuotedValue(c)
		return
	}
	s.scanUnquotedValue()
}

func (s *scanner) scanQuotedValue(quote byte) {
	start := s.pos + 1
	end := strings.IndexByte(s.buf[start:], quote)
	if end < 0 {
		s.emit(Token{Start: start, End: len(s.buf), Type: QString})
		s.pos = len(s.buf)
		return
	}
	s.emit(Token{Start: start, End: start + end, Type: QString})
	s.pos = start + end + 1
}

// scanUnquotedValue implements the unquoted-value merging rule: an unquoted
// value absorbs following text/whitespace, stopping before EOF, a
// valueless-attribute name, "/>", or "<name>=" (the start of a new
// attribute).
func (s *scanner) scanUnquotedValue() {
	start := s.pos
	end := start
	for s.pos < len(s.buf) {
		c := s.buf[s.pos]
		if c == '>' {
			break
		}
		if c == '/' && s.pos+1 < len(s.buf) && s.buf[s.pos+1] == '>' {
			break
		}
		if isSpace(c) {
			if s.nextIsNewAttributeBoundary() {
				break
			}
			s.pos++
			continue
		}
		s.pos++
		end = s.pos
	}
	s.emit(Token{Start: start, End: end, Type: AttrValue})
}

// nextIsNewAttributeBoundary looks ahead from a whitespace run (s.pos is
// at the first whitespace byte) to decide whether what follows starts a
// new attribute (a name followed by '=') or a bare valueless-attribute
// name, in which case the unquoted value being scanned must stop before
// the whitespace.
func (s *scanner) nextIsNewAttributeBoundary() bool {
	i := s.pos
	for i < len(s.buf) && isSpace(s.buf[i]) {
		i++
	}
	if i >= len(s.buf) {
		return false
	}
	if s.buf[i] == '>' || (s.buf[i] == '/' && i+1 < len(s.buf) && s.buf[i+1] == '>') {
		return false
	}
	nameStart := i
	for i < len(s.buf) && isAttrNameChar(s.buf[i]) {
		i++
	}
	if i == nameStart {
		return false
	}
	name := s.buf[nameStart:i]
	j := i
	for j < len(s.buf) && isSpace(s.buf[j]) {
		j++
	}
	if j < len(s.buf) && s.buf[j] == '=' {
		return true
	}
	if htmlnames.ValuelessAttributes[strings.ToLower(name)] {
		return true
	}
	return false
}

// scanExemptContent scans content while s.exemptName != "": content is
// Unescaped (or Text for RCDATA), with an escaping-text-span relaxation
// for CDATA/CDATASometimes that tolerates embedded
// close-tag lookalikes between a "<!--" and its matching "-->".
func (s *scanner) scanExemptContent() {
	mode := s.exemptMode
	name := s.exemptName

	if mode == htmlnames.PlainText {
		if s.pos < len(s.buf) {
			s.emit(Token{Start: s.pos, End: len(s.buf), Type: Unescaped})
		}
		s.pos = len(s.buf)
		s.exemptName = ""
		return
	}

	start := s.pos
	inEscapingSpan := false
	honorSpans := mode == htmlnames.CDATA || mode == htmlnames.CDATASometimes
	tokType := Unescaped
	if mode == htmlnames.RCDATA {
		tokType = Text
	}

	for s.pos < len(s.buf) {
		rest := s.buf[s.pos:]
		if honorSpans && !inEscapingSpan && strings.HasPrefix(rest, "<!--") {
			inEscapingSpan = true
			s.pos += 4
			continue
		}
		if honorSpans && inEscapingSpan && strings.HasPrefix(rest, "-->") {
			inEscapingSpan = false
			s.pos += 3
			continue
		}
		if !inEscapingSpan && isCloseTagFor(rest, name) {
			break
		}
		s.pos++
	}

	if s.pos > start {
		s.emit(Token{Start: start, End: s.pos, Type: tokType})
	}

	if s.pos >= len(s.buf) {
		// Dangling CDATA/RCDATA: no closing tag arrived before EOF.
		s.exemptName = ""
		return
	}

	s.exemptName = ""
	s.scanTag(true) // consume the matching "</name...>" we just found
}

// isCloseTagFor reports whether rest begins with a case-insensitive
// "</name" followed by a tag-boundary character ('>', '/', whitespace, or
// end of input).
func isCloseTagFor(rest, name string) bool {
	if !strings.HasPrefix(rest, "</") {
		return false
	}
	body := rest[2:]
	if len(body) < len(name) || !strings.EqualFold(body[:len(name)], name) {
		return false
	}
	if len(body) == len(name) {
		return true
	}
	c := body[len(name)]
	return c == '>' || c == '/' || isSpace(c)
}

// mergeAdjacentText merges consecutive Text or consecutive Unescaped
// tokens into one. The scanning loop above is structured to avoid
// producing adjacent runs in the first place, but this pass is kept as a
// guarantee of the token stream rather than an incidental property of
// the scan order.
func mergeAdjacentText(tokens []Token) []Token {
	out := tokens[:0]
	for _, t := range tokens {
		if n := len(out); n > 0 {
			prev := out[n-1]
			if prev.Type == t.Type && (t.Type == Text || t.Type == Unescaped) && prev.End == t.Start {
				out[n-1].End = t.End
				continue
			}
		}
		out = append(out, t)
	}
	return out
}
