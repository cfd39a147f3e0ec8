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

// Package lexer implements the forgiving HTML tokenizer. It sits outside
// the security-critical core: it never fails, recovering from malformed
// input by degrading to Text, and its
// job is only to partition the input into spans for the policy engine to
// interpret, not to validate it.
package lexer

// TokenType classifies a Token.
type TokenType int

const (
	// Text is ordinary character data outside a tag.
	Text TokenType = iota
	// TagBegin is the name span of a start or end tag (the '<' and any
	// leading '/' are not included in Start:End; see Token.Closing).
	TagBegin
	// TagEnd is the '>' (or "/>") that closes a tag.
	TagEnd
	// AttrName is an attribute name span inside a tag.
	AttrName
	// AttrValue is an (unquoted or merged) attribute value span.
	AttrValue
	// QString is a quoted attribute value span, not including the quotes.
	QString
	// Comment is a "<!-- ... -->" span, not including the delimiters.
	Comment
	// CDATA is not produced by this lexer: the body of a CDATA-mode
	// element (script/style/...) is emitted as Unescaped.
	CDATA
	// Directive is a "<!...>" construct that isn't a comment (doctype).
	Directive
	// ServerCode is a "<% ... %>" span.
	ServerCode
	// Unescaped is the raw body of a CDATA, CDATASometimes or PlainText
	// element, escaping text spans included, with no entity decoding.
	Unescaped
	// QMarkMeta is a "<?...?>" processing-instruction-like construct.
	QMarkMeta
	// Ignorable is dropped before tokens reach the outer lexer's
	// consumers; it exists only inside the splitter.
	Ignorable
)

// Token is a lexed span. Start and End are byte offsets into the input
// buffer the Lexer was constructed with; no text is copied until a caller
// calls Lexer.Text(tok).
type Token struct {
	Start, End int
	Type       TokenType
	// Closing is set on a TagBegin token to indicate the tag is a closing
	// tag ("</name>" rather than "<name>").
	Closing bool
	// SelfClosing is set on a TagEnd token for "/>".
	SelfClosing bool
}
