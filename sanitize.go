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

package sanitizer

import (
	"io"
	"strings"

	"github.com/google/go-htmlsanitizer/internal/htmlentity"
	"github.com/google/go-htmlsanitizer/internal/lexer"
)

// Sanitize sanitizes input against policy and returns the normalized,
// policy-compliant HTML. It never fails: malformed markup degrades to
// text and disallowed constructs are dropped, optionally reported
// through policy's ChangeListener.
func Sanitize(policy *Policy, input string) string {
	var b strings.Builder
	// SinkErrorPropagate can't occur against a strings.Builder, whose
	// Write never errors, so the error return has nothing to report here.
	_ = SanitizeToWriter(policy, input, &b)
	return b.String()
}

// SanitizeBytes is the []byte-oriented convenience wrapper around
// Sanitize.
func SanitizeBytes(policy *Policy, input []byte) []byte {
	return []byte(Sanitize(policy, string(input)))
}

// SanitizeToWriter drives the full pipeline (lexer, token reclassifier,
// policy engine, renderer) and writes the sanitized output to w. It
// returns a non-nil error only when policy carries SinkErrorPropagate and
// a write to w failed.
func SanitizeToWriter(policy *Policy, input string, w io.Writer) error {
	r := NewRenderer(w, policy.changeListener, policy.sinkErrorPolicy)
	e := newEngine(policy, r)
	drive(e, input)
	if policy.sinkErrorPolicy == SinkErrorPropagate {
		return r.Err()
	}
	return nil
}

// drive pulls every token out of input's Lexer and replays it against e:
// grouping a tag's AttrName/AttrValue/QString tokens into the flat attrs
// slice engine.openTag expects, entity-decoding text and attribute
// values, and passing CDATA/RCDATA content through as Unescaped/Text
// tokens the lexer has already isolated.
func drive(e *engine, input string) {
	e.openDocument()
	lx := lexer.New(input)
	for {
		tok, ok := lx.Next()
		if !ok {
			break
		}
		switch tok.Type {
		case lexer.Text:
			e.text(htmlentity.Decode(lx.Text(tok)))
		case lexer.Unescaped:
			// CDATA-mode element content is opaque: no entity decoding,
			// passed through exactly as lexed.
			e.text(lx.Text(tok))
		case lexer.TagBegin:
			name := lx.Text(tok)
			if tok.Closing {
				consumeToTagEnd(lx)
				e.closeTag(name)
				continue
			}
			attrs := collectAttrs(lx)
			e.openTag(name, attrs)
		default:
			// Comment, Directive, ServerCode, QMarkMeta, Ignorable carry
			// no policy-checkable element/attribute/text content of
			// their own and never reach the sanitized output.
		}
	}
	e.closeDocument()
}

// collectAttrs pulls tokens from lx until (and including) the tag's
// TagEnd, pairing each AttrName with the AttrValue/QString that follows it
// (entity-decoded) or an empty string for a valueless attribute, and
// returns the flat name/value slice.
func collectAttrs(lx *lexer.Lexer) []string {
	var attrs []string
	pendingName, haveName := "", false
	for {
		tok, ok := lx.Next()
		if !ok {
			if haveName {
				attrs = append(attrs, pendingName, "")
			}
			return attrs
		}
		switch tok.Type {
		case lexer.AttrName:
			if haveName {
				attrs = append(attrs, pendingName, "")
			}
			pendingName, haveName = lx.Text(tok), true
		case lexer.AttrValue, lexer.QString:
			attrs = append(attrs, pendingName, htmlentity.Decode(lx.Text(tok)))
			haveName = false
		case lexer.TagEnd:
			if haveName {
				attrs = append(attrs, pendingName, "")
			}
			return attrs
		}
	}
}

// consumeToTagEnd discards tokens up to and including a close tag's
// TagEnd; closing tags carry no attributes the policy engine consults.
func consumeToTagEnd(lx *lexer.Lexer) {
	for {
		tok, ok := lx.Next()
		if !ok || tok.Type == lexer.TagEnd {
			return
		}
	}
}
