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
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/go-htmlsanitizer/internal/htmlencode"
	"github.com/google/go-htmlsanitizer/internal/htmlentity"
	"github.com/google/go-htmlsanitizer/internal/htmlnames"
)

// ErrRendererMisuse is the sentinel a Renderer wraps into the panic it
// raises when driven out of its documented open/close discipline: any
// method called before OpenDocument or after CloseDocument. This is always
// a caller bug, never something Sanitize itself can trigger, since the policy
// engine always drives a fresh Renderer in the correct order.
var ErrRendererMisuse = errors.New("sanitizer: renderer used out of sequence")

// Renderer implements Sink: it emits the normalized HTML5∩XML subset to
// an io.Writer, buffering CDATA-element content so it can be scanned for
// close-tag hazards before being flushed, and releases the writer exactly
// once at CloseDocument if it implements io.Closer. A Renderer is
// single-writer and not safe for concurrent use.
type Renderer struct {
	w         io.Writer
	listener  ChangeListener
	errPolicy SinkErrorPolicy

	open   bool
	closed bool

	// cdataName is the canonical name of the element whose content is
	// currently being buffered into cdataBuf, or "" when not inside one.
	cdataName    string
	cdataBuf     strings.Builder
	escapingMode htmlnames.EscapingMode

	// pendingBrace is set when the last text write ended with '{', so a
	// following text chunk starting with '{' would reassemble a "{{"
	// bigram the per-chunk encoder can't see.
	pendingBrace bool

	sinkErr    error
	sinkClosed bool
}

// NewRenderer returns a Renderer that writes sanitized output to w,
// reporting input-side decisions to listener (which may be nil) and
// handling sink write failures per errPolicy.
func NewRenderer(w io.Writer, listener ChangeListener, errPolicy SinkErrorPolicy) *Renderer {
	return &Renderer{w: w, listener: listener, errPolicy: errPolicy}
}

// Err returns the first sink write error seen, or nil. Under
// SinkErrorDrop the renderer keeps writing past a failure; the error is
// still recorded here for callers that want to inspect it.
func (r *Renderer) Err() error { return r.sinkErr }

func (r *Renderer) write(s string) {
	if s == "" {
		return
	}
	if r.sinkErr != nil && r.errPolicy == SinkErrorPropagate {
		return
	}
	if _, err := io.WriteString(r.w, s); err != nil && r.sinkErr == nil {
		r.sinkErr = err
	}
}

func (r *Renderer) report(c Change) {
	if r.listener == nil {
		return
	}
	defer func() { recover() }() // a broken listener must not poison rendering
	r.listener.Report(c)
}

func (r *Renderer) requireOpen(method string) {
	if r.closed {
		panic(fmt.Errorf("%w: %s called after CloseDocument", ErrRendererMisuse, method))
	}
	if !r.open {
		panic(fmt.Errorf("%w: %s called before OpenDocument", ErrRendererMisuse, method))
	}
}

// OpenDocument begins a rendering session. It panics if called twice or
// after CloseDocument.
func (r *Renderer) OpenDocument() {
	if r.open || r.closed {
		panic(fmt.Errorf("%w: OpenDocument called more than once", ErrRendererMisuse))
	}
	r.open = true
}

// OpenTag writes a start tag for name with attrs: raw-text synonyms are
// substituted, the name and every attribute name are
// validated against htmlnames.IsValidHTMLName, attribute values are encoded through
// the attribute-value context encoder (with the backtick quirks-mode
// hedge), and void elements are self-closed.
func (r *Renderer) OpenTag(name string, attrs []string) {
	r.requireOpen("OpenTag")
	if r.cdataName != "" {
		r.report(Change{Context: "bad-html", Element: name})
		return
	}
	if !htmlnames.IsValidHTMLName(name) {
		r.report(Change{Context: "bad-html", Element: name})
		return
	}

	mode := htmlnames.EscapingModeForName(name)
	outputName := name
	if synonym, ok := htmlnames.RawTextSynonym(name); ok {
		outputName = synonym
	}

	r.write("<")
	r.write(outputName)
	for i := 0; i+1 < len(attrs); i += 2 {
		attrName, value := attrs[i], attrs[i+1]
		if !htmlnames.IsValidHTMLName(attrName) {
			continue
		}
		r.write(" ")
		r.write(attrName)
		r.write(`="`)
		var b strings.Builder
		htmlencode.EncodeHTMLAttrib(&b, value)
		r.write(b.String())
		if strings.ContainsRune(value, '`') {
			// IE8 quirks-mode innerHTML reserializes a trailing
			// backtick-adjacent quote oddly; a trailing space inside
			// the quotes defeats it even though the backtick itself is
			// already entity-encoded above.
			r.write(" ")
		}
		r.write(`"`)
	}

	void := htmlnames.IsVoidElement(outputName)
	if void {
		r.write(" />")
	} else {
		r.write(">")
	}
	r.pendingBrace = false

	if void {
		return
	}
	r.escapingMode = mode
	if mode == htmlnames.CDATA || mode == htmlnames.CDATASometimes {
		r.cdataName = name
		r.cdataBuf.Reset()
	}
}

// Text writes chunk, dispatching to the encoding context implied by the
// currently open element: verbatim into the CDATA buffer, RCDATA-encoded
// for <textarea>/<title>, PCDATA-encoded otherwise.
func (r *Renderer) Text(chunk string) {
	r.requireOpen("Text")
	if chunk == "" {
		return
	}
	if r.cdataName != "" {
		r.cdataBuf.WriteString(chunk)
		return
	}
	var b strings.Builder
	if r.pendingBrace && chunk[0] == '{' {
		// A "{{" bigram split across two text events would survive
		// per-chunk encoding; break it before encoding the new chunk.
		if r.escapingMode == htmlnames.RCDATA {
			b.WriteString("\u200b")
		} else {
			b.WriteString("<!-- -->")
		}
	}
	if r.escapingMode == htmlnames.RCDATA {
		htmlencode.EncodeRCDATA(&b, chunk)
	} else {
		htmlencode.EncodePCDATA(&b, chunk)
	}
	encoded := b.String()
	r.pendingBrace = strings.HasSuffix(encoded, "{")
	r.write(encoded)
}

// CloseTag writes an end tag for name. If name is the element currently
// buffering CDATA content, the buffer is flushed (and hazard-checked)
// first. <plaintext> never gets a closing tag: PLAINTEXT content runs to
// the end of the document.
func (r *Renderer) CloseTag(name string) {
	r.requireOpen("CloseTag")
	if r.cdataName != "" && r.cdataName == name {
		r.flushCDATA(name)
	}
	r.escapingMode = htmlnames.Normal
	r.pendingBrace = false
	if name == "plaintext" {
		return
	}
	outputName := name
	if synonym, ok := htmlnames.RawTextSynonym(name); ok {
		outputName = synonym
	}
	if !htmlnames.IsValidHTMLName(outputName) {
		return
	}
	r.write("</")
	r.write(outputName)
	r.write(">")
}

// CloseDocument flushes any still-buffered CDATA content, closes the
// underlying writer exactly once if it is an io.Closer, and marks the
// Renderer closed. Further calls to any Sink method panic.
func (r *Renderer) CloseDocument() {
	r.requireOpen("CloseDocument")
	if r.cdataName != "" {
		r.flushCDATA(r.cdataName)
	}
	r.open = false
	r.closed = true
	if !r.sinkClosed {
		if c, ok := r.w.(io.Closer); ok {
			_ = c.Close()
		}
		r.sinkClosed = true
	}
}

// flushCDATA strips banned code units from the buffered content, checks
// it for close-tag hazards, and writes it (or, on a hazard, suppresses the
// body while still letting the caller emit the close tag).
func (r *Renderer) flushCDATA(name string) {
	body := htmlentity.StripUnsafe(r.cdataBuf.String())
	r.cdataName = ""
	r.cdataBuf.Reset()
	if _, hazard := cdataHazard(body, name); hazard {
		r.report(Change{Context: "bad-html", Element: name})
		return
	}
	r.write(body)
}

// cdataHazard scans a CDATA element's buffered content for constructs that
// would make it unsafe to emit ahead of its closing tag: an
// unmatched "<!--", or an unescaped "</name"-prefix outside an escaping
// text span. The escaping-span relaxation (tolerating an embedded
// close-tag lookalike between a "<!--" and its "-->") only applies to
// <script> and <style>; for every other CDATA element, any embedded
// close-tag lookalike is fatal regardless of spans. Returns the offset of
// the first hazard and true, or (0, false) if the buffer is safe.
func cdataHazard(buf, name string) (int, bool) {
	relaxed := name == "script" || name == "style"
	inSpan := false
	spanStart := -1
	i := 0
	for i < len(buf) {
		rest := buf[i:]
		if relaxed && !inSpan && strings.HasPrefix(rest, "<!--") {
			inSpan = true
			spanStart = i
			i += 4
			continue
		}
		if relaxed && inSpan && strings.HasPrefix(rest, "-->") {
			inSpan = false
			i += 3
			continue
		}
		if isCloseTagLookalike(rest, name) {
			if relaxed && inSpan {
				i++
				continue
			}
			return i, true
		}
		i++
	}
	if relaxed && inSpan {
		return spanStart, true
	}
	return 0, false
}

// isCloseTagLookalike reports whether rest begins with a case-insensitive
// "</name" followed by a tag-boundary character ('>', '/', whitespace, or
// end of input).
func isCloseTagLookalike(rest, name string) bool {
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
	switch body[len(name)] {
	case '>', '/', ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}
