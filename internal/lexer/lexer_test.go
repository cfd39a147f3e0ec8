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
	"testing"

	"github.com/google/go-cmp/cmp"
)

type simpleTok struct {
	Type TokenType
	Text string
}

func lexAll(t *testing.T, input string) []simpleTok {
	t.Helper()
	l := New(input)
	var got []simpleTok
	for {
		tok, ok := l.Next()
		if !ok {
			break
		}
		got = append(got, simpleTok{tok.Type, l.Text(tok)})
	}
	return got
}

func TestLexerPartitionsInput(t *testing.T) {
	input := `<b>hi</b><script>x<1</script>tail`
	l := New(input)
	var last int
	for {
		tok, ok := l.Next()
		if !ok {
			break
		}
		if tok.Start != last {
			t.Fatalf("token %+v does not start where previous ended (want %d)", tok, last)
		}
		last = tok.End
	}
	if last != len(input) {
		t.Fatalf("tokens covered up to %d, want %d", last, len(input))
	}
}

func TestLexerSimpleTag(t *testing.T) {
	got := lexAll(t, `<b>hi</b>`)
	want := []simpleTok{
		{TagBegin, "b"},
		{TagEnd, ">"},
		{Text, "hi"},
		{TagBegin, "b"},
		{TagEnd, ">"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerQuotedAttribute(t *testing.T) {
	got := lexAll(t, `<a href="http://x" title='y'>z</a>`)
	want := []simpleTok{
		{TagBegin, "a"},
		{AttrName, "href"},
		{QString, "http://x"},
		{AttrName, "title"},
		{QString, "y"},
		{TagEnd, ">"},
		{Text, "z"},
		{TagBegin, "a"},
		{TagEnd, ">"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerUnquotedAttributeMerging(t *testing.T) {
	got := lexAll(t, `<input type=checkbox checked value=on>`)
	want := []simpleTok{
		{TagBegin, "input"},
		{AttrName, "type"},
		{AttrValue, "checkbox"},
		{AttrName, "checked"},
		{AttrName, "value"},
		{AttrValue, "on"},
		{TagEnd, ">"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerUnquotedValueAbsorbsTextUntilNextAttr(t *testing.T) {
	got := lexAll(t, `<div class=foo bar baz=qux>`)
	// "foo bar" has no '=' following "bar", so it is not a new attribute
	// and gets absorbed into the unquoted value for class.
	want := []simpleTok{
		{TagBegin, "div"},
		{AttrName, "class"},
		{AttrValue, "foo bar"},
		{AttrName, "baz"},
		{AttrValue, "qux"},
		{TagEnd, ">"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerSelfClosingVoid(t *testing.T) {
	got := lexAll(t, `<br/>`)
	want := []simpleTok{
		{TagBegin, "br"},
		{TagEnd, "/>"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerScriptIsCDATA(t *testing.T) {
	got := lexAll(t, `<script>1 < 2 && "</s"</script>tail`)
	want := []simpleTok{
		{TagBegin, "script"},
		{TagEnd, ">"},
		{Unescaped, `1 < 2 && "</s"`},
		{TagBegin, "script"},
		{TagEnd, ">"},
		{Text, "tail"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerScriptEscapingTextSpanTolerant(t *testing.T) {
	got := lexAll(t, `<script><!--document.write('<script>f()</script>');--></script>`)
	want := []simpleTok{
		{TagBegin, "script"},
		{TagEnd, ">"},
		{Unescaped, `<!--document.write('<script>f()</script>');-->`},
		{TagBegin, "script"},
		{TagEnd, ">"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerTextareaIsRCDATA(t *testing.T) {
	got := lexAll(t, `<textarea>&amp;</textarea>`)
	want := []simpleTok{
		{TagBegin, "textarea"},
		{TagEnd, ">"},
		{Text, "&amp;"},
		{TagBegin, "textarea"},
		{TagEnd, ">"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerPlaintextNeverEnds(t *testing.T) {
	got := lexAll(t, `<plaintext>a</plaintext>b`)
	want := []simpleTok{
		{TagBegin, "plaintext"},
		{TagEnd, ">"},
		{Unescaped, "a</plaintext>b"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerComment(t *testing.T) {
	got := lexAll(t, `a<!-- comment -->b`)
	want := []simpleTok{
		{Text, "a"},
		{Comment, " comment "},
		{Text, "b"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerDanglingCommentRecoversAtEOF(t *testing.T) {
	got := lexAll(t, `a<!-- never closed`)
	want := []simpleTok{
		{Text, "a"},
		{Comment, " never closed"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerDanglingQuotedAttrRecoversAtEOF(t *testing.T) {
	got := lexAll(t, `<a href="http://x`)
	want := []simpleTok{
		{TagBegin, "a"},
		{AttrName, "href"},
		{QString, "http://x"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerStrayLessThanDegradesToText(t *testing.T) {
	got := lexAll(t, `1 < 2`)
	want := []simpleTok{
		{Text, "1 < 2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerDoctype(t *testing.T) {
	got := lexAll(t, `<!DOCTYPE html><p>x</p>`)
	want := []simpleTok{
		{Directive, "DOCTYPE html"},
		{TagBegin, "p"},
		{TagEnd, ">"},
		{Text, "x"},
		{TagBegin, "p"},
		{TagEnd, ">"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerNamespacedElementName(t *testing.T) {
	got := lexAll(t, `<svg:rect x="1"/>`)
	want := []simpleTok{
		{TagBegin, "svg:rect"},
		{AttrName, "x"},
		{QString, "1"},
		{TagEnd, "/>"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
