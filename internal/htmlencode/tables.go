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

package htmlencode

import "golang.org/x/text/unicode/norm"

// asciiReplacements is the ASCII replacement table shared by every
// encoding context: characters that are syntactically significant in at
// least one of the
// attribute/PCDATA/RCDATA contexts are always escaped the same way, so
// quoting discipline can never be broken regardless of which context a
// string ends up serialized into.
var asciiReplacements = map[rune]string{
	'"':  "&#34;",
	'\'': "&#39;",
	'+':  "&#43;",
	'<':  "&lt;",
	'=':  "&#61;",
	'>':  "&gt;",
	'@':  "&#64;",
	'`':  "&#96;",
	'&':  "&amp;",
}

// unicodeHazardSingles are individually listed codepoints that are always
// escaped as numeric entities rather than passed through verbatim: the
// first four decompose (NFKD) to a character in asciiSyntaxChars, the
// U+2100-U+2106 forms to sequences containing '/'. IsUnicodeHazard also
// checks unicodeHazardRanges and, via golang.org/x/text/unicode/norm, the
// NFKD decomposition of any other codepoint, so it also catches hazards
// outside these fixed lists.
var unicodeHazardSingles = map[rune]bool{
	0x037E: true, // GREEK QUESTION MARK, decomposes to ';'
	0x1FEF: true, // GREEK VARIA, decomposes to '`'
	0x207A: true, // SUPERSCRIPT PLUS SIGN
	0x207C: true, // SUPERSCRIPT EQUALS SIGN
	0x2100: true, // ACCOUNT OF
	0x2101: true, // ADDRESSED TO THE SUBJECT
	0x2105: true, // CARE OF
	0x2106: true, // CADA UNA
}

var unicodeHazardRanges = [][2]rune{
	{0xFF01, 0xFF5E}, // fullwidth ASCII variants
	{0xFE50, 0xFE6F}, // small form variants
}

func inHazardRange(r rune) bool {
	for _, rg := range unicodeHazardRanges {
		if r >= rg[0] && r <= rg[1] {
			return true
		}
	}
	return false
}

// asciiSyntaxChars is the set of characters an NFKD decomposition is
// checked against to flag a codepoint as a template/markup hazard.
const asciiSyntaxChars = "<>&\"'=+`;"

// IsUnicodeHazard reports whether r must be emitted as a numeric entity
// because its compatibility (NFKD) decomposition contains an ASCII syntax
// character, or because it falls in one of the historically-enumerated
// hazard ranges/singles.
func IsUnicodeHazard(r rune) bool {
	if unicodeHazardSingles[r] || inHazardRange(r) {
		return true
	}
	if r < 0x80 {
		return false
	}
	decomposed := norm.NFKD.String(string(r))
	if decomposed == string(r) {
		return false
	}
	for _, d := range decomposed {
		if d < 0x80 && containsByte(asciiSyntaxChars, byte(d)) {
			return true
		}
	}
	return false
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

// isC1OrNoncharacter reports whether r is a C1 control, a BMP
// noncharacter, or a lone surrogate, all of which are elided outright
// rather than encoded.
func isC1OrNoncharacter(r rune) bool {
	switch {
	case r >= 0x7f && r <= 0x9f:
		return true
	case r >= 0xd800 && r <= 0xdfff:
		return true
	case r >= 0xfdd0 && r <= 0xfdef:
		return true
	case r&0xfffe == 0xfffe:
		return true
	}
	return false
}

// isControlExceptHtLfCr reports whether r is a C0 control other than
// HT/LF/CR, or DEL; both are always elided.
func isControlExceptHtLfCr(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	if r >= 0 && r <= 0x1f {
		return true
	}
	return r == 0x7f
}
