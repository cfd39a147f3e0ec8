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

// Package urlfilter implements a URL protocol filter: it rejects URLs
// whose scheme (or, for protocol-relative URLs, implicit scheme) is not
// on a caller-supplied allowlist, and percent-encodes a handful of
// characters that parsers disagree about.
package urlfilter

import "strings"

// percentEncodeAlways are characters percent-encoded wherever they occur
// in the URL, because they can be used to smuggle a second URL-like
// construct past naive validators.
var percentEncodeAlways = map[rune]string{
	'(': "%28",
	')': "%29",
	'{': "%7B",
	'}': "%7D",
}

// colonLookalikes are characters that some legacy parsers treat as
// equivalent to ':' when they appear in scheme position.
var colonLookalikes = map[rune]bool{
	0x0589: true, // ARMENIAN FULL STOP
	0x05C3: true, // HEBREW PUNCTUATION SOF PASUQ
	0x2236: true, // RATIO
	0xFF1A: true, // FULLWIDTH COLON
}

// Filter applies the URL protocol policy for attribute `attr` on element
// `element` to value, given the set of allowed lowercase schemes. It
// returns the (possibly normalized) value and true if the URL is allowed,
// or ("", false) if it must be dropped.
//
// element and attr identify where the URL appeared; this filter does not
// currently vary behavior by element or attribute name, but callers (the
// policy layer) may call it with different allowed-scheme sets per
// attribute.
func Filter(element, attr, value string, allowedSchemes map[string]bool) (string, bool) {
	trimmed := strings.TrimFunc(value, isHTMLSpace)
	scheme, sawSlashHashQuestionFirst := findScheme(trimmed)
	if scheme != "" {
		if !allowedSchemes[strings.ToLower(scheme)] {
			return "", false
		}
	} else if sawSlashHashQuestionFirst && strings.HasPrefix(trimmed, "//") {
		if !(allowedSchemes["http"] && allowedSchemes["https"]) {
			return "", false
		}
	}
	return normalize(trimmed), true
}

// findScheme walks value looking for the first of '/', '#', '?', ':'. If
// ':' comes first, the scheme is the substring before it (lowercased by
// the caller) and sawSlashHashQuestionFirst is false. Otherwise scheme is
// "" and sawSlashHashQuestionFirst is true if any of '/', '#', '?' was
// found before any ':' (including when none of the four appear at all,
// which also means no scheme).
func findScheme(value string) (scheme string, sawSlashHashQuestionFirst bool) {
	for i, r := range value {
		switch r {
		case '/', '#', '?':
			return "", true
		case ':':
			return value[:i], false
		}
	}
	return "", true
}

func isHTMLSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// normalize percent-encodes the characters lenient parsers disagree about. A
// colon-lookalike is only percent-encoded while no '/', '#', '?' or ':'
// has yet been seen scanning from the left, i.e. while it would still be
// mistaken for a scheme separator by a lenient parser.
func normalize(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	sawSeparator := false
	for _, r := range value {
		switch r {
		case '/', '#', '?', ':':
			sawSeparator = true
		}
		if rep, ok := percentEncodeAlways[r]; ok {
			b.WriteString(rep)
			continue
		}
		if colonLookalikes[r] && !sawSeparator {
			b.WriteString(percentEncodeRune(r))
			continue
		}
		if r <= 0x20 {
			b.WriteString(percentEncodeRune(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func percentEncodeRune(r rune) string {
	buf := make([]byte, 0, 4)
	tmp := []byte(string(r))
	for _, c := range tmp {
		buf = append(buf, '%', hexDigit(c>>4), hexDigit(c&0xf))
	}
	return string(buf)
}

func hexDigit(v byte) byte {
	if v < 10 {
		return '0' + v
	}
	return 'A' + (v - 10)
}
