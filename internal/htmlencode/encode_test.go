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

import (
	"strings"
	"testing"
)

func TestEncodePCDATA(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"angle brackets amps and braces", "1 < 2 && 3 > 4 {{x}}", "1 &lt; 2 &amp;&amp; 3 &gt; 4 {<!-- -->{x}}"},
		{"triple brace", "{{{x", "{<!-- -->{<!-- -->{x"},
		{"crlf normalized", "a\r\nb\rc\nd", "a\nb\nc\nd"},
		{"plain text", "hello world", "hello world"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var b strings.Builder
			EncodePCDATA(&b, tc.in)
			if got := b.String(); got != tc.want {
				t.Errorf("EncodePCDATA(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestEncodeHTMLAttrib(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"quote", `a"b`, "a&#34;b"},
		{"amp", "a&b", "a&amp;b"},
		{"brace", "{{x}}", "{​{x}}"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var b strings.Builder
			EncodeHTMLAttrib(&b, tc.in)
			if got := b.String(); got != tc.want {
				t.Errorf("EncodeHTMLAttrib(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestEncodeControlElision(t *testing.T) {
	var b strings.Builder
	EncodePCDATA(&b, "a\x00b\x7fc")
	if got, want := b.String(), "abc"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEncodeSupplementaryPlane(t *testing.T) {
	var b strings.Builder
	EncodePCDATA(&b, "\U0001F600")
	if got, want := b.String(), "&#x1f600;"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIsUnicodeHazard(t *testing.T) {
	if !IsUnicodeHazard(0xFF1C) { // fullwidth '<'
		t.Errorf("IsUnicodeHazard(U+FF1C) = false, want true")
	}
	if IsUnicodeHazard('a') {
		t.Errorf("IsUnicodeHazard('a') = true, want false")
	}
}
