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

package urlfilter

import "testing"

func httpOnly() map[string]bool   { return map[string]bool{"http": true, "https": true} }
func noSchemes() map[string]bool  { return map[string]bool{} }

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		allowed map[string]bool
		want    string
		ok      bool
	}{
		{"javascript rejected", "javascript:alert(1)", httpOnly(), "", false},
		{"https allowed", "https://example.com/a", httpOnly(), "https://example.com/a", true},
		{"case insensitive scheme", "HTTP://Example.COM/%41", httpOnly(), "HTTP://Example.COM/%41", true},
		{"relative path allowed", "/a/b?c=d#e", httpOnly(), "/a/b?c=d#e", true},
		{"protocol relative allowed when http+https allowed", "//example.com/a", httpOnly(), "//example.com/a", true},
		{"protocol relative rejected without both schemes", "//example.com/a", map[string]bool{"https": true}, "", false},
		{"parens and braces percent-encoded", "/a(b){c}", httpOnly(), "/a%28b%29%7Bc%7D", true},
		{"colon lookalike in scheme position encoded", "java∶script(1)", httpOnly(), "java%E2%88%B6script%281%29", true},
		{"mailto rejected by default", "mailto:a@b.com", httpOnly(), "", false},
		{"leading/trailing whitespace trimmed", "  https://x  ", httpOnly(), "https://x", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Filter("a", "href", tc.value, tc.allowed)
			if ok != tc.ok {
				t.Fatalf("Filter(%q) ok = %v, want %v", tc.value, ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Errorf("Filter(%q) = %q, want %q", tc.value, got, tc.want)
			}
		})
	}
}

func TestFilterNoSchemesAllowed(t *testing.T) {
	if _, ok := Filter("a", "href", "https://x", noSchemes()); ok {
		t.Errorf("expected rejection when no schemes allowed")
	}
}
