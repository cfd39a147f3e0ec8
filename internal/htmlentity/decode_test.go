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

package htmlentity

import "testing"

func TestDecode(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"named with semicolon", "&amp;", "&"},
		{"named without semicolon", "&amp", "&"},
		{"lt gt", "&lt;script&gt;", "<script>"},
		{"decimal numeric", "&#65;", "A"},
		{"hex numeric", "&#x41;", "A"},
		{"hex numeric no semicolon", "&#x41", "A"},
		{"unknown entity left alone", "&zzzznotreal;", "&zzzznotreal;"},
		{"bare ampersand", "a & b", "a & b"},
		{"no entities", "plain text", "plain text"},
		{"nbsp", "a&nbsp;b", "a b"},
		{"control char elided", "a&#0;b", "ab"},
		{"surrogate elided", "a&#xD800;b", "ab"},
		{"tab preserved", "a&#9;b", "a\tb"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Decode(tc.in); got != tc.want {
				t.Errorf("Decode(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestDecodeLongestPrefix(t *testing.T) {
	// "&notit;" is not in the table but "&not;" is a prefix; without a
	// semicolon after "not" the decoder must not consume "it" as part of
	// the entity name match incorrectly.
	got := Decode("&notit;")
	if got != "¬it;" {
		t.Errorf("Decode(&notit;) = %q, want %q", got, "¬it;")
	}
}
