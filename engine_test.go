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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDedupAttrs(t *testing.T) {
	tests := []struct {
		name  string
		pairs []string
		want  []string
	}{
		{
			name:  "empty",
			pairs: nil,
			want:  nil,
		},
		{
			name:  "single pair untouched",
			pairs: []string{"id", "x"},
			want:  []string{"id", "x"},
		},
		{
			name:  "no duplicates",
			pairs: []string{"id", "x", "class", "c"},
			want:  []string{"id", "x", "class", "c"},
		},
		{
			name:  "duplicate keeps first",
			pairs: []string{"id", "x", "id", "y"},
			want:  []string{"id", "x"},
		},
		{
			name:  "shared first letter but distinct names both kept",
			pairs: []string{"id", "x", "ismap", "", "id", "z"},
			want:  []string{"id", "x", "ismap", ""},
		},
		{
			name:  "shared first letter with a later duplicate dropped",
			pairs: []string{"data-a", "1", "data-b", "2", "data-a", "3"},
			want:  []string{"data-a", "1", "data-b", "2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dedupAttrs(tt.pairs)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("dedupAttrs(%v) mismatch (-want +got):\n%s", tt.pairs, diff)
			}
		})
	}
}

func TestOpenStack(t *testing.T) {
	var s openStack
	s.push("b", "b", false)
	s.push("script", "", true)
	s.push("i", "i", false)

	if got := s.depth(); got != 3 {
		t.Errorf("depth = %d, want 3", got)
	}
	if s.topSkipText() {
		t.Error("topSkipText = true, want false")
	}
	if got := s.findTop("script"); got != 1 {
		t.Errorf("findTop(script) = %d, want 1", got)
	}
	if got := s.findTop("missing"); got != -1 {
		t.Errorf("findTop(missing) = %d, want -1", got)
	}

	closed := s.popThrough(1)
	if diff := cmp.Diff([]string{"i"}, closed); diff != "" {
		t.Errorf("popThrough closed mismatch (-want +got):\n%s", diff)
	}
	if got := s.depth(); got != 1 {
		t.Errorf("depth after pop = %d, want 1", got)
	}
	if len(s.names) != 2*s.depth() {
		t.Errorf("flat vector length %d, want %d", len(s.names), 2*s.depth())
	}
}

func TestOpenStackSkipTextFollowsTop(t *testing.T) {
	var s openStack
	s.push("div", "div", false)
	s.push("script", "", true)
	if !s.topSkipText() {
		t.Error("skipText should be raised inside deferred script")
	}
	s.popThrough(1)
	if s.topSkipText() {
		t.Error("skipText should reset when the deferred frame pops")
	}
}

func TestEngineElementPolicyObservesFilteredAttrs(t *testing.T) {
	// The element policy runs after attribute filtering, so it must see
	// only surviving attributes and may inject new ones exempt from
	// per-attribute policies.
	var observed []string
	inject := elementPolicyFunc(func(name string, attrs []string) (string, []string, bool) {
		observed = append([]string(nil), attrs...)
		return name, append(attrs, "data-seen", "1"), true
	})
	b := NewPolicyBuilder().AllowAttrs("id").OnElements("p")
	b.entry("p").elementPolicy = inject
	p := b.Build()

	got := Sanitize(p, `<p id="x" onclick="evil()">t</p>`)
	if want := `<p id="x" data-seen="1">t</p>`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{"id", "x"}, observed); diff != "" {
		t.Errorf("element policy observed attrs mismatch (-want +got):\n%s", diff)
	}
}

func TestEngineSkipTextInsideDeferredContainers(t *testing.T) {
	p := NewPolicyBuilder().AllowElements("b").Build()
	tests := []struct {
		input string
		want  string
	}{
		// Skippable containers drop their content entirely when deferred.
		{`<style>p{}</style>x`, `x`},
		{`<object>o</object>x`, `x`},
		{`<title>t</title>x`, `x`},
		// Ordinary deferred containers keep their text.
		{`<div>kept</div>`, `kept`},
		{`<em><b>y</b></em>`, `<b>y</b>`},
		// Nested skip state is restored when the container closes.
		{`<noscript>a<b>c</b></noscript><b>d</b>`, `<b>d</b>`},
	}
	for _, tt := range tests {
		if got := Sanitize(p, tt.input); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
