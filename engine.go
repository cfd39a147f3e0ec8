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

import "github.com/google/go-htmlsanitizer/internal/htmlnames"

// Sink receives the filtered, canonicalized event stream the policy
// engine produces. The renderer is the Sink used by Sanitize; callers may
// supply their own for other output representations.
type Sink interface {
	OpenDocument()
	OpenTag(name string, attrs []string)
	Text(chunk string)
	CloseTag(name string)
	CloseDocument()
}

// engine implements the policy evaluation pipeline: it
// consumes events carrying raw (pre-filter, pre-canonicalization) names
// and attributes and forwards only the approved, canonicalized subset to a
// Sink, tracking the open-element stack and text-suppression state.
type engine struct {
	policy *Policy
	sink   Sink
	stack  openStack
}

func newEngine(policy *Policy, sink Sink) *engine {
	return &engine{policy: policy, sink: sink}
}

func (e *engine) openDocument() { e.sink.OpenDocument() }

func (e *engine) closeDocument() {
	if e.stack.depth() > 0 {
		for _, adj := range e.stack.popThrough(0) {
			e.sink.CloseTag(adj)
		}
	}
	e.sink.CloseDocument()
}

func (e *engine) text(chunk string) {
	if chunk == "" || e.stack.topSkipText() {
		return
	}
	e.sink.Text(chunk)
}

// openTag runs the element-filtering sequence: element lookup,
// per-attribute filtering, duplicate removal, the element policy,
// canonicalization, and skip-if-empty suppression, in that order.
func (e *engine) openTag(inputName string, rawAttrs []string) {
	name := htmlnames.Canon(inputName)
	eap, ok := e.policy.lookup(name)
	if !ok {
		e.deferTag(inputName)
		return
	}

	var filtered []string
	for i := 0; i+1 < len(rawAttrs); i += 2 {
		attrName := htmlnames.Canon(rawAttrs[i])
		value := rawAttrs[i+1]
		pol, ok := eap.attrPolicies[attrName]
		if !ok {
			e.policy.report(Change{Context: "attribute-disallowed", Element: name, Attribute: attrName})
			continue
		}
		nv, ok := pol.Apply(name, attrName, value)
		if !ok {
			e.policy.report(Change{Context: "attribute-disallowed", Element: name, Attribute: attrName})
			continue
		}
		filtered = append(filtered, attrName, nv)
	}
	filtered = dedupAttrs(filtered)

	newName, newAttrs, ok := eap.elementPolicy.Apply(name, filtered)
	if !ok {
		e.deferTag(inputName)
		return
	}
	adjusted := htmlnames.Canon(newName)

	if eap.skipIfEmpty && len(newAttrs) == 0 {
		e.deferTag(inputName)
		return
	}

	void := htmlnames.IsVoidElement(adjusted)
	if !void {
		e.stack.push(name, adjusted, !e.policy.isTextContainer(adjusted))
	}
	e.sink.OpenTag(adjusted, newAttrs)
}

// deferTag implements the "defer" (suppress) path: the element's input
// name is retained on the stack so its matching close can still be found,
// but no events are emitted for it, and its content is dropped entirely if
// it belongs to the skippable-content set. Void elements have no content
// or close tag to track, so they are not pushed.
func (e *engine) deferTag(inputName string) {
	canon := htmlnames.Canon(inputName)
	e.policy.report(Change{Context: "element-disallowed", Element: canon})
	if htmlnames.IsVoidElement(canon) {
		return
	}
	skippable := htmlnames.SkippableContentSet[canon]
	e.stack.push(canon, "", e.stack.topSkipText() || skippable)
}

func (e *engine) closeTag(inputName string) {
	idx := e.stack.findTop(htmlnames.Canon(inputName))
	if idx < 0 {
		return // stray close tag with no matching open: ignore
	}
	for _, adj := range e.stack.popThrough(idx) {
		e.sink.CloseTag(adj)
	}
}

// dedupAttrs removes pairs whose name already occurred earlier in pairs,
// keeping the first occurrence, as the major browsers do. A bitmask of
// first-letter occurrences short-circuits the common case where no two
// attribute names share a first letter; only a collision falls back to an
// explicit lookup to confirm a true duplicate.
func dedupAttrs(pairs []string) []string {
	if len(pairs) <= 2 {
		return pairs
	}
	var mask uint64
	var seen map[string]bool
	out := pairs[:0:0]
	for i := 0; i+1 < len(pairs); i += 2 {
		name, value := pairs[i], pairs[i+1]
		bit := firstLetterBit(name)
		if mask&bit == 0 {
			mask |= bit
			out = append(out, name, value)
			continue
		}
		if seen == nil {
			seen = make(map[string]bool, len(pairs)/2)
			for j := 0; j+1 < len(out); j += 2 {
				seen[out[j]] = true
			}
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name, value)
	}
	return out
}

func firstLetterBit(name string) uint64 {
	if len(name) == 0 {
		return 1 << 63
	}
	c := name[0]
	if c >= 'a' && c <= 'z' {
		return 1 << uint(c-'a')
	}
	return 1 << 63
}
