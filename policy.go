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

// AttributePolicy decides whether an attribute survives on an element, and
// may rewrite its value.
type AttributePolicy interface {
	// Apply returns the (possibly rewritten) value and true to keep the
	// attribute, or ("", false) to drop it.
	Apply(element, attr, value string) (string, bool)
}

type attributePolicyFunc func(element, attr, value string) (string, bool)

func (f attributePolicyFunc) Apply(element, attr, value string) (string, bool) {
	return f(element, attr, value)
}

// IdentityAttributePolicy keeps every attribute unchanged.
var IdentityAttributePolicy AttributePolicy = attributePolicyFunc(
	func(_, _, value string) (string, bool) { return value, true },
)

// RejectAttributePolicy drops every attribute it is asked about.
var RejectAttributePolicy AttributePolicy = attributePolicyFunc(
	func(_, _, _ string) (string, bool) { return "", false },
)

// joinedAttributePolicy applies its parts in sequence, threading the
// rewritten value from one into the next, and short-circuits the moment
// any part rejects.
type joinedAttributePolicy struct{ parts []AttributePolicy }

func (j joinedAttributePolicy) Apply(element, attr, value string) (string, bool) {
	v := value
	for _, p := range j.parts {
		nv, ok := p.Apply(element, attr, v)
		if !ok {
			return "", false
		}
		v = nv
	}
	return v, true
}

// JoinAttributePolicies composes policies into one that applies each in
// turn, preserving the given order and short-circuiting on the first
// rejection. Nested joins are flattened so repeated joining doesn't build
// up indirection.
func JoinAttributePolicies(policies ...AttributePolicy) AttributePolicy {
	var flat []AttributePolicy
	for _, p := range policies {
		if p == nil {
			continue
		}
		if j, ok := p.(joinedAttributePolicy); ok {
			flat = append(flat, j.parts...)
			continue
		}
		flat = append(flat, p)
	}
	switch len(flat) {
	case 0:
		return IdentityAttributePolicy
	case 1:
		return flat[0]
	default:
		return joinedAttributePolicy{parts: flat}
	}
}

// ElementPolicy decides whether an element instance survives, and may
// rename it or inject attributes exempt from per-attribute filtering (the
// attrs it is handed have already been through that filtering; whatever it
// appends is not re-checked against AttributePolicy).
type ElementPolicy interface {
	// Apply returns the (possibly renamed) element name, the final flat
	// attribute list, and true to keep the element, or ("", nil, false) to
	// reject this instance of it.
	Apply(element string, attrs []string) (name string, newAttrs []string, ok bool)
}

type elementPolicyFunc func(element string, attrs []string) (string, []string, bool)

func (f elementPolicyFunc) Apply(element string, attrs []string) (string, []string, bool) {
	return f(element, attrs)
}

// IdentityElementPolicy keeps the element and its attributes unchanged.
var IdentityElementPolicy ElementPolicy = elementPolicyFunc(
	func(element string, attrs []string) (string, []string, bool) { return element, attrs, true },
)

// RejectElementPolicy rejects every element instance it is asked about.
var RejectElementPolicy ElementPolicy = elementPolicyFunc(
	func(string, []string) (string, []string, bool) { return "", nil, false },
)

type joinedElementPolicy struct{ parts []ElementPolicy }

func (j joinedElementPolicy) Apply(element string, attrs []string) (string, []string, bool) {
	name, cur := element, attrs
	for _, p := range j.parts {
		n, a, ok := p.Apply(name, cur)
		if !ok {
			return "", nil, false
		}
		name, cur = n, a
	}
	return name, cur, true
}

// JoinElementPolicies composes policies into one that applies each in
// turn, threading the possibly-renamed name and possibly-extended
// attribute list from one into the next, and short-circuits on the first
// rejection.
func JoinElementPolicies(policies ...ElementPolicy) ElementPolicy {
	var flat []ElementPolicy
	for _, p := range policies {
		if p == nil {
			continue
		}
		if j, ok := p.(joinedElementPolicy); ok {
			flat = append(flat, j.parts...)
			continue
		}
		flat = append(flat, p)
	}
	switch len(flat) {
	case 0:
		return IdentityElementPolicy
	case 1:
		return flat[0]
	default:
		return joinedElementPolicy{parts: flat}
	}
}

// elementAndAttributePolicies is the compiled per-element configuration:
// the element's own policy, its
// resolved (element-specific-then-global) per-attribute policies, and
// whether it should be suppressed when filtering empties its attribute
// list.
type elementAndAttributePolicies struct {
	elementPolicy ElementPolicy
	attrPolicies  map[string]AttributePolicy
	skipIfEmpty   bool
}

// and intersects two configurations for the same element: an attribute
// survives only if both sides allow it (its policies are joined,
// element-specific-first), the element policies are joined in sequence,
// and skipIfEmpty is inherited from either side.
func (e *elementAndAttributePolicies) and(o *elementAndAttributePolicies) *elementAndAttributePolicies {
	merged := make(map[string]AttributePolicy, len(e.attrPolicies))
	for name, p := range e.attrPolicies {
		if op, ok := o.attrPolicies[name]; ok {
			merged[name] = JoinAttributePolicies(p, op)
		}
	}
	return &elementAndAttributePolicies{
		elementPolicy: JoinElementPolicies(e.elementPolicy, o.elementPolicy),
		attrPolicies:  merged,
		skipIfEmpty:   e.skipIfEmpty || o.skipIfEmpty,
	}
}

// andGlobals folds global (all-element) attribute policies into this
// element's resolved attribute map: a name covered by both sides applies
// the element-specific policy first, then the global one; a name covered
// only globally is added as-is.
func (e *elementAndAttributePolicies) andGlobals(global map[string]AttributePolicy) *elementAndAttributePolicies {
	merged := make(map[string]AttributePolicy, len(e.attrPolicies)+len(global))
	for name, p := range e.attrPolicies {
		merged[name] = p
	}
	for name, gp := range global {
		if ep, ok := merged[name]; ok {
			merged[name] = JoinAttributePolicies(ep, gp)
		} else {
			merged[name] = gp
		}
	}
	return &elementAndAttributePolicies{
		elementPolicy: e.elementPolicy,
		attrPolicies:  merged,
		skipIfEmpty:   e.skipIfEmpty,
	}
}

// Change describes an input-side event reported to a ChangeListener: an
// element or attribute the policy disallowed, or a "bad HTML" condition the
// renderer recovered from. Attribute is only set when Context is
// "attribute-disallowed".
type Change struct {
	Context   string
	Element   string
	Attribute string
}

// ChangeListener observes Sanitize's input-side decisions. It never
// affects sanitization outcomes; a listener that panics is recovered by
// the caller so a broken listener cannot poison sanitization.
type ChangeListener interface {
	Report(c Change)
}

// SinkErrorPolicy governs how SanitizeToWriter reacts to an I/O failure
// from the output sink.
type SinkErrorPolicy int

const (
	// SinkErrorDrop continues sanitizing against subsequent writes,
	// discarding ones that fail. This is the default.
	SinkErrorDrop SinkErrorPolicy = iota
	// SinkErrorPropagate stops at the first sink error and returns it.
	SinkErrorPropagate
)

// Policy is an immutable, compiled set of element/attribute rules built by
// a PolicyBuilder. It is safe to share across goroutines and reuse across
// any number of Sanitize calls.
type Policy struct {
	elements        map[string]*elementAndAttributePolicies
	textContainers  map[string]bool
	changeListener  ChangeListener
	sinkErrorPolicy SinkErrorPolicy
}

func (p *Policy) lookup(name string) (*elementAndAttributePolicies, bool) {
	e, ok := p.elements[name]
	return e, ok
}

// isTextContainer reports whether a canonical element name permits
// character-data content. Absent an explicit override from the builder,
// every element not in the skippable-content set is a text container.
func (p *Policy) isTextContainer(name string) bool {
	if p.textContainers != nil {
		if v, ok := p.textContainers[name]; ok {
			return v
		}
	}
	return !htmlnames.SkippableContentSet[name]
}

func (p *Policy) report(c Change) {
	if p.changeListener == nil {
		return
	}
	defer func() { recover() }()
	p.changeListener.Report(c)
}

// And composes two policies by intersection: an element is
// allowed by the result only if both sides allow it, and only the
// attributes both sides allow on it survive. Useful for layering a
// narrower, context-specific policy over a broad baseline one without
// rebuilding either from scratch.
func (p *Policy) And(o *Policy) *Policy {
	merged := make(map[string]*elementAndAttributePolicies, len(p.elements))
	for name, e := range p.elements {
		if oe, ok := o.elements[name]; ok {
			merged[name] = e.and(oe)
		}
	}
	return &Policy{
		elements:        merged,
		textContainers:  p.textContainers,
		changeListener:  p.changeListener,
		sinkErrorPolicy: p.sinkErrorPolicy,
	}
}
