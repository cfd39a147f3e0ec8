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
	"strings"

	"github.com/google/go-htmlsanitizer/css"
	"github.com/google/go-htmlsanitizer/internal/htmlnames"
	"github.com/google/go-htmlsanitizer/internal/urlfilter"
)

// defaultSkipIfEmpty lists the elements suppressed when every one of
// their attributes is filtered out: a, font, img, input, span.
var defaultSkipIfEmpty = map[string]bool{"a": true, "font": true, "img": true, "input": true, "span": true}

// PolicyBuilder accumulates element, attribute, URL and styling rules
// and compiles them into an immutable Policy. The builder itself is not
// part of the security-critical core; the Policy it produces is.
//
// A PolicyBuilder is not safe for concurrent use; the Policy it produces
// is.
type PolicyBuilder struct {
	elements       map[string]*elementAndAttributePolicies
	globalAttrs    map[string]AttributePolicy
	textContainers map[string]bool
	changeListener ChangeListener
	sinkErrPolicy  SinkErrorPolicy
}

// NewPolicyBuilder returns an empty PolicyBuilder: no element is allowed
// until named by AllowElements or one of the AllowAttrs().OnElements(...)
// chains.
func NewPolicyBuilder() *PolicyBuilder {
	return &PolicyBuilder{
		elements:    make(map[string]*elementAndAttributePolicies),
		globalAttrs: make(map[string]AttributePolicy),
	}
}

func (b *PolicyBuilder) entry(name string) *elementAndAttributePolicies {
	e, ok := b.elements[name]
	if !ok {
		e = &elementAndAttributePolicies{
			elementPolicy: IdentityElementPolicy,
			attrPolicies:  make(map[string]AttributePolicy),
		}
		b.elements[name] = e
	}
	return e
}

// AllowElements allows each named element, with no attributes beyond
// whatever AllowAttrs/AllowStandard* rules separately grant it.
func (b *PolicyBuilder) AllowElements(names ...string) *PolicyBuilder {
	for _, n := range names {
		b.entry(htmlnames.Canon(n))
	}
	return b
}

// AllowElementsWithSkipIfEmpty allows each named element and marks it
// skip-if-empty: if every attribute is filtered away, the element itself
// is suppressed (its text content still passes through), rather than
// being emitted as a bare tag. The default set for this is {a, font,
// img, input, span} (applied automatically in Build); this method lets a
// builder extend it to others.
func (b *PolicyBuilder) AllowElementsWithSkipIfEmpty(names ...string) *PolicyBuilder {
	for _, n := range names {
		b.entry(htmlnames.Canon(n)).skipIfEmpty = true
	}
	return b
}

// AllowStandardAttributes allows id, class, title, lang and dir on every
// element the policy otherwise allows.
func (b *PolicyBuilder) AllowStandardAttributes() *PolicyBuilder {
	return b.AllowAttrs("id", "class", "title", "lang", "dir").Globally()
}

// AttrAllower is the fluent continuation returned by AllowAttrs: it binds
// a set of attribute names to a policy (IdentityAttributePolicy unless
// WithPolicy overrides it), then Globally or OnElements decides its
// scope.
type AttrAllower struct {
	b      *PolicyBuilder
	names  []string
	policy AttributePolicy
}

// AllowAttrs starts a rule allowing the named attributes unchanged;
// chain WithPolicy to restrict or rewrite their values, then Globally or
// OnElements to bind the rule's scope.
func (b *PolicyBuilder) AllowAttrs(names ...string) *AttrAllower {
	return &AttrAllower{b: b, names: names, policy: IdentityAttributePolicy}
}

// WithPolicy replaces the identity policy with p.
func (a *AttrAllower) WithPolicy(p AttributePolicy) *AttrAllower {
	a.policy = p
	return a
}

// Globally binds the rule to every element. Global rules apply after an
// element's own attribute policy for the same name.
func (a *AttrAllower) Globally() *PolicyBuilder {
	for _, n := range a.names {
		name := htmlnames.Canon(n)
		a.b.globalAttrs[name] = JoinAttributePolicies(a.b.globalAttrs[name], a.policy)
	}
	return a.b
}

// OnElements binds the rule to the named elements, implicitly allowing
// each one if it wasn't already named by AllowElements.
func (a *AttrAllower) OnElements(elementNames ...string) *PolicyBuilder {
	for _, en := range elementNames {
		e := a.b.entry(htmlnames.Canon(en))
		for _, an := range a.names {
			attrName := htmlnames.Canon(an)
			e.attrPolicies[attrName] = JoinAttributePolicies(e.attrPolicies[attrName], a.policy)
		}
	}
	return a.b
}

// URLAttributePolicy returns an AttributePolicy applying the URL
// protocol filter, allowing only the given (case-insensitive)
// schemes, e.g. URLAttributePolicy("http", "https").
func URLAttributePolicy(schemes ...string) AttributePolicy {
	allowed := make(map[string]bool, len(schemes))
	for _, s := range schemes {
		allowed[strings.ToLower(s)] = true
	}
	return attributePolicyFunc(func(element, attr, value string) (string, bool) {
		return urlfilter.Filter(element, attr, value, allowed)
	})
}

// AllowedValuesAttributePolicy returns an AttributePolicy that keeps an
// attribute only if its value, compared case-insensitively, is one of
// values.
func AllowedValuesAttributePolicy(values ...string) AttributePolicy {
	allowed := make(map[string]bool, len(values))
	for _, v := range values {
		allowed[strings.ToLower(v)] = true
	}
	return attributePolicyFunc(func(_, _, value string) (string, bool) {
		if allowed[strings.ToLower(value)] {
			return value, true
		}
		return "", false
	})
}

// AllowStandardURLAttributes binds the given schemes to the common
// URL-valued attributes: href on a/area/link, src on img/audio/video/
// source/track/iframe, action on form, cite on blockquote/q/del/ins.
func (b *PolicyBuilder) AllowStandardURLAttributes(schemes ...string) *PolicyBuilder {
	pol := URLAttributePolicy(schemes...)
	b.AllowAttrs("href").WithPolicy(pol).OnElements("a", "area", "link")
	b.AllowAttrs("src").WithPolicy(pol).OnElements("img", "audio", "video", "source", "track", "iframe")
	b.AllowAttrs("action").WithPolicy(pol).OnElements("form")
	b.AllowAttrs("cite").WithPolicy(pol).OnElements("blockquote", "q", "del", "ins")
	return b
}

// AllowCommonInlineFormatting allows a conservative inline-text element
// set plus a[href] restricted to http/https.
func (b *PolicyBuilder) AllowCommonInlineFormatting() *PolicyBuilder {
	b.AllowElements("b", "i", "u", "em", "strong", "sup", "sub", "br", "span",
		"s", "del", "ins", "mark", "small", "abbr", "code", "kbd", "q", "cite")
	b.AllowAttrs("href").WithPolicy(URLAttributePolicy("http", "https")).OnElements("a")
	return b
}

// relNofollowPolicy is the element policy behind
// RequireRelNofollowOnLinks: rather than overwriting rel, it merges
// "nofollow" into whatever rel tokens are already present, deduplicating,
// and additionally adds "noopener noreferrer" whenever a[target] is set
// (closing the reverse-tabnabbing hole a bare rel=nofollow leaves open).
// It is idempotent: applying it twice reproduces the same rel value, so
// joining it with itself yields an equivalent policy without a separate
// join-strategy abstraction.
type relNofollowPolicy struct{}

func (relNofollowPolicy) Apply(element string, attrs []string) (string, []string, bool) {
	targetPresent := false
	relIdx := -1
	for i := 0; i+1 < len(attrs); i += 2 {
		switch attrs[i] {
		case "target":
			targetPresent = true
		case "rel":
			relIdx = i
		}
	}
	var tokens []string
	seen := make(map[string]bool)
	add := func(tok string) {
		if tok == "" || seen[tok] {
			return
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}
	if relIdx >= 0 {
		for _, t := range strings.Fields(attrs[relIdx+1]) {
			add(strings.ToLower(t))
		}
	}
	if targetPresent {
		add("noopener")
		add("noreferrer")
	}
	add("nofollow")
	value := strings.Join(tokens, " ")
	if relIdx >= 0 {
		attrs[relIdx+1] = value
		return element, attrs, true
	}
	return element, append(attrs, "rel", value), true
}

// RequireRelNofollowOnLinks joins relNofollowPolicy onto <a>'s element
// policy.
func (b *PolicyBuilder) RequireRelNofollowOnLinks() *PolicyBuilder {
	e := b.entry("a")
	e.elementPolicy = JoinElementPolicies(e.elementPolicy, relNofollowPolicy{})
	return b
}

// styleAttributePolicy adapts a css.StylingPolicy into an AttributePolicy
// for the style attribute: an all-empty result (every declaration
// rejected) drops the attribute entirely, the same way StylingPolicy
// discards the heading of a property whose every value token was
// rejected.
func styleAttributePolicy(schemas map[string]*css.Schema, rewriteURL css.URLRewriter) AttributePolicy {
	sp := css.New(schemas, rewriteURL)
	return attributePolicyFunc(func(_, _, value string) (string, bool) {
		out := sp.Sanitize(value)
		if out == "" {
			return "", false
		}
		return out, true
	})
}

// AllowStyling allows a style attribute on every element, filtered
// through schema (pass css.DefaultSchema for a realistic common property
// set) and rewriting url(...) content through the given URL schemes
// (url(...) content goes through the same URL-protocol filtering as
// href/src).
func (b *PolicyBuilder) AllowStyling(schema map[string]*css.Schema, urlSchemes ...string) *PolicyBuilder {
	allowed := make(map[string]bool, len(urlSchemes))
	for _, s := range urlSchemes {
		allowed[strings.ToLower(s)] = true
	}
	rewriteURL := func(raw string) (string, bool) {
		return urlfilter.Filter("style", "style", raw, allowed)
	}
	return b.AllowAttrs("style").WithPolicy(styleAttributePolicy(schema, rewriteURL)).Globally()
}

// WithChangeListener installs a ChangeListener the built Policy reports
// input-side decisions to.
func (b *PolicyBuilder) WithChangeListener(l ChangeListener) *PolicyBuilder {
	b.changeListener = l
	return b
}

// WithSinkErrorPolicy sets how SanitizeToWriter reacts to a sink write
// failure. The default is SinkErrorDrop.
func (b *PolicyBuilder) WithSinkErrorPolicy(p SinkErrorPolicy) *PolicyBuilder {
	b.sinkErrPolicy = p
	return b
}

// AllowTextIn overrides which elements are text containers: text() events
// pass through only inside the named elements. Absent any call to this
// method, every element not in htmlnames.SkippableContentSet is a text
// container.
func (b *PolicyBuilder) AllowTextIn(names ...string) *PolicyBuilder {
	if b.textContainers == nil {
		b.textContainers = make(map[string]bool)
	}
	for _, n := range names {
		b.textContainers[htmlnames.Canon(n)] = true
	}
	return b
}

// Build compiles the accumulated rules into an immutable Policy, folding
// global attribute policies into each element's resolved attribute map
// and applying the default skip-if-empty set.
func (b *PolicyBuilder) Build() *Policy {
	elements := make(map[string]*elementAndAttributePolicies, len(b.elements))
	for name, e := range b.elements {
		merged := e.andGlobals(b.globalAttrs)
		if defaultSkipIfEmpty[name] {
			merged.skipIfEmpty = true
		}
		elements[name] = merged
	}
	return &Policy{
		elements:        elements,
		textContainers:  b.textContainers,
		changeListener:  b.changeListener,
		sinkErrorPolicy: b.sinkErrPolicy,
	}
}
