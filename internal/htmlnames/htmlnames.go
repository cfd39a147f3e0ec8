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

// Package htmlnames holds the process-wide immutable name tables shared by
// the lexer, the policy engine and the renderer: canonicalization rules,
// the void-element set, the escape-exempt ("CDATA"/"RCDATA") element modes
// and the valueless-attribute set.
//
// These tables are looked up far more often than they change, so they are
// built once, at package init, as plain maps rather than recomputed per
// call.
package htmlnames

import "strings"

// EscapingMode describes how an element's content is tokenized.
type EscapingMode int

const (
	// Normal content is parsed as ordinary markup.
	Normal EscapingMode = iota
	// CDATA content is opaque: entities are not decoded and nested tags
	// are not recognized as markup, only as the closing tag to look for.
	CDATA
	// CDATASometimes is tokenized exactly like CDATA, escaping text spans
	// included (see internal/lexer), and the renderer buffers it the same
	// way.
	CDATASometimes
	// RCDATA content decodes entities but is otherwise plain text.
	RCDATA
	// PlainText never ends: everything to EOF belongs to the element and
	// escaping text spans are inhibited.
	PlainText
)

// escapingModes maps the canonical (lowercase) element name to its content
// escaping mode. Elements absent from this map are Normal.
var escapingModes = map[string]EscapingMode{
	"script":   CDATA,
	"style":    CDATA,
	"xmp":      PlainText,
	"iframe":   CDATA,
	"noembed":  CDATA,
	"noframes": CDATA,
	"noscript": CDATASometimes,
	"plaintext": PlainText,
	"textarea": RCDATA,
	"title":    RCDATA,
}

// EscapingModeForName reports the text-escaping mode for a canonical
// element name.
func EscapingModeForName(name string) EscapingMode {
	return escapingModes[name]
}

// voidElements never have content or a closing tag.
var voidElements = set(
	"area", "base", "br", "col", "command", "embed", "hr", "img", "input",
	"keygen", "link", "meta", "param", "source", "track", "wbr",
)

// IsVoidElement reports whether a canonical element name is void.
func IsVoidElement(name string) bool { return voidElements[name] }

// SkippableContentSet is the set of elements whose content is dropped
// entirely (skipText is raised) when the element itself is deferred by the
// policy engine, because the content would otherwise be parsed as ordinary
// text and leaked into the sanitized output.
var SkippableContentSet = set(
	"script", "style", "noscript", "nostyle", "noembed", "noframes",
	"iframe", "object", "frame", "frameset", "title",
)

// ValuelessAttributes is the set of boolean HTML4 attributes that never
// carry a value; the lexer uses this to decide where an unquoted attribute
// value ends.
var ValuelessAttributes = set(
	"checked", "compact", "declare", "defer", "disabled", "ismap",
	"multiple", "nohref", "noresize", "noshade", "nowrap", "readonly",
	"selected",
)

// rawTextSynonyms are renderer-level rewrites of obsolete raw-text
// elements onto <pre>.
var rawTextSynonyms = map[string]string{
	"xmp":       "pre",
	"listing":   "pre",
	"plaintext": "pre",
}

// RawTextSynonym returns the renderer substitution for a raw-text element
// name, and whether one exists.
func RawTextSynonym(name string) (string, bool) {
	v, ok := rawTextSynonyms[name]
	return v, ok
}

// mixedCase holds SVG and MathML element/attribute names whose canonical
// form is not all-lowercase. Built from the HTML5 "foreign content"
// adjustment tables.
var mixedCase = set(
	// SVG elements.
	"altGlyph", "altGlyphDef", "altGlyphItem", "animateColor",
	"animateMotion", "animateTransform", "clipPath", "feBlend",
	"feColorMatrix", "feComponentTransfer", "feComposite",
	"feConvolveMatrix", "feDiffuseLighting", "feDisplacementMap",
	"feDistantLight", "feDropShadow", "feFlood", "feFuncA", "feFuncB",
	"feFuncG", "feFuncR", "feGaussianBlur", "feImage", "feMerge",
	"feMergeNode", "feMorphology", "feOffset", "fePointLight",
	"feSpecularLighting", "feSpotLight", "feTile", "feTurbulence",
	"foreignObject", "glyphRef", "linearGradient", "radialGradient",
	"textPath",
	// SVG/MathML attributes.
	"attributeName", "attributeType", "baseFrequency", "baseProfile",
	"calcMode", "clipPathUnits", "contentScriptType", "contentStyleType",
	"diffuseConstant", "edgeMode", "externalResourcesRequired",
	"filterRes", "filterUnits", "glyphRef", "gradientTransform",
	"gradientUnits", "kernelMatrix", "kernelUnitLength", "keyPoints",
	"keySplines", "keyTimes", "lengthAdjust", "limitingConeAngle",
	"markerHeight", "markerUnits", "markerWidth", "maskContentUnits",
	"maskUnits", "numOctaves", "pathLength", "patternContentUnits",
	"patternTransform", "patternUnits", "pointsAtX", "pointsAtY",
	"pointsAtZ", "preserveAlpha", "preserveAspectRatio", "primitiveUnits",
	"refX", "refY", "repeatCount", "repeatDur", "requiredExtensions",
	"requiredFeatures", "specularConstant", "specularExponent",
	"spreadMethod", "startOffset", "stdDeviation", "stitchTiles",
	"surfaceScale", "systemLanguage", "tableValues", "targetX", "targetY",
	"textLength", "viewBox", "viewTarget", "xChannelSelector",
	"yChannelSelector", "zoomAndPan",
)

var mixedCaseFold map[string]string

func init() {
	mixedCaseFold = make(map[string]string, len(mixedCase))
	for name := range mixedCase {
		mixedCaseFold[strings.ToLower(name)] = name
	}
}

// Canon returns the canonical form of an element or attribute name:
// lowercased, unless the name contains a namespace separator (':') or is
// one of the fixed SVG/MathML mixed-case names, in which case it is
// returned as-is (after folding a lowercase spelling back to its
// mixed-case form, so Canon is idempotent: Canon(Canon(x)) == Canon(x)).
func Canon(name string) string {
	if strings.ContainsRune(name, ':') {
		return name
	}
	if mixedCase[name] {
		return name
	}
	if want, ok := mixedCaseFold[strings.ToLower(name)]; ok {
		return want
	}
	return strings.ToLower(name)
}

// IsValidHTMLName reports whether name is a legal emitted tag or attribute
// name under the output grammar: non-empty, at most 128
// characters, drawn from [A-Za-z0-9:-], with at most one ':' (not at
// either end) and no leading or trailing '-'.
func IsValidHTMLName(name string) bool {
	if len(name) == 0 || len(name) > 128 {
		return false
	}
	if name[0] == '-' || name[len(name)-1] == '-' {
		return false
	}
	colons := 0
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-':
		case c == ':':
			colons++
			if i == 0 || i == len(name)-1 {
				return false
			}
		default:
			return false
		}
	}
	return colons <= 1
}

func set(vals ...string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}
