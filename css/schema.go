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

package css

// Bits is a bitmask of the value kinds a Schema allows.
type Bits uint

const (
	// Word allows bare (non-literal-restricted) identifiers.
	Word Bits = 1 << iota
	// URLBits allows url(...) tokens.
	URLBits
	// Quantity allows Number/Percentage/Dimension tokens.
	Quantity
	// Negative allows a Quantity token to carry a leading '-'; ignored
	// unless Quantity is also set.
	Negative
	// StringBits allows quoted-string tokens (and triggers hoisting of
	// consecutive allowed identifiers into a single quoted string).
	StringBits
	// HashValue allows "#rrggbb"-style Hash tokens.
	HashValue
)

// Schema is the resolved policy for one CSS property (or one function's
// argument list, via FnKeys): which value kinds are allowed, which bare
// keywords are allowed regardless of Word, and which function calls are
// allowed with which sub-Schema for their arguments.
type Schema struct {
	Bits     Bits
	Literals map[string]bool
	FnKeys   map[string]*Schema
}

func lit(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// rgbSchema is the sub-schema for rgb(...)/rgba(...) arguments: numbers,
// percentages (always unsigned: no Negative), and commas (commas are
// handled structurally by the filter, not through Literals).
var rgbSchema = &Schema{Bits: Quantity}

// DefaultSchema is a realistic common property set covering font,
// color, background, box-model, text and display properties. Built once
// at package init.
var DefaultSchema = map[string]*Schema{
	"color":            {Bits: Word | HashValue, Literals: namedColors, FnKeys: map[string]*Schema{"rgb": rgbSchema, "rgba": rgbSchema, "hsl": rgbSchema, "hsla": rgbSchema}},
	"background-color": {Bits: Word | HashValue, Literals: namedColors, FnKeys: map[string]*Schema{"rgb": rgbSchema, "rgba": rgbSchema}},
	"background-image": {Bits: URLBits | Word, Literals: lit("none")},
	"background": {
		Bits:     Word | HashValue | URLBits | Quantity,
		Literals: unionLit(namedColors, lit("none", "repeat", "repeat-x", "repeat-y", "no-repeat", "transparent", "center", "top", "bottom", "left", "right")),
		FnKeys:   map[string]*Schema{"rgb": rgbSchema, "rgba": rgbSchema},
	},
	"font-family": {Bits: Word | StringBits},
	"font-size":   {Bits: Quantity, Literals: lit("xx-small", "x-small", "small", "medium", "large", "x-large", "xx-large", "smaller", "larger")},
	"font-weight": {Bits: Quantity, Literals: lit("normal", "bold", "bolder", "lighter")},
	"font-style":  {Bits: Word, Literals: lit("normal", "italic", "oblique")},
	"font": {
		Bits:     Word | Quantity | StringBits,
		Literals: lit("normal", "italic", "oblique", "bold", "bolder", "lighter", "xx-small", "x-small", "small", "medium", "large", "x-large", "xx-large"),
	},
	"text-align":      {Literals: lit("left", "right", "center", "justify")},
	"text-decoration": {Bits: Word, Literals: lit("none", "underline", "overline", "line-through")},
	"text-transform":  {Bits: Word, Literals: lit("none", "capitalize", "uppercase", "lowercase")},
	"display":         {Bits: Word, Literals: lit("none", "inline", "block", "inline-block", "flex", "inline-flex", "grid", "list-item", "table", "table-row", "table-cell")},
	"width":           {Bits: Quantity, Literals: lit("auto")},
	"height":          {Bits: Quantity, Literals: lit("auto")},
	"max-width":       {Bits: Quantity, Literals: lit("none")},
	"max-height":      {Bits: Quantity, Literals: lit("none")},
	"margin":          {Bits: Quantity | Negative, Literals: lit("auto")},
	"margin-top":      {Bits: Quantity | Negative, Literals: lit("auto")},
	"margin-right":    {Bits: Quantity | Negative, Literals: lit("auto")},
	"margin-bottom":   {Bits: Quantity | Negative, Literals: lit("auto")},
	"margin-left":     {Bits: Quantity | Negative, Literals: lit("auto")},
	"padding":         {Bits: Quantity, Literals: lit("auto")},
	"padding-top":     {Bits: Quantity},
	"padding-right":   {Bits: Quantity},
	"padding-bottom":  {Bits: Quantity},
	"padding-left":    {Bits: Quantity},
	"border": {
		Bits:     Word | Quantity | HashValue,
		Literals: unionLit(namedColors, lit("none", "solid", "dashed", "dotted", "double", "groove", "ridge", "inset", "outset")),
	},
	"border-width":  {Bits: Quantity, Literals: lit("thin", "medium", "thick")},
	"border-style":  {Bits: Word, Literals: lit("none", "solid", "dashed", "dotted", "double", "groove", "ridge", "inset", "outset")},
	"border-color":  {Bits: Word | HashValue, Literals: namedColors},
	"border-radius": {Bits: Quantity},
	"list-style":    {Bits: Word | URLBits, Literals: lit("none", "disc", "circle", "square", "decimal", "inside", "outside")},
	"list-style-type": {Bits: Word, Literals: lit("none", "disc", "circle", "square", "decimal", "lower-alpha", "upper-alpha", "lower-roman", "upper-roman")},
	"vertical-align":  {Bits: Quantity, Literals: lit("baseline", "top", "middle", "bottom", "sub", "super", "text-top", "text-bottom")},
	"line-height":      {Bits: Quantity, Literals: lit("normal")},
	"letter-spacing":   {Bits: Quantity, Literals: lit("normal")},
	"white-space":       {Bits: Word, Literals: lit("normal", "nowrap", "pre", "pre-wrap", "pre-line")},
	"overflow":          {Bits: Word, Literals: lit("visible", "hidden", "scroll", "auto")},
	"float":             {Bits: Word, Literals: lit("none", "left", "right")},
	"clear":             {Bits: Word, Literals: lit("none", "left", "right", "both")},
}

func unionLit(maps ...map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for _, m := range maps {
		for k := range m {
			out[k] = true
		}
	}
	return out
}

// namedColors is the CSS2.1 basic color keyword set, reused by every
// color-accepting property.
var namedColors = lit(
	"black", "silver", "gray", "white", "maroon", "red", "purple", "fuchsia",
	"green", "lime", "olive", "yellow", "navy", "blue", "teal", "aqua",
	"orange", "transparent", "currentcolor",
)
