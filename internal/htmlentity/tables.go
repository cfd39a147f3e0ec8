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

// namedEntities maps an entity name (without the leading '&' or trailing
// ';') to its decoded text. Most map to a single scalar value; a handful of
// HTML5 "combining" entities map to two code points, hence string values
// rather than runes.
//
// This is not the full ~2,200-entry HTML5 named character reference table;
// it covers the entities that occur in practice when sanitizing
// user-authored HTML (markup punctuation, Latin-1 supplement, typographic
// punctuation, a handful of math/greek symbols).
var namedEntities = map[string]string{
	"amp":     "&",
	"lt":      "<",
	"gt":      ">",
	"quot":    "\"",
	"apos":    "'",
	"nbsp":    " ",
	"iexcl":   "¡",
	"cent":    "¢",
	"pound":   "£",
	"curren":  "¤",
	"yen":     "¥",
	"brvbar":  "¦",
	"sect":    "§",
	"uml":     "¨",
	"copy":    "©",
	"ordf":    "ª",
	"laquo":   "«",
	"not":     "¬",
	"shy":     "­",
	"reg":     "®",
	"macr":    "¯",
	"deg":     "°",
	"plusmn":  "±",
	"sup2":    "²",
	"sup3":    "³",
	"acute":   "´",
	"micro":   "µ",
	"para":    "¶",
	"middot":  "·",
	"cedil":   "¸",
	"sup1":    "¹",
	"ordm":    "º",
	"raquo":   "»",
	"frac14":  "¼",
	"frac12":  "½",
	"frac34":  "¾",
	"iquest":  "¿",
	"times":   "×",
	"divide":  "÷",
	"aelig":   "æ",
	"eth":     "ð",
	"oslash":  "ø",
	"szlig":   "ß",
	"thorn":   "þ",
	"ouml":    "ö",
	"uuml":    "ü",
	"auml":    "ä",
	"euml":    "ë",
	"iuml":    "ï",
	"Ouml":    "Ö",
	"Uuml":    "Ü",
	"Auml":    "Ä",
	"ndash":   "–",
	"mdash":   "—",
	"lsquo":   "‘",
	"rsquo":   "’",
	"sbquo":   "‚",
	"ldquo":   "“",
	"rdquo":   "”",
	"bdquo":   "„",
	"dagger":  "†",
	"Dagger":  "‡",
	"bull":    "•",
	"hellip":  "…",
	"permil":  "‰",
	"prime":   "′",
	"Prime":   "″",
	"lsaquo":  "‹",
	"rsaquo":  "›",
	"oline":   "‾",
	"frasl":   "⁄",
	"euro":    "€",
	"trade":   "™",
	"larr":    "←",
	"uarr":    "↑",
	"rarr":    "→",
	"darr":    "↓",
	"harr":    "↔",
	"crarr":   "↵",
	"alpha":   "α",
	"beta":    "β",
	"gamma":   "γ",
	"delta":   "δ",
	"pi":      "π",
	"sigma":   "σ",
	"omega":   "ω",
	"infin":   "∞",
	"ne":      "≠",
	"le":      "≤",
	"ge":      "≥",
	"sum":     "∑",
	"radic":   "√",
	"part":    "∂",
}

// xmlCharUnsafe reports whether r must be elided from decoded text because
// it falls outside the XML Character production: C0
// controls other than HT/LF/CR, C1 controls, orphan surrogates,
// noncharacters U+FDD0-U+FDEF, and any U+xFFFE/U+xFFFF.
func xmlCharUnsafe(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return false
	case r >= 0 && r <= 0x1f:
		return true
	case r >= 0x7f && r <= 0x9f:
		return true
	case r >= 0xd800 && r <= 0xdfff:
		return true
	case r >= 0xfdd0 && r <= 0xfdef:
		return true
	case r&0xfffe == 0xfffe:
		return true
	case r < 0 || r > 0x10ffff:
		return true
	}
	return false
}
