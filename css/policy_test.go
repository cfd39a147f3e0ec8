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

import (
	"strings"
	"testing"
)

// allowHTTPURL is a test URLRewriter admitting only http/https URLs.
func allowHTTPURL(url string) (string, bool) {
	lower := strings.ToLower(url)
	if strings.HasPrefix(lower, "http:") || strings.HasPrefix(lower, "https:") {
		return url, true
	}
	return "", false
}

func TestStylingPolicySanitize(t *testing.T) {
	p := New(DefaultSchema, allowHTTPURL)
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "font family hoisting and expression dropped",
			input: "font-family: 'Arial Black', sans-serif; expression(alert(1))",
			want:  "font-family:'arial black' , sans-serif",
		},
		{
			name:  "unquoted multi word family hoisted into string",
			input: "font-family: Arial Black, serif",
			want:  "font-family:'arial black' , serif",
		},
		{
			name:  "two declarations",
			input: "color:red;text-align:center",
			want:  "color:red; text-align:center",
		},
		{
			name:  "unknown property dropped",
			input: "-moz-binding:url('http://evil/x.xml');color:red",
			want:  "color:red",
		},
		{
			name:  "disallowed function empties the property",
			input: "color: expression(alert(1))",
			want:  "",
		},
		{
			name:  "hash color lowercased",
			input: "color: #FF0000",
			want:  "color:#ff0000",
		},
		{
			name:  "rgb arguments filtered through sub-schema",
			input: "color: rgb(255, 0, 0)",
			want:  "color:rgb( 255 , 0 , 0 )",
		},
		{
			name:  "negative margin allowed",
			input: "margin: -4px",
			want:  "margin:-4px",
		},
		{
			name:  "negative padding dropped",
			input: "padding: -4px",
			want:  "",
		},
		{
			name:  "url through rewriter",
			input: "background-image: url('http://x/a.png')",
			want:  "background-image:url('http://x/a.png')",
		},
		{
			name:  "url rejected by rewriter empties the property",
			input: "background-image: url('javascript:alert(1)')",
			want:  "",
		},
		{
			name:  "url content percent-encoded",
			input: "background-image: url('http://x/a(b).png')",
			want:  "background-image:url('http://x/a%28b%29.png')",
		},
		{
			name:  "string escapes reencoded",
			input: `font-family: 'a"b'`,
			want:  `font-family:'a\22 b'`,
		},
		{
			name:  "comments and cdo cdc collapse away",
			input: "<!-- color:/* c */red -->",
			want:  "color:red",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "keyword not in literals dropped",
			input: "text-align: banana",
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStylingPolicyNilRewriterRejectsURLs(t *testing.T) {
	p := New(DefaultSchema, nil)
	if got := p.Sanitize("background-image: url('http://x/a.png')"); got != "" {
		t.Errorf("Sanitize with nil rewriter = %q, want empty", got)
	}
}

func TestStylingPolicyIdempotent(t *testing.T) {
	p := New(DefaultSchema, allowHTTPURL)
	inputs := []string{
		"font-family: 'Arial Black', sans-serif; expression(alert(1))",
		"color:red;background:#fff",
		"margin: -4px; padding: 2px 4px",
		"background-image: url('http://x/a(b).png')",
		"color: rgb(255, 0, 0)",
		"font: bold 12px 'Times New Roman'",
	}
	for _, in := range inputs {
		once := p.Sanitize(in)
		twice := p.Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q:\n once: %q\ntwice: %q", in, once, twice)
		}
	}
}

func TestStylingPolicyOutputContainsNoMarkup(t *testing.T) {
	p := New(DefaultSchema, allowHTTPURL)
	inputs := []string{
		"font-family: '</style><script>alert(1)</script>'",
		"font-family: 'a<!--b-->c'",
		"background-image: url('http://x/</style>')",
		"color: red<!--",
	}
	for _, in := range inputs {
		out := strings.ToLower(p.Sanitize(in))
		for _, banned := range []string{"<!--", "-->", "<![cdata[", "]]>", "</style"} {
			if strings.Contains(out, banned) {
				t.Errorf("Sanitize(%q) = %q contains banned %q", in, out, banned)
			}
		}
	}
}
