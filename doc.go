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

// Package sanitizer sanitizes untrusted HTML into a normalized, safe
// subset suitable for embedding in a trusted page.
//
// Callers build a Policy with a PolicyBuilder declaring which elements,
// attributes, URL schemes and CSS properties are allowed, then call
// Sanitize with untrusted input:
//
//	policy := sanitizer.NewPolicyBuilder().
//		AllowCommonInlineFormatting().
//		RequireRelNofollowOnLinks().
//		Build()
//	safe := sanitizer.Sanitize(policy, untrustedHTML)
//
// Sanitize never fails: malformed markup degrades to plain text, and
// disallowed constructs are silently dropped (optionally reported through
// a ChangeListener). The output is always a member of the intersection of
// well-formed HTML5 and XML, so concatenating the outputs of two separate
// Sanitize calls cannot create a tag boundary that wasn't present in
// either input (see Renderer).
package sanitizer
