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

// openStack is the open-element stack: kept as a single flat
// sequence of strings with even length (pairs of inputName, adjustedName)
// rather than a slice of pairs, for simpler invariants and cheaper resize.
// Input names are stored in canonical form so close-tag matching is
// case-insensitive. An empty adjustedName marks a deferred (suppressed)
// open tag, retaining its input name so the matching close tag can still
// be located.
type openStack struct {
	names []string // names[2i], names[2i+1] = inputName, adjustedName
	skip  []bool   // skip[i] = skipText once frame i is the top of stack
}

func (s *openStack) push(inputName, adjustedName string, skipText bool) {
	s.names = append(s.names, inputName, adjustedName)
	s.skip = append(s.skip, skipText)
}

func (s *openStack) depth() int { return len(s.skip) }

// topSkipText reports the in-scope skipText flag: false at document level.
func (s *openStack) topSkipText() bool {
	if len(s.skip) == 0 {
		return false
	}
	return s.skip[len(s.skip)-1]
}

// findTop returns the frame index of the topmost entry whose inputName
// equals name, or -1 if there is none.
func (s *openStack) findTop(name string) int {
	for i := len(s.skip) - 1; i >= 0; i-- {
		if s.names[2*i] == name {
			return i
		}
	}
	return -1
}

// popThrough truncates the stack down to (and including) frame idx,
// returning the adjusted names of every non-deferred popped frame in
// top-to-bottom (i.e. close) order.
func (s *openStack) popThrough(idx int) []string {
	var closed []string
	for len(s.skip)-1 >= idx {
		top := len(s.skip) - 1
		if adj := s.names[2*top+1]; adj != "" {
			closed = append(closed, adj)
		}
		s.names = s.names[:2*top]
		s.skip = s.skip[:top]
	}
	return closed
}
